// Package cli implements the loramgr command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"loramgr/internal/app"
	"loramgr/internal/httpapi"
	"loramgr/internal/links"
	"loramgr/internal/roots"
	"loramgr/internal/routes"
)

// Config collects the process-level options shared by all subcommands.
type Config struct {
	SettingsPath string
	AssetsPath   string
	Addr         string
	LogLevel     string
	LogFile      string
	Watch        bool
	CORSOrigins  []string
	JSON         bool
}

// DefaultConfig reads flag defaults from the environment.
func DefaultConfig() *Config {
	return &Config{
		SettingsPath: envStr(EnvSettings, "settings.json"),
		AssetsPath:   envStr(EnvAssets, "static"),
		Addr:         envStr(EnvAddr, "0.0.0.0:8188"),
		LogLevel:     envStr(EnvLogLevel, "info"),
		LogFile:      envStr(EnvLogFile, ""),
		Watch:        envBool(EnvWatch, false),
	}
}

// Execute runs the command tree with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd(DefaultConfig()).ExecuteContext(ctx)
}

// NewRootCmd constructs the command tree bound to cfg.
func NewRootCmd(cfg *Config) *cobra.Command {
	var (
		log    zerolog.Logger
		closer io.Closer = nopCloser{}
	)
	root := &cobra.Command{
		Use:           "loramgr",
		Short:         "Serve a local LoRA / checkpoint library under stable static URLs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log, closer = newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = closer.Close()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&cfg.SettingsPath, "settings", cfg.SettingsPath, "Settings file (.json|.yaml|.toml) (defaults LORAMGR_SETTINGS)")
	pf.StringVar(&cfg.AssetsPath, "assets", cfg.AssetsPath, "Bundled plugin assets served at /loras_static (defaults LORAMGR_ASSETS)")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error (defaults LORAMGR_LOG_LEVEL or info)")
	pf.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Also write JSON logs to this rotated file (defaults LORAMGR_LOG_FILE)")

	pipeline := func() *app.Pipeline {
		return app.New(app.Config{SettingsPath: cfg.SettingsPath, AssetsPath: cfg.AssetsPath}, log)
	}

	serve := &cobra.Command{
		Use:     "serve",
		Short:   "Resolve model roots and serve them over HTTP",
		Example: "  loramgr serve --settings settings.json --addr 127.0.0.1:8188 --watch",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg, pipeline(), log)
		},
	}
	serve.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address (defaults LORAMGR_ADDR or 0.0.0.0:8188)")
	serve.Flags().BoolVar(&cfg.Watch, "watch", cfg.Watch, "Rebuild the route table when the settings file changes")
	serve.Flags().StringSliceVar(&cfg.CORSOrigins, "cors-origins", cfg.CORSOrigins, "Allowed CORS origins (CORS disabled when empty)")

	routesCmd := &cobra.Command{
		Use:     "routes",
		Short:   "Print the static route table and exit",
		Example: "  loramgr routes --settings settings.json --json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := pipeline().Reload()
			return printRoutes(cmd.OutOrStdout(), s, cfg.JSON)
		},
	}
	routesCmd.Flags().BoolVar(&cfg.JSON, "json", false, "Print JSON instead of a table")

	rootsCmd := &cobra.Command{
		Use:     "roots [type...]",
		Short:   "Print the resolved roots for logical model types (default: loras checkpoints diffusion_models)",
		Example: "  loramgr roots diffusion_models",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := pipeline().Reload()
			return printRoots(cmd.OutOrStdout(), s, args, log)
		},
	}

	root.AddCommand(serve, routesCmd, rootsCmd)
	return root
}

func printRoutes(w io.Writer, s *app.Snapshot, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(httpapi.NewSnapshotRoutesResponse(s))
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PREFIX\tREAL PATH\tCATEGORY\tSOURCE")
	for _, e := range s.Table.Entries() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.URLPrefix, e.RealPath, e.Category, e.Source)
	}
	for _, m := range s.Table.Mounts() {
		fmt.Fprintf(tw, "%s\t%s\t-\t%s\n", m.URLPrefix, m.Dir, m.Name)
	}
	for _, m := range s.Table.Mappings() {
		if m.Status == routes.StatusRegistered {
			continue
		}
		fmt.Fprintf(tw, "# %s\t%s\t%s\t%s\n", m.URLPrefix, m.ConfiguredPath, m.Category, m.Status)
	}
	return tw.Flush()
}

func printRoots(w io.Writer, s *app.Snapshot, names []string, log zerolog.Logger) error {
	resolver := roots.New(s.Settings, log)
	if len(names) == 0 {
		for _, set := range []roots.ModelRootSet{s.Loras, s.Ckpts, s.Diffusion} {
			printRootSet(w, set, s.Links)
		}
		// any other configured category resolves as a simple type
		for _, c := range s.Settings.Categories() {
			switch c {
			case roots.Loras, roots.Checkpoints, roots.DiffusionModels:
				continue
			}
			printRootSet(w, resolver.Resolve(c), s.Links)
		}
		return nil
	}
	for _, t := range names {
		printRootSet(w, resolver.Resolve(t), s.Links)
	}
	return nil
}

// printRootSet lists one root set, marking roots that are registered links
// with their real target.
func printRootSet(w io.Writer, set roots.ModelRootSet, reg *links.Registry) {
	fmt.Fprintf(w, "%s:\n", set.Type)
	if set.Empty() {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, p := range set.Paths {
		if reg.IsLink(p) {
			fmt.Fprintf(w, "  %s -> %s\n", p, reg.ResolveReal(p))
			continue
		}
		fmt.Fprintf(w, "  %s\n", p)
	}
}

// exitCode maps an error to a process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(os.Stderr, err.Error())
	return 1
}

// Main is the process entry point used by cmd/loramgr.
func Main(ctx context.Context) int { return exitCode(Execute(ctx)) }
