// Package app wires the settings store, root resolver, link registry and
// route mapper into one pipeline and holds the current snapshot for readers.
package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"loramgr/internal/common/fsutil"
	"loramgr/internal/config"
	"loramgr/internal/links"
	"loramgr/internal/roots"
	"loramgr/internal/routes"
)

// Config holds the pipeline inputs that do not come from the settings file.
type Config struct {
	SettingsPath string
	// AssetsPath is the directory of bundled plugin assets mounted at /loras_static.
	AssetsPath string
	// Exists overrides the filesystem existence check (tests).
	Exists func(string) bool
	// WatchDebounce applies to Watch; zero uses the watcher default.
	WatchDebounce time.Duration
}

// Snapshot is one complete, immutable resolution result.
type Snapshot struct {
	Settings config.Settings
	Loras    roots.ModelRootSet
	Ckpts    roots.ModelRootSet
	// Diffusion is resolved for diagnostics only; it is not served.
	Diffusion roots.ModelRootSet
	Links     *links.Registry
	Table     *routes.Table
	BuiltAt   time.Time
	Version   uint64
}

// Pipeline rebuilds snapshots from scratch and publishes them atomically.
type Pipeline struct {
	cfg     Config
	log     zerolog.Logger
	mu      sync.Mutex // serializes Reload
	cur     atomic.Pointer[Snapshot]
	version atomic.Uint64
	onBuild []func(*Snapshot)
}

// New constructs a Pipeline. Call Reload to build the first snapshot.
func New(cfg Config, log zerolog.Logger) *Pipeline {
	if cfg.Exists == nil {
		cfg.Exists = fsutil.PathExists
	}
	return &Pipeline{cfg: cfg, log: log}
}

// OnBuild registers fn to run after each snapshot is published.
func (p *Pipeline) OnBuild(fn func(*Snapshot)) { p.onBuild = append(p.onBuild, fn) }

// Build runs the full resolution without publishing the result.
func (p *Pipeline) Build() *Snapshot {
	settings := config.LoadCategories(p.cfg.SettingsPath, p.log.With().Str("component", "settings").Logger())

	resolver := roots.New(settings, p.log.With().Str("component", "resolver").Logger(), roots.WithExists(p.cfg.Exists))
	s := &Snapshot{
		Settings:  settings,
		Loras:     resolver.Resolve(roots.Loras),
		Ckpts:     resolver.Resolve(roots.Checkpoints),
		Diffusion: resolver.Resolve(roots.DiffusionModels),
	}

	linkLog := p.log.With().Str("component", "links").Logger()
	assocs := links.FromMappings(settings.PathMappings)
	if settings.LinkDiscoveryEnabled() {
		scan := append(append([]string(nil), s.Loras.Paths...), s.Ckpts.Paths...)
		assocs = append(assocs, links.Discover(scan, linkLog)...)
	}
	s.Links = links.New(assocs, linkLog)

	opts := []routes.Option{
		routes.WithExists(p.cfg.Exists),
		routes.WithExampleImages(settings.ExampleImagesPath),
	}
	if len(settings.LinkCategories) > 0 {
		ec := routes.NewExplicitClassifier(settings.LinkCategories)
		if n := len(settings.LinkCategories) - ec.Len(); n > 0 {
			p.log.Warn().Int("ignored", n).Msg("link_categories entries with an unknown category or empty path ignored")
		}
		if ec.Len() > 0 {
			opts = append(opts, routes.WithClassifier(ec))
		}
	}
	mapper := routes.NewMapper(p.log.With().Str("component", "routes").Logger(), opts...)
	s.Table = mapper.Build(s.Loras, s.Ckpts, s.Links, p.cfg.AssetsPath)
	s.BuiltAt = time.Now()
	return s
}

// Reload builds a new snapshot and replaces the current one. Concurrent
// calls run one at a time, so the published snapshot is always the one that
// read the settings last.
func (p *Pipeline) Reload() *Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.Build()
	s.Version = p.version.Add(1)
	p.cur.Store(s)
	for _, fn := range p.onBuild {
		fn(s)
	}
	return s
}

// Current returns the published snapshot, or nil before the first Reload.
func (p *Pipeline) Current() *Snapshot { return p.cur.Load() }

// Table returns the current route table (nil before the first Reload).
func (p *Pipeline) Table() *routes.Table {
	if s := p.cur.Load(); s != nil {
		return s.Table
	}
	return nil
}

// RootSets returns the resolved root sets of the current snapshot.
func (p *Pipeline) RootSets() []roots.ModelRootSet {
	s := p.cur.Load()
	if s == nil {
		return nil
	}
	return []roots.ModelRootSet{s.Loras, s.Ckpts, s.Diffusion}
}

// Ready reports whether a snapshot has been published.
func (p *Pipeline) Ready() bool { return p.cur.Load() != nil }

// Watch reloads the pipeline whenever the settings file changes. It blocks
// until ctx is canceled.
func (p *Pipeline) Watch(ctx context.Context) error {
	w := config.NewWatcher(p.cfg.SettingsPath, p.cfg.WatchDebounce, p.log.With().Str("component", "watcher").Logger(), func() {
		s := p.Reload()
		p.log.Info().Uint64("version", s.Version).Int("entries", s.Table.Len()).Msg("route table rebuilt")
	})
	return w.Run(ctx)
}
