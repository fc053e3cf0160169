package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"loramgr/internal/app"
	"loramgr/internal/httpapi"
)

const shutdownTimeout = 5 * time.Second

// runServe builds the route table, serves it, and blocks until ctx is
// canceled or SIGINT/SIGTERM arrives.
func runServe(ctx context.Context, cfg *Config, p *app.Pipeline, log zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p.OnBuild(func(s *app.Snapshot) {
		httpapi.ObserveTable(s.Table)
		for _, e := range s.Table.Entries() {
			log.Info().Str("prefix", e.URLPrefix).Str("real", e.RealPath).Str("category", string(e.Category)).Msg("route")
		}
	})
	snap := p.Reload()
	if snap.Table.Len() == 0 {
		log.Warn().Str("settings", cfg.SettingsPath).Msg("no model roots to serve")
	}

	mux := httpapi.NewMux(p, httpapi.Options{
		Logger:      log.With().Str("component", "http").Logger(),
		CORSOrigins: cfg.CORSOrigins,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	if cfg.Watch {
		go func() {
			if err := p.Watch(ctx); err != nil {
				log.Error().Err(err).Msg("settings watcher stopped")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("settings", cfg.SettingsPath).Msg("loramgr listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
