package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reports changes to a settings file. The parent directory is watched
// so editors that replace the file via rename are still observed.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	log      zerolog.Logger
	changes  atomic.Uint32
}

// NewWatcher creates a watcher calling onChange (debounced) after the file at
// path is written, created, renamed or removed. A zero debounce uses 500ms.
func NewWatcher(path string, debounce time.Duration, log zerolog.Logger, onChange func()) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{path: path, debounce: debounce, onChange: onChange, log: log}
}

// Changes returns the number of change notifications delivered so far.
func (w *Watcher) Changes() uint32 { return w.changes.Load() }

// Run blocks until ctx is canceled or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("abs path: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w.log.Info().Str("path", abs).Msg("watching settings")

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	const interesting = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&interesting == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.fire)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("settings watcher error")
		}
	}
}

func (w *Watcher) fire() {
	n := w.changes.Add(1)
	w.log.Info().Str("path", w.path).Uint32("count", n).Msg("settings changed")
	if w.onChange != nil {
		w.onChange()
	}
}
