// Package watch recomputes a gear train whenever its YAML file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/san-kum/gearset/internal/config"
	"github.com/san-kum/gearset/internal/gearset"
	"go.uber.org/zap"
)

const DefaultDebounce = 200 * time.Millisecond

// Handler receives the outcome of every recompute.
type Handler func(layout *gearset.Layout, err error)

// Watcher owns one train revision at a time. A reload builds a fresh train
// from the file and adopts the planet arena of the previous revision.
type Watcher struct {
	path     string
	sched    *gearset.Scheduler
	handler  Handler
	logger   *zap.Logger
	debounce time.Duration

	train *gearset.Train
}

type Option func(*Watcher)

func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

func New(path string, sched *gearset.Scheduler, handler Handler, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		sched:    sched,
		handler:  handler,
		logger:   zap.NewNop(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Train returns the current revision, nil before the first successful load.
func (w *Watcher) Train() *gearset.Train {
	return w.train
}

// Reload reads the file and recomputes. A file that fails to load or parse
// leaves the current revision in place.
func (w *Watcher) Reload() (*gearset.Layout, error) {
	cfg, err := config.Load(w.path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", w.path, err)
	}
	t, err := cfg.Train()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", w.path, err)
	}
	t.Adopt(w.train)

	layout, err := w.sched.Execute(t)
	if err != nil {
		return nil, err
	}
	w.train = t
	return layout, nil
}

func (w *Watcher) fire() {
	layout, err := w.Reload()
	if err != nil {
		w.logger.Warn("recompute failed", zap.String("path", w.path), zap.Error(err))
	} else {
		w.logger.Info("recomputed", zap.String("path", w.path),
			zap.Int("planets", layout.Train.PlanetCount),
			zap.Int("diagnostics", len(layout.Diagnostics)))
	}
	if w.handler != nil {
		w.handler(layout, err)
	}
}

// Run recomputes once, then after every debounced change to the file until
// ctx is done. The parent directory is watched so editors that replace the
// file on save are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.logger.Debug("watching", zap.String("path", w.path))

	w.fire()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-pending:
			pending = nil
			w.fire()
		}
	}
}
