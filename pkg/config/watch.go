package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the config file whenever it changes on disk.
type Watcher struct {
	path     string
	environ  map[string]string
	onChange func(Config)
	logger   *zap.Logger

	fs   *fsnotify.Watcher
	done chan struct{}
}

// Watch starts watching path. onChange runs on the watcher goroutine with every
// successfully reloaded config; invalid edits are logged and skipped. The
// watcher stops when ctx ends or Close is called.
func Watch(ctx context.Context, path string, onChange func(Config), logger *zap.Logger) (*Watcher, error) {
	return WatchWithEnv(ctx, path, nil, onChange, logger)
}

// WatchWithEnv is Watch with an explicit environment, as in LoadWithEnv.
func WatchWithEnv(ctx context.Context, path string, environ map[string]string, onChange func(Config), logger *zap.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Editors often replace the file, so watch its directory.
	path = filepath.Clean(path)
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		path:     path,
		environ:  environ,
		onChange: onChange,
		logger:   logger,
		fs:       fs,
		done:     make(chan struct{}),
	}

	go w.run(ctx)

	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			w.fs.Close()
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadWithEnv(w.path, w.environ)
	if err != nil {
		w.logger.Warn("ignoring invalid config change", zap.String("path", w.path), zap.Error(err))
		return
	}

	w.logger.Info("config reloaded",
		zap.String("path", w.path),
		zap.String("endpoint", cfg.Endpoint),
	)
	w.onChange(cfg)
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.done
	return err
}
