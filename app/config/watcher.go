package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the endpoints cache when the discovery collaborator
// rewrites the locale endpoints file. The parent directory is watched, not
// the file itself: most writers replace the file via rename, which would
// drop a direct watch.
type Watcher struct {
	cache *Cache
	fsw   *fsnotify.Watcher
	done  chan struct{}
}

func NewWatcher(cache *Cache) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(cache.Path())
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		cache: cache,
		fsw:   fsw,
		done:  make(chan struct{}),
	}, nil
}

func (w *Watcher) Start() {
	go w.loop()
}

func (w *Watcher) Stop() {
	close(w.done)
	w.fsw.Close()
}

func (w *Watcher) loop() {
	base := filepath.Base(w.cache.Path())

	// Writers often emit several events per rewrite; coalesce them.
	var pending <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(500 * time.Millisecond)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", "error", err)

		case <-pending:
			pending = nil
			if err := w.cache.Reload(); err != nil {
				slog.Error("Failed to reload locale endpoints", "error", err)
				continue
			}
			slog.Info("Locale endpoints reloaded", "count", w.cache.Count())
		}
	}
}
