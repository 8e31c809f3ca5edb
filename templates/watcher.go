package templates

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

// Watcher calls a reload function when one of the watched files changes.
// Rapid successive writes to the same file trigger a single reload.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	debounce time.Duration
	handlers map[string]func() error
	pending  map[string]time.Time
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewWatcher(debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		watcher:  fw,
		debounce: debounce,
		handlers: make(map[string]func() error),
		pending:  make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch registers reload for path. The parent directory is watched so that
// editors replacing the file by rename are still seen.
func (w *Watcher) Watch(path string, reload func() error) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	w.mu.Lock()
	w.handlers[abs] = reload
	w.mu.Unlock()

	slog.Info("watching file for changes", "path", abs)
	return nil
}

func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		slog.Error("failed to close file watcher", "error", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("file watcher error", "error", err)
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.handlers[abs]; ok {
		w.pending[abs] = time.Now()
	}
}

func (w *Watcher) flush() {
	now := time.Now()

	w.mu.Lock()
	var due []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			due = append(due, path)
			delete(w.pending, path)
		}
	}
	handlers := make([]func() error, 0, len(due))
	for _, path := range due {
		handlers = append(handlers, w.handlers[path])
	}
	w.mu.Unlock()

	for i, reload := range handlers {
		if err := reload(); err != nil {
			slog.Error("reload failed, keeping previous version", "path", due[i], "error", err)
			continue
		}
		slog.Info("reloaded after file change", "path", due[i])
	}
}
