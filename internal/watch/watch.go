// Package watch drives incremental re-analysis from filesystem change
// events: it watches a directory of package-store JSON fixtures and calls
// back into the analyzer's single-package path whenever one settles after
// a write, debouncing rapid successive saves the way an editor's autosave
// would otherwise trigger a flood of re-analyses.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"rca/internal/rcalog"
)

// Watcher watches a fixture directory for *.json changes and invokes
// OnChange, debounced, for each settled file.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	dir         string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	// OnChange is called, on the watcher's own goroutine, once per
	// settled fixture file path. It is set before Start and never
	// mutated afterward.
	OnChange func(path string)
}

// New creates a Watcher over dir. Start creates the directory if it does
// not exist yet.
func New(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fsw,
		dir:         dir,
		debounceMap: make(map[string]time.Time),
		debounceDur: 300 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching w.dir for changes. Non-blocking: the event loop
// runs on its own goroutine until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	log := rcalog.Get(rcalog.CategoryTopLevel)

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		log.Warn("watch: failed to create fixture dir %s: %v (continuing anyway)", w.dir, err)
	}
	if err := w.watcher.Add(w.dir); err != nil {
		log.Warn("watch: initial watch failed (dir may not exist): %v", err)
	} else {
		log.Info("watch: watching directory %s", w.dir)
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	_ = w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	log := rcalog.Get(rcalog.CategoryTopLevel)
	debounceTicker := time.NewTicker(50 * time.Millisecond)
	defer debounceTicker.Stop()

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
			log.Error("watch: fsnotify error: %v", err)
		case <-debounceTicker.C:
			w.processDebounced()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".json") {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	w.mu.Lock()
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced() {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, t := range w.debounceMap {
		if now.Sub(t) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		if _, err := os.Stat(path); err != nil {
			continue // deleted before it settled
		}
		if w.OnChange != nil {
			w.OnChange(path)
		}
	}
}

// baseName is a small helper callers use to map a changed fixture file back
// to a human-readable label in log lines.
func baseName(path string) string {
	return filepath.Base(path)
}
