// Package watch notices when another process changes the design database
// so a long-running process can reload it.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces the burst of writes a single commit produces.
const DefaultDebounce = 150 * time.Millisecond

// ChangedHandler is called once per burst of writes.
type ChangedHandler func(path string)

// Watcher watches a set of files by watching their directories, as
// fsnotify reports file events through the parent directory.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange ChangedHandler
	debounce time.Duration
	log      *zap.Logger

	mu       sync.RWMutex
	watching map[string]struct{}

	done chan struct{}
}

// New creates a watcher and starts its loop. Close must be called to stop
// it.
func New(onChange ChangedHandler, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}

	w := &Watcher{
		watcher:  watcher,
		onChange: onChange,
		debounce: debounce,
		log:      log,
		watching: make(map[string]struct{}),
		done:     make(chan struct{}),
	}

	go w.watchLoop()

	return w, nil
}

// WatchDatabase watches a sqlite file together with its WAL, where commits
// land first in WAL mode.
func (w *Watcher) WatchDatabase(dbPath string) error {
	if err := w.WatchFile(dbPath); err != nil {
		return err
	}
	return w.WatchFile(dbPath + "-wal")
}

// WatchFile starts watching a file. It need not exist yet.
func (w *Watcher) WatchFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.watching[absPath] = struct{}{}
	w.mu.Unlock()

	return w.watcher.Add(filepath.Dir(absPath))
}

// Close stops the watcher and waits for its loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) watched(name string) bool {
	absPath, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.watching[absPath]
	return ok
}

func (w *Watcher) watchLoop() {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	var pending string

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.watched(event.Name) {
				continue
			}
			if pending == "" {
				pending = event.Name
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			if pending != "" && w.onChange != nil {
				w.onChange(pending)
			}
			pending = ""
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}
