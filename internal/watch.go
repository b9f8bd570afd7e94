package internal

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Loader builds an engine from the current state of a configuration file.
type Loader func(path string) (*Engine, error)

// Watcher holds the engine built from a configuration file and rebuilds it
// whenever the file changes. A configuration that fails to load keeps the
// previous engine in place.
type Watcher struct {
	path    string
	load    Loader
	logger  *zap.Logger
	current atomic.Pointer[Engine]

	// wait for a while after a change to consider multiple writes as one
	settle time.Duration

	mu         sync.Mutex
	watcher    *fsnotify.Watcher
	isWatching bool
	done       chan struct{}
	reloads    chan struct{}
}

func NewWatcher(path string, load Loader, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine, err := load(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:    filepath.Clean(path),
		load:    load,
		logger:  logger,
		settle:  100 * time.Millisecond,
		reloads: make(chan struct{}, 1),
	}
	w.current.Store(engine)
	return w, nil
}

// Engine returns the engine of the last configuration that loaded successfully.
func (w *Watcher) Engine() *Engine {
	return w.current.Load()
}

// Reloaded receives a value after every successful reload.
func (w *Watcher) Reloaded() <-chan struct{} {
	return w.reloads
}

func (w *Watcher) StartWatching() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isWatching {
		return fmt.Errorf("already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	// editors replace files on save, so the directory is watched instead of the file
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}

	w.watcher = watcher
	w.done = make(chan struct{})
	w.isWatching = true
	go w.watchLoop(watcher, w.done)
	return nil
}

func (w *Watcher) StopWatching() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isWatching {
		return nil
	}

	w.isWatching = false
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) watchLoop(watcher *fsnotify.Watcher, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handleFileEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("error watching configuration", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	time.Sleep(w.settle)
	w.Reload()
}

// Reload rebuilds the engine from the configuration file.
func (w *Watcher) Reload() {
	engine, err := w.load(w.path)
	if err != nil {
		w.logger.Error("configuration reload failed, keeping previous engine",
			zap.String("path", w.path), zap.Error(err))
		return
	}
	w.current.Store(engine)
	w.logger.Info("configuration reloaded", zap.String("path", w.path))

	select {
	case w.reloads <- struct{}{}:
	default:
	}
}
