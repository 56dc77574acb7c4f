// Package reload watches model files on disk and queues the ones that change so the host loop
// can reload them between frames.
package reload

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned by Add after Close.
var ErrWatcherClosed = errors.New("watcher is closed")

// Watcher reports changed model files.
type Watcher interface {
	// Add starts watching a file. The file's directory is watched so editors that replace the file
	// on save are still seen.
	//
	// Parameters:
	//   - path: the file to watch
	//
	// Returns:
	//   - error: an error if the directory cannot be watched
	Add(path string) error

	// Drain returns the watched files that changed and have settled since the last call.
	Drain() []string

	// Close stops watching.
	Close() error
}

type watcher struct {
	logger   *slog.Logger
	debounce time.Duration

	fs    *fsnotify.Watcher
	queue *Queue

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]struct{}

	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

var _ Watcher = &watcher{}

// NewWatcher creates a Watcher and starts its event goroutine.
//
// Parameters:
//   - options: functional options for the watcher
//
// Returns:
//   - Watcher: the running watcher
//   - error: an error if the OS watcher cannot be created
func NewWatcher(options ...WatcherBuilderOption) (Watcher, error) {
	w := &watcher{
		logger:   slog.Default(),
		debounce: 200 * time.Millisecond,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fs = fsw
	w.queue = NewQueue(w.debounce)

	w.wg.Add(1)
	go w.handleEvents()
	return w, nil
}

func (w *watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}

	dir := filepath.Dir(abs)
	if _, ok := w.dirs[dir]; !ok {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	w.files[abs] = struct{}{}
	return nil
}

func (w *watcher) Drain() []string {
	return w.queue.Drain()
}

func (w *watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}

// handleEvents forwards relevant fsnotify events into the queue until Close.
func (w *watcher) handleEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if w.isWatched(event.Name) {
				w.logger.Debug("model file changed", slog.String("path", event.Name), slog.String("op", event.Op.String()))
				w.queue.Push(filepath.Clean(event.Name))
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", slog.Any("error", err))
		}
	}
}

func (w *watcher) isWatched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[abs]
	return ok
}
