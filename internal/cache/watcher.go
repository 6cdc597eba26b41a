package cache

import (
	"context"
	"path/filepath"
	"sync"

	"genexplorer/internal"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates cached headers when their source files change
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	cache   *HeaderCache
	paths   map[string]string
	logger  *internal.Logger
	doneCh  chan struct{}
	running bool

	// OnInvalidate, when set, is called after an entry is dropped
	OnInvalidate func(path string)
}

// NewWatcher watches the directories of paths. Events for other files in
// those directories are ignored.
func NewWatcher(cache *HeaderCache, logger *internal.Logger, paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}

	cw := &Watcher{
		watcher: w,
		cache:   cache,
		paths:   make(map[string]string, len(paths)),
		logger:  logger,
		doneCh:  make(chan struct{}),
	}
	dirs := map[string]struct{}{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		cw.paths[abs] = p
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
		logger.Info("[Watcher] watching %s", dir)
	}
	return cw, nil
}

// Start runs the event loop until ctx is done or Close is called
func (cw *Watcher) Start(ctx context.Context) {
	cw.mu.Lock()
	if cw.running {
		cw.mu.Unlock()
		return
	}
	cw.running = true
	cw.mu.Unlock()

	go cw.run(ctx)
}

// Close stops the watcher
func (cw *Watcher) Close() error {
	err := cw.watcher.Close()
	cw.mu.Lock()
	running := cw.running
	cw.running = false
	cw.mu.Unlock()
	if running {
		<-cw.doneCh
	}
	return err
}

func (cw *Watcher) run(ctx context.Context) {
	defer close(cw.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			cw.handleEvent(event)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Error("[Watcher] %v", err)
		}
	}
}

func (cw *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		abs = event.Name
	}
	original, ok := cw.paths[abs]
	if !ok {
		return
	}
	cw.logger.Debug("[Watcher] %s %s", event.Op, event.Name)
	cw.cache.Invalidate(original)
	if cw.OnInvalidate != nil {
		cw.OnInvalidate(original)
	}
}
