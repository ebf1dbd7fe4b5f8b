package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses bursts of file events into one reload.
const DefaultDebounce = 100 * time.Millisecond

// ChangeHandler receives each reload. Exactly one of cfg and err is nil.
type ChangeHandler func(cfg *Config, err error)

// Watcher reloads a configuration file when it changes on disk.
type Watcher struct {
	path     string
	handler  ChangeHandler
	debounce time.Duration
	logger   *zap.Logger

	fsw  *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup

	mu    sync.Mutex
	timer *time.Timer
	once  sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher's logger.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher starts watching path and calls handler after each change.
// The containing directory is watched so editors that replace the file
// are still seen.
func NewWatcher(path string, handler ChangeHandler, opts ...WatcherOption) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("config watcher: nil handler")
	}
	w := &Watcher{
		path:     path,
		handler:  handler,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	base := filepath.Base(w.path)

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
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}

	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload failed", zap.String("path", w.path), zap.Error(err))
		w.handler(nil, err)
		return
	}
	w.logger.Info("config reloaded", zap.String("path", w.path))
	w.handler(cfg, nil)
}

// Close stops watching. Pending reloads are dropped.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}
