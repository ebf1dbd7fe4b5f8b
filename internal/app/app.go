// Package app wires the configuration, terminal, scene, input, engine and
// plugins into a running cursor and manages their lifecycle.
package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/supermouse/internal/config"
	"github.com/dshills/supermouse/internal/engine"
	"github.com/dshills/supermouse/internal/input"
	"github.com/dshills/supermouse/internal/renderer/backend"
	"github.com/dshills/supermouse/internal/scene"
	"github.com/dshills/supermouse/internal/stage"
)

// Application owns every component of a running cursor.
type Application struct {
	mu sync.RWMutex

	// Core infrastructure
	config   *config.Config
	logger   *zap.Logger
	closeLog func() error
	watcher  *config.Watcher

	// Presentation
	backend backend.Backend
	scene   *scene.Scene
	stage   *stage.Stage

	// Input
	source input.Source
	remote *input.RemoteSource
	server *http.Server

	engine *engine.Engine

	// State
	running  atomic.Bool
	done     chan struct{}
	stopOnce sync.Once

	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty uses defaults and the
	// environment only.
	ConfigPath string

	// ScenePath overrides the configured scene file.
	ScenePath string

	// Debug forces debug logging.
	Debug bool

	// Watch reloads ConfigPath when it changes.
	Watch bool

	// Backend replaces the terminal. The application still initializes
	// and shuts it down.
	Backend backend.Backend

	// Scheduler replaces the engine's frame ticker.
	Scheduler engine.Scheduler

	// Logger replaces the logger built from the configuration.
	Logger *zap.Logger
}

// New creates and starts every component. On failure the components
// already started are stopped again.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts: opts,
		done: make(chan struct{}),
	}
	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Run blocks until ctx is cancelled, Shutdown is called or a quit key is
// pressed, then stops every component.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.logger.Info("running", zap.Int("plugins", len(app.engine.Plugins())))

	select {
	case <-ctx.Done():
	case <-app.done:
	case <-app.engine.Done():
	}
	return app.shutdown()
}

// Shutdown asks Run to return. It is safe to call more than once and
// from any goroutine.
func (app *Application) Shutdown() {
	app.stopOnce.Do(func() { close(app.done) })
}

// Close stops every component without Run. Use it when New succeeded but
// Run is never called.
func (app *Application) Close() error {
	app.Shutdown()
	return app.shutdown()
}

// shutdown stops components in reverse start order.
func (app *Application) shutdown() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	var errs []error
	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
		app.watcher = nil
	}
	if app.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := app.server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		cancel()
		app.server = nil
	}
	if app.engine != nil {
		// Destroy also closes the input source and the stage.
		if err := app.engine.Destroy(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.backend != nil {
		app.backend.Shutdown()
		app.backend = nil
	}

	err := errors.Join(errs...)
	if err != nil {
		app.logger.Error("shutdown", zap.Error(err))
	} else {
		app.logger.Info("stopped")
	}
	if app.closeLog != nil {
		_ = app.closeLog()
		app.closeLog = nil
	}
	return err
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.config
}

// Engine returns the cursor engine.
func (app *Application) Engine() *engine.Engine {
	return app.engine
}

// Stage returns the stage.
func (app *Application) Stage() *stage.Stage {
	return app.stage
}

// Logger returns the application logger.
func (app *Application) Logger() *zap.Logger {
	return app.logger
}

// RemoteHandler returns the websocket pointer handler, or nil when remote
// input is off.
func (app *Application) RemoteHandler() http.Handler {
	if app.remote == nil {
		return nil
	}
	return app.remote
}

// IsRunning reports whether Run is active.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}
