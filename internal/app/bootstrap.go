package app

import (
	"errors"
	"net"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/dshills/supermouse/internal/config"
	"github.com/dshills/supermouse/internal/engine"
	"github.com/dshills/supermouse/internal/input"
	"github.com/dshills/supermouse/internal/logging"
	"github.com/dshills/supermouse/internal/plugins/script"
	"github.com/dshills/supermouse/internal/renderer/backend"
	"github.com/dshills/supermouse/internal/scene"
	"github.com/dshills/supermouse/internal/stage"
)

// RemotePath is where the websocket pointer feed is served.
const RemotePath = "/pointer"

// bootstrapper starts components in dependency order and stops them again
// if a later one fails.
type bootstrapper struct {
	app       *Application
	initOrder []string
}

func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{app: app, initOrder: make([]string, 0, 8)}
}

func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"config", b.initConfig},
		{"logger", b.initLogger},
		{"backend", b.initBackend},
		{"stage", b.initStage},
		{"input", b.initInput},
		{"engine", b.initEngine},
		{"plugins", b.initPlugins},
		{"scripts", b.initScripts},
		{"watcher", b.initWatcher},
	}
	for _, step := range steps {
		if err := step.init(); err != nil {
			b.cleanup()
			var ie *InitError
			if errors.As(err, &ie) {
				return err
			}
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	return nil
}

func (b *bootstrapper) initConfig() error {
	cfg, err := config.Load(b.app.opts.ConfigPath)
	if err != nil {
		return err
	}
	if b.app.opts.ScenePath != "" {
		cfg.Scene.File = b.app.opts.ScenePath
	}
	if b.app.opts.Debug {
		cfg.Logging.Level = "debug"
	}
	b.app.config = cfg
	return nil
}

func (b *bootstrapper) initLogger() error {
	if b.app.opts.Logger != nil {
		b.app.logger = b.app.opts.Logger
		return nil
	}
	lc := b.app.config.Logging
	logger, closeLog, err := logging.New(logging.Config{Level: lc.Level, Format: lc.Format, File: lc.File})
	if err != nil {
		return err
	}
	b.app.logger = logger
	b.app.closeLog = closeLog
	return nil
}

func (b *bootstrapper) initBackend() error {
	be := b.app.opts.Backend
	if be == nil {
		t, err := backend.NewTerminal()
		if err != nil {
			return err
		}
		be = t
	}
	if err := be.Init(); err != nil {
		return err
	}
	b.app.backend = be
	return nil
}

func (b *bootstrapper) initStage() error {
	app := b.app
	sc := scene.New()
	if path := app.config.Scene.File; path != "" {
		loaded, err := scene.LoadFile(path)
		if err != nil {
			return err
		}
		sc = loaded
	}
	app.scene = sc

	opts := stage.DefaultOptions()
	opts.HoverSelectors = app.config.Stage.HoverSelectors
	opts.NativeSelectors = app.config.Stage.NativeSelectors
	st, err := stage.New(app.backend, sc, opts)
	if err != nil {
		return err
	}
	app.stage = st
	return nil
}

func (b *bootstrapper) initInput() error {
	app := b.app
	logger := logging.Component(app.logger, "input")

	opts := []input.BackendOption{
		input.WithResolver(app.stage),
		input.WithKeyHandler(app.handleKey),
		input.WithLogger(logger),
	}
	if app.config.Input.RequireTTY {
		opts = append(opts, input.WithTerminalCheck(int(os.Stdin.Fd())))
	}
	local := input.NewBackendSource(app.backend, opts...)

	addr := app.config.Input.RemoteAddr
	if addr == "" {
		app.source = local
		return nil
	}

	remote := input.NewRemoteSource(
		input.WithRemoteResolver(app.stage),
		input.WithRemoteLogger(logger),
	)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle(RemotePath, remote)
	app.server = &http.Server{Handler: mux}
	go func() {
		if err := app.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("remote input stopped", zap.Error(err))
		}
	}()
	logger.Info("remote input listening", zap.String("addr", ln.Addr().String()), zap.String("path", RemotePath))

	app.remote = remote
	app.source = input.NewMulti(local, remote)
	return nil
}

func (b *bootstrapper) initEngine() error {
	app := b.app
	ec := app.config.Engine
	opts := []engine.Option{
		engine.WithSmoothing(ec.Smoothing),
		engine.WithFPS(ec.FPS),
		engine.WithReducedMotion(ec.ReducedMotion),
		engine.WithHideCursor(ec.HideCursor),
		engine.WithFaultLimit(ec.FaultLimit),
		engine.WithLogger(logging.Component(app.logger, "engine")),
	}
	if !ec.Enabled {
		opts = append(opts, engine.WithDisabled())
	}
	if app.opts.Scheduler != nil {
		opts = append(opts, engine.WithScheduler(app.opts.Scheduler))
	}
	eng, err := engine.New(app.source, app.stage, opts...)
	if err != nil {
		return err
	}
	app.engine = eng
	return nil
}

func (b *bootstrapper) initPlugins() error {
	app := b.app
	factory := NewFactory(app.config.Scripts.Timeout())
	for i, pc := range app.config.Plugins {
		p, err := factory.Build(pc)
		if err != nil {
			return &InitError{Component: "plugins", Err: &PluginError{Index: i, Type: pc.Type, Err: err}}
		}
		app.engine.Use(p)
	}
	return nil
}

// initScripts loads discovered scripts. A broken script is logged and
// skipped.
func (b *bootstrapper) initScripts() error {
	app := b.app
	paths := app.config.Scripts.Paths
	if len(paths) == 0 {
		paths = script.DefaultPaths()
	}
	plugins, err := script.NewLoader(paths...).LoadAll(script.Options{Timeout: app.config.Scripts.Timeout()})
	if err != nil {
		app.logger.Warn("some scripts failed to load", zap.Error(err))
	}
	for _, p := range plugins {
		if _, exists := app.engine.Plugin(p.Name()); exists {
			app.logger.Warn("script shadows a configured plugin, skipped",
				zap.String("plugin", p.Name()), zap.String("path", p.Path()))
			_ = p.Close()
			continue
		}
		app.engine.Use(p)
	}
	return nil
}

func (b *bootstrapper) initWatcher() error {
	app := b.app
	if !app.opts.Watch || app.opts.ConfigPath == "" {
		return nil
	}
	w, err := config.NewWatcher(app.opts.ConfigPath, app.applyConfig,
		config.WithLogger(logging.Component(app.logger, "config")))
	if err != nil {
		return err
	}
	app.watcher = w
	return nil
}

// cleanup stops started components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(b.initOrder[i])
	}
}

func (b *bootstrapper) cleanupComponent(component string) {
	app := b.app
	switch component {
	case "watcher":
		if app.watcher != nil {
			_ = app.watcher.Close()
			app.watcher = nil
		}
	case "engine":
		// Destroy also tears down plugins, the source and the stage.
		_ = app.engine.Destroy()
		app.engine = nil
	case "input":
		if app.server != nil {
			_ = app.server.Close()
			app.server = nil
		}
		if app.engine == nil {
			_ = app.source.Close()
		}
	case "stage":
		if app.engine == nil {
			app.stage.Destroy()
		}
	case "backend":
		app.backend.Shutdown()
		app.backend = nil
	case "logger":
		if app.closeLog != nil {
			_ = app.closeLog()
			app.closeLog = nil
		}
	}
}
