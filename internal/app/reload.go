package app

import (
	"slices"

	"go.uber.org/zap"

	"github.com/dshills/supermouse/internal/config"
)

// applyConfig takes a reloaded configuration. Engine settings and
// explicit plugin enabled flags apply immediately; anything else waits for
// a restart.
func (app *Application) applyConfig(cfg *config.Config, err error) {
	if err != nil {
		return
	}

	app.mu.Lock()
	old := app.config
	app.config = cfg
	app.mu.Unlock()

	eng := app.engine
	if err := eng.SetSmoothing(cfg.Engine.Smoothing); err != nil {
		app.logger.Warn("smoothing not applied", zap.Error(err))
	}
	eng.SetReducedMotion(cfg.Engine.ReducedMotion)
	if cfg.Engine.Enabled {
		eng.Enable()
	} else {
		eng.Disable()
	}

	for _, pc := range cfg.Plugins {
		if pc.Enabled == nil {
			continue
		}
		name := pc.DisplayName()
		if _, ok := eng.Plugin(name); !ok {
			continue
		}
		if err := eng.SetPluginEnabled(name, *pc.Enabled); err != nil {
			app.logger.Warn("plugin toggle failed", zap.String("plugin", name), zap.Error(err))
		}
	}

	if pending := restartFields(old, cfg); len(pending) > 0 {
		app.logger.Info("some settings apply after restart", zap.Strings("fields", pending))
	}
}

// restartFields lists changed settings that cannot be applied live.
func restartFields(old, cfg *config.Config) []string {
	if old == nil {
		return nil
	}
	var out []string
	check := func(field string, changed bool) {
		if changed {
			out = append(out, field)
		}
	}
	check("engine.fps", old.Engine.FPS != cfg.Engine.FPS)
	check("engine.hide_cursor", old.Engine.HideCursor != cfg.Engine.HideCursor)
	check("engine.fault_limit", old.Engine.FaultLimit != cfg.Engine.FaultLimit)
	check("stage.hover_selectors", !slices.Equal(old.Stage.HoverSelectors, cfg.Stage.HoverSelectors))
	check("stage.native_selectors", !slices.Equal(old.Stage.NativeSelectors, cfg.Stage.NativeSelectors))
	check("logging", old.Logging != cfg.Logging)
	check("input", old.Input != cfg.Input)
	check("scene.file", old.Scene.File != cfg.Scene.File)
	check("scripts", !slices.Equal(old.Scripts.Paths, cfg.Scripts.Paths) || old.Scripts.TimeoutMS != cfg.Scripts.TimeoutMS)
	check("plugins", len(old.Plugins) != len(cfg.Plugins))
	return out
}
