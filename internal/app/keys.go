package app

import (
	"go.uber.org/zap"

	"github.com/dshills/supermouse/internal/renderer/backend"
)

// handleKey reacts to keys the input source does not consume:
//
//	q, Esc, Ctrl-C  quit
//	e               toggle the cursor
//	r               toggle reduced motion
func (app *Application) handleKey(ev backend.Event) {
	switch ev.Key {
	case backend.KeyCtrlC, backend.KeyEscape:
		app.Shutdown()
		return
	case backend.KeyRune:
	default:
		return
	}

	switch ev.Rune {
	case 'q':
		app.Shutdown()
	case 'e':
		if app.engine.IsEnabled() {
			app.engine.Disable()
		} else {
			app.engine.Enable()
		}
	case 'r':
		on := !app.engine.Snapshot().ReducedMotion
		app.engine.SetReducedMotion(on)
		app.logger.Info("reduced motion toggled", zap.Bool("on", on))
	}
}
