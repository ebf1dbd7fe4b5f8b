package plugin

import (
	"go.uber.org/zap"

	"github.com/dshills/supermouse/internal/stage"
	"github.com/dshills/supermouse/internal/state"
)

// Host is the surface a plugin sees from inside its hooks. Hooks run on
// the frame loop, so Host methods must never be called from another
// goroutine.
type Host interface {
	// State returns the shared interaction state.
	State() *state.Interaction

	// Stage returns the drawing surface.
	Stage() *stage.Stage

	// RegisterHoverTarget adds a hover selector pattern to the stage.
	RegisterHoverTarget(pattern string) error

	// Plugin looks up another plugin by name.
	Plugin(name string) (Plugin, bool)

	// SetEnabled enables or disables another plugin by name.
	SetEnabled(name string, enabled bool) error

	// IsEnabled reports whether the named plugin is enabled.
	IsEnabled(name string) bool

	// Logger returns a logger scoped to the calling plugin.
	Logger() *zap.Logger
}

// scopedHost gives each plugin a logger carrying its name.
type scopedHost struct {
	Host
	logger *zap.Logger
}

func (h *scopedHost) Logger() *zap.Logger {
	return h.logger
}
