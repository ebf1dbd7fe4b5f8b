package engine

import (
	"go.uber.org/zap"
)

// Default configuration values.
const (
	DefaultSmoothing = 0.15
	DefaultFPS       = 60
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithSmoothing sets the per-frame interpolation factor in (0, 1].
// A factor of 1 disables smoothing.
func WithSmoothing(f float64) Option {
	return func(e *Engine) {
		e.smoothing = f
	}
}

// WithReducedMotion starts the engine with reduced motion set.
func WithReducedMotion(on bool) Option {
	return func(e *Engine) {
		e.state.ReducedMotion = on
	}
}

// WithHideCursor controls whether the native cursor is hidden while the
// custom cursor is shown. Defaults to true.
func WithHideCursor(hide bool) Option {
	return func(e *Engine) {
		e.hideCursor = hide
	}
}

// WithDisabled starts the engine disabled.
func WithDisabled() Option {
	return func(e *Engine) {
		e.userEnabled = false
	}
}

// WithScheduler sets the frame scheduler. Defaults to a ticker at
// DefaultFPS.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// WithFPS sets the frame rate of the default ticker scheduler.
func WithFPS(fps int) Option {
	return func(e *Engine) {
		if fps > 0 {
			e.fps = fps
		}
	}
}

// WithFaultLimit disables a plugin after n consecutive failed updates.
func WithFaultLimit(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.faultLimit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
