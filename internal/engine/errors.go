package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrNoInput indicates the engine was created without an input source.
	ErrNoInput = errors.New("engine: no input source")

	// ErrNoStage indicates the engine was created without a stage.
	ErrNoStage = errors.New("engine: no stage")

	// ErrInvalidSmoothing indicates a smoothing factor outside (0, 1].
	ErrInvalidSmoothing = errors.New("engine: smoothing must be in (0, 1]")

	// ErrStopped indicates an operation on a destroyed engine.
	ErrStopped = errors.New("engine: stopped")
)
