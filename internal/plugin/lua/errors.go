package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrTimeout is returned when a call runs past the execution timeout.
	ErrTimeout = errors.New("lua execution timeout")

	// ErrNotFunction is returned when calling a value that is not a function.
	ErrNotFunction = errors.New("lua value is not a function")
)
