package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrAlreadyRunning indicates Run was called twice.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrUnknownPluginType indicates a plugin type with no builder.
	ErrUnknownPluginType = errors.New("unknown plugin type")
)

// InitError represents a failure to start one component.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// PluginError reports a plugin entry that could not be built.
type PluginError struct {
	Index int    // Position in the plugins list
	Type  string // Declared type
	Err   error  // Underlying error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("plugins[%d] (%s): %v", e.Index, e.Type, e.Err)
}

func (e *PluginError) Unwrap() error {
	return e.Err
}
