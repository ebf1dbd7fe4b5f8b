package plugin

import (
	"errors"
	"fmt"
)

// Plugin system errors.
var (
	// ErrPluginNotFound is returned when no plugin has the given name.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrAlreadyRegistered is returned when a plugin name is already in use.
	ErrAlreadyRegistered = errors.New("plugin is already registered")

	// ErrNotInstalled is returned for plugins that are still installing
	// or have been destroyed.
	ErrNotInstalled = errors.New("plugin is not installed")

	// ErrInvalidPlugin is returned when plugin validation fails.
	ErrInvalidPlugin = errors.New("invalid plugin")

	// ErrPanic wraps a value recovered from a panicking hook.
	ErrPanic = errors.New("plugin hook panicked")
)

// Hook names a lifecycle hook.
type Hook string

// Lifecycle hooks.
const (
	HookInstall Hook = "install"
	HookUpdate  Hook = "update"
	HookEnable  Hook = "onEnable"
	HookDisable Hook = "onDisable"
	HookDestroy Hook = "destroy"
)

// HookError reports a failure inside a plugin hook.
type HookError struct {
	Plugin string
	Hook   Hook
	Err    error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("plugin %q %s: %v", e.Plugin, e.Hook, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}
