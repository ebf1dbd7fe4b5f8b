package config

import (
	"errors"
	"fmt"
)

// Validate checks every setting and returns all problems joined, each a
// *ValidationError.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Engine.Smoothing <= 0 || c.Engine.Smoothing > 1 {
		add("engine.smoothing", "must be in (0, 1], got %g", c.Engine.Smoothing)
	}
	if c.Engine.FPS < 1 || c.Engine.FPS > 240 {
		add("engine.fps", "must be between 1 and 240, got %d", c.Engine.FPS)
	}
	if c.Engine.FaultLimit < 0 {
		add("engine.fault_limit", "must not be negative")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		add("logging.level", "unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		add("logging.format", "unknown format %q", c.Logging.Format)
	}

	if c.Scripts.TimeoutMS < 0 {
		add("scripts.timeout_ms", "must not be negative")
	}

	seen := make(map[string]bool, len(c.Plugins))
	for i, p := range c.Plugins {
		field := fmt.Sprintf("plugins[%d]", i)
		if p.Type == "" {
			add(field+".type", "is required")
			continue
		}
		name := p.DisplayName()
		if seen[name] {
			add(field+".name", "duplicate plugin name %q", name)
		}
		seen[name] = true
	}

	return errors.Join(errs...)
}
