package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config is the complete configuration.
type Config struct {
	Engine  EngineConfig   `toml:"engine" yaml:"engine"`
	Stage   StageConfig    `toml:"stage" yaml:"stage"`
	Logging LoggingConfig  `toml:"logging" yaml:"logging"`
	Input   InputConfig    `toml:"input" yaml:"input"`
	Scene   SceneConfig    `toml:"scene" yaml:"scene"`
	Scripts ScriptsConfig  `toml:"scripts" yaml:"scripts"`
	Plugins []PluginConfig `toml:"plugins" yaml:"plugins"`
}

// EngineConfig configures the frame loop.
type EngineConfig struct {
	// Smoothing is the per-frame interpolation factor in (0, 1].
	Smoothing     float64 `toml:"smoothing" yaml:"smoothing"`
	FPS           int     `toml:"fps" yaml:"fps"`
	ReducedMotion bool    `toml:"reduced_motion" yaml:"reduced_motion"`
	HideCursor    bool    `toml:"hide_cursor" yaml:"hide_cursor"`
	Enabled       bool    `toml:"enabled" yaml:"enabled"`

	// FaultLimit disables a plugin after this many consecutive failed
	// updates. Zero never disables.
	FaultLimit int `toml:"fault_limit" yaml:"fault_limit"`
}

// StageConfig configures hover and native resolution.
type StageConfig struct {
	HoverSelectors  []string `toml:"hover_selectors" yaml:"hover_selectors"`
	NativeSelectors []string `toml:"native_selectors" yaml:"native_selectors"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	// File receives the log. Empty logs to stderr, which the terminal
	// screen hides while running.
	File   string `toml:"file" yaml:"file"`
}

// InputConfig configures pointer sources.
type InputConfig struct {
	// RemoteAddr serves a websocket pointer feed when set, e.g. ":7070".
	RemoteAddr string `toml:"remote_addr" yaml:"remote_addr"`
	// RequireTTY treats a non-terminal stdin as lacking a fine pointer.
	RequireTTY bool   `toml:"require_tty" yaml:"require_tty"`
}

// SceneConfig names the scene to load.
type SceneConfig struct {
	File string `toml:"file" yaml:"file"`
}

// ScriptsConfig configures Lua script plugins.
type ScriptsConfig struct {
	Paths     []string `toml:"paths" yaml:"paths"`
	// TimeoutMS bounds each script hook. Zero uses the runtime default.
	TimeoutMS int      `toml:"timeout_ms" yaml:"timeout_ms"`
}

// Timeout returns TimeoutMS as a duration.
func (s ScriptsConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// PluginConfig declares one built-in plugin. Plugins are registered in
// list order.
type PluginConfig struct {
	Type     string         `toml:"type" yaml:"type"`
	Name     string         `toml:"name" yaml:"name"`
	Priority *int           `toml:"priority" yaml:"priority"`
	Enabled  *bool          `toml:"enabled" yaml:"enabled"`
	Options  map[string]any `toml:"options" yaml:"options"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Smoothing:  0.15,
			FPS:        60,
			HideCursor: true,
			Enabled:    true,
		},
		Stage: StageConfig{
			HoverSelectors: []string{"a", "button", "[supermouse-text]", "[supermouse-state]"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scripts: ScriptsConfig{},
		Plugins: []PluginConfig{
			{Type: "ring"},
			{Type: "dot"},
		},
	}
}

// IsEnabled reports whether the plugin starts enabled. Unset means yes.
func (p PluginConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// DisplayName returns the plugin name, or its type when unnamed.
func (p PluginConfig) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Type
}

// String returns the option key as a string.
func (p PluginConfig) String(key, def string) string {
	if v, ok := p.Options[key].(string); ok {
		return v
	}
	return def
}

// Float returns the option key as a number. Integers and numeric
// strings are accepted.
func (p PluginConfig) Float(key string, def float64) (float64, error) {
	v, ok := p.Options[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return def, fmt.Errorf("option %s: %w", key, err)
		}
		return f, nil
	default:
		return def, fmt.Errorf("option %s: want number, got %T", key, v)
	}
}

// Int returns the option key as an integer.
func (p PluginConfig) Int(key string, def int) (int, error) {
	f, err := p.Float(key, float64(def))
	return int(f), err
}

// Bool returns the option key as a boolean.
func (p PluginConfig) Bool(key string, def bool) (bool, error) {
	v, ok := p.Options[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return def, fmt.Errorf("option %s: want bool, got %T", key, v)
	}
	return b, nil
}

// Duration returns the option key as a duration. Strings use
// time.ParseDuration syntax; numbers are milliseconds.
func (p PluginConfig) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := p.Options[key]
	if !ok {
		return def, nil
	}
	if s, ok := v.(string); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return def, fmt.Errorf("option %s: %w", key, err)
		}
		return d, nil
	}
	ms, err := p.Float(key, 0)
	if err != nil {
		return def, err
	}
	return time.Duration(ms * float64(time.Millisecond)), nil
}

// Strings returns the option key as a list of strings.
func (p PluginConfig) Strings(key string) ([]string, error) {
	v, ok := p.Options[key]
	if !ok {
		return nil, nil
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("option %s: want strings, got %T", key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("option %s: want list, got %T", key, v)
	}
}

// Groups returns the option key as a map of string lists, the shape the
// states plugin uses.
func (p PluginConfig) Groups(key string) (map[string][]string, error) {
	v, ok := p.Options[key]
	if !ok {
		return nil, nil
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("option %s: want table, got %T", key, v)
	}
	out := make(map[string][]string, len(raw))
	for name := range raw {
		sub := PluginConfig{Options: raw}
		list, err := sub.Strings(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[name] = list
	}
	return out, nil
}
