package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SUPERMOUSE_"

// LookupFunc reads one environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envBinding struct {
	key   string
	apply func(c *Config, v string) error
}

var envBindings = []envBinding{
	{"SMOOTHING", func(c *Config, v string) error { return parseFloat(v, &c.Engine.Smoothing) }},
	{"FPS", func(c *Config, v string) error { return parseInt(v, &c.Engine.FPS) }},
	{"FAULT_LIMIT", func(c *Config, v string) error { return parseInt(v, &c.Engine.FaultLimit) }},
	{"REDUCED_MOTION", func(c *Config, v string) error { return parseBool(v, &c.Engine.ReducedMotion) }},
	{"HIDE_CURSOR", func(c *Config, v string) error { return parseBool(v, &c.Engine.HideCursor) }},
	{"ENABLED", func(c *Config, v string) error { return parseBool(v, &c.Engine.Enabled) }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.Logging.Level = strings.ToLower(v); return nil }},
	{"LOG_FORMAT", func(c *Config, v string) error { c.Logging.Format = strings.ToLower(v); return nil }},
	{"LOG_FILE", func(c *Config, v string) error { c.Logging.File = v; return nil }},
	{"REMOTE_ADDR", func(c *Config, v string) error { c.Input.RemoteAddr = v; return nil }},
	{"SCENE", func(c *Config, v string) error { c.Scene.File = v; return nil }},
	{"SCRIPT_PATHS", func(c *Config, v string) error {
		c.Scripts.Paths = filepath.SplitList(v)
		return nil
	}},
}

// ApplyEnv overrides settings from SUPERMOUSE_* variables read through
// lookup. Empty values are ignored.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, b := range envBindings {
		v, ok := lookup(EnvPrefix + b.key)
		if !ok || v == "" {
			continue
		}
		if err := b.apply(c, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, b.key, err)
		}
	}
	return nil
}

func parseFloat(s string, dst *float64) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

func parseInt(s string, dst *int) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseBool(s string, dst *bool) error {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	default:
		return fmt.Errorf("invalid boolean %q", s)
	}
	return nil
}
