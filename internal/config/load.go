package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file format.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Load builds the configuration from defaults, the file at path (skipped
// when path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		format, err := FormatOf(path)
		if err != nil {
			return nil, err
		}
		if err := decode(cfg, path, format, data); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data over the defaults without reading the environment.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := Default()
	if err := decode(cfg, "<"+string(format)+">", format, data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays data on cfg. Lists the data leaves out keep their
// defaults; lists it sets replace them.
func decode(cfg *Config, source string, format Format, data []byte) error {
	plugins, hover := cfg.Plugins, cfg.Stage.HoverSelectors
	cfg.Plugins, cfg.Stage.HoverSelectors = nil, nil

	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, cfg)
	case FormatYAML:
		err = yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return newParseError(source, err)
	}

	if cfg.Plugins == nil {
		cfg.Plugins = plugins
	}
	if cfg.Stage.HoverSelectors == nil {
		cfg.Stage.HoverSelectors = hover
	}
	return nil
}

// SearchPaths returns the locations Find checks, in order.
func SearchPaths() []string {
	var dirs []string
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, filepath.Join(cwd, ".supermouse"))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, "supermouse"))
	}

	var paths []string
	for _, dir := range dirs {
		for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths
}

// Find returns the first existing file from SearchPaths, or "" when there
// is none.
func Find() string {
	for _, p := range SearchPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
