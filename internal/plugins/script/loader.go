package script

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Info describes a discovered script.
type Info struct {
	// Name is the file name without .lua, or the directory name for
	// directory scripts.
	Name string
	Path string
}

// Loader discovers scripts in a list of directories. A directory holds
// single-file scripts (name.lua) and directory scripts (name/init.lua).
// When a name appears in more than one directory the first one wins.
type Loader struct {
	paths []string
}

// NewLoader creates a loader over paths. Missing directories are skipped.
func NewLoader(paths ...string) *Loader {
	return &Loader{paths: paths}
}

// DefaultPaths returns the user and project script directories.
func DefaultPaths() []string {
	paths := make([]string, 0, 2)
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "supermouse", "scripts"))
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".supermouse", "scripts"))
	}
	return paths
}

// Paths returns the search paths.
func (l *Loader) Paths() []string {
	return slices.Clone(l.paths)
}

// Discover lists the scripts in the search paths sorted by name.
func (l *Loader) Discover() ([]Info, error) {
	found := make(map[string]Info)
	var errs []error
	for _, dir := range l.paths {
		if err := discoverIn(dir, found); err != nil {
			errs = append(errs, err)
		}
	}

	out := make([]Info, 0, len(found))
	for _, info := range found {
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return out, errors.Join(errs...)
}

func discoverIn(dir string, found map[string]Info) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("scan scripts: %w", err)
	}

	for _, entry := range entries {
		var info Info
		switch {
		case entry.IsDir():
			initPath := filepath.Join(dir, entry.Name(), "init.lua")
			if _, err := os.Stat(initPath); err != nil {
				continue
			}
			info = Info{Name: entry.Name(), Path: initPath}
		case filepath.Ext(entry.Name()) == ".lua":
			info = Info{
				Name: strings.TrimSuffix(entry.Name(), ".lua"),
				Path: filepath.Join(dir, entry.Name()),
			}
		default:
			continue
		}
		if _, exists := found[info.Name]; !exists {
			found[info.Name] = info
		}
	}
	return nil
}

// LoadAll discovers and loads every script. Scripts that fail to load are
// reported in the joined error and left out.
func (l *Loader) LoadAll(opts Options) ([]*Plugin, error) {
	infos, err := l.Discover()
	errs := []error{err}

	plugins := make([]*Plugin, 0, len(infos))
	for _, info := range infos {
		o := opts
		o.Name = info.Name
		p, err := Load(info.Path, o)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		plugins = append(plugins, p)
	}
	return plugins, errors.Join(errs...)
}
