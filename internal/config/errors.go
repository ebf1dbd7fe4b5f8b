package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var (
	// ErrFileNotFound is returned by Load for a path that does not exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrUnknownFormat is returned for anything but .toml, .yaml and .yml.
	ErrUnknownFormat = errors.New("unknown config format")
)

// ParseError is a file that could not be decoded. Line and Column are
// 1-based and zero when the decoder did not report a position.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func newParseError(path string, err error) *ParseError {
	pe := &ParseError{Path: path, Err: err}
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		pe.Line, pe.Column = derr.Position()
		return pe
	}
	// yaml.v3 syntax errors read "yaml: line N: ...".
	if msg, ok := strings.CutPrefix(err.Error(), "yaml: line "); ok {
		_, _ = fmt.Sscanf(msg, "%d", &pe.Line)
	}
	return pe
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError is one rejected setting. Field is the dotted key as it
// appears in the file, for example "engine.smoothing" or "plugins[2].type".
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}
