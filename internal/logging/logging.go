// Package logging builds the process logger.
//
// The terminal screen owns stderr while the cursor is running, so a log
// file is the usual destination outside of tests.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures the logger.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string
	// Format is "console" or "json".
	Format string
	// File receives the output. Empty means stderr.
	File string
}

// ParseLevel parses a level name. Unknown names are info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a logger from cfg. The returned close function flushes and
// closes the log file.
func New(cfg Config) (*zap.Logger, func() error, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	out := zapcore.Lock(os.Stderr)
	closeFile := func() error { return nil }
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = zapcore.Lock(f)
		closeFile = f.Close
	}

	core := zapcore.NewCore(enc, out, zap.NewAtomicLevelAt(ParseLevel(cfg.Level)))
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	closer := func() error {
		_ = logger.Sync()
		return closeFile()
	}
	return logger, closer, nil
}

// Component returns a child logger tagged with the component name.
func Component(l *zap.Logger, name string) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return l.Named(name).With(zap.String("component", name))
}
