// Package main is the entry point for supermouse, an animated terminal
// cursor.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dshills/supermouse/internal/app"
	"github.com/dshills/supermouse/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, envFile := parseFlags()

	// A missing .env is normal; an explicit one must load.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: loading %s: %v\n", envFile, err)
			return 1
		}
	} else {
		_ = godotenv.Load()
	}

	if opts.ConfigPath == "" {
		opts.ConfigPath = config.Find()
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (app.Options, string) {
	var opts app.Options
	var envFile string
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml or .yaml)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.ScenePath, "scene", "", "Path to a YAML scene")
	flag.StringVar(&opts.ScenePath, "s", "", "Path to a YAML scene (shorthand)")
	flag.StringVar(&envFile, "env", "", "Load environment variables from this file")
	flag.BoolVar(&opts.Watch, "watch", true, "Reload the configuration file when it changes")
	flag.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&opts.Debug, "d", false, "Enable debug logging (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "supermouse - animated cursor for the terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: supermouse [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  q, Esc, Ctrl-C   quit\n")
		fmt.Fprintf(os.Stderr, "  e                toggle the cursor\n")
		fmt.Fprintf(os.Stderr, "  r                toggle reduced motion\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  SUPERMOUSE_SMOOTHING, SUPERMOUSE_FPS, SUPERMOUSE_LOG_LEVEL, ...\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("supermouse %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return opts, envFile
}
