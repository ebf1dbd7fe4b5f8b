// Package config loads the supermouse configuration.
//
// Configuration comes from three places, later ones overriding earlier:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file, chosen by extension
//  3. SUPERMOUSE_* environment variables
//
// The result is validated before it is returned. A Watcher reloads the
// file when it changes so the running engine can pick up new settings.
//
// # Basic Usage
//
//	cfg, err := config.Load(config.Find())
//	if err != nil {
//	    return err
//	}
//
//	w, err := config.NewWatcher(path, func(cfg *config.Config, err error) {
//	    // apply cfg
//	})
package config
