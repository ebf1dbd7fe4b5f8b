package app

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dshills/supermouse/internal/config"
	"github.com/dshills/supermouse/internal/option"
	"github.com/dshills/supermouse/internal/plugin"
	"github.com/dshills/supermouse/internal/plugins/dot"
	"github.com/dshills/supermouse/internal/plugins/magnetic"
	"github.com/dshills/supermouse/internal/plugins/ring"
	"github.com/dshills/supermouse/internal/plugins/script"
	"github.com/dshills/supermouse/internal/plugins/states"
	"github.com/dshills/supermouse/internal/plugins/sticky"
	"github.com/dshills/supermouse/internal/plugins/text"
	"github.com/dshills/supermouse/internal/plugins/trail"
	"github.com/dshills/supermouse/internal/renderer/core"
	"github.com/dshills/supermouse/internal/state"
)

// Builder creates a plugin from its configuration entry.
type Builder func(pc config.PluginConfig) (plugin.Plugin, error)

// Factory builds plugins by type name.
type Factory struct {
	builders map[string]Builder
}

// NewFactory returns a factory for the built-in plugin types. Script
// plugins loaded through it use scriptTimeout.
func NewFactory(scriptTimeout time.Duration) *Factory {
	f := &Factory{builders: make(map[string]Builder)}
	f.Register(dot.Name, buildDot)
	f.Register(ring.Name, buildRing)
	f.Register(trail.Name, buildTrail)
	f.Register(text.Name, buildText)
	f.Register(magnetic.Name, buildMagnetic)
	f.Register(sticky.Name, buildSticky)
	f.Register(states.Name, buildStates)
	f.Register("script", func(pc config.PluginConfig) (plugin.Plugin, error) {
		path := pc.String("path", "")
		if path == "" {
			return nil, fmt.Errorf("option path is required")
		}
		settings := make(map[string]any, len(pc.Options))
		for k, v := range pc.Options {
			if k != "path" {
				settings[k] = v
			}
		}
		return script.Load(path, script.Options{Name: pc.Name, Timeout: scriptTimeout, Settings: settings})
	})
	return f
}

// Register adds or replaces the builder for typ.
func (f *Factory) Register(typ string, b Builder) {
	f.builders[typ] = b
}

// Types returns the known type names.
func (f *Factory) Types() []string {
	out := make([]string, 0, len(f.builders))
	for t := range f.builders {
		out = append(out, t)
	}
	return out
}

// Build creates the plugin for pc and applies its name, priority and
// enabled settings.
func (f *Factory) Build(pc config.PluginConfig) (plugin.Plugin, error) {
	b, ok := f.builders[pc.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPluginType, pc.Type)
	}
	p, err := b(pc)
	if err != nil {
		return nil, err
	}
	plugin.Configure(p, pc.Name, pc.Priority, pc.Enabled)
	return p, nil
}

func buildDot(pc config.PluginConfig) (plugin.Plugin, error) {
	var opts dot.Options
	var err error
	if opts.Glyph, err = glyphOption(pc, "glyph"); err != nil {
		return nil, err
	}
	if opts.Color, err = colorOption(pc, "color"); err != nil {
		return nil, err
	}
	if _, ok := pc.Options["directional"]; ok {
		b, err := pc.Bool("directional", false)
		if err != nil {
			return nil, err
		}
		opts.Directional = option.Const(b)
	}
	if opts.Fade, err = pc.Duration("fade", 0); err != nil {
		return nil, err
	}
	return dot.New(opts), nil
}

func buildRing(pc config.PluginConfig) (plugin.Plugin, error) {
	var opts ring.Options
	var err error
	if opts.Size, err = floatOption(pc, "size"); err != nil {
		return nil, err
	}
	if opts.HoverSize, err = floatOption(pc, "hover_size"); err != nil {
		return nil, err
	}
	if opts.Color, err = colorOption(pc, "color"); err != nil {
		return nil, err
	}
	if opts.Pulse, err = pc.Duration("pulse", 0); err != nil {
		return nil, err
	}
	if opts.Fade, err = pc.Duration("fade", 0); err != nil {
		return nil, err
	}
	return ring.New(opts), nil
}

func buildTrail(pc config.PluginConfig) (plugin.Plugin, error) {
	var opts trail.Options
	var err error
	if opts.Length, err = pc.Int("length", trail.DefaultLength); err != nil {
		return nil, err
	}
	if opts.Glyph, err = glyphOption(pc, "glyph"); err != nil {
		return nil, err
	}
	if opts.Color, err = colorOption(pc, "color"); err != nil {
		return nil, err
	}
	return trail.New(opts), nil
}

func buildText(pc config.PluginConfig) (plugin.Plugin, error) {
	var opts text.Options
	var err error
	if _, ok := pc.Options["offset_x"]; ok {
		x, err := pc.Float("offset_x", 0)
		if err != nil {
			return nil, err
		}
		y, err := pc.Float("offset_y", 0)
		if err != nil {
			return nil, err
		}
		opts.Offset = option.Const(state.Point{X: x, Y: y})
	}
	if opts.Color, err = colorOption(pc, "color"); err != nil {
		return nil, err
	}
	if opts.Fade, err = pc.Duration("fade", 0); err != nil {
		return nil, err
	}
	return text.New(opts), nil
}

func buildMagnetic(pc config.PluginConfig) (plugin.Plugin, error) {
	strength, err := floatOption(pc, "strength")
	if err != nil {
		return nil, err
	}
	return magnetic.New(magnetic.Options{
		Strength: strength,
		Selector: pc.String("selector", ""),
	}), nil
}

func buildSticky(pc config.PluginConfig) (plugin.Plugin, error) {
	padding, err := floatOption(pc, "padding")
	if err != nil {
		return nil, err
	}
	return sticky.New(sticky.Options{
		Padding:  padding,
		Selector: pc.String("selector", ""),
	}), nil
}

func buildStates(pc config.PluginConfig) (plugin.Plugin, error) {
	def, err := pc.Strings("default")
	if err != nil {
		return nil, err
	}
	groups, err := pc.Groups("states")
	if err != nil {
		return nil, err
	}
	return states.New(states.Options{
		Default: def,
		States:  groups,
		Attr:    pc.String("attr", ""),
	}), nil
}

// floatOption returns an unset value when key is absent.
func floatOption(pc config.PluginConfig, key string) (option.Value[float64], error) {
	if _, ok := pc.Options[key]; !ok {
		return option.Value[float64]{}, nil
	}
	f, err := pc.Float(key, 0)
	if err != nil {
		return option.Value[float64]{}, err
	}
	return option.Const(f), nil
}

func colorOption(pc config.PluginConfig, key string) (option.Value[core.Color], error) {
	s := pc.String(key, "")
	if s == "" {
		return option.Value[core.Color]{}, nil
	}
	c, ok := core.ParseColor(s)
	if !ok {
		return option.Value[core.Color]{}, fmt.Errorf("option %s: unknown color %q", key, s)
	}
	return option.Const(c), nil
}

func glyphOption(pc config.PluginConfig, key string) (option.Value[rune], error) {
	s := pc.String(key, "")
	if s == "" {
		return option.Value[rune]{}, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return option.Value[rune]{}, fmt.Errorf("option %s: want a single character, got %q", key, s)
	}
	return option.Const(r), nil
}
