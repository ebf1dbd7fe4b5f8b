// Package magnetic pulls the cursor target toward the center of the
// hovered element.
package magnetic

import (
	"fmt"
	"time"

	"github.com/dshills/supermouse/internal/option"
	"github.com/dshills/supermouse/internal/plugin"
	"github.com/dshills/supermouse/internal/scene"
	"github.com/dshills/supermouse/internal/state"
)

// Name is the default plugin name.
const Name = "magnetic"

// Priority runs the pull before sticky snapping, so sticky wins when both
// apply to the same element.
const Priority = -20

// Defaults.
const (
	DefaultStrength = 0.3
	DefaultSelector = "[" + state.AttrPrefix + state.AttrMagnetic + "]"
)

// Options configures the pull.
type Options struct {
	// Strength is the fraction of the distance to the center applied each
	// frame, 0 to 1. A numeric supermouse-magnetic value overrides it.
	Strength option.Value[float64]

	// Selector picks the elements that attract. It is also registered as a
	// hover target.
	Selector string
}

// Plugin redirects the target.
type Plugin struct {
	plugin.Base

	opts Options
	sel  scene.Selector
	host plugin.Host
}

// New creates a magnetic plugin.
func New(opts Options) *Plugin {
	if opts.Selector == "" {
		opts.Selector = DefaultSelector
	}
	return &Plugin{
		Base: plugin.NewBase(Name, Priority, plugin.KindLogic),
		opts: opts,
	}
}

// Install implements plugin.Plugin.
func (p *Plugin) Install(h plugin.Host) error {
	sel, err := scene.ParseSelector(p.opts.Selector)
	if err != nil {
		return fmt.Errorf("magnetic selector: %w", err)
	}
	if err := h.RegisterHoverTarget(p.opts.Selector); err != nil {
		return err
	}
	p.sel = sel
	p.host = h
	return nil
}

// Update implements plugin.Plugin.
func (p *Plugin) Update(time.Duration) {
	s := p.host.State()
	el := p.attractor(s)
	if el == nil {
		return
	}
	strength := p.opts.Strength.Resolve(s, DefaultStrength)
	strength = clamp01(s.Attrs.Float(state.AttrMagnetic, strength))

	cx, cy := el.Center()
	s.Target = s.Target.Lerp(state.Point{X: cx, Y: cy}, strength)
}

func (p *Plugin) attractor(s *state.Interaction) *scene.Element {
	if !s.IsHover || s.HoverTarget == nil {
		return nil
	}
	if _, ok := s.Attrs.Get(state.AttrMagnetic); ok && !s.Attrs.Bool(state.AttrMagnetic) {
		return nil
	}
	if el := s.HoverTarget.Closest(p.sel.Match); el != nil {
		return el
	}
	if s.Attrs.Bool(state.AttrMagnetic) {
		return s.HoverTarget
	}
	return nil
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
