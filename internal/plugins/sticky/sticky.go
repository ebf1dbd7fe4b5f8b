// Package sticky snaps the cursor to the center of the hovered element and
// publishes the element's outline as the cursor shape.
package sticky

import (
	"fmt"
	"time"

	"github.com/dshills/supermouse/internal/option"
	"github.com/dshills/supermouse/internal/plugin"
	"github.com/dshills/supermouse/internal/scene"
	"github.com/dshills/supermouse/internal/state"
)

// Name is the default plugin name.
const Name = "sticky"

// Priority runs after magnetic so the snap overrides the pull.
const Priority = -10

// Defaults.
const (
	DefaultPadding  = 1.0
	DefaultSelector = "[" + state.AttrPrefix + state.AttrStick + "]"
)

// Options configures snapping.
type Options struct {
	// Padding grows the published shape on every side, in cells.
	Padding option.Value[float64]

	// Selector picks the elements to stick to. It is also registered as a
	// hover target.
	Selector string
}

// Plugin redirects the target and publishes a shape.
type Plugin struct {
	plugin.Base

	opts Options
	sel  scene.Selector
	host plugin.Host

	// shape is the override this plugin last published. It is cleared only
	// while it is still the current one.
	shape *state.Shape
}

// New creates a sticky plugin.
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
		return fmt.Errorf("sticky selector: %w", err)
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
	el := p.anchor(s)
	if el == nil {
		p.release(s)
		return
	}

	cx, cy := el.Center()
	s.Target = state.Point{X: cx, Y: cy}

	pad := p.opts.Padding.Resolve(s, DefaultPadding)
	p.shape = &state.Shape{
		Width:        float64(el.Rect.Width()) + 2*pad,
		Height:       float64(el.Rect.Height()) + 2*pad,
		BorderRadius: pad,
	}
	s.Shape = p.shape
}

// OnDisable implements plugin.Plugin.
func (p *Plugin) OnDisable() {
	if p.host != nil {
		p.release(p.host.State())
	}
}

// Destroy implements plugin.Plugin.
func (p *Plugin) Destroy() {
	p.OnDisable()
}

// Stuck reports whether the plugin currently owns the shape override.
func (p *Plugin) Stuck() bool {
	return p.shape != nil
}

func (p *Plugin) anchor(s *state.Interaction) *scene.Element {
	if !s.IsHover || s.HoverTarget == nil {
		return nil
	}
	if _, ok := s.Attrs.Get(state.AttrStick); ok && !s.Attrs.Bool(state.AttrStick) {
		return nil
	}
	if el := s.HoverTarget.Closest(p.sel.Match); el != nil {
		return el
	}
	if s.Attrs.Bool(state.AttrStick) {
		return s.HoverTarget
	}
	return nil
}

func (p *Plugin) release(s *state.Interaction) {
	if p.shape != nil && s.Shape == p.shape {
		s.Shape = nil
	}
	p.shape = nil
}
