// Package text draws a label beside the cursor from the hover target's
// text and icon attributes.
package text

import (
	"math"
	"time"

	"github.com/dshills/supermouse/internal/option"
	"github.com/dshills/supermouse/internal/plugin"
	"github.com/dshills/supermouse/internal/plugins/fade"
	"github.com/dshills/supermouse/internal/renderer/core"
	"github.com/dshills/supermouse/internal/state"
)

// Name is the default plugin name.
const Name = "text"

// Options configures the label.
type Options struct {
	// Offset places the label relative to the cursor, in cells.
	Offset option.Value[state.Point]
	Color  option.Value[core.Color]
	Fade   time.Duration
}

// Plugin draws the label.
type Plugin struct {
	plugin.Base

	opts Options
	host plugin.Host
	fade fade.Fader

	// label is kept after the hover ends so it can fade out.
	label string
}

// New creates a text plugin.
func New(opts Options) *Plugin {
	return &Plugin{
		Base: plugin.NewBase(Name, plugin.PriorityDefault, plugin.KindVisual),
		opts: opts,
	}
}

// Install implements plugin.Plugin.
func (p *Plugin) Install(h plugin.Host) error {
	p.host = h
	p.fade = fade.New(p.opts.Fade, false)
	return nil
}

// Label composes the label for attrs: the icon, a space, then the text.
func Label(attrs state.Attributes) string {
	icon := attrs.String(state.AttrIcon, "")
	txt := attrs.String(state.AttrText, "")
	switch {
	case icon == "":
		return txt
	case txt == "":
		return icon
	default:
		return icon + " " + txt
	}
}

// Update implements plugin.Plugin.
func (p *Plugin) Update(dt time.Duration) {
	s := p.host.State()
	current := ""
	if s.IsHover {
		current = Label(s.Attrs)
	}
	if current != "" {
		p.label = current
	}

	opacity := p.fade.Step(dt, p.Enabled() && current != "", s.ReducedMotion)
	if opacity <= 0 || p.label == "" || s.Smooth.IsOffStage() {
		return
	}

	layer := p.host.Stage().Layer()
	width, _ := layer.Size()
	off := p.opts.Offset.Resolve(s, state.Point{X: 2, Y: 0})
	labelWidth := core.StringWidth(p.label)

	x := int(math.Round(s.Smooth.X + off.X))
	y := int(math.Round(s.Smooth.Y + off.Y))
	if x+labelWidth > width {
		// Flip to the left of the cursor when it would run off stage.
		x = int(math.Round(s.Smooth.X-off.X)) - labelWidth + 1
	}

	color := p.opts.Color.Resolve(s, core.ColorWhite)
	if c, ok := core.ParseColor(s.Attrs.String(state.AttrColor, "")); ok {
		color = c
	}
	layer.Text(x, y, p.label, core.NewStyle(color).Faded(opacity))
}
