// Package dot draws a single glyph at the smoothed cursor position.
package dot

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
const Name = "dot"

// Default glyph and direction threshold.
const (
	DefaultGlyph = '●'

	// directionalSpeed is the velocity, in cells per frame, above which
	// the dot turns into an arrow.
	directionalSpeed = 1.5
)

// arrows indexed by octant, clockwise from east with y pointing down.
var arrows = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

// Options configures the dot.
type Options struct {
	Glyph       option.Value[rune]
	Color       option.Value[core.Color]
	Directional option.Value[bool]
	Fade        time.Duration
}

// Plugin draws the dot.
type Plugin struct {
	plugin.Base

	opts Options
	host plugin.Host
	fade fade.Fader
}

// New creates a dot plugin.
func New(opts Options) *Plugin {
	return &Plugin{
		Base: plugin.NewBase(Name, plugin.PriorityDefault, plugin.KindVisual),
		opts: opts,
	}
}

// Install implements plugin.Plugin.
func (p *Plugin) Install(h plugin.Host) error {
	p.host = h
	p.fade = fade.New(p.opts.Fade, !p.StartDisabled)
	return nil
}

// Update implements plugin.Plugin.
func (p *Plugin) Update(dt time.Duration) {
	s := p.host.State()
	opacity := p.fade.Step(dt, p.Enabled(), s.ReducedMotion)
	if opacity <= 0 || s.Smooth.IsOffStage() {
		return
	}

	glyph := p.opts.Glyph.Resolve(s, DefaultGlyph)
	if p.opts.Directional.Resolve(s, true) && !s.ReducedMotion {
		if a, ok := Arrow(s.Velocity); ok {
			glyph = a
		}
	}
	color := p.opts.Color.Resolve(s, core.ColorWhite)
	if c, ok := core.ParseColor(s.Attrs.String(state.AttrColor, "")); ok {
		color = c
	}

	x, y := s.Smooth.Cell()
	p.host.Stage().Layer().Set(x, y, core.NewStyledCell(glyph, core.NewStyle(color).Faded(opacity)))
}

// Arrow returns the arrow glyph pointing along v, or false when v is too
// slow to have a direction.
func Arrow(v state.Point) (rune, bool) {
	if v.Len() < directionalSpeed {
		return 0, false
	}
	angle := math.Atan2(v.Y, v.X)
	octant := int(math.Round(angle/(math.Pi/4))+8) % 8
	return arrows[octant], true
}
