// Package trail draws a fading tail behind the cursor from a fixed pool
// of recent positions.
package trail

import (
	"time"

	"github.com/dshills/supermouse/internal/option"
	"github.com/dshills/supermouse/internal/plugin"
	"github.com/dshills/supermouse/internal/renderer/core"
	"github.com/dshills/supermouse/internal/state"
)

// Name is the default plugin name.
const Name = "trail"

// Defaults.
const (
	DefaultLength = 12
	DefaultGlyph  = '·'
)

// Options configures the trail.
type Options struct {
	// Length is the number of positions kept. It sizes the pool once at
	// construction.
	Length int
	Glyph  option.Value[rune]
	Color  option.Value[core.Color]
}

// Plugin draws the trail.
type Plugin struct {
	plugin.Base

	opts Options
	host plugin.Host

	// points is a ring buffer; head is the next write slot.
	points []state.Point
	head   int
	count  int
}

// New creates a trail plugin.
func New(opts Options) *Plugin {
	if opts.Length <= 0 {
		opts.Length = DefaultLength
	}
	return &Plugin{
		Base:   plugin.NewBase(Name, plugin.PriorityDefault, plugin.KindVisual),
		opts:   opts,
		points: make([]state.Point, opts.Length),
	}
}

// Install implements plugin.Plugin.
func (p *Plugin) Install(h plugin.Host) error {
	p.host = h
	return nil
}

// Len returns the number of stored positions.
func (p *Plugin) Len() int {
	return p.count
}

// Update implements plugin.Plugin. While enabled each frame records the
// smoothed position; while disabled the tail shrinks one point per frame.
// Reduced motion clears it.
func (p *Plugin) Update(time.Duration) {
	s := p.host.State()
	switch {
	case s.ReducedMotion || s.Smooth.IsOffStage():
		p.reset()
		return
	case p.Enabled():
		p.push(s.Smooth)
	default:
		p.drop()
	}
	if p.count == 0 {
		return
	}

	layer := p.host.Stage().Layer()
	glyph := p.opts.Glyph.Resolve(s, DefaultGlyph)
	color := p.opts.Color.Resolve(s, core.ColorMagenta)
	if c, ok := core.ParseColor(s.Attrs.String(state.AttrColor, "")); ok {
		color = c
	}

	// Oldest first so newer points overwrite older ones on shared cells.
	// The newest point sits under the cursor itself and is skipped.
	for i := 0; i < p.count-1; i++ {
		pt := p.at(i)
		opacity := float64(i+1) / float64(p.count)
		x, y := pt.Cell()
		layer.Set(x, y, core.NewStyledCell(glyph, core.NewStyle(color).Faded(opacity)))
	}
}

// at returns the i-th stored point, oldest first.
func (p *Plugin) at(i int) state.Point {
	n := len(p.points)
	return p.points[(p.head-p.count+i+n)%n]
}

func (p *Plugin) push(pt state.Point) {
	if p.count > 0 && p.at(p.count-1) == pt {
		p.drop()
		if p.count == 0 {
			p.points[p.head] = pt
			p.head = (p.head + 1) % len(p.points)
			p.count = 1
		}
		return
	}
	p.points[p.head] = pt
	p.head = (p.head + 1) % len(p.points)
	if p.count < len(p.points) {
		p.count++
	}
}

// drop forgets the oldest point.
func (p *Plugin) drop() {
	if p.count > 0 {
		p.count--
	}
}

func (p *Plugin) reset() {
	p.head, p.count = 0, 0
}

// Destroy implements plugin.Plugin.
func (p *Plugin) Destroy() {
	p.reset()
	p.points = nil
}
