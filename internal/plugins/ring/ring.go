// Package ring draws an outline around the cursor. The outline follows a
// published shape override when one exists, grows while hovering and
// pulses briefly on press.
package ring

import (
	"math"
	"sync"
	"time"

	"github.com/dshills/supermouse/internal/option"
	"github.com/dshills/supermouse/internal/plugin"
	"github.com/dshills/supermouse/internal/plugins/fade"
	"github.com/dshills/supermouse/internal/renderer/core"
	"github.com/dshills/supermouse/internal/state"
)

// Name is the default plugin name.
const Name = "ring"

// Defaults.
const (
	DefaultSize      = 3.0
	DefaultHoverSize = 5.0
	DefaultPulse     = 150 * time.Millisecond
	DefaultGlyph     = '○'
)

// Options configures the ring.
type Options struct {
	// Size is the ring width in cells. Height is half of it, since
	// terminal cells are about twice as tall as wide.
	Size      option.Value[float64]
	HoverSize option.Value[float64]
	Color     option.Value[core.Color]

	// Pulse is how long the ring stays enlarged after a press.
	Pulse time.Duration
	Fade  time.Duration
}

// Plugin draws the ring.
type Plugin struct {
	plugin.Base

	opts    Options
	host    plugin.Host
	fade    fade.Fader
	wasDown bool

	mu      sync.Mutex
	pulsing bool
	timer   *time.Timer
}

// New creates a ring plugin.
func New(opts Options) *Plugin {
	if opts.Pulse == 0 {
		opts.Pulse = DefaultPulse
	}
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
	if s.IsDown && !p.wasDown && p.Enabled() {
		p.startPulse()
	}
	p.wasDown = s.IsDown

	opacity := p.fade.Step(dt, p.Enabled(), s.ReducedMotion)
	if opacity <= 0 || s.Smooth.IsOffStage() {
		return
	}

	rect := p.Rect(s)
	color := p.opts.Color.Resolve(s, core.ColorCyan)
	if c, ok := core.ParseColor(s.Attrs.String(state.AttrColor, "")); ok {
		color = c
	}
	p.host.Stage().Layer().Box(rect, core.NewStyle(color).Faded(opacity), DefaultGlyph)
}

// Rect returns the cells the ring covers for state s.
func (p *Plugin) Rect(s *state.Interaction) core.ScreenRect {
	var w, h float64
	if s.Shape != nil {
		w, h = s.Shape.Width, s.Shape.Height
	} else {
		size := p.opts.Size.Resolve(s, DefaultSize)
		if s.IsHover {
			size = p.opts.HoverSize.Resolve(s, DefaultHoverSize)
		}
		if p.Pulsing() && !s.ReducedMotion {
			size += 2
		}
		w, h = size, math.Max(1, math.Round(size/2))
	}
	return core.RectAround(s.Smooth.X, s.Smooth.Y, w, h)
}

// Pulsing reports whether a press pulse is in progress.
func (p *Plugin) Pulsing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pulsing
}

func (p *Plugin) startPulse() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.pulsing = true
	p.timer = time.AfterFunc(p.opts.Pulse, func() {
		p.mu.Lock()
		p.pulsing = false
		p.mu.Unlock()
	})
}

func (p *Plugin) clearPulse() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.pulsing = false
}

// OnDisable implements plugin.Plugin.
func (p *Plugin) OnDisable() {
	p.clearPulse()
}

// Destroy implements plugin.Plugin.
func (p *Plugin) Destroy() {
	p.clearPulse()
}
