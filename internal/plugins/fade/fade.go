// Package fade animates opacity for visual plugins.
package fade

import "time"

// Fader moves an opacity linearly between 0 and 1.
type Fader struct {
	// Duration is the time a full fade takes. Zero fades instantly.
	Duration time.Duration

	opacity float64
}

// New returns a fader starting fully shown or fully hidden.
func New(d time.Duration, shown bool) Fader {
	f := Fader{Duration: d}
	if shown {
		f.opacity = 1
	}
	return f
}

// Step advances the fade toward shown (1) or hidden (0) by dt and returns
// the new opacity. instant jumps straight to the goal, as reduced motion
// requires.
func (f *Fader) Step(dt time.Duration, shown, instant bool) float64 {
	goal := 0.0
	if shown {
		goal = 1
	}
	if instant || f.Duration <= 0 {
		f.opacity = goal
		return f.opacity
	}
	delta := float64(dt) / float64(f.Duration)
	if f.opacity < goal {
		f.opacity = min(goal, f.opacity+delta)
	} else {
		f.opacity = max(goal, f.opacity-delta)
	}
	return f.opacity
}

// Opacity returns the current opacity.
func (f *Fader) Opacity() float64 {
	return f.opacity
}

// Visible reports whether anything should be drawn.
func (f *Fader) Visible() bool {
	return f.opacity > 0
}
