// Package state holds the per-frame interaction state shared by the engine
// and its plugins.
//
// Input writes Pointer, IsDown, IsHover, IsNative, HoverTarget and Attrs.
// The engine resets Target to Pointer at the start of every frame; logic
// plugins may then redirect Target and publish Shape. After plugins run the
// engine derives Smooth and Velocity. Visual plugins read the result, so
// what they draw lags the input by one frame.
package state

import (
	"strconv"
	"strings"

	"github.com/dshills/supermouse/internal/scene"
)

// AttrPrefix is the attribute namespace read off hover targets.
const AttrPrefix = "supermouse-"

// Attribute keys within the namespace, without the prefix.
const (
	AttrState    = "state"
	AttrColor    = "color"
	AttrText     = "text"
	AttrIcon     = "icon"
	AttrStick    = "stick"
	AttrMagnetic = "magnetic"
	AttrIgnore   = "ignore"
)

// Shape is a size override published by a plugin, typically to make the
// cursor wrap a hovered element.
type Shape struct {
	Width        float64
	Height       float64
	BorderRadius float64
}

// Attributes is the open-ended bag read off the hover target's namespace.
// Keys have the namespace prefix stripped.
type Attributes map[string]string

// Get returns the raw value for key.
func (a Attributes) Get(key string) (string, bool) {
	v, ok := a[key]
	return v, ok
}

// String returns the value for key or def when absent or empty.
func (a Attributes) String(key, def string) string {
	if v, ok := a[key]; ok && v != "" {
		return v
	}
	return def
}

// Bool reports whether key is present and not explicitly false.
// A bare attribute with no value counts as true.
func (a Attributes) Bool(key string) bool {
	v, ok := a[key]
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "false", "0", "no", "off":
		return false
	}
	return true
}

// Float parses key as a number, returning def when absent or invalid.
func (a Attributes) Float(key string, def float64) float64 {
	v, ok := a[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// Clone returns an independent copy.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Interaction is the single shared state record for one cursor instance.
type Interaction struct {
	// Pointer is the raw input position.
	Pointer Point
	// Target is the desired position before smoothing.
	Target Point
	// Smooth is the rendered, smoothed position.
	Smooth Point
	// Velocity is Target minus Smooth after smoothing.
	Velocity Point

	IsDown      bool
	IsHover     bool
	IsNative    bool
	HoverTarget *scene.Element

	// Shape is nil unless a plugin overrides the cursor geometry.
	Shape *Shape

	// Attrs holds the namespaced attributes of the hover target.
	Attrs Attributes

	// ReducedMotion forces the smoothing factor to 1.
	ReducedMotion bool
}

// New returns a zeroed interaction state.
func New() *Interaction {
	return &Interaction{Attrs: Attributes{}}
}

// MoveOffStage parks every position at the off-stage sentinel and zeroes
// velocity.
func (s *Interaction) MoveOffStage() {
	s.Pointer = OffStage
	s.Target = OffStage
	s.Smooth = OffStage
	s.Velocity = Point{}
}

// SetHover records a hover enter (el non-nil) or leave (el nil).
func (s *Interaction) SetHover(el *scene.Element, attrs Attributes, native bool) {
	s.HoverTarget = el
	s.IsHover = el != nil
	s.IsNative = native
	if attrs == nil {
		attrs = Attributes{}
	}
	s.Attrs = attrs
}

// Snapshot returns a copy safe to read without the engine lock.
func (s *Interaction) Snapshot() Interaction {
	c := *s
	c.Attrs = s.Attrs.Clone()
	if s.Shape != nil {
		shape := *s.Shape
		c.Shape = &shape
	}
	return c
}

// ReadAttributes collects the namespaced attributes of el and its
// ancestors. The nearest element wins for each key.
func ReadAttributes(el *scene.Element) Attributes {
	attrs := Attributes{}
	for e := el; e != nil; e = e.Parent() {
		for k, v := range e.Attrs {
			key, ok := strings.CutPrefix(k, AttrPrefix)
			if !ok || key == "" {
				continue
			}
			if _, seen := attrs[key]; !seen {
				attrs[key] = v
			}
		}
	}
	return attrs
}
