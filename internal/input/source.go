// Package input provides pointer sources for the cursor engine.
//
// A Source delivers pointer movement, button edges, hover changes and a
// capability signal to a Listener. Sources call the listener from their
// own goroutine.
package input

import (
	"errors"

	"github.com/dshills/supermouse/internal/scene"
	"github.com/dshills/supermouse/internal/state"
)

// Input errors.
var (
	// ErrAlreadyStarted is returned by Start on a running source.
	ErrAlreadyStarted = errors.New("input: source already started")

	// ErrClosed is returned by operations on a closed source.
	ErrClosed = errors.New("input: source closed")

	// ErrNilListener is returned when Start is given no listener.
	ErrNilListener = errors.New("input: nil listener")
)

// Listener receives input from a Source.
type Listener interface {
	// OnMove reports the pointer position in stage coordinates.
	OnMove(x, y float64)

	// OnButton reports a primary button edge.
	OnButton(down bool)

	// OnHover reports a hover target change. el is nil on leave.
	OnHover(el *scene.Element, attrs state.Attributes, native bool)

	// OnCapability reports whether a fine pointer is available.
	OnCapability(enabled bool)
}

// Source is a pointer input feed.
type Source interface {
	// Start begins delivering events to l. It may be called once.
	Start(l Listener) error

	// Enabled reports the current capability.
	Enabled() bool

	// Close stops delivery. It is safe to call more than once.
	Close() error
}

// Resolver maps a cell to its hover target.
type Resolver interface {
	Resolve(x, y int) (hover *scene.Element, native bool)
}

// hoverTracker reports hover changes only when the resolved target or its
// native flag differs from the last one reported.
type hoverTracker struct {
	resolver Resolver
	current  *scene.Element
	native   bool
}

// update resolves (x, y) and calls l.OnHover if the result changed.
func (h *hoverTracker) update(l Listener, x, y int) {
	if h.resolver == nil {
		return
	}
	el, native := h.resolver.Resolve(x, y)
	h.set(l, el, native)
}

func (h *hoverTracker) set(l Listener, el *scene.Element, native bool) {
	if el == h.current && native == h.native {
		return
	}
	h.current, h.native = el, native
	var attrs state.Attributes
	if el != nil {
		attrs = state.ReadAttributes(el)
	}
	l.OnHover(el, attrs, native)
}

// leave clears the hover target.
func (h *hoverTracker) leave(l Listener) {
	h.set(l, nil, false)
}
