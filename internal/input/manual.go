package input

import (
	"math"
	"sync"

	"github.com/dshills/supermouse/internal/scene"
)

// ManualSource is a programmatic source for tests and embedding. Calls are
// delivered synchronously on the caller's goroutine.
type ManualSource struct {
	mu       sync.Mutex
	listener Listener
	enabled  bool
	hover    hoverTracker
	closed   bool
}

// NewManualSource creates a source with the given initial capability.
// A non-nil resolver turns moves into hover changes.
func NewManualSource(enabled bool, resolver Resolver) *ManualSource {
	return &ManualSource{enabled: enabled, hover: hoverTracker{resolver: resolver}}
}

// Start implements Source.
func (m *ManualSource) Start(l Listener) error {
	if l == nil {
		return ErrNilListener
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.closed:
		return ErrClosed
	case m.listener != nil:
		return ErrAlreadyStarted
	}
	m.listener = l
	return nil
}

// Enabled implements Source.
func (m *ManualSource) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Close implements Source.
func (m *ManualSource) Close() error {
	m.mu.Lock()
	m.closed = true
	m.listener = nil
	m.mu.Unlock()
	return nil
}

// Move feeds a pointer position.
func (m *ManualSource) Move(x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return
	}
	m.listener.OnMove(x, y)
	m.hover.update(m.listener, int(math.Floor(x)), int(math.Floor(y)))
}

// Press feeds a button down edge.
func (m *ManualSource) Press() { m.button(true) }

// Release feeds a button up edge.
func (m *ManualSource) Release() { m.button(false) }

func (m *ManualSource) button(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener != nil {
		m.listener.OnButton(down)
	}
}

// Hover sets the hover target directly, bypassing the resolver.
func (m *ManualSource) Hover(el *scene.Element, native bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener != nil {
		m.hover.set(m.listener, el, native)
	}
}

// SetEnabled changes the capability and notifies the listener.
func (m *ManualSource) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enabled == enabled {
		return
	}
	m.enabled = enabled
	if m.listener != nil {
		m.listener.OnCapability(enabled)
	}
}
