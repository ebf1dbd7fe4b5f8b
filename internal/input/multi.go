package input

import (
	"errors"
	"sync"

	"github.com/dshills/supermouse/internal/scene"
	"github.com/dshills/supermouse/internal/state"
)

// Multi merges several sources into one. Movement, buttons and hover pass
// through as they arrive. A fine pointer is reported while any source has
// one.
type Multi struct {
	sources []Source

	mu       sync.Mutex
	listener Listener
	caps     []bool
	enabled  bool
	started  bool
	closed   bool
}

// NewMulti combines sources. Nil sources are skipped.
func NewMulti(sources ...Source) *Multi {
	m := &Multi{}
	for _, s := range sources {
		if s != nil {
			m.sources = append(m.sources, s)
		}
	}
	m.caps = make([]bool, len(m.sources))
	return m
}

// Start implements Source. If any source fails to start, the ones already
// started are closed.
func (m *Multi) Start(l Listener) error {
	if l == nil {
		return ErrNilListener
	}
	m.mu.Lock()
	switch {
	case m.closed:
		m.mu.Unlock()
		return ErrClosed
	case m.started:
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.listener = l
	for i, s := range m.sources {
		m.caps[i] = s.Enabled()
	}
	m.enabled = anyTrue(m.caps)
	m.mu.Unlock()

	for i, s := range m.sources {
		if err := s.Start(&multiListener{m: m, index: i}); err != nil {
			for _, started := range m.sources[:i] {
				_ = started.Close()
			}
			return err
		}
	}
	return nil
}

// Enabled implements Source.
func (m *Multi) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		for _, s := range m.sources {
			if s.Enabled() {
				return true
			}
		}
		return false
	}
	return m.enabled
}

// Close implements Source. Every source is closed.
func (m *Multi) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.listener = nil
	m.mu.Unlock()

	var errs []error
	for _, s := range m.sources {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) target() Listener {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listener
}

func anyTrue(v []bool) bool {
	for _, b := range v {
		if b {
			return true
		}
	}
	return false
}

// multiListener tags callbacks with the index of the source they came from.
type multiListener struct {
	m     *Multi
	index int
}

func (l *multiListener) OnMove(x, y float64) {
	if t := l.m.target(); t != nil {
		t.OnMove(x, y)
	}
}

func (l *multiListener) OnButton(down bool) {
	if t := l.m.target(); t != nil {
		t.OnButton(down)
	}
}

func (l *multiListener) OnHover(el *scene.Element, attrs state.Attributes, native bool) {
	if t := l.m.target(); t != nil {
		t.OnHover(el, attrs, native)
	}
}

func (l *multiListener) OnCapability(enabled bool) {
	m := l.m
	m.mu.Lock()
	m.caps[l.index] = enabled
	next := anyTrue(m.caps)
	changed := next != m.enabled
	m.enabled = next
	t := m.listener
	m.mu.Unlock()

	if changed && t != nil {
		t.OnCapability(next)
	}
}
