package input

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/dshills/supermouse/internal/renderer/backend"
)

// KeyHandler receives keyboard events the source does not consume.
type KeyHandler func(ev backend.Event)

// BackendSource reads pointer input from a terminal backend.
type BackendSource struct {
	backend  backend.Events
	logger   *zap.Logger
	onKey    KeyHandler
	ttyFD    int
	checkTTY bool

	mu       sync.Mutex
	listener Listener
	enabled  bool
	down     bool
	hover    hoverTracker
	started  bool
	closed   bool

	done      chan struct{}
	closeOnce sync.Once
}

// BackendOption configures a BackendSource.
type BackendOption func(*BackendSource)

// WithResolver turns pointer moves into hover changes.
func WithResolver(r Resolver) BackendOption {
	return func(s *BackendSource) {
		s.hover.resolver = r
	}
}

// WithKeyHandler forwards keyboard events to fn.
func WithKeyHandler(fn KeyHandler) BackendOption {
	return func(s *BackendSource) {
		s.onKey = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) BackendOption {
	return func(s *BackendSource) {
		s.logger = l
	}
}

// WithTerminalCheck requires fd to be a terminal for the source to report
// a fine pointer.
func WithTerminalCheck(fd int) BackendOption {
	return func(s *BackendSource) {
		s.ttyFD = fd
		s.checkTTY = true
	}
}

// NewBackendSource creates a source over b.
func NewBackendSource(b backend.Events, opts ...BackendOption) *BackendSource {
	s := &BackendSource{
		backend: b,
		logger:  zap.NewNop(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// probe reports whether the backend can deliver fine pointer input.
func (s *BackendSource) probe() bool {
	if !s.backend.HasMouse() {
		return false
	}
	if s.checkTTY && !term.IsTerminal(s.ttyFD) {
		return false
	}
	return true
}

// Start implements Source. Events are polled on a dedicated goroutine.
func (s *BackendSource) Start(l Listener) error {
	if l == nil {
		return ErrNilListener
	}
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case s.started:
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.listener = l
	s.enabled = s.probe()
	s.mu.Unlock()

	if s.enabled {
		s.backend.EnableMouse()
	}
	s.logger.Info("input started", zap.Bool("pointer", s.enabled))

	events := s.startPolling()
	go func() {
		for {
			select {
			case <-s.done:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				s.handle(ev)
			}
		}
	}()
	return nil
}

// startPolling starts a goroutine that polls for backend events.
// The channel is closed when the backend stops delivering events.
func (s *BackendSource) startPolling() <-chan backend.Event {
	events := make(chan backend.Event, 100)

	go func() {
		defer close(events)

		for {
			// PollEvent is blocking. Shutting the backend down unblocks it
			// with an EventNone.
			ev := s.backend.PollEvent()
			if ev.Type == backend.EventNone {
				return
			}

			select {
			case events <- ev:
			case <-s.done:
				return
			default:
				// Buffer full, drop event to prevent blocking.
				s.logger.Debug("input event dropped")
			}
		}
	}()

	return events
}

func (s *BackendSource) handle(ev backend.Event) {
	if ev.Type == backend.EventKey {
		if s.onKey != nil {
			s.onKey(ev)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.listener == nil {
		return
	}

	switch ev.Type {
	case backend.EventMouse:
		s.handleMouse(ev)
	case backend.EventFocus:
		if !ev.Focused {
			s.hover.leave(s.listener)
			if s.down {
				s.down = false
				s.listener.OnButton(false)
			}
			return
		}
		s.setEnabled(s.probe())
	case backend.EventResize:
		s.setEnabled(s.probe())
	}
}

func (s *BackendSource) handleMouse(ev backend.Event) {
	if ev.MouseButton.IsWheel() {
		return
	}
	s.listener.OnMove(float64(ev.MouseX), float64(ev.MouseY))

	down := ev.MouseButton != backend.MouseNone
	if down != s.down {
		s.down = down
		s.listener.OnButton(down)
	}
	s.hover.update(s.listener, ev.MouseX, ev.MouseY)
}

// setEnabled must be called with mu held.
func (s *BackendSource) setEnabled(enabled bool) {
	if enabled == s.enabled {
		return
	}
	s.enabled = enabled
	if enabled {
		s.backend.EnableMouse()
	}
	s.logger.Info("pointer capability changed", zap.Bool("enabled", enabled))
	s.listener.OnCapability(enabled)
}

// Enabled implements Source.
func (s *BackendSource) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return s.probe()
	}
	return s.enabled
}

// Close implements Source. It stops delivery and pointer reporting but
// leaves the backend running; the backend's owner shuts it down.
func (s *BackendSource) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		reporting := s.started && s.enabled
		s.closed = true
		s.listener = nil
		s.mu.Unlock()
		if reporting {
			s.backend.DisableMouse()
		}
		close(s.done)
	})
	return nil
}
