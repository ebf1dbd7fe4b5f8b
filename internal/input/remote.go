package input

import (
	"encoding/json"
	"math"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Remote message types.
const (
	MessageMove       = "move"
	MessageDown       = "down"
	MessageUp         = "up"
	MessageLeave      = "leave"
	MessageCapability = "capability"
)

// MaxMessageSize bounds a single remote frame. Larger frames close the
// connection.
const MaxMessageSize = 4096

// Message is a pointer event sent by a remote client.
type Message struct {
	Type    string  `json:"type"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Enabled bool    `json:"enabled,omitempty"`
}

// RemoteSource accepts pointer events over websocket connections. It is an
// http.Handler; mount it on any path. Every connection feeds the same
// listener.
type RemoteSource struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu       sync.Mutex
	listener Listener
	enabled  bool
	hover    hoverTracker
	conns    map[*websocket.Conn]struct{}
	closed   bool
}

// RemoteOption configures a RemoteSource.
type RemoteOption func(*RemoteSource)

// WithRemoteResolver turns remote moves into hover changes.
func WithRemoteResolver(r Resolver) RemoteOption {
	return func(s *RemoteSource) {
		s.hover.resolver = r
	}
}

// WithRemoteLogger sets the logger.
func WithRemoteLogger(l *zap.Logger) RemoteOption {
	return func(s *RemoteSource) {
		s.logger = l
	}
}

// WithOriginCheck replaces the default origin policy. By default a browser
// handshake is accepted only when its Origin host matches the request
// Host; clients that send no Origin header are always accepted.
func WithOriginCheck(fn func(r *http.Request) bool) RemoteOption {
	return func(s *RemoteSource) {
		s.upgrader.CheckOrigin = fn
	}
}

// NewRemoteSource creates a remote source. It reports a fine pointer until
// a client says otherwise.
func NewRemoteSource(opts ...RemoteOption) *RemoteSource {
	s := &RemoteSource{
		logger:  zap.NewNop(),
		enabled: true,
		conns:   make(map[*websocket.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start implements Source.
func (s *RemoteSource) Start(l Listener) error {
	if l == nil {
		return ErrNilListener
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return ErrClosed
	case s.listener != nil:
		return ErrAlreadyStarted
	}
	s.listener = l
	return nil
}

// Enabled implements Source.
func (s *RemoteSource) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Close implements Source. Open connections are closed.
func (s *RemoteSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.listener = nil
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.conns = nil
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	return nil
}

// ServeHTTP upgrades the request and reads messages until the client
// disconnects.
func (s *RemoteSource) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		http.Error(w, ErrClosed.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	s.logger.Info("remote pointer connected", zap.String("remote", conn.RemoteAddr().String()))

	defer func() {
		s.mu.Lock()
		if s.conns != nil {
			delete(s.conns, conn)
		}
		s.mu.Unlock()
		_ = conn.Close()
		s.logger.Info("remote pointer disconnected", zap.String("remote", conn.RemoteAddr().String()))
	}()

	conn.SetReadLimit(MaxMessageSize)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debug("invalid remote message", zap.Error(err))
			continue
		}
		s.dispatch(msg)
	}
}

func (s *RemoteSource) dispatch(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.listener
	if l == nil {
		return
	}

	switch msg.Type {
	case MessageMove:
		l.OnMove(msg.X, msg.Y)
		s.hover.update(l, int(math.Floor(msg.X)), int(math.Floor(msg.Y)))
	case MessageDown:
		l.OnButton(true)
	case MessageUp:
		l.OnButton(false)
	case MessageLeave:
		s.hover.leave(l)
	case MessageCapability:
		if msg.Enabled != s.enabled {
			s.enabled = msg.Enabled
			l.OnCapability(msg.Enabled)
		}
	default:
		s.logger.Debug("unknown remote message", zap.String("type", msg.Type))
	}
}
