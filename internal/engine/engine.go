// Package engine drives the animated cursor: it relays input into the
// interaction state, runs plugins in priority order every frame, smooths
// the cursor toward its target and keeps the stage in sync.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/supermouse/internal/input"
	"github.com/dshills/supermouse/internal/plugin"
	"github.com/dshills/supermouse/internal/scene"
	"github.com/dshills/supermouse/internal/stage"
	"github.com/dshills/supermouse/internal/state"
)

// Phase is the engine's lifecycle phase.
type Phase int

const (
	// PhaseIdle - constructed, loop not yet started.
	PhaseIdle Phase = iota
	// PhaseRunning - the frame loop is active.
	PhaseRunning
	// PhaseStopped - destroyed. Terminal.
	PhaseStopped
)

// String returns a string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Engine owns one cursor instance.
//
// Public methods are safe for concurrent use. Plugin hooks run while the
// engine lock is held and must reach the engine through plugin.Host only.
type Engine struct {
	mu sync.Mutex

	id     uuid.UUID
	logger *zap.Logger

	input     input.Source
	stage     *stage.Stage
	state     *state.Interaction
	registry  *plugin.Registry
	scheduler Scheduler

	smoothing   float64
	hideCursor  bool
	fps         int
	faultLimit  int
	userEnabled bool
	capable     bool

	// raw is the last input position, kept while the state is parked
	// off stage so re-activation resumes at the real pointer.
	raw state.Point

	// hover is the last hover report, replayed into the state on
	// re-activation. The state only carries it while active.
	hover hoverReport

	// snap makes the next active frame jump Smooth to Target instead of
	// sliding in from the off-stage sentinel.
	snap bool

	phase  Phase
	last   time.Time
	frames uint64
	done   chan struct{}
}

// New creates an engine over src and st and starts its frame loop.
func New(src input.Source, st *stage.Stage, opts ...Option) (*Engine, error) {
	if src == nil {
		return nil, ErrNoInput
	}
	if st == nil {
		return nil, ErrNoStage
	}

	e := &Engine{
		id:          uuid.New(),
		logger:      zap.NewNop(),
		input:       src,
		stage:       st,
		state:       state.New(),
		smoothing:   DefaultSmoothing,
		hideCursor:  true,
		fps:         DefaultFPS,
		userEnabled: true,
		phase:       PhaseIdle,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if !validSmoothing(e.smoothing) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidSmoothing, e.smoothing)
	}
	if e.scheduler == nil {
		e.scheduler = NewTickerScheduler(e.fps)
	}
	e.logger = e.logger.With(zap.String("engine", e.id.String()))
	e.registry = plugin.NewRegistry(&host{e: e}, e.logger, plugin.RegistryConfig{FaultLimit: e.faultLimit})
	e.capable = src.Enabled()

	if err := src.Start(&listener{e: e}); err != nil {
		return nil, fmt.Errorf("start input: %w", err)
	}

	e.mu.Lock()
	if !e.active() {
		e.park()
	}
	e.syncStage()
	e.phase = PhaseRunning
	e.scheduler.Request(e.frame)
	e.mu.Unlock()

	e.logger.Info("engine started",
		zap.Float64("smoothing", e.smoothing),
		zap.Bool("pointer", e.capable),
		zap.Bool("enabled", e.userEnabled))
	return e, nil
}

// ID returns the engine instance ID.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// Phase returns the lifecycle phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Done is closed when the engine has been destroyed.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Frames returns the number of frames run.
func (e *Engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// Use registers p and installs it. A name already in use is logged and
// ignored. Use returns e for chaining.
func (e *Engine) Use(p plugin.Plugin) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseStopped {
		e.logger.Warn("use after destroy ignored")
		return e
	}

	err := e.registry.Register(p)
	switch {
	case err == nil:
	case errors.Is(err, plugin.ErrAlreadyRegistered):
		e.logger.Warn("plugin already registered", zap.String("plugin", p.Name()))
	default:
		e.logger.Error("plugin not registered", zap.Error(err))
	}
	return e
}

// RegisterHoverTarget adds a hover selector to the stage. Duplicate
// patterns are ignored.
func (e *Engine) RegisterHoverTarget(pattern string) error {
	return e.stage.AddSelector(pattern)
}

// Plugin returns a registered plugin by name.
func (e *Engine) Plugin(name string) (plugin.Plugin, bool) {
	return e.registry.Get(name)
}

// Plugins lists the registered plugins in update order.
func (e *Engine) Plugins() []plugin.Info {
	return e.registry.List()
}

// SetPluginEnabled enables or disables a plugin by name.
func (e *Engine) SetPluginEnabled(name string, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseStopped {
		return ErrStopped
	}
	return e.registry.SetEnabled(name, enabled)
}

// Remove destroys and unregisters a plugin.
func (e *Engine) Remove(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseStopped {
		return ErrStopped
	}
	return e.registry.Remove(name)
}

// Subscribe registers a handler for plugin lifecycle events.
func (e *Engine) Subscribe(handler plugin.EventHandler) func() {
	return e.registry.Subscribe(handler)
}

// Enable lets input drive the cursor again.
func (e *Engine) Enable() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setUserEnabled(true)
}

// Disable parks the cursor off stage and restores the native cursor.
// The frame loop keeps running so plugins can animate out.
func (e *Engine) Disable() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setUserEnabled(false)
}

// IsEnabled reports whether the engine is enabled by the user.
func (e *Engine) IsEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.userEnabled
}

// Active reports whether the cursor is currently shown: enabled by the
// user and backed by a fine pointer.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active()
}

// SetSmoothing changes the interpolation factor.
func (e *Engine) SetSmoothing(f float64) error {
	if !validSmoothing(f) {
		return fmt.Errorf("%w: got %v", ErrInvalidSmoothing, f)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.smoothing = f
	return nil
}

// Smoothing returns the interpolation factor.
func (e *Engine) Smoothing() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.smoothing
}

// SetReducedMotion toggles reduced motion.
func (e *Engine) SetReducedMotion(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.ReducedMotion = on
}

// Snapshot returns a copy of the interaction state.
func (e *Engine) Snapshot() state.Interaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Snapshot()
}

// Destroy stops the frame loop, then closes the input source, the stage
// and finally every plugin, so plugins may still use the stage while
// being destroyed. A destroyed engine cannot be restarted.
func (e *Engine) Destroy() error {
	e.mu.Lock()
	if e.phase == PhaseStopped {
		e.mu.Unlock()
		return nil
	}
	e.phase = PhaseStopped
	e.mu.Unlock()

	// The lock is released so an in-flight frame or input callback can
	// finish before the scheduler and source are stopped.
	e.scheduler.Stop()

	var errs []error
	if err := e.input.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close input: %w", err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.stage.Destroy()
	if err := e.registry.Teardown(); err != nil {
		errs = append(errs, err)
	}
	close(e.done)

	e.logger.Info("engine stopped", zap.Uint64("frames", e.frames))
	return errors.Join(errs...)
}

// frame runs one frame and requests the next.
func (e *Engine) frame(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseRunning {
		return
	}

	var dt time.Duration
	if !e.last.IsZero() {
		dt = max(now.Sub(e.last), 0)
	}
	e.last = now

	e.step(dt)
	e.scheduler.Request(e.frame)
}

// step advances the state by one frame. Must be called with mu held.
func (e *Engine) step(dt time.Duration) {
	s := e.state
	e.frames++
	e.stage.BeginFrame()

	if !e.active() {
		e.park()
		e.registry.Tick(dt)
		// Redirects have nothing to act on while parked.
		e.park()
	} else {
		s.Target = s.Pointer
		e.registry.Tick(dt)

		f := e.smoothing
		if s.ReducedMotion || e.snap {
			f = 1
		}
		e.snap = false
		s.Smooth = s.Smooth.Lerp(s.Target, f)
		s.Velocity = s.Target.Sub(s.Smooth)
	}

	e.syncStage()
	x, y := e.raw.Cell()
	if err := e.stage.Render(x, y); err != nil && !errors.Is(err, stage.ErrDestroyed) {
		e.logger.Error("render failed", zap.Error(err))
	}
}

func validSmoothing(f float64) bool {
	return f > 0 && f <= 1
}

// active must be called with mu held.
func (e *Engine) active() bool {
	return e.userEnabled && e.capable
}

// syncStage shows the overlay only while active and off native regions.
// Must be called with mu held.
func (e *Engine) syncStage() {
	visible := e.active() && !e.state.IsNative
	e.stage.SetVisibility(visible)
	if visible && e.hideCursor {
		e.stage.SetNativeCursor(stage.NativeHidden)
	} else {
		e.stage.SetNativeCursor(stage.NativeAuto)
	}
}

// setUserEnabled must be called with mu held.
func (e *Engine) setUserEnabled(on bool) {
	if e.phase == PhaseStopped || e.userEnabled == on {
		return
	}
	was := e.active()
	e.userEnabled = on
	e.transition(was)
	e.logger.Info("engine toggled", zap.Bool("enabled", on))
}

// transition reacts to a change in activity. Must be called with mu held.
func (e *Engine) transition(wasActive bool) {
	now := e.active()
	switch {
	case wasActive && !now:
		e.park()
		e.state.IsDown = false
	case !wasActive && now:
		e.state.Pointer = e.raw
		e.state.SetHover(e.hover.el, e.hover.attrs, e.hover.native)
		e.snap = true
	}
	e.syncStage()
}

// park moves the state off stage with no hover and no shape override, so
// logic plugins find nothing to redirect toward. Must be called with mu
// held.
func (e *Engine) park() {
	e.state.MoveOffStage()
	e.state.SetHover(nil, nil, false)
	e.state.Shape = nil
}

type hoverReport struct {
	el     *scene.Element
	attrs  state.Attributes
	native bool
}

// listener relays input callbacks into the state.
type listener struct {
	e *Engine
}

func (l *listener) OnMove(x, y float64) {
	e := l.e
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseStopped {
		return
	}
	e.raw = state.Point{X: x, Y: y}
	if e.active() {
		e.state.Pointer = e.raw
	}
}

func (l *listener) OnButton(down bool) {
	e := l.e
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseStopped {
		return
	}
	e.state.IsDown = down && e.active()
}

func (l *listener) OnHover(el *scene.Element, attrs state.Attributes, native bool) {
	e := l.e
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseStopped {
		return
	}
	e.hover = hoverReport{el: el, attrs: attrs, native: native}
	if !e.active() {
		return
	}
	e.state.SetHover(el, attrs, native)
	e.syncStage()
}

func (l *listener) OnCapability(enabled bool) {
	e := l.e
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseStopped || e.capable == enabled {
		return
	}
	was := e.active()
	e.capable = enabled
	e.transition(was)
	e.logger.Info("pointer capability changed", zap.Bool("fine", enabled))
}

// host is the plugin.Host view of the engine. Its methods are called from
// hooks while the engine lock is held, so they must not lock it.
type host struct {
	e *Engine
}

func (h *host) State() *state.Interaction { return h.e.state }

func (h *host) Stage() *stage.Stage { return h.e.stage }

func (h *host) RegisterHoverTarget(pattern string) error {
	return h.e.stage.AddSelector(pattern)
}

func (h *host) Plugin(name string) (plugin.Plugin, bool) {
	return h.e.registry.Get(name)
}

func (h *host) SetEnabled(name string, enabled bool) error {
	return h.e.registry.SetEnabled(name, enabled)
}

func (h *host) IsEnabled(name string) bool {
	return h.e.registry.IsEnabled(name)
}

func (h *host) Logger() *zap.Logger { return h.e.logger }
