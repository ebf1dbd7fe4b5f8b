package plugin

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/supermouse/internal/stage"
	"github.com/dshills/supermouse/internal/state"
)

type testHost struct {
	state *state.Interaction
	reg   *Registry
}

func (h *testHost) State() *state.Interaction { return h.state }
func (h *testHost) Stage() *stage.Stage { return nil }
func (h *testHost) RegisterHoverTarget(string) error { return nil }
func (h *testHost) Plugin(name string) (Plugin, bool) { return h.reg.Get(name) }
func (h *testHost) SetEnabled(name string, on bool) error { return h.reg.SetEnabled(name, on) }
func (h *testHost) IsEnabled(name string) bool { return h.reg.IsEnabled(name) }
func (h *testHost) Logger() *zap.Logger { return zap.NewNop() }

// recorder is a plugin that logs every hook call into a shared journal.
type recorder struct {
	Base
	journal *[]string
	host    Host

	installErr error
	panicOn    Hook
	onUpdate   func()
}

func newRecorder(name string, prio int, kind Kind, journal *[]string) *recorder {
	return &recorder{Base: NewBase(name, prio, kind), journal: journal}
}

func (r *recorder) log(h Hook) {
	*r.journal = append(*r.journal, r.Name()+":"+string(h))
	if r.panicOn == h {
		panic("boom")
	}
}

func (r *recorder) Install(h Host) error {
	r.host = h
	r.log(HookInstall)
	return r.installErr
}

func (r *recorder) Update(time.Duration) {
	r.log(HookUpdate)
	if r.onUpdate != nil {
		r.onUpdate()
	}
}

func (r *recorder) OnEnable() { r.log(HookEnable) }
func (r *recorder) OnDisable() { r.log(HookDisable) }
func (r *recorder) Destroy() { r.log(HookDestroy) }

func newTestRegistry(config RegistryConfig) (*Registry, *testHost) {
	h := &testHost{state: state.New()}
	r := NewRegistry(h, zap.NewNop(), config)
	h.reg = r
	return r, h
}

func TestRegisterInstallsOnce(t *testing.T) {
	r, _ := newTestRegistry(DefaultRegistryConfig())
	var journal []string

	require.NoError(t, r.Register(newRecorder("a", 0, KindLogic, &journal)))
	err := r.Register(newRecorder("a", 0, KindLogic, &journal))

	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, []string{"a:install"}, journal)
}

func TestRegisterInvalid(t *testing.T) {
	r, _ := newTestRegistry(DefaultRegistryConfig())
	assert.ErrorIs(t, r.Register(nil), ErrInvalidPlugin)

	var journal []string
	assert.ErrorIs(t, r.Register(newRecorder("", 0, KindLogic, &journal)), ErrInvalidPlugin)
}

func TestConfigure(t *testing.T) {
	r, _ := newTestRegistry(DefaultRegistryConfig())
	var journal []string

	p := newRecorder("dot", 0, KindVisual, &journal)
	prio, off := -5, false
	Configure(p, "cursor", &prio, &off)
	require.NoError(t, r.Register(p))

	info := r.List()
	require.Len(t, info, 1)
	assert.Equal(t, "cursor", info[0].Name)
	assert.Equal(t, -5, info[0].Priority)
	assert.False(t, r.IsEnabled("cursor"))

	q := newRecorder("ring", 3, KindVisual, &journal)
	q.StartDisabled = true
	Configure(q, "", nil, nil)
	assert.Equal(t, "ring", q.Name())
	assert.Equal(t, 3, q.Priority())
	assert.True(t, q.StartDisabled)
}

func TestInstallFailureDropsPlugin(t *testing.T) {
	r, _ := newTestRegistry(DefaultRegistryConfig())
	var journal []string

	p := newRecorder("bad", 0, KindLogic, &journal)
	p.installErr = errors.New("no surface")
	err := r.Register(p)

	var hookErr *HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, "bad", hookErr.Plugin)
	assert.Equal(t, HookInstall, hookErr.Hook)
	assert.Zero(t, r.Len())

	// The name is free again.
	require.NoError(t, r.Register(newRecorder("bad", 0, KindLogic, &journal)))
}

func TestTickPriorityOrder(t *testing.T) {
	r, _ := newTestRegistry(DefaultRegistryConfig())
	var journal []string

	require.NoError(t, r.Register(newRecorder("five", 5, KindVisual, &journal)))
	require.NoError(t, r.Register(newRecorder("zero", 0, KindVisual, &journal)))
	require.NoError(t, r.Register(newRecorder("minus", -10, KindLogic, &journal)))
	journal = nil

	for range 3 {
		r.Tick(16 * time.Millisecond)
	}

	want := []string{"minus:update", "zero:update", "five:update"}
	assert.Equal(t, append(append(append([]string{}, want...), want...), want...), journal)
}

func TestTickTiesKeepRegistrationOrder(t *testing.T) {
	r, _ := newTestRegistry(DefaultRegistryConfig())
	var journal []string

	for _, n := range []string{"c", "a", "b"} {
		require.NoError(t, r.Register(newRecorder(n, 0, KindLogic, &journal)))
	}
	names := make([]string, 0, 3)
	for _, info := range r.List() {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestSetEnabledIdempotent(t *testing.T) {
	r, _ := newTestRegistry(DefaultRegistryConfig())
	var journal []string

	p := newRecorder("p", 0, KindLogic, &journal)
	p.StartDisabled = true
	require.NoError(t, r.Register(p))
	assert.False(t, p.Enabled())

	require.NoError(t, r.SetEnabled("p", true))
	require.NoError(t, r.SetEnabled("p", true))
	require.NoError(t, r.SetEnabled("p", false))
	require.NoError(t, r.SetEnabled("p", false))

	assert.Equal(t, []string{"p:install", "p:onEnable", "p:onDisable"}, journal)
	assert.ErrorIs(t, r.SetEnabled("missing", true), ErrPluginNotFound)
}

func TestDisabledLogicSkippedVisualStillUpdated(t *testing.T) {
	r, _ := newTestRegistry(DefaultRegistryConfig())
	var journal []string

	require.NoError(t, r.Register(newRecorder("logic", 0, KindLogic, &journal)))
	require.NoError(t, r.Register(newRecorder("visual", 1, KindVisual, &journal)))
	require.NoError(t, r.SetEnabled("logic", false))
	require.NoError(t, r.SetEnabled("visual", false))
	journal = nil

	r.Tick(0)
	assert.Equal(t, []string{"visual:update"}, journal)
}

func TestDisableDuringTickAppliesSameFrame(t *testing.T) {
	r, _ := newTestRegistry(DefaultRegistryConfig())
	var journal []string

	ctrl := newRecorder("ctrl", PriorityFirst, KindLogic, &journal)
	ctrl.onUpdate = func() { _ = ctrl.host.SetEnabled("follower", false) }
	require.NoError(t, r.Register(newRecorder("follower", 0, KindLogic, &journal)))
	require.NoError(t, r.Register(ctrl))
	journal = nil

	r.Tick(0)
	assert.Equal(t, []string{"ctrl:update", "follower:onDisable"}, journal)
}

func TestPanicIsolated(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := &testHost{state: state.New()}
	r := NewRegistry(h, zap.New(core), DefaultRegistryConfig())
	h.reg = r

	var journal []string
	bad := newRecorder("bad", 0, KindLogic, &journal)
	bad.panicOn = HookUpdate
	require.NoError(t, r.Register(bad))
	require.NoError(t, r.Register(newRecorder("good", 1, KindLogic, &journal)))

	var faults []Event
	r.Subscribe(func(e Event) {
		if e.Type == EventFault {
			faults = append(faults, e)
		}
	})
	journal = nil

	r.Tick(0)

	assert.Equal(t, []string{"bad:update", "good:update"}, journal)
	require.Len(t, faults, 1)
	assert.ErrorIs(t, faults[0].Err, ErrPanic)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "bad", logs.All()[0].ContextMap()["plugin"])
}

func TestFaultLimitDisables(t *testing.T) {
	r, _ := newTestRegistry(RegistryConfig{FaultLimit: 2})
	var journal []string

	bad := newRecorder("bad", 0, KindLogic, &journal)
	bad.panicOn = HookUpdate
	require.NoError(t, r.Register(bad))

	r.Tick(0)
	assert.True(t, r.IsEnabled("bad"))
	r.Tick(0)
	assert.False(t, r.IsEnabled("bad"))

	journal = nil
	r.Tick(0)
	assert.Empty(t, journal)
}

type failing struct {
	Base
	err   error
	calls int
}

func (f *failing) TryUpdate(time.Duration) error {
	f.calls++
	return f.err
}

func TestFallibleUpdateCountsAsFault(t *testing.T) {
	r, _ := newTestRegistry(RegistryConfig{FaultLimit: 3})
	f := &failing{Base: NewBase("script", 0, KindLogic), err: errors.New("attempt to index nil")}
	require.NoError(t, r.Register(f))

	var faults []error
	r.Subscribe(func(ev Event) {
		if ev.Type == EventFault {
			faults = append(faults, ev.Err)
		}
	})

	for range 5 {
		r.Tick(0)
	}
	assert.Equal(t, 3, f.calls)
	assert.False(t, r.IsEnabled("script"))
	require.Len(t, faults, 3)

	var hookErr *HookError
	require.ErrorAs(t, faults[0], &hookErr)
	assert.Equal(t, HookUpdate, hookErr.Hook)
	assert.ErrorIs(t, faults[0], f.err)
}

func TestTeardownReverseRegistrationOrder(t *testing.T) {
	r, _ := newTestRegistry(DefaultRegistryConfig())
	var journal []string

	require.NoError(t, r.Register(newRecorder("first", 10, KindLogic, &journal)))
	require.NoError(t, r.Register(newRecorder("second", -5, KindVisual, &journal)))
	require.NoError(t, r.Register(newRecorder("third", 0, KindVisual, &journal)))
	journal = nil

	var destroyed []string
	r.Subscribe(func(e Event) {
		if e.Type == EventDestroyed {
			destroyed = append(destroyed, e.Plugin)
		}
	})

	require.NoError(t, r.Teardown())
	assert.Equal(t, []string{"third:destroy", "second:destroy", "first:destroy"}, journal)
	assert.Equal(t, []string{"third", "second", "first"}, destroyed)
	assert.Zero(t, r.Len())

	journal = nil
	r.Tick(0)
	require.NoError(t, r.Teardown())
	assert.Empty(t, journal, "no hooks after destroy")
}

func TestRemove(t *testing.T) {
	r, _ := newTestRegistry(DefaultRegistryConfig())
	var journal []string

	require.NoError(t, r.Register(newRecorder("a", 0, KindVisual, &journal)))
	require.NoError(t, r.Remove("a"))
	assert.ErrorIs(t, r.Remove("a"), ErrPluginNotFound)

	_, ok := r.Get("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"a:install", "a:destroy"}, journal)
}

func TestScopedLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := &testHost{state: state.New()}
	r := NewRegistry(h, zap.New(core), DefaultRegistryConfig())
	h.reg = r

	var journal []string
	p := newRecorder("ring", 0, KindVisual, &journal)
	require.NoError(t, r.Register(p))

	p.host.Logger().Info("hello")
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "plugin", entry.LoggerName)
	assert.Equal(t, "ring", entry.ContextMap()["plugin"])
}

func TestSubscribeUnsubscribe(t *testing.T) {
	r, _ := newTestRegistry(DefaultRegistryConfig())
	var events []EventType
	unsub := r.Subscribe(func(e Event) { events = append(events, e.Type) })
	r.Subscribe(func(Event) { panic("ignored") })

	var journal []string
	require.NoError(t, r.Register(newRecorder("a", 0, KindLogic, &journal)))
	require.NoError(t, r.SetEnabled("a", false))
	unsub()
	require.NoError(t, r.SetEnabled("a", true))

	assert.Equal(t, []EventType{EventInstalled, EventDisabled}, events)
}
