package app

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dshills/supermouse/internal/config"
	"github.com/dshills/supermouse/internal/engine"
	"github.com/dshills/supermouse/internal/plugin"
	"github.com/dshills/supermouse/internal/renderer/backend"
	"github.com/dshills/supermouse/internal/state"
)

const frame = 16 * time.Millisecond

const testScene = `
elements:
  - tag: button
    id: save
    label: Save
    attrs:
      supermouse-stick: ""
    rect: {x: 20, y: 2, w: 10, h: 3}
`

type fixture struct {
	app     *Application
	backend *backend.NullBackend
	sched   *engine.ManualScheduler
	dir     string
	config  string
}

// newFixture starts an application over a null backend. body is TOML
// appended to a config that sets smoothing 1 and an empty script dir.
func newFixture(t *testing.T, body string, mutate ...func(*Options)) *fixture {
	t.Helper()
	dir := t.TempDir()
	scenePath := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(scenePath, []byte(testScene), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0o755))

	cfg := "[engine]\nsmoothing = 1.0\n\n" +
		"[scene]\nfile = '" + scenePath + "'\n\n" +
		"[scripts]\npaths = ['" + filepath.Join(dir, "scripts") + "']\n\n" + body
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	b := backend.NewNullBackend(80, 24)
	sched := engine.NewManualScheduler(time.Unix(0, 0))
	opts := Options{
		ConfigPath: cfgPath,
		Backend:    b,
		Scheduler:  sched,
		Logger:     zap.NewNop(),
	}
	for _, m := range mutate {
		m(&opts)
	}

	app, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return &fixture{app: app, backend: b, sched: sched, dir: dir, config: cfgPath}
}

func (f *fixture) waitPointer(t *testing.T, x, y float64) {
	t.Helper()
	want := state.Point{X: x, Y: y}
	require.Eventually(t, func() bool {
		return f.app.Engine().Snapshot().Pointer == want
	}, time.Second, 5*time.Millisecond)
}

func pluginNames(infos []plugin.Info) []string {
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

func TestNewRegistersConfiguredPlugins(t *testing.T) {
	f := newFixture(t, `
[[plugins]]
type = "sticky"

[[plugins]]
type = "ring"

[[plugins]]
type = "dot"
name = "cursor"
enabled = false
`)

	infos := f.app.Engine().Plugins()
	assert.Equal(t, []string{"sticky", "ring", "cursor"}, pluginNames(infos))
	assert.Equal(t, plugin.StateDisabled, infos[2].State)
	assert.Equal(t, 1.0, f.app.Engine().Smoothing())

	_, ok := f.app.Stage().Scene().ByID("save")
	assert.True(t, ok)
}

func TestPointerDrivesCursor(t *testing.T) {
	f := newFixture(t, `
[[plugins]]
type = "sticky"

[[plugins]]
type = "dot"
`)

	f.backend.PostEvent(backend.Event{Type: backend.EventMouse, MouseX: 5, MouseY: 10})
	f.waitPointer(t, 5, 10)
	f.sched.Run(1, frame)

	snap := f.app.Engine().Snapshot()
	assert.Equal(t, state.Point{X: 5, Y: 10}, snap.Smooth)
	assert.False(t, snap.IsHover)

	f.backend.PostEvent(backend.Event{Type: backend.EventMouse, MouseX: 22, MouseY: 3})
	require.Eventually(t, func() bool {
		snap := f.app.Engine().Snapshot()
		return snap.Pointer == state.Point{X: 22, Y: 3} && snap.IsHover
	}, time.Second, 5*time.Millisecond)
	f.sched.Run(1, frame)

	snap = f.app.Engine().Snapshot()
	assert.True(t, snap.IsHover)
	assert.Equal(t, state.Point{X: 25, Y: 3.5}, snap.Target)
	require.NotNil(t, snap.Shape)
}

func TestRunStopsOnQuitKey(t *testing.T) {
	f := newFixture(t, "")

	done := make(chan error, 1)
	go func() { done <- f.app.Run(context.Background()) }()
	require.Eventually(t, f.app.IsRunning, time.Second, 5*time.Millisecond)

	f.backend.PostEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'q'})

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, engine.PhaseStopped, f.app.Engine().Phase())
}

func TestRunStopsOnContext(t *testing.T) {
	f := newFixture(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.app.Run(ctx) }()
	require.Eventually(t, f.app.IsRunning, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, f.app.Run(ctx), ErrAlreadyRunning)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestKeysToggleEngine(t *testing.T) {
	f := newFixture(t, "")
	eng := f.app.Engine()

	f.backend.PostEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'e'})
	require.Eventually(t, func() bool { return !eng.IsEnabled() }, time.Second, 5*time.Millisecond)

	f.backend.PostEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'r'})
	require.Eventually(t, func() bool { return eng.Snapshot().ReducedMotion }, time.Second, 5*time.Millisecond)
}

func TestUnknownPluginFailsAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("plugins:\n  - type: sparkle\n"), 0o644))

	b := backend.NewNullBackend(80, 24)
	_, err := New(Options{
		ConfigPath: cfgPath,
		Backend:    b,
		Scheduler:  engine.NewManualScheduler(time.Unix(0, 0)),
		Logger:     zap.NewNop(),
	})
	require.Error(t, err)

	var ie *InitError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "plugins", ie.Component)
	assert.ErrorIs(t, err, ErrUnknownPluginType)

	var pe *PluginError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 0, pe.Index)

	polled := make(chan backend.Event, 1)
	go func() { polled <- b.PollEvent() }()
	select {
	case ev := <-polled:
		assert.Equal(t, backend.EventNone, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("backend was not shut down")
	}
}

func TestInvalidConfigFails(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[engine]\nsmoothing = 3.0\n"), 0o644))

	_, err := New(Options{ConfigPath: cfgPath, Backend: backend.NewNullBackend(10, 10), Logger: zap.NewNop()})
	var ie *InitError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "config", ie.Component)
}

func TestScriptsAreLoaded(t *testing.T) {
	dir := t.TempDir()
	scripts := filepath.Join(dir, "scripts")
	require.NoError(t, os.MkdirAll(scripts, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(scripts, "hello.lua"),
		[]byte(`plugin = { kind = "visual" }`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(scripts, "broken.lua"),
		[]byte(`plugin = (`), 0o644))

	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath,
		[]byte("[scripts]\npaths = ['"+scripts+"']\n"), 0o644))

	app, err := New(Options{
		ConfigPath: cfgPath,
		Backend:    backend.NewNullBackend(80, 24),
		Scheduler:  engine.NewManualScheduler(time.Unix(0, 0)),
		Logger:     zap.NewNop(),
	})
	require.NoError(t, err)
	defer app.Close()

	_, ok := app.Engine().Plugin("hello")
	assert.True(t, ok)
	_, ok = app.Engine().Plugin("broken")
	assert.False(t, ok)
}

func TestRemotePointer(t *testing.T) {
	f := newFixture(t, "[input]\nremote_addr = '127.0.0.1:0'\n")

	handler := f.app.RemoteHandler()
	require.NotNil(t, handler)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"move","x":7,"y":9}`)))
	f.waitPointer(t, 7, 9)
}

func TestRemoteHandlerNilWhenOff(t *testing.T) {
	f := newFixture(t, "")
	assert.Nil(t, f.app.RemoteHandler())
}

func TestApplyConfig(t *testing.T) {
	f := newFixture(t, `
[[plugins]]
type = "dot"

[[plugins]]
type = "ring"
`)

	cfg := config.Default()
	cfg.Engine.Smoothing = 0.5
	cfg.Engine.ReducedMotion = true
	off := false
	cfg.Plugins = []config.PluginConfig{{Type: "dot", Enabled: &off}, {Type: "ring"}}

	f.app.applyConfig(cfg, nil)

	eng := f.app.Engine()
	assert.Equal(t, 0.5, eng.Smoothing())
	assert.True(t, eng.Snapshot().ReducedMotion)
	infos := eng.Plugins()
	assert.Equal(t, plugin.StateDisabled, infos[0].State)
	assert.Equal(t, plugin.StateEnabled, infos[1].State)
	assert.Same(t, cfg, f.app.Config())

	f.app.applyConfig(nil, errors.New("bad file"))
	assert.Same(t, cfg, f.app.Config())
}

func TestWatcherReloadsEngineSettings(t *testing.T) {
	f := newFixture(t, "", func(o *Options) { o.Watch = true })

	data, err := os.ReadFile(f.config)
	require.NoError(t, err)
	updated := strings.Replace(string(data), "smoothing = 1.0", "smoothing = 0.25", 1)
	require.NoError(t, os.WriteFile(f.config, []byte(updated), 0o644))

	require.Eventually(t, func() bool {
		return f.app.Engine().Smoothing() == 0.25
	}, 3*time.Second, 10*time.Millisecond)
}

func TestRestartFields(t *testing.T) {
	old := config.Default()
	cfg := config.Default()
	assert.Empty(t, restartFields(old, cfg))

	cfg.Engine.FPS = 30
	cfg.Input.RemoteAddr = ":7070"
	cfg.Engine.Smoothing = 0.9
	assert.Equal(t, []string{"engine.fps", "input"}, restartFields(old, cfg))
	assert.Nil(t, restartFields(nil, cfg))
}
