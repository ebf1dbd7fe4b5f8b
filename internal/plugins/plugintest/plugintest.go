// Package plugintest runs plugins against a real engine driven frame by
// frame.
package plugintest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dshills/supermouse/internal/engine"
	"github.com/dshills/supermouse/internal/input"
	"github.com/dshills/supermouse/internal/renderer/backend"
	"github.com/dshills/supermouse/internal/renderer/core"
	"github.com/dshills/supermouse/internal/scene"
	"github.com/dshills/supermouse/internal/stage"
	"github.com/dshills/supermouse/internal/state"
)

// Frame is the step used by Step.
const Frame = 16 * time.Millisecond

// Harness bundles an engine with a manual input source and scheduler.
type Harness struct {
	T         testing.TB
	Engine    *engine.Engine
	Source    *input.ManualSource
	Scheduler *engine.ManualScheduler
	Stage     *stage.Stage
	Backend   *backend.NullBackend
	Scene     *scene.Scene
}

// New builds a harness over sc (an empty scene when nil). Moves are
// hit-tested against the stage.
func New(t testing.TB, sc *scene.Scene, opts ...engine.Option) *Harness {
	t.Helper()
	if sc == nil {
		sc = scene.New()
	}
	b := backend.NewNullBackend(80, 24)
	require.NoError(t, b.Init())
	st, err := stage.New(b, sc, stage.Options{})
	require.NoError(t, err)

	src := input.NewManualSource(true, st)
	sched := engine.NewManualScheduler(time.Unix(0, 0))
	opts = append([]engine.Option{engine.WithScheduler(sched), engine.WithSmoothing(1)}, opts...)
	e, err := engine.New(src, st, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Destroy() })

	return &Harness{T: t, Engine: e, Source: src, Scheduler: sched, Stage: st, Backend: b, Scene: sc}
}

// Step runs one frame and returns the resulting state.
func (h *Harness) Step() state.Interaction {
	h.T.Helper()
	require.True(h.T, h.Scheduler.Advance(Frame), "frame not scheduled")
	return h.Engine.Snapshot()
}

// Steps runs n frames.
func (h *Harness) Steps(n int) state.Interaction {
	h.T.Helper()
	var s state.Interaction
	for range n {
		s = h.Step()
	}
	return s
}

// MoveTo moves the pointer and runs one frame.
func (h *Harness) MoveTo(x, y float64) state.Interaction {
	h.Source.Move(x, y)
	return h.Step()
}

// Cell returns what the overlay holds at (x, y) after the last frame.
func (h *Harness) Cell(x, y int) (core.Cell, bool) {
	return h.Stage.Layer().Get(x, y)
}

// Drawn returns the number of overlay cells drawn in the last frame.
func (h *Harness) Drawn() int {
	return h.Stage.Layer().Len()
}
