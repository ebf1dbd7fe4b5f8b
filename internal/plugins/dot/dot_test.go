package dot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/supermouse/internal/engine"
	"github.com/dshills/supermouse/internal/option"
	"github.com/dshills/supermouse/internal/plugins/plugintest"
	"github.com/dshills/supermouse/internal/renderer/core"
	"github.com/dshills/supermouse/internal/state"
)

func TestArrow(t *testing.T) {
	tests := []struct {
		v    state.Point
		want rune
		ok   bool
	}{
		{state.Point{X: 5}, '→', true},
		{state.Point{X: -5}, '←', true},
		{state.Point{Y: 5}, '↓', true},
		{state.Point{Y: -5}, '↑', true},
		{state.Point{X: 3, Y: 3}, '↘', true},
		{state.Point{X: -3, Y: -3}, '↖', true},
		{state.Point{X: 0.5}, 0, false},
	}
	for _, tt := range tests {
		got, ok := Arrow(tt.v)
		assert.Equal(t, tt.ok, ok, "%v", tt.v)
		assert.Equal(t, tt.want, got, "%v", tt.v)
	}
}

func TestDrawsAtSmoothPosition(t *testing.T) {
	h := plugintest.New(t, nil)
	h.Engine.Use(New(Options{Directional: option.Const(false)}))

	h.MoveTo(10, 5)
	h.Step()

	c, ok := h.Cell(10, 5)
	require.True(t, ok)
	assert.Equal(t, DefaultGlyph, c.Rune)
	assert.Equal(t, core.ColorWhite, c.Style.Foreground)
}

func TestReactiveGlyph(t *testing.T) {
	h := plugintest.New(t, nil)
	h.Engine.Use(New(Options{
		Directional: option.Const(false),
		Glyph: option.Func(func(s *state.Interaction) rune {
			if s.IsDown {
				return '◉'
			}
			return '•'
		}),
	}))

	h.MoveTo(4, 4)
	h.Source.Press()
	h.Step()
	c, _ := h.Cell(4, 4)
	assert.Equal(t, '◉', c.Rune)
}

func TestDirectionalGlyph(t *testing.T) {
	h := plugintest.New(t, nil, engine.WithSmoothing(0.5))
	h.Engine.Use(New(Options{}))

	h.MoveTo(20, 0)
	h.Step()
	c, ok := h.Cell(10, 0)
	require.True(t, ok)
	assert.Equal(t, '→', c.Rune)
}

func TestReducedMotionDisablesArrow(t *testing.T) {
	h := plugintest.New(t, nil, engine.WithSmoothing(0.5), engine.WithReducedMotion(true))
	h.Engine.Use(New(Options{}))

	h.MoveTo(20, 0)
	h.Step()
	c, _ := h.Cell(20, 0)
	assert.Equal(t, DefaultGlyph, c.Rune)
}

func TestFadesOutWhenDisabled(t *testing.T) {
	h := plugintest.New(t, nil)
	h.Engine.Use(New(Options{Fade: 32 * time.Millisecond, Directional: option.Const(false)}))
	h.MoveTo(3, 3)
	h.Step()

	require.NoError(t, h.Engine.SetPluginEnabled(Name, false))
	h.Step()
	c, ok := h.Cell(3, 3)
	require.True(t, ok, "still drawn while fading")
	assert.Equal(t, core.ColorWhite.Fade(0.5), c.Style.Foreground)

	h.Step()
	assert.Zero(t, h.Drawn())
}

func TestOffStageDrawsNothing(t *testing.T) {
	h := plugintest.New(t, nil)
	h.Engine.Use(New(Options{}))
	h.Engine.Disable()
	h.Steps(2)
	assert.Zero(t, h.Drawn())
}
