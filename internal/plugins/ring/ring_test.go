package ring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/supermouse/internal/option"
	"github.com/dshills/supermouse/internal/plugins/plugintest"
	"github.com/dshills/supermouse/internal/renderer/core"
	"github.com/dshills/supermouse/internal/scene"
	"github.com/dshills/supermouse/internal/state"
)

func TestRectFromSize(t *testing.T) {
	p := New(Options{Size: option.Const(4.0)})
	s := state.New()
	s.Smooth = state.Point{X: 10, Y: 10}

	assert.Equal(t, core.RectFromSize(9, 8, 2, 4), p.Rect(s))

	s.IsHover = true
	r := p.Rect(s)
	assert.Equal(t, 5, r.Width())
	assert.Equal(t, 3, r.Height())
}

func TestRectFollowsShape(t *testing.T) {
	p := New(Options{})
	s := state.New()
	s.Smooth = state.Point{X: 20, Y: 5}
	s.Shape = &state.Shape{Width: 12, Height: 3}

	r := p.Rect(s)
	assert.Equal(t, 12, r.Width())
	assert.Equal(t, 3, r.Height())
	assert.Equal(t, 14, r.Left)
	assert.Equal(t, 4, r.Top)
}

func TestDrawsBoxWithAttributeColor(t *testing.T) {
	sc := scene.New()
	btn := scene.NewElement("button", core.RectFromSize(0, 0, 10, 40))
	btn.SetAttr("supermouse-color", "#ff0000")
	require.NoError(t, sc.Add(btn))

	h := plugintest.New(t, sc)
	require.NoError(t, h.Engine.RegisterHoverTarget("button"))
	h.Engine.Use(New(Options{Size: option.Const(4.0), HoverSize: option.Const(4.0)}))

	h.MoveTo(10, 5)
	h.Step()

	c, ok := h.Cell(8, 4)
	require.True(t, ok)
	assert.Equal(t, '╭', c.Rune)
	assert.Equal(t, core.ColorRed, c.Style.Foreground)
}

func TestPressPulseExpiresAndClears(t *testing.T) {
	h := plugintest.New(t, nil)
	p := New(Options{Pulse: 20 * time.Millisecond})
	h.Engine.Use(p)

	h.MoveTo(10, 10)
	h.Source.Press()
	h.Step()
	assert.True(t, p.Pulsing())
	assert.Eventually(t, func() bool { return !p.Pulsing() }, time.Second, 5*time.Millisecond)

	h.Source.Release()
	h.Step()
	h.Source.Press()
	h.Step()
	require.True(t, p.Pulsing())
	require.NoError(t, h.Engine.SetPluginEnabled(Name, false))
	assert.False(t, p.Pulsing(), "disable clears the pending pulse")
}

func TestNoPulseWhileDisabled(t *testing.T) {
	h := plugintest.New(t, nil)
	p := New(Options{Pulse: time.Hour})
	h.Engine.Use(p)
	require.NoError(t, h.Engine.SetPluginEnabled(Name, false))

	h.Source.Press()
	h.Step()
	assert.False(t, p.Pulsing())
}
