package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/supermouse/internal/renderer/core"
	"github.com/dshills/supermouse/internal/scene"
)

func TestPointMath(t *testing.T) {
	p := Point{X: 10, Y: 20}
	q := Point{X: 30, Y: -20}

	assert.Equal(t, Point{X: 40, Y: 0}, p.Add(q))
	assert.Equal(t, Point{X: -20, Y: 40}, p.Sub(q))
	assert.Equal(t, Point{X: 5, Y: 10}, p.Scale(0.5))
	assert.Equal(t, Point{X: 20, Y: 0}, p.Lerp(q, 0.5))
	assert.Equal(t, p, p.Lerp(q, 0))
	assert.Equal(t, q, p.Lerp(q, 1))
	assert.InDelta(t, 5.0, Point{}.Distance(Point{X: 3, Y: 4}), 1e-9)
	assert.InDelta(t, 5.0, Point{X: 3, Y: 4}.Len(), 1e-9)

	x, y := Point{X: 2.6, Y: 1.4}.Cell()
	assert.Equal(t, 3, x)
	assert.Equal(t, 1, y)
}

func TestNewIsZero(t *testing.T) {
	s := New()
	assert.Equal(t, Point{}, s.Pointer)
	assert.Equal(t, Point{}, s.Target)
	assert.Equal(t, Point{}, s.Smooth)
	assert.Equal(t, Point{}, s.Velocity)
	assert.Nil(t, s.Shape)
	assert.NotNil(t, s.Attrs)
}

func TestMoveOffStage(t *testing.T) {
	s := New()
	s.Pointer = Point{X: 5, Y: 5}
	s.Velocity = Point{X: 1, Y: 1}

	s.MoveOffStage()

	assert.True(t, s.Pointer.IsOffStage())
	assert.True(t, s.Target.IsOffStage())
	assert.True(t, s.Smooth.IsOffStage())
	assert.Equal(t, Point{}, s.Velocity)
}

func TestAttributes(t *testing.T) {
	a := Attributes{"stick": "", "magnetic": "false", "strength": "0.4", "color": "#ff0000", "bad": "x"}

	assert.True(t, a.Bool("stick"))
	assert.False(t, a.Bool("magnetic"))
	assert.False(t, a.Bool("missing"))
	assert.InDelta(t, 0.4, a.Float("strength", 1), 1e-9)
	assert.InDelta(t, 1.0, a.Float("bad", 1), 1e-9)
	assert.Equal(t, "#ff0000", a.String("color", "white"))
	assert.Equal(t, "white", a.String("stick", "white"))

	c := a.Clone()
	c["color"] = "blue"
	assert.Equal(t, "#ff0000", a["color"])
	assert.Nil(t, Attributes(nil).Clone())
}

func TestReadAttributesNearestWins(t *testing.T) {
	card := scene.NewElement("section", core.RectFromSize(0, 0, 10, 10))
	card.SetAttr("supermouse-state", "card")
	card.SetAttr("supermouse-color", "red")
	card.SetAttr("data-other", "x")
	btn := card.Append(scene.NewElement("button", core.RectFromSize(1, 1, 2, 4)))
	btn.SetAttr("supermouse-color", "blue")
	btn.SetAttr("supermouse-", "ignored")

	attrs := ReadAttributes(btn)
	assert.Equal(t, Attributes{"state": "card", "color": "blue"}, attrs)
	assert.Empty(t, ReadAttributes(nil))
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := New()
	s.Shape = &Shape{Width: 4, Height: 2}
	s.Attrs["color"] = "red"

	snap := s.Snapshot()
	snap.Shape.Width = 10
	snap.Attrs["color"] = "blue"

	require.NotNil(t, s.Shape)
	assert.InDelta(t, 4.0, s.Shape.Width, 1e-9)
	assert.Equal(t, "red", s.Attrs["color"])
}

func TestSetHover(t *testing.T) {
	s := New()
	el := scene.NewElement("a", core.RectFromSize(0, 0, 1, 1))
	s.SetHover(el, Attributes{"text": "go"}, false)
	assert.True(t, s.IsHover)
	assert.Same(t, el, s.HoverTarget)

	s.SetHover(nil, nil, false)
	assert.False(t, s.IsHover)
	assert.Nil(t, s.HoverTarget)
	assert.NotNil(t, s.Attrs)
}
