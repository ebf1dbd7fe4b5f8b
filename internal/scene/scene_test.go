package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/supermouse/internal/renderer/core"
)

func TestParseSelector(t *testing.T) {
	btn := NewElement("button", core.RectFromSize(0, 0, 3, 10))
	btn.ID = "save"
	btn.Classes = []string{"primary", "wide"}
	btn.SetAttr("supermouse-stick", "")
	btn.SetAttr("supermouse-state", "card")

	tests := []struct {
		pattern string
		want    bool
	}{
		{"*", true},
		{"button", true},
		{"BUTTON", true},
		{"a", false},
		{"#save", true},
		{"#other", false},
		{".primary", true},
		{".primary.wide", true},
		{".primary.missing", false},
		{"[supermouse-stick]", true},
		{"[supermouse-magnetic]", false},
		{"[supermouse-state=card]", true},
		{"[supermouse-state='card']", true},
		{"[supermouse-state=\"other\"]", false},
		{"button.primary[supermouse-stick]", true},
		{"a, button", true},
		{"a, .missing", false},
		{"*.wide", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			sel, err := ParseSelector(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel.Match(btn))
		})
	}
}

func TestParseSelectorErrors(t *testing.T) {
	for _, pattern := range []string{"", " ", "a,", "#", ".", "[", "[x", "[x=]", "[x='y]", "a b", "a > b", "a,,b"} {
		t.Run(pattern, func(t *testing.T) {
			_, err := ParseSelector(pattern)
			require.Error(t, err)
			var selErr *SelectorError
			assert.ErrorAs(t, err, &selErr)
			assert.Equal(t, pattern, selErr.Pattern)
		})
	}
}

func TestSelectorMatchNil(t *testing.T) {
	assert.False(t, MustParseSelector("*").Match(nil))
	assert.False(t, Selector{}.Match(NewElement("div", core.ScreenRect{})))
	assert.True(t, Selector{}.IsZero())
}

func TestSceneHitTestTopmost(t *testing.T) {
	s := New()
	panel := NewElement("div", core.RectFromSize(0, 0, 10, 20))
	btn := panel.Append(NewElement("button", core.RectFromSize(2, 2, 3, 8)))
	require.NoError(t, s.Add(panel))

	assert.Same(t, btn, s.HitTest(3, 3))
	assert.Same(t, panel, s.HitTest(15, 8))
	assert.Nil(t, s.HitTest(30, 30))

	overlay := NewElement("div", core.RectFromSize(0, 0, 5, 5))
	require.NoError(t, s.Add(overlay))
	assert.Same(t, overlay, s.HitTest(3, 3))
}

func TestSceneDuplicateID(t *testing.T) {
	s := New()
	a := NewElement("div", core.RectFromSize(0, 0, 1, 1))
	a.ID = "x"
	require.NoError(t, s.Add(a))

	b := NewElement("div", core.RectFromSize(0, 0, 1, 1))
	b.ID = "x"
	assert.ErrorIs(t, s.Add(b), ErrDuplicateID)
	assert.ErrorIs(t, s.Add(NewElement("", core.ScreenRect{})), ErrInvalidElement)
}

func TestElementClosest(t *testing.T) {
	card := NewElement("section", core.RectFromSize(0, 0, 10, 10))
	card.SetAttr("supermouse-state", "card")
	inner := card.Append(NewElement("span", core.RectFromSize(1, 1, 1, 4)))

	sel := MustParseSelector("[supermouse-state]")
	assert.Same(t, card, inner.Closest(sel.Match))
	assert.Nil(t, inner.Closest(MustParseSelector("a").Match))
	assert.Equal(t, "section", card.String())
}

func TestLoadFile(t *testing.T) {
	data := `
elements:
  - tag: div
    id: panel
    class: [card]
    attrs:
      supermouse-state: card
    rect: {x: 2, y: 1, w: 20, h: 8}
    children:
      - tag: button
        id: ok
        label: OK
        attrs:
          supermouse-stick: ""
        rect: {x: 1, y: 1, w: 6, h: 3}
`
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)

	ok, found := s.ByID("ok")
	require.True(t, found)
	assert.Equal(t, core.RectFromSize(2, 3, 3, 6), ok.Rect)
	assert.Equal(t, "OK", ok.Label)

	panel, _ := s.ByID("panel")
	assert.Same(t, panel, ok.Parent())
	assert.Len(t, s.Query(MustParseSelector("[supermouse-stick]")), 1)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("elements: [{tag: div, rect: {w: -1, h: 1}}]"))
	assert.ErrorIs(t, err, ErrInvalidElement)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
