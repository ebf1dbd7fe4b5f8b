package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorFromHex(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{in: "#ff0000", want: ColorRed},
		{in: "00ff00", want: ColorGreen},
		{in: "#00f", want: ColorBlue},
		{in: "#zzzzzz", wantErr: true},
		{in: "#12345", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ColorFromHex(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equals(tt.want), "got %s want %s", got, tt.want)
		})
	}
}

func TestParseColor(t *testing.T) {
	c, ok := ParseColor("cyan")
	require.True(t, ok)
	assert.True(t, c.Equals(ColorCyan))

	c, ok = ParseColor("#808080")
	require.True(t, ok)
	assert.True(t, c.Equals(ColorGray))

	_, ok = ParseColor("not-a-color")
	assert.False(t, ok)

	_, ok = ParseColor("")
	assert.False(t, ok)
}

func TestColorBlendEndpoints(t *testing.T) {
	assert.True(t, ColorRed.Blend(ColorBlue, 0).Equals(ColorRed))
	assert.True(t, ColorRed.Blend(ColorBlue, 1).Equals(ColorBlue))

	mid := ColorBlack.Blend(ColorWhite, 0.5)
	assert.Greater(t, mid.R, uint8(0))
	assert.Less(t, mid.R, uint8(255))
}

func TestColorBlendIndexedSnaps(t *testing.T) {
	idx := ColorFromIndex(3)
	assert.True(t, idx.Blend(ColorRed, 0.2).Equals(idx))
	assert.True(t, idx.Blend(ColorRed, 0.8).Equals(ColorRed))
}

func TestColorFade(t *testing.T) {
	assert.True(t, ColorWhite.Fade(1).Equals(ColorWhite))
	assert.True(t, ColorWhite.Fade(0).Equals(ColorBlack))
}

func TestRuneWidth(t *testing.T) {
	assert.Equal(t, 1, RuneWidth('a'))
	assert.Equal(t, 2, RuneWidth('世'))
	assert.Equal(t, 0, RuneWidth('\n'))
	assert.Equal(t, 4, StringWidth("ab世"))
}

func TestScreenRect(t *testing.T) {
	r := RectFromSize(2, 3, 4, 5)
	assert.Equal(t, 5, r.Width())
	assert.Equal(t, 4, r.Height())
	assert.True(t, r.Contains(3, 2))
	assert.True(t, r.Contains(7, 5))
	assert.False(t, r.Contains(8, 5))
	assert.False(t, r.Contains(3, 6))
	assert.True(t, ScreenRect{Top: 1, Left: 1, Bottom: 1, Right: 5}.IsEmpty())

	inverted := ScreenRect{Top: 4, Left: 0, Bottom: 2, Right: 3}
	assert.True(t, inverted.Inverted())
	assert.Equal(t, 0, inverted.Height())
}

func TestScreenRectCenter(t *testing.T) {
	x, y := RectFromSize(2, 20, 3, 10).Center()
	assert.Equal(t, 25.0, x)
	assert.Equal(t, 3.5, y)
}

func TestRectAround(t *testing.T) {
	assert.Equal(t, RectFromSize(9, 8, 2, 4), RectAround(10, 10, 4, 2))
	assert.Equal(t, RectFromSize(10, 10, 1, 1), RectAround(10.4, 10.4, 0.2, 0))
}

func TestScreenRectGrowAndClip(t *testing.T) {
	r := RectFromSize(0, 0, 2, 2).Grow(1)
	assert.Equal(t, ScreenRect{Top: -1, Left: -1, Bottom: 3, Right: 3}, r)
	assert.Equal(t, ScreenRect{Top: 0, Left: 0, Bottom: 3, Right: 2}, r.Clip(2, 10))
	assert.Equal(t, ScreenRect{}, RectFromSize(20, 20, 2, 2).Clip(10, 10))
}

func TestStyleFaded(t *testing.T) {
	s := NewStyle(ColorWhite).Bold()
	assert.True(t, s.Attributes.Has(AttrBold))
	assert.True(t, s.Faded(1).Equals(s))
	assert.True(t, s.Faded(0).Foreground.Equals(ColorBlack))
	assert.True(t, DefaultStyle().Faded(0.2).Foreground.IsDefault())
}

func TestParseColorIsCaseInsensitive(t *testing.T) {
	c, ok := ParseColor("Magenta")
	require.True(t, ok)
	assert.True(t, c.Equals(ColorMagenta))
}

func TestColorKinds(t *testing.T) {
	i, ok := ColorFromIndex(9).Index()
	assert.True(t, ok)
	assert.Equal(t, uint8(9), i)
	_, ok = ColorRed.Index()
	assert.False(t, ok)

	assert.Equal(t, "default", ColorDefault.String())
	assert.Equal(t, "palette(9)", ColorFromIndex(9).String())
	assert.Equal(t, "#ff0000", ColorRed.String())
	assert.False(t, ColorDefault.Equals(ColorBlack))
	assert.False(t, ColorFromIndex(0).Equals(ColorBlack))
}
