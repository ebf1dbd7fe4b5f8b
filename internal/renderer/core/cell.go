package core

import "github.com/rivo/uniseg"

// Attribute is a bit set of text attributes understood by every backend.
type Attribute uint8

const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << (iota - 1)
	AttrDim
	AttrReverse
	AttrUnderline
)

// Has reports whether all bits of attr are set.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr == attr
}

// Style is the paint applied to an overlay or scene cell.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle leaves both colors to the terminal.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// NewStyle returns a style painting fg over the terminal background.
func NewStyle(fg Color) Style {
	return DefaultStyle().WithForeground(fg)
}

// WithForeground returns a copy of s using fg.
func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

// WithBackground returns a copy of s using bg.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// With returns a copy of s with attr added.
func (s Style) With(attr Attribute) Style {
	s.Attributes |= attr
	return s
}

// Bold is shorthand for With(AttrBold).
func (s Style) Bold() Style { return s.With(AttrBold) }

// Dim is shorthand for With(AttrDim).
func (s Style) Dim() Style { return s.With(AttrDim) }

// Faded fades the foreground toward black. Opacity 1 keeps it intact.
func (s Style) Faded(opacity float64) Style {
	if opacity >= 1 || s.Foreground.IsDefault() {
		return s
	}
	s.Foreground = s.Foreground.Fade(opacity)
	return s
}

// Equals reports whether s and other paint identically.
func (s Style) Equals(other Style) bool {
	return s.Attributes == other.Attributes &&
		s.Foreground.Equals(other.Foreground) &&
		s.Background.Equals(other.Background)
}

// Cell is one terminal grid position. Width is the number of columns the
// rune occupies; wide glyphs cover the following column too.
type Cell struct {
	Rune  rune
	Width int
	Style Style
}

// EmptyCell is a blank cell in the default style.
func EmptyCell() Cell {
	return NewCell(' ')
}

// NewCell creates a cell in the default style.
func NewCell(r rune) Cell {
	return NewStyledCell(r, DefaultStyle())
}

// NewStyledCell creates a cell and measures its width.
func NewStyledCell(r rune, style Style) Cell {
	return Cell{Rune: r, Width: RuneWidth(r), Style: style}
}

// IsEmpty reports whether the cell shows nothing.
func (c Cell) IsEmpty() bool {
	return c.Rune == 0 || c.Rune == ' '
}

// Equals reports whether two cells render identically.
func (c Cell) Equals(other Cell) bool {
	return c.Rune == other.Rune && c.Width == other.Width && c.Style.Equals(other.Style)
}

// RuneWidth returns how many columns r occupies. Control runes take none.
func RuneWidth(r rune) int {
	if r < 0x20 || r == 0x7f {
		return 0
	}
	return uniseg.StringWidth(string(r))
}

// StringWidth returns the column width of s, grapheme clusters included.
func StringWidth(s string) int {
	return uniseg.StringWidth(s)
}
