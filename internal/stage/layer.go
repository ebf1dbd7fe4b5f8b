package stage

import (
	"github.com/dshills/supermouse/internal/renderer/core"
)

// Layer is the overlay surface plugins draw into. It is cleared at the
// start of every frame and composed over the scene when the stage is
// visible. Out-of-bounds writes are dropped.
type Layer struct {
	width, height int
	cells         map[cellPos]core.Cell
}

type cellPos struct{ x, y int }

func newLayer(width, height int) *Layer {
	return &Layer{width: width, height: height, cells: make(map[cellPos]core.Cell)}
}

// Size returns the layer dimensions.
func (l *Layer) Size() (width, height int) {
	return l.width, l.height
}

func (l *Layer) resize(width, height int) {
	l.width, l.height = width, height
}

// InBounds reports whether (x, y) is on the layer.
func (l *Layer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < l.width && y < l.height
}

// Set writes a cell.
func (l *Layer) Set(x, y int, cell core.Cell) {
	if !l.InBounds(x, y) {
		return
	}
	l.cells[cellPos{x, y}] = cell
}

// Get returns the cell at (x, y) and whether anything was drawn there.
func (l *Layer) Get(x, y int) (core.Cell, bool) {
	c, ok := l.cells[cellPos{x, y}]
	return c, ok
}

// Text writes s starting at (x, y) and returns the columns consumed.
func (l *Layer) Text(x, y int, s string, style core.Style) int {
	col := x
	for _, r := range s {
		w := core.RuneWidth(r)
		if w == 0 {
			continue
		}
		l.Set(col, y, core.Cell{Rune: r, Width: w, Style: style})
		col += w
	}
	return col - x
}

// Box outlines rect with rounded box-drawing glyphs. Rects smaller than
// 2x2 are filled with glyph instead.
func (l *Layer) Box(rect core.ScreenRect, style core.Style, glyph rune) {
	drawBox(rect, style, glyph, l.Set)
}

func drawBox(rect core.ScreenRect, style core.Style, glyph rune, set func(x, y int, c core.Cell)) {
	if rect.IsEmpty() {
		return
	}
	if rect.Width() < 2 || rect.Height() < 2 {
		for y := rect.Top; y < rect.Bottom; y++ {
			for x := rect.Left; x < rect.Right; x++ {
				set(x, y, core.NewStyledCell(glyph, style))
			}
		}
		return
	}
	right, bottom := rect.Right-1, rect.Bottom-1
	for x := rect.Left + 1; x < right; x++ {
		set(x, rect.Top, core.NewStyledCell('─', style))
		set(x, bottom, core.NewStyledCell('─', style))
	}
	for y := rect.Top + 1; y < bottom; y++ {
		set(rect.Left, y, core.NewStyledCell('│', style))
		set(right, y, core.NewStyledCell('│', style))
	}
	set(rect.Left, rect.Top, core.NewStyledCell('╭', style))
	set(right, rect.Top, core.NewStyledCell('╮', style))
	set(rect.Left, bottom, core.NewStyledCell('╰', style))
	set(right, bottom, core.NewStyledCell('╯', style))
}

// Len returns the number of drawn cells.
func (l *Layer) Len() int {
	return len(l.cells)
}

// Clear erases the layer.
func (l *Layer) Clear() {
	clear(l.cells)
}

func (l *Layer) each(fn func(x, y int, c core.Cell)) {
	for p, c := range l.cells {
		fn(p.x, p.y, c)
	}
}
