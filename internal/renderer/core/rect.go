package core

import "math"

// ScreenRect is a cell-aligned box on the terminal grid. Top and Left are
// inclusive, Bottom and Right exclusive.
type ScreenRect struct {
	Top    int
	Left   int
	Bottom int
	Right  int
}

// RectFromSize creates a rectangle from its top-left cell and size.
func RectFromSize(top, left, height, width int) ScreenRect {
	return ScreenRect{Top: top, Left: left, Bottom: top + height, Right: left + width}
}

// RectAround returns the cell box of size w×h centered on the fractional
// point (cx, cy). Sizes are rounded and never drop below one cell.
func RectAround(cx, cy, w, h float64) ScreenRect {
	w = math.Max(1, math.Round(w))
	h = math.Max(1, math.Round(h))
	left := int(math.Round(cx - w/2))
	top := int(math.Round(cy - h/2))
	return RectFromSize(top, left, int(h), int(w))
}

// Width returns the number of columns, zero for inverted rectangles.
func (r ScreenRect) Width() int {
	return max(0, r.Right-r.Left)
}

// Height returns the number of rows, zero for inverted rectangles.
func (r ScreenRect) Height() int {
	return max(0, r.Bottom-r.Top)
}

// IsEmpty reports whether the rectangle covers no cells.
func (r ScreenRect) IsEmpty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Inverted reports whether an edge lies before its opposite edge.
func (r ScreenRect) Inverted() bool {
	return r.Right < r.Left || r.Bottom < r.Top
}

// Contains reports whether the cell at (x, y) lies within the rectangle.
func (r ScreenRect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// Center returns the geometric center in fractional cell coordinates.
// A 10 wide box starting at column 20 is centered on 25.
func (r ScreenRect) Center() (x, y float64) {
	return float64(r.Left) + float64(r.Width())/2, float64(r.Top) + float64(r.Height())/2
}

// Grow expands every edge outward by n cells. Negative n shrinks.
func (r ScreenRect) Grow(n int) ScreenRect {
	return ScreenRect{Top: r.Top - n, Left: r.Left - n, Bottom: r.Bottom + n, Right: r.Right + n}
}

// Clip limits the rectangle to a width×height surface anchored at 0,0.
func (r ScreenRect) Clip(width, height int) ScreenRect {
	c := ScreenRect{
		Top:    max(r.Top, 0),
		Left:   max(r.Left, 0),
		Bottom: min(r.Bottom, height),
		Right:  min(r.Right, width),
	}
	if c.IsEmpty() {
		return ScreenRect{}
	}
	return c
}
