package state

import "math"

// Point is a position or displacement in stage coordinates.
type Point struct {
	X, Y float64
}

// OffStage is the sentinel position used while the cursor is disabled.
// It lies outside any visible stage so nothing renders at it.
var OffStage = Point{X: -100, Y: -100}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p scaled by k.
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Lerp moves p toward q by fraction t.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Len returns the magnitude of p as a vector.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Cell rounds p to the nearest terminal cell.
func (p Point) Cell() (x, y int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}

// IsOffStage reports whether p is the off-stage sentinel.
func (p Point) IsOffStage() bool {
	return p == OffStage
}
