package model

import "math"

// Point represents a 2D point.
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox represents a bounding box in top-origin coordinates:
// Top < Bottom, with Y increasing down the page.
type BBox struct {
	X0     float64 // Left edge
	X1     float64 // Right edge
	Top    float64 // Upper edge (smaller Y)
	Bottom float64 // Lower edge (larger Y)
}

// NewBBox creates a bounding box from edges.
func NewBBox(x0, x1, top, bottom float64) BBox {
	return BBox{X0: x0, X1: x1, Top: top, Bottom: bottom}
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 {
	return b.Bottom - b.Top
}

// MidX returns the horizontal midpoint.
func (b BBox) MidX() float64 {
	return (b.X0 + b.X1) / 2
}

// MidY returns the vertical midpoint.
func (b BBox) MidY() float64 {
	return (b.Top + b.Bottom) / 2
}

// Center returns the center point.
func (b BBox) Center() Point {
	return Point{X: b.MidX(), Y: b.MidY()}
}

// Union returns the smallest box covering both b and other.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X0:     math.Min(b.X0, other.X0),
		X1:     math.Max(b.X1, other.X1),
		Top:    math.Min(b.Top, other.Top),
		Bottom: math.Max(b.Bottom, other.Bottom),
	}
}

// Contains reports whether the point falls inside the box (edges inclusive).
func (b BBox) Contains(p Point) bool {
	return p.X >= b.X0 && p.X <= b.X1 && p.Y >= b.Top && p.Y <= b.Bottom
}

// Overlaps reports whether the two boxes intersect.
func (b BBox) Overlaps(other BBox) bool {
	return b.X0 < other.X1 && b.X1 > other.X0 &&
		b.Top < other.Bottom && b.Bottom > other.Top
}

// IsEmpty reports whether the box has zero or negative area.
func (b BBox) IsEmpty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}
