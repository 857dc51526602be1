package spatialmath

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

// NewRect returns the rectangle spanning the two corners, in any order.
func NewRect(a, b r2.Point) r2.Rect {
	return r2.RectFromPoints(a, b)
}

// RectDistanceSquared returns the squared distance from p to the closed rectangle; zero inside.
// Infinite rectangle bounds are allowed.
func RectDistanceSquared(r r2.Rect, p r2.Point) float64 {
	dx := intervalGap(r.X, p.X)
	dy := intervalGap(r.Y, p.Y)
	return dx*dx + dy*dy
}

func intervalGap(i r1.Interval, v float64) float64 {
	if v < i.Lo {
		return i.Lo - v
	}
	if v > i.Hi {
		return v - i.Hi
	}
	return 0
}

// PenetrationDepth returns how far inside the rectangle p lies, measured to the nearest edge.
// Points on or outside the boundary return zero.
func PenetrationDepth(r r2.Rect, p r2.Point) float64 {
	if !r.InteriorContainsPoint(p) {
		return 0
	}
	return math.Min(
		math.Min(p.X-r.X.Lo, r.X.Hi-p.X),
		math.Min(p.Y-r.Y.Lo, r.Y.Hi-p.Y),
	)
}

// BoundaryLines returns the four infinite lines carrying the edges of r.
func BoundaryLines(r r2.Rect) []Line {
	return []Line{
		{Point: r2.Point{X: r.X.Lo, Y: r.Y.Lo}, Direction: r2.Point{X: 1}},
		{Point: r2.Point{X: r.X.Lo, Y: r.Y.Hi}, Direction: r2.Point{X: 1}},
		{Point: r2.Point{X: r.X.Lo, Y: r.Y.Lo}, Direction: r2.Point{Y: 1}},
		{Point: r2.Point{X: r.X.Hi, Y: r.Y.Lo}, Direction: r2.Point{Y: 1}},
	}
}

// ContainsWithin reports whether p lies in r grown by tolerance on every side.
func ContainsWithin(r r2.Rect, p r2.Point, tolerance float64) bool {
	return r.Expanded(r2.Point{X: tolerance, Y: tolerance}).ContainsPoint(p)
}
