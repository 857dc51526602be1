package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

// Segment is the closed line segment between two points.
type Segment struct {
	Start r2.Point
	End   r2.Point
}

// Length returns the length of the segment.
func (s Segment) Length() float64 {
	return Distance(s.Start, s.End)
}

// Project returns the parameter t of p projected onto the segment's line, normalized so that
// Start is 0 and End is 1. It is not clamped. A degenerate segment returns ErrNoSolution.
func (s Segment) Project(p r2.Point) (float64, error) {
	d := s.End.Sub(s.Start)
	lenSq := d.Dot(d)
	if lenSq == 0 {
		return 0, ErrNoSolution
	}
	return p.Sub(s.Start).Dot(d) / lenSq, nil
}

// ClosestPoint returns the point on the segment nearest to p.
func (s Segment) ClosestPoint(p r2.Point) r2.Point {
	t, err := s.Project(p)
	if err != nil {
		return s.Start
	}
	return Interpolate(s.Start, s.End, math.Max(0, math.Min(1, t)))
}

// DistanceTo returns the distance from p to the nearest point of the segment.
func (s Segment) DistanceTo(p r2.Point) float64 {
	return Distance(s.ClosestPoint(p), p)
}

// IntersectsRect reports whether any point of the segment lies in the closed rectangle.
func (s Segment) IntersectsRect(r r2.Rect) bool {
	d := s.End.Sub(s.Start)
	t0, t1 := 0.0, 1.0
	// Liang-Barsky clipping against each of the four half planes.
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}
	return clip(-d.X, s.Start.X-r.X.Lo) &&
		clip(d.X, r.X.Hi-s.Start.X) &&
		clip(-d.Y, s.Start.Y-r.Y.Lo) &&
		clip(d.Y, r.Y.Hi-s.Start.Y)
}

// Line is the infinite line through Point along Direction.
type Line struct {
	Point     r2.Point
	Direction r2.Point
}

// LineThrough returns the line through a and b.
func LineThrough(a, b r2.Point) Line {
	return Line{Point: a, Direction: b.Sub(a)}
}

// LineIntersection returns the point where two lines cross. Parallel or degenerate lines return
// ErrNoSolution.
func LineIntersection(a, b Line) (r2.Point, error) {
	denom := a.Direction.Cross(b.Direction)
	if denom == 0 {
		return r2.Point{}, ErrNoSolution
	}
	t := b.Point.Sub(a.Point).Cross(b.Direction) / denom
	return a.Point.Add(a.Direction.Mul(t)), nil
}
