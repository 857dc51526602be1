package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

// Circle is a disc with a center and radius.
type Circle struct {
	Center r2.Point `json:"center"`
	Radius float64  `json:"radius"`
}

// Contains reports whether p lies strictly inside the circle.
func (c Circle) Contains(p r2.Point) bool {
	return DistanceSquared(c.Center, p) < c.Radius*c.Radius
}

// IntersectsSegment reports whether the segment passes strictly inside the circle.
func (c Circle) IntersectsSegment(s Segment) bool {
	return s.DistanceTo(c.Center) < c.Radius
}

// LineIntersections returns the one or two points where the line meets the circle boundary.
// A degenerate line or a line that misses the circle returns ErrNoSolution.
func (c Circle) LineIntersections(l Line) ([]r2.Point, error) {
	a := l.Direction.Dot(l.Direction)
	if a == 0 {
		return nil, ErrNoSolution
	}
	f := l.Point.Sub(c.Center)
	b := 2 * f.Dot(l.Direction)
	cc := f.Dot(f) - c.Radius*c.Radius
	disc := b*b - 4*a*cc
	if disc < 0 {
		return nil, ErrNoSolution
	}
	if disc == 0 {
		return []r2.Point{l.Point.Add(l.Direction.Mul(-b / (2 * a)))}, nil
	}
	sq := math.Sqrt(disc)
	return []r2.Point{
		l.Point.Add(l.Direction.Mul((-b - sq) / (2 * a))),
		l.Point.Add(l.Direction.Mul((-b + sq) / (2 * a))),
	}, nil
}
