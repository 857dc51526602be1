// Package spatialmath defines the 2-D poses, shapes and intersection tests used for planning on
// a soccer field. Points and vectors are github.com/golang/geo/r2 values in metres; angles are
// radians, counter-clockwise positive.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// ErrNoSolution is returned by geometric queries that have no answer for degenerate input, such
// as a zero-length direction, parallel lines, or a line missing a circle. Callers are expected
// to handle it locally.
var ErrNoSolution = errors.New("no geometric solution")

// Pose is a position on the field plus a heading.
type Pose struct {
	Point r2.Point `json:"point"`
	Theta float64  `json:"theta"`
}

// NewPose returns the pose at (x, y) facing theta.
func NewPose(x, y, theta float64) Pose {
	return Pose{Point: r2.Point{X: x, Y: y}, Theta: theta}
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3frad)", p.Point.X, p.Point.Y, p.Theta)
}

// PoseAlmostEqual compares positions within a micrometre and headings within a microradian.
func PoseAlmostEqual(a, b Pose) bool {
	return Distance(a.Point, b.Point) < 1e-6 && math.Abs(a.Theta-b.Theta) < 1e-6
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b r2.Point) float64 {
	return a.Sub(b).Norm()
}

// DistanceSquared returns the squared euclidean distance between a and b.
func DistanceSquared(a, b r2.Point) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

// Unit returns v scaled to length one, or ErrNoSolution for the zero vector.
func Unit(v r2.Point) (r2.Point, error) {
	n := v.Norm()
	if n == 0 || math.IsNaN(n) {
		return r2.Point{}, ErrNoSolution
	}
	return v.Mul(1 / n), nil
}

// Rotate rotates v counter-clockwise by theta.
func Rotate(v r2.Point, theta float64) r2.Point {
	s, c := math.Sincos(theta)
	return r2.Point{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}

// Heading returns the direction of v in radians.
func Heading(v r2.Point) float64 {
	return math.Atan2(v.Y, v.X)
}

// FromPolar returns the vector of the given length pointing along theta.
func FromPolar(theta, length float64) r2.Point {
	s, c := math.Sincos(theta)
	return r2.Point{X: c * length, Y: s * length}
}

// Interpolate returns a + (b-a)*t.
func Interpolate(a, b r2.Point, t float64) r2.Point {
	return a.Add(b.Sub(a).Mul(t))
}
