package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestUnit(t *testing.T) {
	u, err := Unit(r2.Point{X: 3, Y: 4})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, u.X, test.ShouldAlmostEqual, 0.6)
	test.That(t, u.Y, test.ShouldAlmostEqual, 0.8)

	_, err = Unit(r2.Point{})
	test.That(t, err, test.ShouldEqual, ErrNoSolution)
}

func TestRotateAndHeading(t *testing.T) {
	v := Rotate(r2.Point{X: 1}, math.Pi/2)
	test.That(t, v.X, test.ShouldAlmostEqual, 0)
	test.That(t, v.Y, test.ShouldAlmostEqual, 1)
	test.That(t, Heading(v), test.ShouldAlmostEqual, math.Pi/2)

	p := FromPolar(math.Pi, 2)
	test.That(t, p.X, test.ShouldAlmostEqual, -2)
	test.That(t, p.Y, test.ShouldAlmostEqual, 0)

	mid := Interpolate(r2.Point{}, r2.Point{X: 2, Y: 2}, 0.25)
	test.That(t, mid, test.ShouldResemble, r2.Point{X: 0.5, Y: 0.5})
	test.That(t, PoseAlmostEqual(NewPose(1, 2, 3), NewPose(1, 2, 3)), test.ShouldBeTrue)
}
