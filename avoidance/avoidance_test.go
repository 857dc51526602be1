package avoidance

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/worldstate"
)

var testBounds = spatialmath.NewRect(r2.Point{X: -2, Y: -1}, r2.Point{X: 2, Y: 1})

func TestAvoidOutsideUnchanged(t *testing.T) {
	target := spatialmath.NewPose(1.5, 0, 0.3)
	test.That(t, Avoid(target, r2.Point{}, 1, testBounds), test.ShouldResemble, target)
}

func TestAvoidPushesRadially(t *testing.T) {
	got := Avoid(spatialmath.NewPose(0.5, 0, 1.2), r2.Point{}, 1, testBounds)
	test.That(t, got.Point.X, test.ShouldAlmostEqual, 1)
	test.That(t, got.Point.Y, test.ShouldAlmostEqual, 0)
	test.That(t, got.Theta, test.ShouldEqual, 1.2)
}

func TestAvoidDegenerateDirection(t *testing.T) {
	// on the center, pushed toward the bounds center
	got := Avoid(spatialmath.NewPose(1, 0, 0), r2.Point{X: 1}, 0.5, testBounds)
	test.That(t, got.Point.X, test.ShouldAlmostEqual, 0.5)
	test.That(t, got.Point.Y, test.ShouldAlmostEqual, 0)

	// center and bounds center coincide, so +X
	got = Avoid(spatialmath.NewPose(0, 0, 0), r2.Point{}, 0.5, testBounds)
	test.That(t, got.Point.X, test.ShouldAlmostEqual, 0.5)
}

func TestAvoidFallsBackToBoundaryIntersection(t *testing.T) {
	target := spatialmath.NewPose(0, 0.9, 0)
	got := Avoid(target, r2.Point{X: 0, Y: 0.8}, 0.5, testBounds)
	test.That(t, got.Point.Y, test.ShouldAlmostEqual, 1)
	test.That(t, math.Abs(got.Point.X), test.ShouldAlmostEqual, math.Sqrt(0.25-0.04))
	test.That(t, testBounds.ContainsPoint(got.Point), test.ShouldBeTrue)

	// biased target picks the nearer of the two intersections
	got = Avoid(spatialmath.NewPose(0.1, 0.95, 0), r2.Point{X: 0, Y: 0.8}, 0.5, testBounds)
	test.That(t, got.Point.X, test.ShouldAlmostEqual, math.Sqrt(0.25-0.04))
}

func TestAvoidAll(t *testing.T) {
	circles := []spatialmath.Circle{
		{Center: r2.Point{X: -1, Y: 0}, Radius: 0.3},
		{Center: r2.Point{X: 0, Y: 0}, Radius: 0.5},
		{Center: r2.Point{X: 0.9, Y: 0.5}, Radius: 0.3},
	}
	got := AvoidAll(spatialmath.NewPose(0.1, 0, 0), circles, testBounds)
	test.That(t, got.Point.X, test.ShouldAlmostEqual, 0.5)
	test.That(t, got.Point.Y, test.ShouldAlmostEqual, 0)
	for _, c := range circles {
		test.That(t, spatialmath.Distance(got.Point, c.Center), test.ShouldBeGreaterThanOrEqualTo, c.Radius-1e-9)
	}
}

func TestValidator(t *testing.T) {
	field := config.DefaultField()
	v := NewValidator(field)

	test.That(t, v.IsValid(r2.Point{}), test.ShouldBeTrue)
	test.That(t, v.IsValid(r2.Point{X: 4.2, Y: 0}), test.ShouldBeFalse)
	test.That(t, v.IsValid(r2.Point{X: -4.2, Y: 0.9}), test.ShouldBeFalse)
	test.That(t, v.IsValid(r2.Point{X: -3.2, Y: 0}), test.ShouldBeTrue)

	// blue defends negative X
	test.That(t, v.IsValidFor(r2.Point{X: -4.2, Y: 0}, worldstate.Blue, true), test.ShouldBeTrue)
	test.That(t, v.IsValidFor(r2.Point{X: -4.2, Y: 0}, worldstate.Blue, false), test.ShouldBeFalse)
	test.That(t, v.IsValidFor(r2.Point{X: 4.2, Y: 0}, worldstate.Blue, true), test.ShouldBeFalse)

	test.That(t, v.DefenseObstacles(worldstate.Yellow, false), test.ShouldHaveLength, 6)
	goalieObstacles := v.DefenseObstacles(worldstate.Yellow, true)
	test.That(t, goalieObstacles, test.ShouldHaveLength, 3)
	for _, o := range goalieObstacles {
		test.That(t, o.Contains(r2.Point{X: -4.2, Y: 0}), test.ShouldBeTrue)
	}
}

func TestNudgeLeavesDefenseArea(t *testing.T) {
	field := config.DefaultField()
	v := NewValidator(field)
	got := v.Nudge(spatialmath.NewPose(4.3, 0, 2), worldstate.Blue, false)
	test.That(t, got.Theta, test.ShouldEqual, 2)
	for _, c := range v.DefenseCircles(worldstate.Blue, false) {
		test.That(t, spatialmath.Distance(got.Point, c.Center), test.ShouldBeGreaterThanOrEqualTo, c.Radius-1e-9)
	}
	test.That(t, field.Bounds().ContainsPoint(got.Point), test.ShouldBeTrue)

	// the goalie may stay in its own area
	own := spatialmath.NewPose(-4.3, 0, 0)
	test.That(t, v.Nudge(own, worldstate.Blue, true), test.ShouldResemble, own)
}
