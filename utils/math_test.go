package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestWrapAngle(t *testing.T) {
	test.That(t, WrapAngle(0), test.ShouldEqual, 0)
	test.That(t, WrapAngle(math.Pi), test.ShouldAlmostEqual, math.Pi)
	test.That(t, WrapAngle(-math.Pi), test.ShouldAlmostEqual, math.Pi)
	test.That(t, WrapAngle(3*math.Pi/2), test.ShouldAlmostEqual, -math.Pi/2)
	test.That(t, WrapAngle(-5*math.Pi/2), test.ShouldAlmostEqual, -math.Pi/2)
}

func TestAngleDiff(t *testing.T) {
	test.That(t, AngleDiff(0.1, -0.1), test.ShouldAlmostEqual, -0.2)
	test.That(t, AngleDiff(math.Pi-0.1, -math.Pi+0.1), test.ShouldAlmostEqual, 0.2)
	test.That(t, AngleDiff(-math.Pi+0.1, math.Pi-0.1), test.ShouldAlmostEqual, -0.2)
}

func TestLerp(t *testing.T) {
	test.That(t, Lerp(2, 4, 0.25), test.ShouldAlmostEqual, 2.5)
	test.That(t, Square(-3), test.ShouldEqual, 9)
	test.That(t, Float64AlmostEqual(1, 1+1e-10, 1e-9), test.ShouldBeTrue)
}
