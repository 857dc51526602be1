// Package utils contains small helpers shared by the planning and control packages.
package utils

import (
	"math"
)

// Epsilon is the distance below which two lengths are considered equal.
const Epsilon = 1e-9

// Square returns n*n; math.Pow(x, 2) is slow, this is faster.
func Square(n float64) float64 {
	return n * n
}

// WrapAngle wraps a radian angle into (-pi, pi].
func WrapAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta <= -math.Pi {
		theta += 2 * math.Pi
	} else if theta > math.Pi {
		theta -= 2 * math.Pi
	}
	return theta
}

// AngleDiff returns the signed shortest rotation from `from` to `to`, in (-pi, pi].
func AngleDiff(from, to float64) float64 {
	return WrapAngle(to - from)
}

// Lerp linearly interpolates between a and b; t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}
