// Package avoidance nudges requested destinations out of forbidden circles and answers whether
// a point lies inside a defense area.
package avoidance

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/utils"
)

// maxPasses bounds how many times AvoidAll sweeps over its circles.
const maxPasses = 4

// Avoid moves target out of the circle around center. A target outside the circle is returned
// unchanged. Otherwise it is pushed radially to the circle boundary; if that lands outside
// bounds, the in-bounds intersection of the circle with the bounds' edge lines closest to the
// original target is used instead. Orientation is always kept.
func Avoid(target spatialmath.Pose, center r2.Point, radius float64, bounds r2.Rect) spatialmath.Pose {
	if spatialmath.Distance(target.Point, center) >= radius {
		return target
	}

	dir, err := spatialmath.Unit(target.Point.Sub(center))
	if err != nil {
		// target sits on the center; push toward the middle of the field instead
		dir, err = spatialmath.Unit(bounds.Center().Sub(center))
		if err != nil {
			dir = r2.Point{X: 1}
		}
	}
	pushed := center.Add(dir.Mul(radius))
	if bounds.ContainsPoint(pushed) {
		return spatialmath.Pose{Point: pushed, Theta: target.Theta}
	}

	circle := spatialmath.Circle{Center: center, Radius: radius}
	best, bestDist := pushed, math.Inf(1)
	for _, line := range spatialmath.BoundaryLines(bounds) {
		points, err := circle.LineIntersections(line)
		if err != nil {
			continue
		}
		for _, p := range points {
			if !spatialmath.ContainsWithin(bounds, p, utils.Epsilon) {
				continue
			}
			if d := spatialmath.Distance(p, target.Point); d < bestDist {
				best, bestDist = p, d
			}
		}
	}
	return spatialmath.Pose{Point: bounds.ClampPoint(best), Theta: target.Theta}
}

// AvoidAll applies Avoid for every circle, repeating the sweep while any circle still moves the
// target, up to a fixed number of passes.
func AvoidAll(target spatialmath.Pose, circles []spatialmath.Circle, bounds r2.Rect) spatialmath.Pose {
	for pass := 0; pass < maxPasses; pass++ {
		moved := false
		for _, c := range circles {
			next := Avoid(target, c.Center, c.Radius, bounds)
			if next.Point != target.Point {
				moved = true
			}
			target = next
		}
		if !moved {
			break
		}
	}
	return target
}
