package motionplan

import (
	"github.com/golang/geo/r2"

	"go.viam.com/sslmotion/spatialmath"
)

// valid reports whether the step between two nodes respects the field, the moving obstacles
// and the static obstacles.
func (s *search) valid(from, to node) bool {
	seg := spatialmath.Segment{Start: from.pos, End: to.pos}
	return s.insideField(from.pos, to.pos) &&
		s.clearOfThreats(seg, from) &&
		s.clearOfObstacles(seg)
}

// insideField rejects steps ending outside the field unless they start outside and move
// back toward it.
func (s *search) insideField(from, to r2.Point) bool {
	if s.bounds.ContainsPoint(to) {
		return true
	}
	if s.bounds.ContainsPoint(from) {
		return false
	}
	return spatialmath.RectDistanceSquared(s.bounds, to) < spatialmath.RectDistanceSquared(s.bounds, from)
}

// clearOfThreats checks the step against every moving obstacle at the start time of the step
// and one step later. A step that starts inside an obstacle's clearance and moves away from it
// is allowed so the robot can escape.
func (s *search) clearOfThreats(seg spatialmath.Segment, from node) bool {
	for _, elapsed := range []float64{from.elapsed, from.elapsed + s.cfg.StepTime} {
		for _, th := range s.threats(seg.End, elapsed) {
			if seg.DistanceTo(th.pos) >= th.clearance {
				continue
			}
			startDist := spatialmath.Distance(seg.Start, th.pos)
			escaping := startDist < th.clearance && spatialmath.Distance(seg.End, th.pos) > startDist
			if !escaping {
				return false
			}
		}
	}
	return true
}

// clearOfObstacles checks the step against the static obstacles. Circles may only be crossed
// when leaving them; rectangles may be moved within as long as the step does not go deeper.
func (s *search) clearOfObstacles(seg spatialmath.Segment) bool {
	for _, o := range s.req.Obstacles {
		switch o.Kind() {
		case spatialmath.CircleObstacle:
			c := o.Circle()
			if !c.IntersectsSegment(seg) {
				continue
			}
			if !c.Contains(seg.Start) ||
				spatialmath.Distance(seg.End, c.Center) <= spatialmath.Distance(seg.Start, c.Center) {
				return false
			}
		case spatialmath.RectObstacle:
			r := o.Rect()
			if r.ContainsPoint(seg.Start) {
				if spatialmath.PenetrationDepth(r, seg.End) > spatialmath.PenetrationDepth(r, seg.Start) {
					return false
				}
				continue
			}
			if seg.IntersectsRect(r) {
				return false
			}
		default:
			panic(errNoObstacleKind(o.Kind()))
		}
	}
	return true
}
