package motionplan

import (
	"github.com/golang/geo/r2"
	"github.com/samber/lo"

	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/utils"
)

// scorePath rates a candidate point sequence; higher is better. It penalizes distance left to
// the goal, length beyond the straight line, and sharp turns, and rewards agreeing with the
// current velocity and staying near the previous path.
func scorePath(cfg config.PlannerConfig, points []r2.Point, goal, startVel r2.Point, previous *Path) float64 {
	if len(points) == 0 {
		return 0
	}
	end := points[len(points)-1]
	score := -cfg.RemainingWeight * spatialmath.Distance(end, goal)
	score -= cfg.ExcessLengthWeight * (polylineLength(points) - spatialmath.Distance(points[0], end))

	for i := 1; i+1 < len(points); i++ {
		in, errIn := spatialmath.Unit(points[i].Sub(points[i-1]))
		out, errOut := spatialmath.Unit(points[i+1].Sub(points[i]))
		if errIn != nil || errOut != nil {
			continue
		}
		// a straight vertex costs nothing, a full reversal costs 2*TurnWeight
		score += cfg.TurnWeight * (in.Dot(out) - 1)
	}

	speed := startVel.Norm()
	if speed > utils.Epsilon {
		if first, ok := firstDirection(points); ok {
			heading, _ := spatialmath.Unit(startVel)
			score += cfg.VelocityWeight * speed * first.Dot(heading)
		}
	}

	if previous != nil && len(previous.Waypoints) > 0 {
		prev := previous.Points()
		deviation := 0.
		for _, p := range points {
			deviation += distanceToPolyline(prev, p)
		}
		deviation /= float64(len(points))
		floor := speed
		if floor < cfg.ContinuitySpeedFloor {
			floor = cfg.ContinuitySpeedFloor
		}
		score -= cfg.ContinuityWeight * floor * deviation
	}
	return score
}

// firstDirection returns the unit direction of the first segment with non-zero length.
func firstDirection(points []r2.Point) (r2.Point, bool) {
	for i := 1; i < len(points); i++ {
		if dir, err := spatialmath.Unit(points[i].Sub(points[i-1])); err == nil {
			return dir, true
		}
	}
	return r2.Point{}, false
}

// bestCandidate returns the index of the highest scoring candidate, the first one on ties.
func bestCandidate(candidates []candidate) int {
	return lo.MaxBy(lo.Range(len(candidates)), func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})
}
