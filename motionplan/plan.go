package motionplan

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/worldstate"
)

// Waypoint is one oriented pose along a path with the velocity to hold through it.
type Waypoint struct {
	spatialmath.Pose
	Velocity r2.Point `json:"velocity"`
}

// Path is the planner output for one robot. Waypoints are ordered from the robot's current
// position toward the goal. Final is the exact requested end state, which may differ from the
// last waypoint when the search stopped short.
type Path struct {
	Robot     worldstate.RobotID `json:"robot"`
	Waypoints []Waypoint         `json:"waypoints"`
	Final     *Waypoint          `json:"final,omitempty"`
	Slow      bool               `json:"slow"`
}

// SuccessDistance is how close to the goal a search must get to count as reaching it, for a
// start startDist away from the goal.
func SuccessDistance(cfg config.PlannerConfig, startDist float64) float64 {
	return math.Max(cfg.MinSuccessDistance, startDist-cfg.SuccessMargin)
}

// Points returns the waypoint positions.
func (p *Path) Points() []r2.Point {
	out := make([]r2.Point, 0, len(p.Waypoints))
	for _, wp := range p.Waypoints {
		out = append(out, wp.Point)
	}
	return out
}

// Length returns the summed length of the waypoint segments.
func (p *Path) Length() float64 {
	return polylineLength(p.Points())
}

// newPath orients every point at the goal heading, sets each waypoint's velocity toward the
// next one at steadySpeed and stops at the last one.
func newPath(id worldstate.RobotID, points []r2.Point, goal spatialmath.Pose, steadySpeed float64, slow bool) *Path {
	waypoints := make([]Waypoint, len(points))
	for i, p := range points {
		waypoints[i].Pose = spatialmath.Pose{Point: p, Theta: goal.Theta}
		if i+1 < len(points) {
			if dir, err := spatialmath.Unit(points[i+1].Sub(p)); err == nil {
				waypoints[i].Velocity = dir.Mul(steadySpeed)
			}
		}
	}
	return &Path{
		Robot:     id,
		Waypoints: waypoints,
		Final:     &Waypoint{Pose: goal},
		Slow:      slow,
	}
}

func polylineLength(points []r2.Point) float64 {
	total := 0.
	for i := 1; i < len(points); i++ {
		total += spatialmath.Distance(points[i-1], points[i])
	}
	return total
}

// distanceToPolyline returns the distance from p to the nearest point of the polyline.
func distanceToPolyline(points []r2.Point, p r2.Point) float64 {
	if len(points) == 1 {
		return spatialmath.Distance(points[0], p)
	}
	best := -1.
	for i := 1; i < len(points); i++ {
		d := spatialmath.Segment{Start: points[i-1], End: points[i]}.DistanceTo(p)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}
