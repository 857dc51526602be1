package motionplan

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/utils"
)

// extend simulates one step of StepTime from the active node toward aim under the acceleration
// and speed limits. It reports false when the step is invalid or overshoots the aim.
func (s *search) extend(active int, aim r2.Point, aimIsGoal bool) (node, bool) {
	from := s.nodes[active]
	dt := s.cfg.StepTime

	var next node
	if to, ok := s.reachable(from, aim); ok {
		next = node{pos: aim, vel: to, parent: active, elapsed: from.elapsed + dt}
	} else {
		toAim := aim.Sub(from.pos)
		d := toAim.Norm()
		dir := toAim
		if aimIsGoal {
			dir = s.deflect(from, toAim)
		}
		var desired r2.Point
		if u, err := spatialmath.Unit(dir); err == nil {
			speed := math.Min(s.cfg.MaxSpeed, math.Min(s.cfg.BrakeFactor*math.Sqrt(2*s.cfg.MaxAccel*d), d/dt))
			desired = u.Mul(speed)
		}
		accel := clampNorm(desired.Sub(from.vel).Mul(1/dt), s.cfg.MaxAccel)
		vel := clampNorm(from.vel.Add(accel.Mul(dt)), s.cfg.MaxSpeed)
		next = node{pos: from.pos.Add(vel.Mul(dt)), vel: vel, parent: active, elapsed: from.elapsed + dt}
	}

	if !s.valid(from, next) {
		return node{}, false
	}
	step := next.pos.Sub(from.pos)
	if next.pos != aim && step.Dot(aim.Sub(next.pos)) <= 0 {
		return node{}, false
	}
	return next, true
}

// reachable reports whether aim can be hit exactly in one step and returns the velocity that
// does so.
func (s *search) reachable(from node, aim r2.Point) (r2.Point, bool) {
	dt := s.cfg.StepTime
	coast := from.pos.Add(from.vel.Mul(dt))
	if spatialmath.Distance(aim, coast) > s.cfg.MaxAccel*dt*dt {
		return r2.Point{}, false
	}
	vel := aim.Sub(from.pos).Mul(1 / dt)
	if vel.Norm() > s.cfg.MaxSpeed {
		return r2.Point{}, false
	}
	return vel, true
}

// threat is a moving obstacle position with the clearance to keep from it.
type threat struct {
	pos       r2.Point
	clearance float64
}

// threats returns every dynamic obstacle extrapolated to elapsed, with clearances computed for
// a node at pos.
func (s *search) threats(pos r2.Point, elapsed float64) []threat {
	out := make([]threat, 0, len(s.req.Others)+1)
	eff := s.cfg.AvoidDistance(spatialmath.Distance(pos, s.goal))
	for _, r := range s.req.Others {
		out = append(out, threat{pos: r.PositionAt(elapsed), clearance: eff})
	}
	if s.req.Ball != nil && s.req.BallAvoidRadius > 0 {
		out = append(out, threat{pos: s.req.Ball.PositionAt(elapsed), clearance: s.req.BallAvoidRadius})
	}
	return out
}

// deflect bends the heading toward the goal so it passes tangent to the single nearest dynamic
// obstacle that lies ahead within range and close enough to the straight line to be hit. The
// returned vector keeps the length of toGoal.
func (s *search) deflect(from node, toGoal r2.Point) r2.Point {
	d := toGoal.Norm()
	u, err := spatialmath.Unit(toGoal)
	if err != nil {
		return toGoal
	}

	var nearest threat
	nearestDist := math.Inf(1)
	for _, th := range s.threats(from.pos, from.elapsed) {
		rel := th.pos.Sub(from.pos)
		dist := rel.Norm()
		along := rel.Dot(u)
		clear := th.clearance * s.cfg.DeflectionClearance
		if along <= 0 || along > d+th.clearance || dist-th.clearance > s.cfg.DeflectionRange {
			continue
		}
		if math.Abs(u.Cross(rel)) >= clear {
			continue
		}
		if dist < nearestDist {
			nearest, nearestDist = th, dist
		}
	}
	if math.IsInf(nearestDist, 1) {
		return toGoal
	}

	rel := nearest.pos.Sub(from.pos)
	clear := nearest.clearance * s.cfg.DeflectionClearance
	angle := math.Pi / 2
	if nearestDist > clear {
		angle = math.Asin(clear / nearestDist)
	}
	// turn away from the side the obstacle is on; dead ahead picks a side at random
	side := u.Cross(rel)
	if side == 0 {
		side = float64(s.rnd.Intn(2)*2 - 1)
	}
	heading := spatialmath.Heading(rel)
	if side > 0 {
		heading -= angle
	} else {
		heading += angle
	}
	return spatialmath.FromPolar(utils.WrapAngle(heading), d)
}

func clampNorm(v r2.Point, limit float64) r2.Point {
	if n := v.Norm(); n > limit {
		return v.Mul(limit / n)
	}
	return v
}
