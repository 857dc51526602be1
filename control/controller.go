// Package control turns a planned path and the latest sensed state into four wheel speeds.
package control

import (
	"math"
	"sync"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/logging"
	"go.viam.com/sslmotion/motionplan"
	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/utils"
	"go.viam.com/sslmotion/worldstate"
)

// commandSlot holds the last command sent to one robot for rate limiting.
type commandSlot struct {
	mu   sync.Mutex
	last WheelSpeeds
}

// Controller follows paths. It keeps one previous command per robot and is safe for concurrent
// use across robots.
type Controller struct {
	store  *config.Store
	logger logging.Logger
	slots  [2][worldstate.MaxRobotID]commandSlot
}

// NewController returns a controller reading its tunables from store.
func NewController(store *config.Store, logger logging.Logger) *Controller {
	return &Controller{store: store, logger: logger.Sublogger("control")}
}

func (c *Controller) slot(id worldstate.RobotID) (*commandSlot, bool) {
	if !id.Valid() {
		return nil, false
	}
	return &c.slots[id.Team][id.ID], true
}

// Reset forgets the last command of id, so the next command is rate limited from standstill.
func (c *Controller) Reset(id worldstate.RobotID) {
	if s, ok := c.slot(id); ok {
		s.mu.Lock()
		s.last = WheelSpeeds{}
		s.mu.Unlock()
	}
}

// Last returns the last command issued to id.
func (c *Controller) Last(id worldstate.RobotID) WheelSpeeds {
	s, ok := c.slot(id)
	if !ok {
		return WheelSpeeds{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Command computes this tick's wheel speeds for id following path. A robot missing from snap, or
// a path without a final state, yields a zero command.
func (c *Controller) Command(id worldstate.RobotID, path *motionplan.Path, snap worldstate.Snapshot) WheelSpeeds {
	s, ok := c.slot(id)
	if !ok {
		return WheelSpeeds{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	robot, ok := snap.Robot(id)
	if !ok || path == nil || path.Final == nil {
		c.logger.Debugw("stopping robot", "robot", id.String(), "sensed", ok, "has_path", path != nil && path.Final != nil)
		s.last = WheelSpeeds{}
		return s.last
	}

	cfg := c.store.Get().Control
	want, done := command(cfg, robot, path, snap.Others(id))
	want = scale(want, cfg.Scale(id))
	if !done {
		want = floor(want, cfg.MinWheelMagnitude)
	}
	if path.Slow {
		want = scale(want, 0.5)
	}
	s.last = rateLimit(s.last, want, cfg.MaxWheelDelta)
	return s.last
}

// floor lifts a nonzero command below magnitude up to it, so the actuators do not round it to zero.
func floor(w WheelSpeeds, magnitude float64) WheelSpeeds {
	if n := w.Norm(); n > 0 && n < magnitude {
		return scale(w, magnitude/n)
	}
	return w
}

func scale(w WheelSpeeds, factor float64) WheelSpeeds {
	floats.Scale(factor, w[:])
	return w
}

// target is the waypoint being driven to and what follows it.
type target struct {
	point r2.Point
	// next is the following distinct waypoint, if any.
	next    r2.Point
	hasNext bool
	// remaining is the path length from the robot through the target to the last waypoint.
	remaining float64
}

// selectTarget picks the first waypoint whose incoming segment the robot has not yet mostly
// covered, so a waypoint just passed is not chased again.
func selectTarget(points []r2.Point, pos r2.Point, progress float64) target {
	i := len(points) - 1
	for k := 1; k < len(points); k++ {
		t, err := spatialmath.Segment{Start: points[k-1], End: points[k]}.Project(pos)
		if err != nil {
			continue
		}
		if t < progress {
			i = k
			break
		}
	}
	tg := target{point: points[i]}
	for j := i + 1; j < len(points); j++ {
		if spatialmath.Distance(points[j], points[i]) > utils.Epsilon {
			tg.next, tg.hasNext = points[j], true
			break
		}
	}
	tg.remaining = spatialmath.Distance(pos, points[i])
	for j := i + 1; j < len(points); j++ {
		tg.remaining += spatialmath.Distance(points[j-1], points[j])
	}
	return tg
}

// command computes the unscaled wheel speeds for one robot and reports whether it is done in
// both position and orientation.
func command(cfg config.ControlConfig, robot worldstate.RobotState, path *motionplan.Path, others []worldstate.RobotState) (WheelSpeeds, bool) {
	pos := robot.Pose.Point
	points := path.Points()
	if len(points) == 0 {
		points = []r2.Point{path.Final.Point}
	}
	tg := selectTarget(points, pos, cfg.WaypointProgress)
	linearDone := tg.remaining < cfg.LinearTolerance

	// translation, in the world frame until the final rotation
	var vel r2.Point
	if !linearDone {
		dir, err := spatialmath.Unit(tg.point.Sub(pos))
		if err != nil {
			dir = r2.Point{}
		}
		if tg.hasNext {
			if ahead, err := spatialmath.Unit(tg.next.Sub(tg.point)); err == nil {
				dir = dir.Add(ahead.Mul(cfg.NextWaypointWeight))
			}
		}
		if dir, err = spatialmath.Unit(dir); err == nil {
			speed := cfg.BaseSpeed * math.Min(
				NewTable(cfg.DistanceTable).At(tg.remaining),
				NewTable(cfg.NeighborTable).At(neighborDistance(cfg, pos, dir, others)),
			)
			vel = dir.Mul(speed)
		}
	}

	// rotation
	delta := utils.AngleDiff(robot.Pose.Theta, path.Final.Theta)
	angularDone := math.Abs(delta) < cfg.AngularTolerance
	omega := 0.
	if !angularDone {
		tta := math.Max(tg.remaining/cfg.AssumedSpeed, cfg.MinTimeToArrival)
		limit := math.Min(cfg.MaxAngularSpeed, cfg.AngleGain*math.Abs(delta))
		omega = math.Max(-limit, math.Min(limit, delta/tta))
	}

	// into the robot frame, rotated back against the drift the spin will cause
	correction := cfg.DecoupleCommandGain*omega + cfg.DecoupleSensedGain*robot.AngularVelocity
	local := spatialmath.Rotate(vel, -robot.Pose.Theta-correction)

	return Project(WheelMatrix(cfg.WheelArm), local.X, local.Y, omega), linearDone && angularDone
}

// neighborDistance returns the distance to the nearest other robot, shrunk when heading toward it
// and grown when heading away. Without other robots it is infinite.
func neighborDistance(cfg config.ControlConfig, pos, dir r2.Point, others []worldstate.RobotState) float64 {
	best := math.Inf(1)
	for _, o := range others {
		rel := o.Pose.Point.Sub(pos)
		d := rel.Norm()
		cosA := 0.
		if u, err := spatialmath.Unit(rel); err == nil {
			cosA = u.Dot(dir)
		}
		if adjusted := d * (1 - cfg.NeighborHeadingGain*cosA); adjusted < best {
			best = adjusted
		}
	}
	return best
}
