package cli

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/control"
	"go.viam.com/sslmotion/motion"
	"go.viam.com/sslmotion/motionplan"
	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/utils"
	"go.viam.com/sslmotion/worldstate"
)

const defaultTick = 16 * time.Millisecond

// simulator applies the latest wheel command of every robot to an ideal kinematic model.
type simulator struct {
	mu       sync.Mutex
	commands map[worldstate.RobotID]control.WheelSpeeds
	paths    int
}

func (s *simulator) command(id worldstate.RobotID, ws control.WheelSpeeds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands[id] = ws
}

func (s *simulator) path(motionplan.Path) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths++
}

func (s *simulator) planned() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paths
}

// advance moves r forward by dt under its last command.
func (s *simulator) advance(cfg config.ControlConfig, r worldstate.RobotState, dt time.Duration) (worldstate.RobotState, error) {
	s.mu.Lock()
	ws := s.commands[r.ID]
	s.mu.Unlock()

	vx, vy, omega, err := control.BodyVelocity(control.WheelMatrix(cfg.WheelArm), ws)
	if err != nil {
		return r, err
	}
	seconds := dt.Seconds()
	r.Velocity = spatialmath.Rotate(r2.Point{X: vx, Y: vy}, r.Pose.Theta)
	r.AngularVelocity = omega
	r.Pose.Point = r.Pose.Point.Add(r.Velocity.Mul(seconds))
	r.Pose.Theta = utils.WrapAngle(r.Pose.Theta + omega*seconds)
	return r, nil
}

// nextSnapshot returns prev advanced by dt with the scenario robot replaced by moved. prev is
// left untouched since the service may still be reading it.
func nextSnapshot(prev worldstate.Snapshot, moved worldstate.RobotState, dt time.Duration) worldstate.Snapshot {
	next := prev
	next.Time = prev.Time.Add(dt)
	moved.LastObserved = next.Time
	next.Robots = append([]worldstate.RobotState{moved}, prev.Robots[1:]...)
	return next
}

// SimulateAction runs the motion service against a simulated robot for a fixed number of ticks
// and reports where the robot ended up.
func SimulateAction(c *cli.Context) error {
	cfg, sc, err := loadInputs(c)
	if err != nil {
		return err
	}
	logger := newLogger(c)

	store := config.NewStore(cfg)
	if path := c.String(flagConfig); path != "" {
		if store, err = config.LoadStore(path, logger); err != nil {
			return err
		}
		if c.Bool(flagWatch) {
			w, err := config.Watch(store, config.DefaultReloadDelay, logger, func(err error) {
				if err != nil {
					warningf(c.App.ErrWriter, "configuration not reloaded: %v", err)
					return
				}
				printf(c.App.Writer, "configuration reloaded")
			})
			if err != nil {
				return err
			}
			defer goutils.UncheckedErrorFunc(w.Close)
		}
	} else if c.Bool(flagWatch) {
		warningf(c.App.ErrWriter, "--%s needs --%s", flagWatch, flagConfig)
	}

	sim := &simulator{commands: map[worldstate.RobotID]control.WheelSpeeds{}}
	svc := motion.New(store, logger,
		motion.WithRandSource(rand.New(rand.NewSource(c.Int64(flagSeed)))),
		motion.WithPathSink(sim.path),
		motion.WithCommandSink(sim.command))
	defer goutils.UncheckedErrorFunc(svc.Close)

	ticks := c.Int(flagTicks)
	dt := c.Duration(flagTick)
	if ticks < 1 || dt <= 0 {
		return errors.Errorf("--%s and --%s must be positive", flagTicks, flagTick)
	}

	snap := sc.Snapshot()
	snap.Time = time.Now()
	svc.UpdateSnapshot(snap)
	if err := svc.SubmitDestination(sc.Destination()); err != nil {
		return err
	}

	ticker := time.NewTicker(dt)
	defer ticker.Stop()
	for tick := 0; tick < ticks; tick++ {
		select {
		case <-c.Context.Done():
			return c.Context.Err()
		case <-ticker.C:
		}
		moved, err := sim.advance(store.Get().Control, snap.Robots[0], dt)
		if err != nil {
			return err
		}
		snap = nextSnapshot(snap, moved, dt)
		svc.UpdateSnapshot(snap)
	}

	goal := sc.PlanRequest(store.Get(), snap.Time).Goal
	final := snap.Robots[0].Pose
	printf(c.App.Writer, "final pose (%.3f, %.3f) theta %.3f after %s", final.Point.X, final.Point.Y, final.Theta,
		time.Duration(ticks)*dt)
	printf(c.App.Writer, "%.3f m and %.3f rad from the goal, %d paths planned",
		spatialmath.Distance(final.Point, goal.Point),
		math.Abs(utils.AngleDiff(final.Theta, goal.Theta)), sim.planned())
	return nil
}
