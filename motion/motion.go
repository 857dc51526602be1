// Package motion wires the planner and the controller into a running service. Destinations
// and world snapshots arrive from the strategy layer; path updates and wheel commands leave
// through sinks.
package motion

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"

	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/control"
	"go.viam.com/sslmotion/logging"
	"go.viam.com/sslmotion/motionplan"
	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/utils"
	"go.viam.com/sslmotion/worldstate"
)

// ErrClosed is returned when submitting to a closed service.
var ErrClosed = errors.New("motion service is closed")

// Request is a destination for one robot.
type Request struct {
	Robot worldstate.RobotID `json:"robot"`
	Pose  spatialmath.Pose   `json:"pose"`
	// AvoidBall keeps the destination and the path clear of the ball.
	AvoidBall bool `json:"avoid_ball"`
	// Goalie exempts the robot from its own team's defense area.
	Goalie bool `json:"goalie"`
	Slow   bool `json:"slow"`
	// Obstacles are avoided in addition to the defense areas.
	Obstacles []spatialmath.Obstacle `json:"obstacles,omitempty"`
}

// PathSink receives every newly planned path.
type PathSink func(motionplan.Path)

// CommandSink receives the wheel speeds computed for a robot on every snapshot.
type CommandSink func(worldstate.RobotID, control.WheelSpeeds)

// Option configures a Service.
type Option func(*Service)

// WithPathSink sets the path sink.
func WithPathSink(sink PathSink) Option {
	return func(s *Service) { s.pathSink = sink }
}

// WithCommandSink sets the command sink.
func WithCommandSink(sink CommandSink) Option {
	return func(s *Service) { s.commandSink = sink }
}

// WithClock replaces the wall clock, for tests.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithRandSource seeds every planning attempt from r.
func WithRandSource(r *rand.Rand) Option {
	return func(s *Service) { s.randSource = r }
}

// Service runs one planning worker per robot with a destination and a single control worker
// that turns snapshots into wheel commands.
type Service struct {
	store  *config.Store
	logger logging.Logger
	clock  clock.Clock

	randSource *rand.Rand
	planner    *motionplan.Planner
	controller *control.Controller

	pathSink    PathSink
	commandSink CommandSink

	workers   utils.StoppableWorkers
	snapshots *utils.Mailbox[worldstate.Snapshot]
	latest    atomic.Pointer[worldstate.Snapshot]
	warnings  *rate.Limiter

	mu     sync.Mutex
	robots map[worldstate.RobotID]*robot
	closed bool
}

// New starts a service reading its configuration from store.
func New(store *config.Store, logger logging.Logger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		logger:      logger.Sublogger("motion"),
		clock:       clock.New(),
		pathSink:    func(motionplan.Path) {},
		commandSink: func(worldstate.RobotID, control.WheelSpeeds) {},
		snapshots:   utils.NewMailbox[worldstate.Snapshot](),
		warnings:    rate.NewLimiter(rate.Every(time.Second), 1),
		robots:      map[worldstate.RobotID]*robot{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.randSource == nil {
		s.randSource = rand.New(rand.NewSource(s.clock.Now().UnixNano()))
	}
	s.planner = motionplan.NewPlanner(store, s.randSource, logger)
	s.controller = control.NewController(store, logger)
	s.workers = utils.NewStoppableWorkers(s.controlLoop)
	return s
}

// SubmitDestination replaces the pending destination of req.Robot. Only the latest destination
// submitted before the robot's planning worker picks one up is planned.
func (s *Service) SubmitDestination(req Request) error {
	if !req.Robot.Valid() {
		return errors.Wrapf(motionplan.ErrUnknownRobot, "robot %s", req.Robot)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	r, ok := s.robots[req.Robot]
	if !ok {
		r = newRobot(req.Robot, s.logger)
		s.robots[req.Robot] = r
	}
	if r.requests.Put(req) {
		r.logger.Debug("destination superseded before planning")
	}
	if !r.planning {
		r.planning = s.workers.AddWorkers(func(ctx context.Context) { s.planLoop(ctx, r) })
		if !r.planning {
			return ErrClosed
		}
	}
	return nil
}

// Cancel drops the destination, the plan in flight and the path of id without waiting for the
// plan to finish. The next snapshot commands it to stop.
func (s *Service) Cancel(id worldstate.RobotID) {
	s.mu.Lock()
	r, ok := s.robots[id]
	s.mu.Unlock()
	if !ok {
		return
	}
	r.cancel()
	s.planner.Forget(id)
}

// UpdateSnapshot hands the latest world state to the service. A snapshot not yet processed by
// the control worker is replaced.
func (s *Service) UpdateSnapshot(snap worldstate.Snapshot) {
	s.latest.Store(&snap)
	s.snapshots.Put(snap)
}

// Path returns the path id is currently following.
func (s *Service) Path(id worldstate.RobotID) (*motionplan.Path, bool) {
	s.mu.Lock()
	r, ok := s.robots[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	p := r.path.Load()
	return p, p != nil
}

// Close stops every worker and waits for them to return.
func (s *Service) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.workers.Stop()
	return nil
}

// warn logs at most once per second so a misbehaving feed cannot flood the log.
func (s *Service) warn(msg string, keysAndValues ...interface{}) {
	if s.warnings.AllowN(s.clock.Now(), 1) {
		s.logger.Warnw(msg, keysAndValues...)
	}
}
