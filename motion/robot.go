package motion

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"

	"go.viam.com/sslmotion/avoidance"
	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/logging"
	"go.viam.com/sslmotion/motionplan"
	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/utils"
	"go.viam.com/sslmotion/worldstate"
)

// robot is the service-side state of one robot that has been given a destination.
type robot struct {
	id       worldstate.RobotID
	logger   logging.Logger
	requests *utils.Mailbox[Request]
	path     atomic.Pointer[motionplan.Path]
	// stop is set by Cancel until a zero command has been sent.
	stop atomic.Bool

	// mu orders Cancel against publishing a plan result. generation counts cancellations and
	// cancelPlan stops the plan in flight, if any.
	mu         sync.Mutex
	generation uint64
	cancelPlan context.CancelFunc

	// planning is guarded by Service.mu and is true while a planning worker runs.
	planning bool
}

func newRobot(id worldstate.RobotID, logger logging.Logger) *robot {
	return &robot{id: id, logger: logger.With("robot", id.String()), requests: utils.NewMailbox[Request]()}
}

// planLoop plans every destination of r until ctx is done or no destination arrives for
// PlanWorkerIdle.
func (s *Service) planLoop(ctx context.Context, r *robot) {
	idle := s.clock.Timer(s.store.Get().Motion.PlanWorkerIdle)
	defer idle.Stop()
	for {
		select {
		case <-ctx.Done():
			s.stopPlanning(r)
			return
		case <-r.requests.Ready():
		case <-idle.C:
			if s.retire(r) {
				return
			}
			idle.Reset(s.store.Get().Motion.PlanWorkerIdle)
			continue
		}
		// read before taking the request so a Cancel racing the take discards the result
		generation := r.currentGeneration()
		if req, ok := r.requests.Take(); ok {
			s.plan(ctx, r, req, generation)
		}
		if !idle.Stop() {
			select {
			case <-idle.C:
			default:
			}
		}
		idle.Reset(s.store.Get().Motion.PlanWorkerIdle)
	}
}

func (r *robot) currentGeneration() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// startPlan returns the context of a plan for generation, or false if r was cancelled since.
func (r *robot) startPlan(ctx context.Context, generation uint64) (context.Context, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != generation {
		return nil, false
	}
	planCtx, cancel := context.WithCancel(ctx)
	r.cancelPlan = cancel
	return planCtx, true
}

// finishPlan publishes path unless r was cancelled after the plan started.
func (r *robot) finishPlan(generation uint64, path *motionplan.Path, sink PathSink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelPlan()
	r.cancelPlan = nil
	if r.generation != generation || path == nil {
		return false
	}
	r.path.Store(path)
	sink(*path)
	return true
}

// cancel discards the pending destination, the plan in flight and the current path.
func (r *robot) cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	if r.cancelPlan != nil {
		r.cancelPlan()
	}
	r.requests.Take()
	r.path.Store(nil)
	r.stop.Store(true)
}

// retire ends r's planning worker unless a destination arrived in the meantime.
func (s *Service) retire(r *robot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, pending := r.requests.Peek(); pending {
		return false
	}
	r.planning = false
	r.logger.Debug("planning worker idle")
	return true
}

func (s *Service) stopPlanning(r *robot) {
	s.mu.Lock()
	r.planning = false
	s.mu.Unlock()
}

// planning reports whether r has a running planning worker.
func (s *Service) planning(id worldstate.RobotID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.robots[id]
	return ok && r.planning
}

func (s *Service) plan(ctx context.Context, r *robot, req Request, generation uint64) {
	snap := s.latest.Load()
	if snap == nil {
		s.warn("no world state yet, dropping destination", "robot", r.id.String())
		return
	}
	cfg := s.store.Get()
	mpReq, ok := NewPlanRequest(cfg, *snap, req, s.clock.Now())
	if !ok {
		s.warn("robot not in world state, dropping destination", "robot", r.id.String())
		return
	}
	planCtx, ok := r.startPlan(ctx, generation)
	if !ok {
		return
	}
	path, err := s.planner.Plan(planCtx, mpReq)
	if !r.finishPlan(generation, path, s.pathSink) {
		if err == nil || r.currentGeneration() != generation || ctx.Err() != nil {
			r.logger.Debug("plan discarded after cancel")
			return
		}
		r.logger.Warnw("planning failed", "error", err)
	}
}

// NewPlanRequest turns a destination into a planner request against snap. The goal is nudged
// out of the areas the robot may not enter, robots not observed within StaleAfter of now are
// dropped, and the ball is avoided when requested. It reports false when the robot is not in snap.
func NewPlanRequest(cfg *config.Config, snap worldstate.Snapshot, req Request, now time.Time) (motionplan.Request, bool) {
	start, ok := snap.Robot(req.Robot)
	if !ok {
		return motionplan.Request{}, false
	}
	validator := avoidance.NewValidator(cfg.Field)

	var extra []spatialmath.Circle
	mpReq := motionplan.Request{
		Robot:     req.Robot,
		Start:     start,
		Others:    worldstate.Fresh(snap.Others(req.Robot), now, cfg.Motion.StaleAfter),
		Obstacles: append(validator.DefenseObstacles(req.Robot.Team, req.Goalie), req.Obstacles...),
		Slow:      req.Slow,
	}
	if req.AvoidBall && snap.Ball != nil && cfg.Planner.BallAvoidRadius > 0 {
		ball := *snap.Ball
		mpReq.Ball = &ball
		mpReq.BallAvoidRadius = cfg.Planner.BallAvoidRadius
		extra = append(extra, spatialmath.Circle{Center: ball.Position, Radius: cfg.Planner.BallAvoidRadius})
	}
	mpReq.Goal = validator.Nudge(req.Pose, req.Robot.Team, req.Goalie, extra...)
	return mpReq, true
}
