// Package motionplan plans collision-free paths for one robot at a time with a bounded
// kinodynamic RRT. Several independent searches run per plan and the best scoring one wins.
package motionplan

import (
	"context"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"

	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/logging"
	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/worldstate"
)

// Request describes one planning attempt.
type Request struct {
	Robot worldstate.RobotID
	Start worldstate.RobotState
	Goal  spatialmath.Pose
	// Others are the robots to avoid, from both teams, excluding Robot.
	Others []worldstate.RobotState
	Ball   *worldstate.BallState
	// BallAvoidRadius is the clearance kept from the ball; zero does not avoid it.
	BallAvoidRadius float64
	Obstacles       []spatialmath.Obstacle
	Slow            bool
}

// Planner plans paths and remembers the last successful path of every robot.
type Planner struct {
	store  *config.Store
	logger logging.Logger

	randMu   sync.Mutex
	randseed *rand.Rand

	memory memory
}

// NewPlanner returns a planner reading its tunables from store. Every candidate search is
// seeded from randSource, so a fixed seed gives repeatable plans.
func NewPlanner(store *config.Store, randSource *rand.Rand, logger logging.Logger) *Planner {
	return &Planner{
		store:    store,
		logger:   logger.Sublogger("planner"),
		randseed: randSource,
	}
}

// Plan runs one planning attempt for req.Robot and stores the result as the robot's last path.
// Failing to reach the goal is not an error; the best partial path is returned instead. A panic
// during planning is logged and returned as an error, leaving the stored path unchanged. When ctx
// ends during the search nothing is stored and the context error is returned.
func (p *Planner) Plan(ctx context.Context, req Request) (path *Path, err error) {
	slot, ok := p.memory.slot(req.Robot)
	if !ok {
		return nil, ErrUnknownRobot
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	defer slot.settle()
	defer func() {
		if r := recover(); r != nil {
			err = newPlanPanicError(req.Robot, r)
			p.logger.Errorw("planning failed", "robot", req.Robot.String(), "error", err)
			path = nil
		}
	}()

	slot.settle()
	cfg := p.store.Get()
	candidates, err := p.candidates(ctx, cfg, &req, slot.last)
	if err != nil {
		p.logger.Errorw("planning failed", "robot", req.Robot.String(), "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	best := candidates[bestCandidate(candidates)]
	p.logger.CDebugw(ctx, "planned",
		"robot", req.Robot.String(),
		"reached", best.reached,
		"waypoints", len(best.points),
		"score", best.score,
	)

	path = newPath(req.Robot, best.points, req.Goal, cfg.Planner.SteadySpeed, req.Slow)
	slot.last = path
	return path, nil
}

// LastPath returns the last path planned for id, or nil.
func (p *Planner) LastPath(id worldstate.RobotID) *Path {
	slot, ok := p.memory.slot(id)
	if !ok {
		return nil
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	slot.settle()
	return slot.last
}

// Forget clears the last path of id so the next plan is scored without continuity. It does not
// wait for a plan in progress; that plan's result is dropped from memory when it finishes.
func (p *Planner) Forget(id worldstate.RobotID) {
	slot, ok := p.memory.slot(id)
	if !ok {
		return
	}
	slot.forget.Store(true)
	if slot.mu.TryLock() {
		slot.settle()
		slot.mu.Unlock()
	}
}

// candidates runs every candidate search concurrently and scores the results in order.
func (p *Planner) candidates(ctx context.Context, cfg *config.Config, req *Request, previous *Path) ([]candidate, error) {
	n := cfg.Planner.Candidates
	seeds := make([]*rand.Rand, n)
	p.randMu.Lock()
	for i := range seeds {
		seeds[i] = rand.New(rand.NewSource(int64(p.randseed.Int())))
	}
	p.randMu.Unlock()

	results := make([]candidate, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = newCandidatePanicError(i, r)
				}
			}()
			c := newSearch(cfg, req, seeds[i]).run(gctx)
			c.score = scorePath(cfg.Planner, c.points, req.Goal.Point, c.nodes[0].vel, previous)
			results[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
