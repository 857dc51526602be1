package motionplan

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/worldstate"
)

func newTestSearch(req *Request) *search {
	return newSearch(config.Default(), req, rand.New(rand.NewSource(1)))
}

func TestStartVelocityIsClamped(t *testing.T) {
	req := straightRequest(spatialmath.NewPose(0, 0, 0), spatialmath.NewPose(1, 0, 0))
	req.Start.Velocity = r2.Point{X: 30, Y: 40}
	s := newTestSearch(&req)
	test.That(t, s.nodes[0].vel.Norm(), test.ShouldAlmostEqual, config.DefaultPlanner().MaxObservedSpeed)
	test.That(t, s.nodes[0].parent, test.ShouldEqual, -1)
}

func TestExtendShortcutLandsOnAim(t *testing.T) {
	req := straightRequest(spatialmath.NewPose(0, 0, 0), spatialmath.NewPose(1, 0, 0))
	s := newTestSearch(&req)
	aim := r2.Point{X: 0.005, Y: 0.002}
	next, ok := s.extend(0, aim, false)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, next.pos, test.ShouldResemble, aim)
	test.That(t, next.parent, test.ShouldEqual, 0)
	test.That(t, next.elapsed, test.ShouldAlmostEqual, s.cfg.StepTime)
}

func TestExtendRespectsLimits(t *testing.T) {
	req := straightRequest(spatialmath.NewPose(0, 0, 0), spatialmath.NewPose(3, 0, 0))
	s := newTestSearch(&req)
	prev := s.nodes[0]
	for i := 0; i < 30; i++ {
		next, ok := s.extend(len(s.nodes)-1, s.goal, true)
		test.That(t, ok, test.ShouldBeTrue)
		accel := next.vel.Sub(prev.vel).Norm() / s.cfg.StepTime
		test.That(t, accel, test.ShouldBeLessThanOrEqualTo, s.cfg.MaxAccel+1e-9)
		test.That(t, next.vel.Norm(), test.ShouldBeLessThanOrEqualTo, s.cfg.MaxSpeed+1e-9)
		s.insert(next)
		prev = next
	}
}

func TestExtendRejectsOvershoot(t *testing.T) {
	req := straightRequest(spatialmath.NewPose(0, 0, 0), spatialmath.NewPose(3, 0, 0))
	req.Start.Velocity = r2.Point{X: 2}
	s := newTestSearch(&req)
	// moving at full speed, an aim just ahead cannot be reached without passing it
	_, ok := s.extend(0, r2.Point{X: 0.06}, false)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestDeflectAroundRobotAhead(t *testing.T) {
	req := straightRequest(spatialmath.NewPose(0, 0, 0), spatialmath.NewPose(2, 0, 0))
	req.Others = []worldstate.RobotState{{Pose: spatialmath.NewPose(0.6, 0.05, 0)}}
	s := newTestSearch(&req)
	toGoal := s.goal.Sub(s.nodes[0].pos)
	dir := s.deflect(s.nodes[0], toGoal)
	test.That(t, dir.Norm(), test.ShouldAlmostEqual, toGoal.Norm())
	// obstacle slightly to the left, so the heading turns right of it
	test.That(t, dir.Y, test.ShouldBeLessThan, 0)

	rel := r2.Point{X: 0.6, Y: 0.05}
	clear := s.cfg.AvoidDistance(2) * s.cfg.DeflectionClearance
	u, err := spatialmath.Unit(dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, math.Abs(u.Cross(rel)), test.ShouldAlmostEqual, clear)

	// out of range or behind does not deflect
	req.Others[0].Pose = spatialmath.NewPose(-0.5, 0, 0)
	test.That(t, s.deflect(s.nodes[0], toGoal), test.ShouldResemble, toGoal)
	req.Others[0].Pose = spatialmath.NewPose(0.6, 1.5, 0)
	test.That(t, s.deflect(s.nodes[0], toGoal), test.ShouldResemble, toGoal)
}

func TestDeflectUsesNearestThreat(t *testing.T) {
	req := straightRequest(spatialmath.NewPose(0, 0, 0), spatialmath.NewPose(2, 0, 0))
	req.Others = []worldstate.RobotState{
		{Pose: spatialmath.NewPose(0.9, -0.1, 0)},
		{Pose: spatialmath.NewPose(0.5, 0.1, 0)},
	}
	s := newTestSearch(&req)
	dir := s.deflect(s.nodes[0], s.goal)
	// the nearer robot is on the left
	test.That(t, dir.Y, test.ShouldBeLessThan, 0)
}

func TestDeflectExtrapolatesMovingRobots(t *testing.T) {
	req := straightRequest(spatialmath.NewPose(0, 0, 0), spatialmath.NewPose(2, 0, 0))
	// robot is off to the side now but crosses the line one second later
	req.Others = []worldstate.RobotState{{Pose: spatialmath.NewPose(0.6, -1, 0), Velocity: r2.Point{Y: 1}}}
	s := newTestSearch(&req)
	now := node{pos: r2.Point{}, elapsed: 0}
	test.That(t, s.deflect(now, s.goal), test.ShouldResemble, s.goal)
	later := node{pos: r2.Point{}, elapsed: 1}
	test.That(t, s.deflect(later, s.goal), test.ShouldNotResemble, s.goal)
}

func TestValidField(t *testing.T) {
	req := straightRequest(spatialmath.NewPose(0, 0, 0), spatialmath.NewPose(1, 0, 0))
	s := newTestSearch(&req)
	edge := s.bounds.X.Hi
	test.That(t, s.insideField(r2.Point{X: edge - 0.01}, r2.Point{X: edge + 0.01}), test.ShouldBeFalse)
	// outside and moving back in is allowed
	test.That(t, s.insideField(r2.Point{X: edge + 0.5}, r2.Point{X: edge + 0.4}), test.ShouldBeTrue)
	test.That(t, s.insideField(r2.Point{X: edge + 0.5}, r2.Point{X: edge + 0.6}), test.ShouldBeFalse)
}

func TestValidEscapes(t *testing.T) {
	req := straightRequest(spatialmath.NewPose(0, 0, 0), spatialmath.NewPose(3, 0, 0))
	req.Others = []worldstate.RobotState{{Pose: spatialmath.NewPose(0.1, 0, 0)}}
	req.Obstacles = []spatialmath.Obstacle{
		spatialmath.NewRectObstacle(spatialmath.NewRect(r2.Point{X: -1, Y: 1}, r2.Point{X: 1, Y: 2})),
		spatialmath.NewCircleObstacle(spatialmath.Circle{Center: r2.Point{X: -2, Y: 0}, Radius: 0.5}),
	}
	s := newTestSearch(&req)

	// inside the robot's clearance: moving away passes, moving closer does not
	test.That(t, s.valid(node{pos: r2.Point{}}, node{pos: r2.Point{X: -0.01}}), test.ShouldBeTrue)
	test.That(t, s.valid(node{pos: r2.Point{}}, node{pos: r2.Point{X: 0.01}}), test.ShouldBeFalse)

	// rectangle: entering is rejected, going deeper is rejected, leaving is fine
	test.That(t, s.clearOfObstacles(spatialmath.Segment{Start: r2.Point{Y: 0.9}, End: r2.Point{Y: 1.1}}), test.ShouldBeFalse)
	test.That(t, s.clearOfObstacles(spatialmath.Segment{Start: r2.Point{Y: 1.1}, End: r2.Point{Y: 1.2}}), test.ShouldBeFalse)
	test.That(t, s.clearOfObstacles(spatialmath.Segment{Start: r2.Point{Y: 1.2}, End: r2.Point{Y: 1.1}}), test.ShouldBeTrue)

	// circle: crossing from outside is rejected, leaving is fine
	test.That(t, s.clearOfObstacles(spatialmath.Segment{Start: r2.Point{X: -1.4}, End: r2.Point{X: -1.6}}), test.ShouldBeFalse)
	test.That(t, s.clearOfObstacles(spatialmath.Segment{Start: r2.Point{X: -1.8}, End: r2.Point{X: -1.4}}), test.ShouldBeTrue)
	test.That(t, s.clearOfObstacles(spatialmath.Segment{Start: r2.Point{X: -1.8}, End: r2.Point{X: -1.9}}), test.ShouldBeFalse)
}

func TestSampleStaysInField(t *testing.T) {
	req := straightRequest(spatialmath.NewPose(4, 2.5, 0), spatialmath.NewPose(4.7, 3.2, 0))
	s := newTestSearch(&req)
	for i := 0; i < 200; i++ {
		test.That(t, s.bounds.ContainsPoint(s.sample(0)), test.ShouldBeTrue)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	req := straightRequest(spatialmath.NewPose(0, 0, 0), spatialmath.NewPose(2, 0, 0))
	s := newTestSearch(&req)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := s.run(ctx)
	test.That(t, c.reached, test.ShouldBeFalse)
	test.That(t, c.points, test.ShouldResemble, []r2.Point{{}})
}

func TestPathTo(t *testing.T) {
	nodes := []node{
		{pos: r2.Point{X: 0}, parent: -1},
		{pos: r2.Point{X: 1}, parent: 0},
		{pos: r2.Point{X: 5}, parent: 0},
		{pos: r2.Point{X: 2}, parent: 1},
	}
	test.That(t, pathTo(nodes, 3), test.ShouldResemble, []r2.Point{{X: 0}, {X: 1}, {X: 2}})
	test.That(t, pathTo(nodes, 0), test.ShouldResemble, []r2.Point{{X: 0}})
}

func TestScorePath(t *testing.T) {
	cfg := config.DefaultPlanner()
	goal := r2.Point{X: 2}
	straight := []r2.Point{{}, {X: 1}, {X: 2}}
	bent := []r2.Point{{}, {X: 1, Y: 1}, {X: 2}}
	short := []r2.Point{{}, {X: 1}}

	test.That(t, scorePath(cfg, straight, goal, r2.Point{}, nil), test.ShouldAlmostEqual, 0)
	test.That(t, scorePath(cfg, straight, goal, r2.Point{}, nil),
		test.ShouldBeGreaterThan, scorePath(cfg, bent, goal, r2.Point{}, nil))
	test.That(t, scorePath(cfg, straight, goal, r2.Point{}, nil),
		test.ShouldBeGreaterThan, scorePath(cfg, short, goal, r2.Point{}, nil))

	// moving forward rewards heading forward
	forward := scorePath(cfg, straight, goal, r2.Point{X: 1}, nil)
	backward := scorePath(cfg, straight, goal, r2.Point{X: -1}, nil)
	test.That(t, forward-backward, test.ShouldAlmostEqual, 2*cfg.VelocityWeight)

	// staying on the previous path beats leaving it, even when stationary
	previous := newPath(blue0, bent, spatialmath.Pose{Point: goal}, 1, false)
	test.That(t, scorePath(cfg, bent, goal, r2.Point{}, previous),
		test.ShouldBeGreaterThan, scorePath(cfg, bent, goal, r2.Point{}, newPath(blue0, straight, spatialmath.Pose{Point: goal}, 1, false)))

	test.That(t, bestCandidate([]candidate{{score: 1}, {score: 3}, {score: 3}}), test.ShouldEqual, 1)
}
