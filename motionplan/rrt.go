package motionplan

import (
	"context"
	"math"
	"math/rand"

	"github.com/golang/geo/r2"

	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/kdtree"
	"go.viam.com/sslmotion/spatialmath"
)

// search is one kinodynamic tree search from the request's start toward its goal. It owns its
// node arena and spatial index and is discarded after the candidate is extracted.
type search struct {
	cfg    config.PlannerConfig
	bounds r2.Rect
	req    *Request
	rnd    *rand.Rand

	nodes []node
	index *kdtree.Tree[int]

	goal      r2.Point
	startDist float64
	// closest is the smallest distance to the goal reached by any node.
	closest float64
}

// candidate is the point sequence produced by one search.
type candidate struct {
	points  []r2.Point
	reached bool
	score   float64
	nodes   []node
}

func newSearch(cfg *config.Config, req *Request, rnd *rand.Rand) *search {
	start := req.Start.Pose.Point
	goal := req.Goal.Point
	bounds := cfg.Field.Bounds()
	s := &search{
		cfg:       cfg.Planner,
		bounds:    bounds,
		req:       req,
		rnd:       rnd,
		nodes:     make([]node, 0, cfg.Planner.MaxTreeSize),
		index:     kdtree.New[int](bounds.AddPoint(start).AddPoint(goal)),
		goal:      goal,
		startDist: spatialmath.Distance(start, goal),
	}
	s.closest = s.startDist

	vel := req.Start.Velocity
	if speed := vel.Norm(); speed > s.cfg.MaxObservedSpeed {
		vel = vel.Mul(s.cfg.MaxObservedSpeed / speed)
	}
	s.insert(node{pos: start, vel: vel, parent: -1})
	return s
}

func (s *search) insert(n node) int {
	idx := len(s.nodes)
	s.nodes = append(s.nodes, n)
	s.index.Insert(n.pos, idx)
	if d := spatialmath.Distance(n.pos, s.goal); d < s.closest {
		s.closest = d
	}
	return idx
}

// run grows the tree until the goal is within the success distance or a budget runs out. When
// the goal is not reached, the path to the node nearest the goal is returned.
func (s *search) run(ctx context.Context) candidate {
	threshold := SuccessDistance(s.cfg, s.startDist)

	active := 0
	aim := s.goal
	aimIsGoal := true
	retries := 0
	for len(s.nodes) < s.cfg.MaxTreeSize && ctx.Err() == nil {
		if spatialmath.Distance(s.nodes[active].pos, s.goal) < threshold {
			return candidate{points: pathTo(s.nodes, active), reached: true, nodes: s.nodes}
		}

		if next, ok := s.extend(active, aim, aimIsGoal); ok {
			active = s.insert(next)
			if !aimIsGoal && next.pos == aim {
				aim, aimIsGoal = s.goal, true
			}
			continue
		}

		retries++
		if retries > s.cfg.MaxRetries {
			break
		}
		if !aimIsGoal {
			aim, aimIsGoal = s.goal, true
			continue
		}
		aim = s.sample(active)
		aimIsGoal = false
		if nearest, ok := s.index.Nearest(aim); ok {
			active = nearest.Value
		}
	}

	best := 0
	if nearest, ok := s.index.Nearest(s.goal); ok {
		best = nearest.Value
	}
	reached := spatialmath.Distance(s.nodes[best].pos, s.goal) < threshold
	return candidate{points: pathTo(s.nodes, best), reached: reached, nodes: s.nodes}
}

// sample draws a random aim point around a point between the active node and the goal. The
// closer the search has come to the goal, the nearer to the goal the center is placed.
func (s *search) sample(active int) r2.Point {
	from := s.nodes[active].pos
	progress := 1.
	if s.startDist > 0 {
		progress = math.Max(0, math.Min(1, 1-s.closest/s.startDist))
	}
	center := spatialmath.Interpolate(from, s.goal, progress)
	sigma := s.cfg.SampleSpread * math.Max(spatialmath.Distance(from, s.goal), s.cfg.MinSampleSpread)
	p := r2.Point{
		X: center.X + s.rnd.NormFloat64()*sigma,
		Y: center.Y + s.rnd.NormFloat64()*sigma,
	}
	return s.bounds.ClampPoint(p)
}
