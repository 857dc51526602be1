package motionplan

import (
	"context"

	"github.com/golang/geo/r2"

	"go.viam.com/sslmotion/spatialmath"
)

// CandidateResult describes one scored candidate search.
type CandidateResult struct {
	Points  []r2.Point
	Reached bool
	Score   float64
	// Edges holds every edge grown by the search.
	Edges  []spatialmath.Segment
	Winner bool
}

// Exploration is the detail of one planning attempt.
type Exploration struct {
	Path       *Path
	Candidates []CandidateResult
}

// Explore plans like Plan and returns every candidate with its tree. It reads but never updates
// the robot's last path.
func (p *Planner) Explore(ctx context.Context, req Request) (*Exploration, error) {
	slot, ok := p.memory.slot(req.Robot)
	if !ok {
		return nil, ErrUnknownRobot
	}
	slot.mu.Lock()
	slot.settle()
	previous := slot.last
	slot.mu.Unlock()

	cfg := p.store.Get()
	candidates, err := p.candidates(ctx, cfg, &req, previous)
	if err != nil {
		return nil, err
	}
	winner := bestCandidate(candidates)

	out := &Exploration{
		Path: newPath(req.Robot, candidates[winner].points, req.Goal, cfg.Planner.SteadySpeed, req.Slow),
	}
	for i, c := range candidates {
		edges := make([]spatialmath.Segment, 0, len(c.nodes))
		for _, n := range c.nodes {
			if n.parent >= 0 {
				edges = append(edges, spatialmath.Segment{Start: c.nodes[n.parent].pos, End: n.pos})
			}
		}
		out.Candidates = append(out.Candidates, CandidateResult{
			Points:  c.points,
			Reached: c.reached,
			Score:   c.score,
			Edges:   edges,
			Winner:  i == winner,
		})
	}
	return out, nil
}
