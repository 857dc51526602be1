package motion

import (
	"context"

	"github.com/samber/lo"

	"go.viam.com/sslmotion/control"
	"go.viam.com/sslmotion/worldstate"
)

// controlLoop turns every snapshot into one command per robot that has a path.
func (s *Service) controlLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.snapshots.Ready():
		}
		snap, ok := s.snapshots.Take()
		if !ok {
			continue
		}
		for _, rs := range snap.Robots {
			if !rs.ID.Valid() {
				s.warn("ignoring robot with unknown id", "robot", rs.ID.String())
			}
		}
		for _, r := range s.following() {
			s.command(r, snap)
		}
	}
}

// following returns the robots that have a path or still need a stop command.
func (s *Service) following() []*robot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Filter(lo.Values(s.robots), func(r *robot, _ int) bool {
		return r.path.Load() != nil || r.stop.Load()
	})
}

// command runs the controller for one robot. A panic is contained to that robot's tick.
func (s *Service) command(r *robot, snap worldstate.Snapshot) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Errorw("control failed", "panic", rec)
		}
	}()
	path := r.path.Load()
	if path == nil {
		if r.stop.CompareAndSwap(true, false) {
			s.controller.Reset(r.id)
			s.commandSink(r.id, control.WheelSpeeds{})
		}
		return
	}
	s.commandSink(r.id, s.controller.Command(r.id, path, snap))
}
