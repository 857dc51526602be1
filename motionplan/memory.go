package motionplan

import (
	"sync"

	"go.uber.org/atomic"

	"go.viam.com/sslmotion/worldstate"
)

// memorySlot holds the last path of one robot. mu is held across a whole plan so planning for
// the same robot never overlaps. forget asks whoever holds mu next to drop last.
type memorySlot struct {
	mu     sync.Mutex
	last   *Path
	forget atomic.Bool
}

// settle applies a pending forget. mu must be held.
func (s *memorySlot) settle() {
	if s.forget.Swap(false) {
		s.last = nil
	}
}

// memory has one slot per possible robot, allocated up front and never freed.
type memory struct {
	slots [2][worldstate.MaxRobotID]memorySlot
}

func (m *memory) slot(id worldstate.RobotID) (*memorySlot, bool) {
	if !id.Valid() {
		return nil, false
	}
	return &m.slots[id.Team][id.ID], true
}
