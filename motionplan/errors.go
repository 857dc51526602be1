package motionplan

import (
	"github.com/pkg/errors"

	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/worldstate"
)

// ErrUnknownRobot is returned for robot ids outside the supported range.
var ErrUnknownRobot = errors.New("unknown robot id")

func newPlanPanicError(id worldstate.RobotID, recovered interface{}) error {
	return errors.Errorf("planning for robot %s panicked: %v", id, recovered)
}

func newCandidatePanicError(i int, recovered interface{}) error {
	return errors.Errorf("candidate search %d panicked: %v", i, recovered)
}

func errNoObstacleKind(kind spatialmath.ObstacleKind) error {
	return errors.Errorf("unhandled obstacle kind %s", kind)
}
