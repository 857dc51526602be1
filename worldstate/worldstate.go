// Package worldstate holds the sensed state of every robot and the ball as seen by the motion
// layer. Values here are produced by the vision pipeline and are read-only to planning and
// control.
package worldstate

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/sslmotion/spatialmath"
)

// MaxRobotID bounds robot ids per team; valid ids are in [0, MaxRobotID).
const MaxRobotID = 16

// Team identifies which side a robot plays for.
type Team int

const (
	// Blue is the blue team.
	Blue Team = iota
	// Yellow is the yellow team.
	Yellow
)

// Teams lists every team in index order.
var Teams = []Team{Blue, Yellow}

func (t Team) String() string {
	switch t {
	case Blue:
		return "blue"
	case Yellow:
		return "yellow"
	}
	return fmt.Sprintf("team(%d)", int(t))
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == Blue {
		return Yellow
	}
	return Blue
}

// MarshalJSON encodes the team by name.
func (t Team) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a team name.
func (t *Team) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "blue":
		*t = Blue
	case "yellow":
		*t = Yellow
	default:
		return errors.Errorf("unknown team %q", s)
	}
	return nil
}

// RobotID is the unique key of a robot.
type RobotID struct {
	Team Team `json:"team"`
	ID   int  `json:"id"`
}

// Valid reports whether the id is within the supported range.
func (id RobotID) Valid() bool {
	return (id.Team == Blue || id.Team == Yellow) && id.ID >= 0 && id.ID < MaxRobotID
}

func (id RobotID) String() string {
	return fmt.Sprintf("%s-%d", id.Team, id.ID)
}

// RobotState is the latest sensed state of one robot.
type RobotState struct {
	ID              RobotID          `json:"id"`
	Pose            spatialmath.Pose `json:"pose"`
	Velocity        r2.Point         `json:"velocity"`
	AngularVelocity float64          `json:"angular_velocity"`
	LastObserved    time.Time        `json:"last_observed"`
}

// PositionAt extrapolates the robot's position dt seconds ahead at constant velocity.
func (r RobotState) PositionAt(dt float64) r2.Point {
	return r.Pose.Point.Add(r.Velocity.Mul(dt))
}

// BallState is the latest sensed state of the ball. A zero LastObserved carries no staleness
// information.
type BallState struct {
	Position     r2.Point  `json:"position"`
	Velocity     r2.Point  `json:"velocity"`
	LastObserved time.Time `json:"last_observed"`
}

// PositionAt extrapolates the ball position dt seconds ahead at constant velocity.
func (b BallState) PositionAt(dt float64) r2.Point {
	return b.Position.Add(b.Velocity.Mul(dt))
}

// Snapshot is one consistent view of the world.
type Snapshot struct {
	Robots []RobotState `json:"robots"`
	Ball   *BallState   `json:"ball,omitempty"`
	Time   time.Time    `json:"time"`
}

// Robot returns the state of id if it is present.
func (s Snapshot) Robot(id RobotID) (RobotState, bool) {
	return lo.Find(s.Robots, func(r RobotState) bool { return r.ID == id })
}

// Others returns every robot other than id, from both teams.
func (s Snapshot) Others(id RobotID) []RobotState {
	return lo.Filter(s.Robots, func(r RobotState, _ int) bool { return r.ID != id })
}

// Fresh returns the robots observed no earlier than maxAge before now. Robots with a zero
// LastObserved are kept.
func Fresh(robots []RobotState, now time.Time, maxAge time.Duration) []RobotState {
	if maxAge <= 0 {
		return robots
	}
	return lo.Filter(robots, func(r RobotState, _ int) bool {
		return r.LastObserved.IsZero() || now.Sub(r.LastObserved) <= maxAge
	})
}
