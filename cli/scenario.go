package cli

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/motion"
	"go.viam.com/sslmotion/motionplan"
	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/worldstate"
)

// Scenario is a single planning problem: one robot, its destination, and the world around it.
type Scenario struct {
	Robot  worldstate.RobotState   `json:"robot"`
	Goal   spatialmath.Pose        `json:"goal"`
	Others []worldstate.RobotState `json:"others"`
	Ball   *worldstate.BallState   `json:"ball,omitempty"`
	// Obstacles are added to the defense areas.
	Obstacles []spatialmath.Obstacle `json:"obstacles"`
	AvoidBall bool                   `json:"avoid_ball"`
	Goalie    bool                   `json:"goalie"`
	Slow      bool                   `json:"slow"`
}

// LoadScenario reads a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading scenario")
	}
	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrapf(err, "parsing scenario %q", path)
	}
	if err := sc.Validate(); err != nil {
		return nil, errors.Wrapf(err, "scenario %q", path)
	}
	return &sc, nil
}

// Validate checks that every robot id is usable and unique.
func (sc *Scenario) Validate() error {
	seen := map[worldstate.RobotID]bool{}
	for _, r := range sc.Snapshot().Robots {
		if !r.ID.Valid() {
			return errors.Errorf("invalid robot id %s", r.ID)
		}
		if seen[r.ID] {
			return errors.Errorf("duplicate robot id %s", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

// Snapshot returns the world state of the scenario.
func (sc *Scenario) Snapshot() worldstate.Snapshot {
	return worldstate.Snapshot{
		Robots: append([]worldstate.RobotState{sc.Robot}, sc.Others...),
		Ball:   sc.Ball,
	}
}

// Destination returns the destination request of the scenario robot.
func (sc *Scenario) Destination() motion.Request {
	return motion.Request{
		Robot:     sc.Robot.ID,
		Pose:      sc.Goal,
		AvoidBall: sc.AvoidBall,
		Goalie:    sc.Goalie,
		Slow:      sc.Slow,
		Obstacles: sc.Obstacles,
	}
}

// PlanRequest builds the planner request the motion service would issue for the scenario.
func (sc *Scenario) PlanRequest(cfg *config.Config, now time.Time) motionplan.Request {
	req, _ := motion.NewPlanRequest(cfg, sc.Snapshot(), sc.Destination(), now)
	return req
}
