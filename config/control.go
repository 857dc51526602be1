package config

import (
	"github.com/pkg/errors"

	"go.viam.com/sslmotion/worldstate"
)

// Breakpoint is one input/output pair of a piecewise-linear table.
type Breakpoint struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// ControlConfig holds the trajectory controller tunables.
type ControlConfig struct {
	// BaseSpeed is the translational speed when both tables return 1.
	BaseSpeed float64 `json:"base_speed"`
	// DistanceTable maps remaining path length to a speed fraction.
	DistanceTable []Breakpoint `json:"distance_table"`
	// NeighborTable maps the adjusted distance to the nearest other robot to a speed fraction.
	NeighborTable []Breakpoint `json:"neighbor_table"`
	// NeighborHeadingGain shrinks the neighbor distance when heading straight at it.
	NeighborHeadingGain float64 `json:"neighbor_heading_gain"`

	// WaypointProgress is the fraction of a segment after which its end waypoint is passed.
	WaypointProgress float64 `json:"waypoint_progress"`
	// NextWaypointWeight blends the direction to the waypoint after the current one.
	NextWaypointWeight float64 `json:"next_waypoint_weight"`

	LinearTolerance  float64 `json:"linear_tolerance"`
	AngularTolerance float64 `json:"angular_tolerance"`

	// AssumedSpeed converts remaining distance to a time to arrival for the rotation command.
	AssumedSpeed     float64 `json:"assumed_speed"`
	MinTimeToArrival float64 `json:"min_time_to_arrival"`
	MaxAngularSpeed  float64 `json:"max_angular_speed"`
	AngleGain        float64 `json:"angle_gain"`

	DecoupleCommandGain float64 `json:"decouple_command_gain"`
	DecoupleSensedGain  float64 `json:"decouple_sensed_gain"`

	// WheelArm is the distance from the robot center to each wheel, in metres.
	WheelArm float64 `json:"wheel_arm"`
	// GlobalScale multiplies every wheel command.
	GlobalScale float64 `json:"global_scale"`
	// RobotScales multiplies the wheel commands of single robots, keyed like "blue-3".
	RobotScales map[string]float64 `json:"robot_scales"`

	MinWheelMagnitude float64 `json:"min_wheel_magnitude"`
	MaxWheelDelta     float64 `json:"max_wheel_delta"`
}

// DefaultControl returns the controller tunables used on the competition robots.
func DefaultControl() ControlConfig {
	return ControlConfig{
		BaseSpeed: 2.0,
		DistanceTable: []Breakpoint{
			{Input: 0, Output: 0.1},
			{Input: 0.3, Output: 0.3},
			{Input: 1, Output: 0.7},
			{Input: 2, Output: 1},
		},
		NeighborTable: []Breakpoint{
			{Input: 0.1, Output: 0.2},
			{Input: 0.3, Output: 0.5},
			{Input: 0.6, Output: 1},
		},
		NeighborHeadingGain: 0.5,

		WaypointProgress:   0.75,
		NextWaypointWeight: 0.3,

		LinearTolerance:  0.02,
		AngularTolerance: 0.03,

		AssumedSpeed:     1.0,
		MinTimeToArrival: 0.1,
		MaxAngularSpeed:  6.0,
		AngleGain:        4.0,

		DecoupleCommandGain: 0.05,
		DecoupleSensedGain:  0.02,

		WheelArm:    0.08,
		GlobalScale: 1.0,

		MinWheelMagnitude: 0.1,
		MaxWheelDelta:     0.3,
	}
}

// Validate checks the controller tunables.
func (c ControlConfig) Validate() error {
	var scales error
	for key, scale := range c.RobotScales {
		if !(scale > 0) {
			scales = combine(scales, errors.Errorf("control.robot_scales[%s] must be positive, got %v", key, scale))
		}
	}
	return combine(
		positive("control.base_speed", c.BaseSpeed),
		validTable("control.distance_table", c.DistanceTable),
		validTable("control.neighbor_table", c.NeighborTable),
		fraction("control.neighbor_heading_gain", c.NeighborHeadingGain),
		fraction("control.waypoint_progress", c.WaypointProgress),
		nonNegative("control.next_waypoint_weight", c.NextWaypointWeight),
		positive("control.linear_tolerance", c.LinearTolerance),
		positive("control.angular_tolerance", c.AngularTolerance),
		positive("control.assumed_speed", c.AssumedSpeed),
		positive("control.min_time_to_arrival", c.MinTimeToArrival),
		positive("control.max_angular_speed", c.MaxAngularSpeed),
		positive("control.angle_gain", c.AngleGain),
		nonNegative("control.decouple_command_gain", c.DecoupleCommandGain),
		nonNegative("control.decouple_sensed_gain", c.DecoupleSensedGain),
		nonNegative("control.wheel_arm", c.WheelArm),
		positive("control.global_scale", c.GlobalScale),
		nonNegative("control.min_wheel_magnitude", c.MinWheelMagnitude),
		positive("control.max_wheel_delta", c.MaxWheelDelta),
		scales,
	)
}

// Scale returns the combined per-robot and global wheel scale for id.
func (c ControlConfig) Scale(id worldstate.RobotID) float64 {
	scale := c.GlobalScale
	if s, ok := c.RobotScales[id.String()]; ok {
		scale *= s
	}
	return scale
}
