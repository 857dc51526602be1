package config

import (
	"github.com/pkg/errors"
)

// PlannerConfig holds the search budget, kinematic limits and scoring weights of the
// kinodynamic planner.
type PlannerConfig struct {
	MaxTreeSize int `json:"max_tree_size"`
	MaxRetries  int `json:"max_retries"`
	// Candidates is how many independent searches are scored per plan.
	Candidates int `json:"candidates"`

	// StepTime is the simulated duration of one tree extension, in seconds.
	StepTime         float64 `json:"step_time"`
	MaxAccel         float64 `json:"max_accel"`
	MaxSpeed         float64 `json:"max_speed"`
	MaxObservedSpeed float64 `json:"max_observed_speed"`
	// BrakeFactor scales the stopping-distance speed limit near the aim point.
	BrakeFactor float64 `json:"brake_factor"`

	// The search succeeds once within max(MinSuccessDistance, start distance - SuccessMargin).
	SuccessMargin      float64 `json:"success_margin"`
	MinSuccessDistance float64 `json:"min_success_distance"`

	// The avoidance distance to other robots shrinks linearly from AvoidFarRadius to
	// AvoidNearRadius as the node gets within AvoidShrinkDistance of the goal.
	AvoidNearRadius     float64 `json:"avoid_near_radius"`
	AvoidFarRadius      float64 `json:"avoid_far_radius"`
	AvoidShrinkDistance float64 `json:"avoid_shrink_distance"`
	// BallAvoidRadius is used when a request asks to avoid the ball without a radius.
	BallAvoidRadius float64 `json:"ball_avoid_radius"`

	// DeflectionRange is how far ahead a dynamic obstacle must be to bend the goal heading.
	DeflectionRange float64 `json:"deflection_range"`
	// DeflectionClearance multiplies the avoidance distance when computing the tangent.
	DeflectionClearance float64 `json:"deflection_clearance"`

	SampleSpread    float64 `json:"sample_spread"`
	MinSampleSpread float64 `json:"min_sample_spread"`

	// SteadySpeed is the speed assigned to every waypoint but the last.
	SteadySpeed float64 `json:"steady_speed"`

	RemainingWeight      float64 `json:"remaining_weight"`
	ExcessLengthWeight   float64 `json:"excess_length_weight"`
	TurnWeight           float64 `json:"turn_weight"`
	VelocityWeight       float64 `json:"velocity_weight"`
	ContinuityWeight     float64 `json:"continuity_weight"`
	ContinuitySpeedFloor float64 `json:"continuity_speed_floor"`
}

// DefaultPlanner returns the planner tunables used on the competition robots.
func DefaultPlanner() PlannerConfig {
	return PlannerConfig{
		MaxTreeSize: 500,
		MaxRetries:  80,
		Candidates:  4,

		StepTime:         0.05,
		MaxAccel:         3.0,
		MaxSpeed:         2.0,
		MaxObservedSpeed: 4.0,
		BrakeFactor:      0.8,

		SuccessMargin:      3.0,
		MinSuccessDistance: 0.03,

		AvoidNearRadius:     0.2,
		AvoidFarRadius:      0.35,
		AvoidShrinkDistance: 1.0,
		BallAvoidRadius:     0.5,

		DeflectionRange:     1.0,
		DeflectionClearance: 1.2,

		SampleSpread:    0.5,
		MinSampleSpread: 0.3,

		SteadySpeed: 1.5,

		RemainingWeight:      10,
		ExcessLengthWeight:   2,
		TurnWeight:           0.5,
		VelocityWeight:       1,
		ContinuityWeight:     1,
		ContinuitySpeedFloor: 0.3,
	}
}

// Validate checks the planner tunables.
func (p PlannerConfig) Validate() error {
	var order error
	if p.AvoidNearRadius > p.AvoidFarRadius {
		order = errors.Errorf("planner.avoid_near_radius (%v) must not exceed planner.avoid_far_radius (%v)",
			p.AvoidNearRadius, p.AvoidFarRadius)
	}
	return combine(
		atLeastOne("planner.max_tree_size", p.MaxTreeSize),
		atLeastOne("planner.max_retries", p.MaxRetries),
		atLeastOne("planner.candidates", p.Candidates),
		positive("planner.step_time", p.StepTime),
		positive("planner.max_accel", p.MaxAccel),
		positive("planner.max_speed", p.MaxSpeed),
		positive("planner.max_observed_speed", p.MaxObservedSpeed),
		positive("planner.brake_factor", p.BrakeFactor),
		nonNegative("planner.success_margin", p.SuccessMargin),
		positive("planner.min_success_distance", p.MinSuccessDistance),
		nonNegative("planner.avoid_near_radius", p.AvoidNearRadius),
		nonNegative("planner.avoid_far_radius", p.AvoidFarRadius),
		nonNegative("planner.avoid_shrink_distance", p.AvoidShrinkDistance),
		nonNegative("planner.ball_avoid_radius", p.BallAvoidRadius),
		nonNegative("planner.deflection_range", p.DeflectionRange),
		nonNegative("planner.deflection_clearance", p.DeflectionClearance),
		positive("planner.sample_spread", p.SampleSpread),
		positive("planner.min_sample_spread", p.MinSampleSpread),
		positive("planner.steady_speed", p.SteadySpeed),
		nonNegative("planner.continuity_speed_floor", p.ContinuitySpeedFloor),
		order,
	)
}

// AvoidDistance returns the clearance to keep from other robots for a node distToGoal away
// from the goal.
func (p PlannerConfig) AvoidDistance(distToGoal float64) float64 {
	if p.AvoidShrinkDistance <= 0 || distToGoal >= p.AvoidShrinkDistance {
		return p.AvoidFarRadius
	}
	t := distToGoal / p.AvoidShrinkDistance
	return p.AvoidNearRadius + (p.AvoidFarRadius-p.AvoidNearRadius)*t
}
