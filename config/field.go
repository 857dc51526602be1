package config

import (
	"github.com/golang/geo/r2"
	"go.uber.org/multierr"

	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/worldstate"
)

// FieldConfig describes the playing field. The origin is the field center, X runs along the
// long axis toward the goals.
type FieldConfig struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	// BoundaryMargin is how far past the touch and goal lines robots may drive.
	BoundaryMargin float64 `json:"boundary_margin"`
	// DefenseRadius is the radius of the two quarter circles centered on the goal posts' line.
	DefenseRadius float64 `json:"defense_radius"`
	// DefenseStretch is the straight segment joining the two quarter circles.
	DefenseStretch float64 `json:"defense_stretch"`
	RobotRadius    float64 `json:"robot_radius"`
	BallRadius     float64 `json:"ball_radius"`
	// BlueDefendsNegativeX selects which goal the blue team defends.
	BlueDefendsNegativeX bool `json:"blue_defends_negative_x"`
}

// DefaultField returns the division B field.
func DefaultField() FieldConfig {
	return FieldConfig{
		Length:               9.0,
		Width:                6.0,
		BoundaryMargin:       0.3,
		DefenseRadius:        1.0,
		DefenseStretch:       0.5,
		RobotRadius:          0.09,
		BallRadius:           0.0215,
		BlueDefendsNegativeX: true,
	}
}

// Validate checks the field geometry.
func (f FieldConfig) Validate() error {
	return combine(
		positive("field.length", f.Length),
		positive("field.width", f.Width),
		nonNegative("field.boundary_margin", f.BoundaryMargin),
		positive("field.defense_radius", f.DefenseRadius),
		nonNegative("field.defense_stretch", f.DefenseStretch),
		positive("field.robot_radius", f.RobotRadius),
		nonNegative("field.ball_radius", f.BallRadius),
	)
}

// Bounds returns the legal driving area including the boundary margin.
func (f FieldConfig) Bounds() r2.Rect {
	hx := f.Length/2 + f.BoundaryMargin
	hy := f.Width/2 + f.BoundaryMargin
	return spatialmath.NewRect(r2.Point{X: -hx, Y: -hy}, r2.Point{X: hx, Y: hy})
}

// GoalX returns the X coordinate of the goal line team defends.
func (f FieldConfig) GoalX(team worldstate.Team) float64 {
	negative := f.BlueDefendsNegativeX == (team == worldstate.Blue)
	if negative {
		return -f.Length / 2
	}
	return f.Length / 2
}

// DefenseCircles returns the two circles of the defense area in front of team's goal.
func (f FieldConfig) DefenseCircles(team worldstate.Team) []spatialmath.Circle {
	x := f.GoalX(team)
	half := f.DefenseStretch / 2
	return []spatialmath.Circle{
		{Center: r2.Point{X: x, Y: half}, Radius: f.DefenseRadius},
		{Center: r2.Point{X: x, Y: -half}, Radius: f.DefenseRadius},
	}
}

// DefenseRect returns the rectangle joining the two defense circles of team's area.
func (f FieldConfig) DefenseRect(team worldstate.Team) r2.Rect {
	x := f.GoalX(team)
	inward := f.DefenseRadius
	if x > 0 {
		inward = -inward
	}
	half := f.DefenseStretch / 2
	return spatialmath.NewRect(r2.Point{X: x, Y: -half}, r2.Point{X: x + inward, Y: half})
}

func combine(errs ...error) error {
	return multierr.Combine(errs...)
}
