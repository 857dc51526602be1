package avoidance

import (
	"github.com/golang/geo/r2"
	"github.com/samber/lo"

	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/worldstate"
)

// Validator answers defense-area questions for one field geometry.
type Validator struct {
	field config.FieldConfig
	areas map[worldstate.Team][]spatialmath.Obstacle
}

// NewValidator precomputes both defense areas of field.
func NewValidator(field config.FieldConfig) *Validator {
	v := &Validator{field: field, areas: map[worldstate.Team][]spatialmath.Obstacle{}}
	for _, team := range worldstate.Teams {
		area := lo.Map(field.DefenseCircles(team), func(c spatialmath.Circle, _ int) spatialmath.Obstacle {
			return spatialmath.NewCircleObstacle(c)
		})
		v.areas[team] = append(area, spatialmath.NewRectObstacle(field.DefenseRect(team)))
	}
	return v
}

// IsValid reports whether p lies outside both defense areas.
func (v *Validator) IsValid(p r2.Point) bool {
	for _, team := range worldstate.Teams {
		if v.inArea(team, p) {
			return false
		}
	}
	return true
}

// IsValidFor is IsValid with the goalie exempt from its own team's area.
func (v *Validator) IsValidFor(p r2.Point, team worldstate.Team, goalie bool) bool {
	for _, side := range worldstate.Teams {
		if goalie && side == team {
			continue
		}
		if v.inArea(side, p) {
			return false
		}
	}
	return true
}

func (v *Validator) inArea(team worldstate.Team, p r2.Point) bool {
	return lo.SomeBy(v.areas[team], func(o spatialmath.Obstacle) bool { return o.Contains(p) })
}

// DefenseObstacles returns the defense-area shapes a robot of team must not enter.
func (v *Validator) DefenseObstacles(team worldstate.Team, goalie bool) []spatialmath.Obstacle {
	var out []spatialmath.Obstacle
	for _, side := range worldstate.Teams {
		if goalie && side == team {
			continue
		}
		out = append(out, v.areas[side]...)
	}
	return out
}

// DefenseCircles returns the circles that fully cover the defense areas a robot of team must
// stay out of, for nudging destinations. Each area is covered by its two quarter circles plus
// one circle around the joining rectangle.
func (v *Validator) DefenseCircles(team worldstate.Team, goalie bool) []spatialmath.Circle {
	var out []spatialmath.Circle
	for _, side := range worldstate.Teams {
		if goalie && side == team {
			continue
		}
		out = append(out, v.field.DefenseCircles(side)...)
		rect := v.field.DefenseRect(side)
		out = append(out, spatialmath.Circle{
			Center: rect.Center(),
			Radius: rect.Size().Norm() / 2,
		})
	}
	return out
}

// Nudge moves a destination for a robot of team out of every defense area it may not enter,
// and then out of the extra circles, keeping it within the field bounds.
func (v *Validator) Nudge(target spatialmath.Pose, team worldstate.Team, goalie bool, extra ...spatialmath.Circle) spatialmath.Pose {
	circles := append(v.DefenseCircles(team, goalie), extra...)
	return AvoidAll(target, circles, v.field.Bounds())
}
