package spatialmath

import (
	"encoding/json"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// ObstacleKind tags the shape held by an Obstacle.
type ObstacleKind int

const (
	// CircleObstacle is a disc.
	CircleObstacle ObstacleKind = iota
	// RectObstacle is an axis-aligned rectangle.
	RectObstacle
)

func (k ObstacleKind) String() string {
	switch k {
	case CircleObstacle:
		return "circle"
	case RectObstacle:
		return "rect"
	}
	return "unknown"
}

// Obstacle is a static forbidden zone: either a circle or an axis-aligned rectangle. The zero
// value is a circle of radius zero, which excludes nothing.
type Obstacle struct {
	kind   ObstacleKind
	circle Circle
	rect   r2.Rect
}

// NewCircleObstacle wraps a circle.
func NewCircleObstacle(c Circle) Obstacle {
	return Obstacle{kind: CircleObstacle, circle: c}
}

// NewRectObstacle wraps a rectangle.
func NewRectObstacle(r r2.Rect) Obstacle {
	return Obstacle{kind: RectObstacle, rect: r}
}

// Kind returns which shape the obstacle holds.
func (o Obstacle) Kind() ObstacleKind {
	return o.kind
}

// Circle returns the circle shape; only meaningful when Kind is CircleObstacle.
func (o Obstacle) Circle() Circle {
	return o.circle
}

// Rect returns the rectangle shape; only meaningful when Kind is RectObstacle.
func (o Obstacle) Rect() r2.Rect {
	return o.rect
}

// Contains reports whether p is inside the obstacle.
func (o Obstacle) Contains(p r2.Point) bool {
	switch o.kind {
	case CircleObstacle:
		return o.circle.Contains(p)
	case RectObstacle:
		return o.rect.ContainsPoint(p)
	}
	panic(errors.Errorf("unhandled obstacle kind %d", o.kind))
}

// DistanceTo returns the distance from p to the obstacle, zero inside.
func (o Obstacle) DistanceTo(p r2.Point) float64 {
	switch o.kind {
	case CircleObstacle:
		d := Distance(o.circle.Center, p) - o.circle.Radius
		if d < 0 {
			return 0
		}
		return d
	case RectObstacle:
		return Distance(o.rect.ClampPoint(p), p)
	}
	panic(errors.Errorf("unhandled obstacle kind %d", o.kind))
}

// IntersectsSegment reports whether the segment touches the obstacle.
func (o Obstacle) IntersectsSegment(s Segment) bool {
	switch o.kind {
	case CircleObstacle:
		return o.circle.IntersectsSegment(s)
	case RectObstacle:
		return s.IntersectsRect(o.rect)
	}
	panic(errors.Errorf("unhandled obstacle kind %d", o.kind))
}

type obstacleJSON struct {
	Type   string    `json:"type"`
	Center *r2.Point `json:"center,omitempty"`
	Radius float64   `json:"radius,omitempty"`
	Min    *r2.Point `json:"min,omitempty"`
	Max    *r2.Point `json:"max,omitempty"`
}

// MarshalJSON encodes the obstacle as a tagged object.
func (o Obstacle) MarshalJSON() ([]byte, error) {
	switch o.kind {
	case CircleObstacle:
		c := o.circle.Center
		return json.Marshal(obstacleJSON{Type: o.kind.String(), Center: &c, Radius: o.circle.Radius})
	case RectObstacle:
		lo, hi := o.rect.Lo(), o.rect.Hi()
		return json.Marshal(obstacleJSON{Type: o.kind.String(), Min: &lo, Max: &hi})
	}
	return nil, errors.Errorf("unhandled obstacle kind %d", o.kind)
}

// UnmarshalJSON decodes a tagged object written by MarshalJSON.
func (o *Obstacle) UnmarshalJSON(data []byte) error {
	var raw obstacleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case "circle":
		if raw.Center == nil {
			return errors.New("circle obstacle needs a center")
		}
		if raw.Radius < 0 {
			return errors.Errorf("circle obstacle radius must be non-negative, got %f", raw.Radius)
		}
		*o = NewCircleObstacle(Circle{Center: *raw.Center, Radius: raw.Radius})
	case "rect":
		if raw.Min == nil || raw.Max == nil {
			return errors.New("rect obstacle needs min and max corners")
		}
		*o = NewRectObstacle(NewRect(*raw.Min, *raw.Max))
	default:
		return errors.Errorf("unknown obstacle type %q", raw.Type)
	}
	return nil
}
