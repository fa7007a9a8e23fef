// Package zone defines blend zones and the arena that owns them.
package zone

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Faultbox/blendzones/pkg/geometry"
	"github.com/Faultbox/blendzones/pkg/math"
)

// Kind selects how a zone maps a position to a blend weight.
type Kind int

// Zone kinds.
const (
	// Horizontal zones blend by distance from the polygon boundary.
	Horizontal Kind = iota
	// Vertical zones blend by height above a start height.
	Vertical
)

func (k Kind) String() string {
	switch k {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "horizontal":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	default:
		return 0, fmt.Errorf("unknown zone kind %q", s)
	}
}

// Zone is an authored region producing a weight in [0, 1] for a position.
type Zone struct {
	ID       uuid.UUID
	Name     string
	Kind     Kind
	Polygon  geometry.Polygon
	Priority int

	// BlendDistance is the fade width. Never negative.
	BlendDistance float64

	// BlendStartHeight is where the vertical fade begins. Vertical zones only.
	BlendStartHeight float64
}

// Params holds the authored settings of a zone.
type Params struct {
	ID               uuid.UUID // generated when zero
	Name             string
	Kind             Kind
	Polygon          geometry.Polygon
	Priority         int
	BlendDistance    float64
	BlendStartHeight float64
}

// New creates a zone. Negative blend distances are clamped to 0 and negative
// priorities to 0.
func New(p Params) *Zone {
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Zone{
		ID:               id,
		Name:             p.Name,
		Kind:             p.Kind,
		Polygon:          p.Polygon,
		Priority:         max(p.Priority, 0),
		BlendDistance:    max(p.BlendDistance, 0),
		BlendStartHeight: p.BlendStartHeight,
	}
}

// BlendWeight returns the zone's weight at pos, computed in isolation from
// other zones.
func (z *Zone) BlendWeight(pos math.Vec3) float64 {
	switch z.Kind {
	case Horizontal:
		return z.horizontalWeight(pos)
	case Vertical:
		return z.verticalWeight(pos)
	default:
		return 0
	}
}

// horizontalWeight rises with the squared distance from the boundary and
// saturates once the distance reaches BlendDistance.
func (z *Zone) horizontalWeight(pos math.Vec3) float64 {
	p := pos.XY()
	if !z.Polygon.Contains(p) {
		return 0
	}
	if z.BlendDistance <= 0 {
		return 1
	}

	_, distSq, ok := z.Polygon.ClosestPointAndDistanceSquared(p)
	if !ok {
		return 0
	}
	return clamp(distSq/(z.BlendDistance*z.BlendDistance), 0, 1)
}

func (z *Zone) verticalWeight(pos math.Vec3) float64 {
	if !z.Polygon.Contains(pos.XY()) {
		return 0
	}

	h := pos.Height()
	if h < z.BlendStartHeight {
		return 0
	}

	d := max(z.BlendDistance, 0)
	if h >= z.BlendStartHeight+d {
		return 1
	}
	if d > 0 {
		return (h - z.BlendStartHeight) / d
	}
	return 1
}

func (z *Zone) String() string {
	if z.Name != "" {
		return z.Name
	}
	return z.ID.String()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
