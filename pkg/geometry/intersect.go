package geometry

import "seehuhn.de/go/geom/vec"

// Orientation is the turn direction of an ordered point triple.
type Orientation int

// Orientation values.
const (
	Colinear Orientation = iota
	Clockwise
	Counterclockwise
)

func (o Orientation) String() string {
	switch o {
	case Clockwise:
		return "clockwise"
	case Counterclockwise:
		return "counterclockwise"
	default:
		return "colinear"
	}
}

// Orient returns the orientation of the triple (p1, p2, p3).
func Orient(p1, p2, p3 vec.Vec2) Orientation {
	v := (p2.Y-p1.Y)*(p3.X-p2.X) - (p3.Y-p2.Y)*(p2.X-p1.X)
	switch {
	case v == 0:
		return Colinear
	case v < 0:
		return Counterclockwise
	default:
		return Clockwise
	}
}

// intersects reports whether the ray segment [a1, a2] hits the edge [b1, b2]
// in a way that counts as a crossing.
func intersects(a1, a2, b1, b2 vec.Vec2) bool {
	o1 := Orient(a1, a2, b1)
	o2 := Orient(a1, a2, b2)
	o3 := Orient(b1, b2, a1)
	o4 := Orient(b1, b2, a2)

	if o1 != o2 && o3 != o4 {
		r := a2.Sub(a1)
		s := b2.Sub(b1)
		t := cross(b1.Sub(a1), s) / cross(r, s)
		hit := a1.Add(r.Mul(t))

		// A ray through a vertex touches two edges. Only the edge whose
		// other end is not to the left of the ray origin counts.
		// NOTE: the comparison uses X, the axis perpendicular to the ray.
		if (hit == b1 && b2.X < a1.X) || (hit == b2 && b1.X < a1.X) {
			return false
		}
		return true
	}

	switch {
	case o1 == Colinear && onSegment(a1, a2, b1):
		return true
	case o2 == Colinear && onSegment(a1, a2, b2):
		return true
	case o3 == Colinear && onSegment(b1, b2, a1):
		return true
	case o4 == Colinear && onSegment(b1, b2, a2):
		return true
	}
	return false
}

// onSegment reports whether pt lies within the bounding box of [start, end].
// Callers have already established that the three points are colinear.
func onSegment(start, end, pt vec.Vec2) bool {
	return pt.X <= max(start.X, end.X) && pt.X >= min(start.X, end.X) &&
		pt.Y <= max(start.Y, end.Y) && pt.Y >= min(start.Y, end.Y)
}

func cross(a, b vec.Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}
