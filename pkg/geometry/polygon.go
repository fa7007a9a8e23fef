// Package geometry implements the planar polygon queries used by blend zones.
package geometry

import (
	"seehuhn.de/go/geom/vec"
)

// RayLength is the Y coordinate the containment ray is cast to. Polygons
// must not extend beyond it along the Y axis.
const RayLength = 100000000.0

// Polygon is a closed polygon defined by its vertices in order.
// The last vertex connects back to the first one.
type Polygon struct {
	points []vec.Vec2
}

// New creates a polygon from a list of vertices. The slice is copied.
func New(pts ...vec.Vec2) Polygon {
	cp := make([]vec.Vec2, len(pts))
	copy(cp, pts)
	return Polygon{points: cp}
}

// Len returns the number of vertices.
func (p Polygon) Len() int {
	return len(p.points)
}

// IsEmpty returns true if the polygon has fewer than 3 vertices.
func (p Polygon) IsEmpty() bool {
	return len(p.points) < 3
}

// Points returns a copy of the vertices.
func (p Polygon) Points() []vec.Vec2 {
	cp := make([]vec.Vec2, len(p.points))
	copy(cp, p.points)
	return cp
}

// Edge returns the i-th edge as (start, end). Wraps around. A polygon
// without vertices has no edges and yields two zero points.
func (p Polygon) Edge(i int) (vec.Vec2, vec.Vec2) {
	n := len(p.points)
	if n == 0 {
		return vec.Vec2{}, vec.Vec2{}
	}
	i %= n
	if i < 0 {
		i += n
	}
	return p.points[i], p.points[(i+1)%n]
}

// Bounds returns the axis-aligned bounding box of the vertices.
// ok is false for a polygon without vertices.
func (p Polygon) Bounds() (lo, hi vec.Vec2, ok bool) {
	if len(p.points) == 0 {
		return vec.Vec2{}, vec.Vec2{}, false
	}
	lo, hi = p.points[0], p.points[0]
	for _, v := range p.points[1:] {
		lo.X = min(lo.X, v.X)
		lo.Y = min(lo.Y, v.Y)
		hi.X = max(hi.X, v.X)
		hi.Y = max(hi.Y, v.Y)
	}
	return lo, hi, true
}

// Contains reports whether pt lies inside the polygon using the even-odd rule.
//
// A ray is cast from pt towards +Y up to RayLength and the polygon edges it
// crosses are counted. A ray passing exactly through a vertex shared by two
// edges is counted once. Points on the boundary give a stable but otherwise
// unspecified answer.
func (p Polygon) Contains(pt vec.Vec2) bool {
	n := len(p.points)
	if n < 3 {
		return false
	}

	a1 := pt
	a2 := vec.Vec2{X: a1.X, Y: RayLength}
	count := 0

	for i := 0; i < n; i++ {
		b1, b2 := p.Edge(i)

		if !intersects(a1, a2, b1, b2) {
			continue
		}
		// Edge lies on the ray.
		if Orient(b1, a1, b2) == Colinear {
			return onSegment(a2, b2, a1)
		}
		count++
	}

	return count%2 == 1
}

// ClosestPointAndDistanceSquared returns the point on the polygon boundary
// closest to pt and its squared distance. ok is false for a polygon without
// vertices. When several edges are equally close, the first one wins.
func (p Polygon) ClosestPointAndDistanceSquared(pt vec.Vec2) (closest vec.Vec2, distSq float64, ok bool) {
	switch len(p.points) {
	case 0:
		return vec.Vec2{}, 0, false
	case 1:
		closest = p.points[0]
		return closest, distanceSquared(closest, pt), true
	}

	for i := range p.points {
		start, end := p.Edge(i)
		c := ClosestPointOnSegment(pt, start, end)
		d := distanceSquared(pt, c)
		if !ok || d < distSq {
			closest, distSq, ok = c, d, true
		}
	}
	return closest, distSq, ok
}

// ClosestPointOnSegment projects pt onto the segment [start, end] and clamps
// the result to the segment.
func ClosestPointOnSegment(pt, start, end vec.Vec2) vec.Vec2 {
	seg := end.Sub(start)
	d1 := pt.Sub(start).Dot(seg)
	if d1 <= 0 {
		return start
	}
	d2 := seg.Dot(seg)
	if d2 <= d1 {
		return end
	}
	return start.Add(seg.Mul(d1 / d2))
}

func distanceSquared(a, b vec.Vec2) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}
