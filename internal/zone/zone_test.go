package zone

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"seehuhn.de/go/geom/vec"

	"github.com/Faultbox/blendzones/pkg/geometry"
	bmath "github.com/Faultbox/blendzones/pkg/math"
)

func squarePolygon(size float64) geometry.Polygon {
	return geometry.New(
		vec.Vec2{X: 0, Y: 0},
		vec.Vec2{X: size, Y: 0},
		vec.Vec2{X: size, Y: size},
		vec.Vec2{X: 0, Y: size},
	)
}

func TestNewClampsNegatives(t *testing.T) {
	z := New(Params{Kind: Horizontal, Polygon: squarePolygon(10), BlendDistance: -5, Priority: -3})
	if z.BlendDistance != 0 {
		t.Errorf("BlendDistance = %v, want 0", z.BlendDistance)
	}
	if z.Priority != 0 {
		t.Errorf("Priority = %v, want 0", z.Priority)
	}
	if z.ID == uuid.Nil {
		t.Error("expected a generated ID")
	}
}

func TestNewKeepsID(t *testing.T) {
	id := uuid.MustParse("0b9c0f5e-4a52-4c55-9a8e-3d1b0c2f7e11")
	z := New(Params{ID: id, Name: "hall"})
	if z.ID != id {
		t.Errorf("ID = %v, want %v", z.ID, id)
	}
	if z.String() != "hall" {
		t.Errorf("String() = %q, want hall", z.String())
	}
}

func TestHorizontalBlendWeight(t *testing.T) {
	z := New(Params{Kind: Horizontal, Polygon: squarePolygon(100), BlendDistance: 20})
	tests := []struct {
		name string
		pos  bmath.Vec3
		want float64
	}{
		{"outside", bmath.Vec3{X: 150, Y: 50}, 0},
		{"10 from edge", bmath.Vec3{X: 10, Y: 50}, 0.25},
		{"5 from edge", bmath.Vec3{X: 50, Y: 5}, 0.0625},
		{"at blend distance", bmath.Vec3{X: 80, Y: 50}, 1},
		{"deep inside", bmath.Vec3{X: 50, Y: 50, Z: -300}, 1},
	}
	for _, tt := range tests {
		if got := z.BlendWeight(tt.pos); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: BlendWeight(%v) = %v, want %v", tt.name, tt.pos, got, tt.want)
		}
	}
}

func TestHorizontalBinary(t *testing.T) {
	z := New(Params{Kind: Horizontal, Polygon: squarePolygon(100), BlendDistance: -1})
	if got := z.BlendWeight(bmath.Vec3{X: 1, Y: 50}); got != 1 {
		t.Errorf("inside weight = %v, want 1", got)
	}
	if got := z.BlendWeight(bmath.Vec3{X: -1, Y: 50}); got != 0 {
		t.Errorf("outside weight = %v, want 0", got)
	}
}

// The weight grows with the distance from the boundary and saturates at 1.
func TestHorizontalMonotonic(t *testing.T) {
	z := New(Params{Kind: Horizontal, Polygon: squarePolygon(100), BlendDistance: 30})
	prev := -1.0
	for x := 0.5; x <= 50; x += 0.5 {
		w := z.BlendWeight(bmath.Vec3{X: x, Y: 50})
		if w < prev {
			t.Fatalf("weight decreased at x=%v: %v < %v", x, w, prev)
		}
		if w < 0 || w > 1 {
			t.Fatalf("weight out of range at x=%v: %v", x, w)
		}
		prev = w
	}
	if prev != 1 {
		t.Errorf("weight at center = %v, want 1", prev)
	}
}

func TestVerticalBlendWeight(t *testing.T) {
	z := New(Params{Kind: Vertical, Polygon: squarePolygon(100), BlendStartHeight: 0, BlendDistance: 10})
	tests := []struct {
		h    float64
		want float64
	}{
		{-5, 0},
		{0, 0},
		{5, 0.5},
		{10, 1},
		{20, 1},
	}
	for _, tt := range tests {
		if got := z.BlendWeight(bmath.Vec3{X: 50, Y: 50, Z: tt.h}); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("BlendWeight(h=%v) = %v, want %v", tt.h, got, tt.want)
		}
	}

	if got := z.BlendWeight(bmath.Vec3{X: 500, Y: 50, Z: 20}); got != 0 {
		t.Errorf("outside weight = %v, want 0", got)
	}
}

func TestVerticalZeroBand(t *testing.T) {
	z := New(Params{Kind: Vertical, Polygon: squarePolygon(100), BlendStartHeight: -20})
	tests := []struct {
		h    float64
		want float64
	}{
		{-21, 0},
		{-20, 1},
		{100, 1},
	}
	for _, tt := range tests {
		if got := z.BlendWeight(bmath.Vec3{X: 50, Y: 50, Z: tt.h}); got != tt.want {
			t.Errorf("BlendWeight(h=%v) = %v, want %v", tt.h, got, tt.want)
		}
	}
}

func TestUnknownKind(t *testing.T) {
	z := New(Params{Kind: Kind(9), Polygon: squarePolygon(100)})
	if got := z.BlendWeight(bmath.Vec3{X: 50, Y: 50}); got != 0 {
		t.Errorf("BlendWeight() = %v, want 0", got)
	}
	if z.Kind.String() != "Kind(9)" {
		t.Errorf("String() = %q", z.Kind.String())
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Horizontal, Vertical} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("diagonal"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
