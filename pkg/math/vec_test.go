package math

import (
	"testing"

	"seehuhn.de/go/geom/vec"
)

func TestVec3Add(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}
	got := a.Add(b)
	want := Vec3{5, 7, 9}
	if got != want {
		t.Errorf("Vec3.Add() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{3, 4, 0}
	if got := v.Length(); got != 5 {
		t.Errorf("Vec3.Length() = %v, want 5", got)
	}
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{10, 20, -4}
	tests := []struct {
		t    float64
		want Vec3
	}{
		{0, a},
		{1, b},
		{0.5, Vec3{5, 10, -2}},
	}
	for _, tt := range tests {
		if got := a.Lerp(b, tt.t); got != tt.want {
			t.Errorf("Lerp(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestVec3XY(t *testing.T) {
	v := Vec3{1.5, -2, 7}
	if got := v.XY(); got != (vec.Vec2{X: 1.5, Y: -2}) {
		t.Errorf("Vec3.XY() = %v, want (1.5, -2)", got)
	}
	if v.Height() != 7 {
		t.Errorf("Vec3.Height() = %v, want 7", v.Height())
	}
}
