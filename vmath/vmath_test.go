package vmath

import (
	"math"
	"testing"
)

func TestV3FRotateY(t *testing.T) {
	tests := []struct {
		name  string
		in    Vec3F
		angle float64
		want  Vec3F
	}{
		{"forward quarter turn goes right", Forward, math.Pi / 2, Right},
		{"right quarter turn goes back", Right, math.Pi / 2, Vec3F{0, 0, -1}},
		{"up is invariant", Up, 1.234, Up},
		{"half turn", Vec3F{1, 2, 3}, math.Pi, Vec3F{-1, 2, -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := V3FRotateY(tt.in, tt.angle)
			if !V3FApproxEqual(got, tt.want, Epsilon) {
				t.Errorf("V3FRotateY(%v, %f) = %v, want %v", tt.in, tt.angle, got, tt.want)
			}
		})
	}
}

// TestSignedAngleMatchesRotation checks that rotating a by the signed angle lands on b
func TestSignedAngleMatchesRotation(t *testing.T) {
	a := Vec3F{3, 0, 1}
	for _, angle := range []float64{-2.5, -1, -0.1, 0.1, 0.7, 2.9} {
		b := V3FRotateY(a, angle)
		got := V3FSignedAngleY(a, b)
		if !ApproxEqual(got, angle, 1e-9) {
			t.Errorf("signed angle for %f: got %f", angle, got)
		}
	}
}

func TestV3FAngleDegenerate(t *testing.T) {
	if got := V3FAngle(Vec3F{}, Right); got != 0 {
		t.Errorf("Expected 0 for zero vector, got %f", got)
	}
	if got := V3FAngle(Right, V3FScale(Right, 1+1e-16)); math.IsNaN(got) {
		t.Error("Expected clamped angle, got NaN")
	}
}

func TestTransformComposeInverse(t *testing.T) {
	parent := Transform{Position: Vec3F{4, 1, -2}, Yaw: 0.8}
	child := Transform{Position: Vec3F{-1, 0, 7}, Yaw: -2.1}

	world := parent.Compose(child)
	back := parent.Inverse().Compose(world)
	if !back.ApproxEqual(child, Epsilon) {
		t.Errorf("Expected %+v after inverse compose, got %+v", child, back)
	}

	p := Vec3F{0.5, 0, 2}
	if got, want := world.Apply(p), parent.Apply(child.Apply(p)); !V3FApproxEqual(got, want, Epsilon) {
		t.Errorf("Compose.Apply = %v, want %v", got, want)
	}
}

func TestTransformRotateAround(t *testing.T) {
	pivot := Vec3F{-20, 0, 0}
	tr := Transform{}

	rotated := tr.RotateAround(pivot, math.Pi/2)
	// Origin sits 20 units right of the pivot; a quarter turn puts it 20 units behind
	want := Vec3F{-20, 0, -20}
	if !V3FApproxEqual(rotated.Position, want, Epsilon) {
		t.Errorf("Expected position %v, got %v", want, rotated.Position)
	}
	if !ApproxEqual(rotated.Yaw, math.Pi/2, Epsilon) {
		t.Errorf("Expected yaw π/2, got %f", rotated.Yaw)
	}

	// Distance to the pivot is preserved for any local point
	local := Vec3F{2, 0, 5}
	before := V3FDist(tr.Apply(local), pivot)
	after := V3FDist(rotated.Apply(local), pivot)
	if !ApproxEqual(before, after, Epsilon) {
		t.Errorf("Pivot distance changed: %f -> %f", before, after)
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{2*math.Pi + 0.5, 0.5},
		{-2*math.Pi - 0.5, -0.5},
	}
	for _, tt := range tests {
		if got := WrapAngle(tt.in); !ApproxEqual(got, tt.want, 1e-12) {
			t.Errorf("WrapAngle(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestClosestLinePoints(t *testing.T) {
	// X axis and a vertical-free line along Z through x=-20
	c1, c2, ok := ClosestLinePoints(Vec3F{-2, 0, 0}, Vec3F{4, 0, 0}, Vec3F{-20, 0, 18}, Vec3F{0, 0, 4})
	if !ok {
		t.Fatal("Expected intersecting lines to be solvable")
	}
	want := Vec3F{-20, 0, 0}
	if !V3FApproxEqual(c1, want, Epsilon) || !V3FApproxEqual(c2, want, Epsilon) {
		t.Errorf("Expected both points at %v, got %v and %v", want, c1, c2)
	}

	// Skew lines: closest points differ by the vertical separation
	c1, c2, ok = ClosestLinePoints(Vec3F{0, 0, 0}, Right, Vec3F{0, 3, 5}, Forward)
	if !ok {
		t.Fatal("Expected skew lines to be solvable")
	}
	if !V3FApproxEqual(c1, Vec3F{0, 0, 0}, Epsilon) || !V3FApproxEqual(c2, Vec3F{0, 3, 0}, Epsilon) {
		t.Errorf("Unexpected skew closest points %v, %v", c1, c2)
	}

	if _, _, ok := ClosestLinePoints(Vec3F{}, Right, Vec3F{0, 0, 10}, V3FScale(Right, -2)); ok {
		t.Error("Expected parallel lines to be rejected")
	}
}

func TestFastRandDeterministic(t *testing.T) {
	a, b := NewFastRand(42), NewFastRand(42)
	for i := 0; i < 100; i++ {
		x, y := a.IntN(7), b.IntN(7)
		if x != y {
			t.Fatalf("Sequences diverged at %d: %d vs %d", i, x, y)
		}
		if x < 0 || x >= 7 {
			t.Fatalf("IntN out of range: %d", x)
		}
	}
	if NewFastRand(0).IntN(0) != 0 {
		t.Error("Expected IntN(0) to return 0")
	}
}
