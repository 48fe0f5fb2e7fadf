package vmath

import (
	"math"
	"testing"
)

const tol = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < tol
}

func nearVec(a, b Vec3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

func TestNormalizeZeroFallback(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{"zero", Vec3{}, Vec3{}},
		{"below epsilon", Vec3{0.00001, 0, 0}, Vec3{}},
		{"axis", Vec3{0, 0, -5}, Vec3{0, 0, -1}},
		{"diagonal", Vec3{3, 4, 0}, Vec3{0.6, 0.8, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); !nearVec(got, tt.want) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClampLen(t *testing.T) {
	v := Vec3{30, 40, 0}.ClampLen(10)
	if !near(v.Len(), 10) {
		t.Errorf("Expected length 10, got %v", v.Len())
	}
	short := Vec3{1, 0, 0}
	if short.ClampLen(10) != short {
		t.Error("Short vectors should be unchanged")
	}
}

func TestFromEulerYaw(t *testing.T) {
	// Positive rotation about Y turns -Z toward -X.
	q := FromEuler(0, math.Pi/2, 0)
	got := Forward.Rotate(q)
	if !nearVec(got, Vec3{-1, 0, 0}) {
		t.Errorf("Expected (-1,0,0), got %v", got)
	}

	// RotateY must agree with the quaternion form.
	alt := Forward.RotateY(math.Pi / 2)
	if !nearVec(alt, got) {
		t.Errorf("RotateY disagrees: %v vs %v", alt, got)
	}
}

func TestFromEulerPitch(t *testing.T) {
	q := FromEuler(math.Pi/2, 0, 0)
	got := Forward.Rotate(q)
	if !nearVec(got, Vec3{0, 1, 0}) {
		t.Errorf("Positive pitch should point forward up, got %v", got)
	}
}

func TestFromUnitVectors(t *testing.T) {
	from := Vec3{0, 0, 1}
	tests := []Vec3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{0, 0, -1},
		Vec3{1, 1, 1}.Normalize(),
	}

	for _, to := range tests {
		q := FromUnitVectors(from, to)
		if got := from.Rotate(q); !nearVec(got, to) {
			t.Errorf("FromUnitVectors(%v -> %v) rotates to %v", from, to, got)
		}
	}
}

func TestSlerpEndpoints(t *testing.T) {
	a := Identity
	b := FromEuler(0, math.Pi/2, 0)

	if got := a.Slerp(b, 0); got != a {
		t.Errorf("t=0 should return start, got %v", got)
	}
	if got := a.Slerp(b, 1); got != b {
		t.Errorf("t=1 should return target, got %v", got)
	}

	mid := a.Slerp(b, 0.5)
	want := FromEuler(0, math.Pi/4, 0)
	if !near(math.Abs(mid.Dot(want)), 1) {
		t.Errorf("Midpoint %v, want %v", mid, want)
	}
	if !near(mid.Len(), 1) {
		t.Errorf("Slerp result should stay unit length, got %v", mid.Len())
	}
}

func TestMulComposesRotations(t *testing.T) {
	q := FromEuler(0, math.Pi/4, 0)
	twice := q.Mul(q)
	got := Forward.Rotate(twice)
	if !nearVec(got, Vec3{-1, 0, 0}) {
		t.Errorf("Two 45 degree turns should equal 90, got %v", got)
	}
}

func TestFromYawPitchKeepsPitchLocal(t *testing.T) {
	// Yawed a quarter turn left, nosing up must still point up.
	q := FromYawPitch(math.Pi/2, math.Pi/2)
	if got := Forward.Rotate(q); !nearVec(got, Vec3{0, 1, 0}) {
		t.Errorf("Expected (0,1,0), got %v", got)
	}

	q = FromYawPitch(math.Pi/2, 0)
	if got := Forward.Rotate(q); !nearVec(got, Vec3{-1, 0, 0}) {
		t.Errorf("Expected (-1,0,0), got %v", got)
	}
}

func TestSlerpTakesShortArc(t *testing.T) {
	b := FromEuler(0, math.Pi/2, 0)
	flipped := Quat{-b.X, -b.Y, -b.Z, -b.W}

	got := Identity.Slerp(flipped, 0.5)
	want := Identity.Slerp(b, 0.5)
	if !near(math.Abs(got.Dot(want)), 1) {
		t.Errorf("Negated target should give the same midpoint: %v vs %v", got, want)
	}
	if dir := Forward.Rotate(got); !nearVec(dir, Forward.RotateY(math.Pi/4)) {
		t.Errorf("Midpoint should be a 45 degree turn, got %v", dir)
	}
}

func TestQuatNormalizeDegenerate(t *testing.T) {
	if got := (Quat{}).Normalize(); got != Identity {
		t.Errorf("Zero quaternion should normalize to identity, got %v", got)
	}
	if got := (Quat{0, 0, 0, 3}).Normalize(); !near(got.W, 1) {
		t.Errorf("Expected unit W, got %v", got)
	}
}

func TestRotateMatchesEulerComposition(t *testing.T) {
	v := Vec3{1, 2, -3}
	q := FromYawPitch(0.7, -0.4)

	got := v.Rotate(q)
	want := v.Rotate(FromEuler(-0.4, 0, 0)).Rotate(FromEuler(0, 0.7, 0))
	if !nearVec(got, want) {
		t.Errorf("Rotate(%v) = %v, want %v", v, got, want)
	}
	if !near(got.Len(), v.Len()) {
		t.Errorf("Rotation should keep length, %v vs %v", got.Len(), v.Len())
	}
}
