package core

import (
	"math"
	"testing"
)

func TestVec3_Cross(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec3
		expected Vec3
	}{
		{"x cross y", NewVec3(1, 0, 0), NewVec3(0, 1, 0), NewVec3(0, 0, 1)},
		{"y cross z", NewVec3(0, 1, 0), NewVec3(0, 0, 1), NewVec3(1, 0, 0)},
		{"z cross x", NewVec3(0, 0, 1), NewVec3(1, 0, 0), NewVec3(0, 1, 0)},
		{"parallel", NewVec3(2, 0, 0), NewVec3(5, 0, 0), NewVec3(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.a.Cross(tt.b)
			if !result.Equals(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestVec3_Normalize(t *testing.T) {
	v := NewVec3(3, 4, 0).Normalize()
	if math.Abs(v.Length()-1.0) > 1e-12 {
		t.Errorf("Expected unit length, got %f", v.Length())
	}
	if !v.ApproxEquals(NewVec3(0.6, 0.8, 0), 1e-12) {
		t.Errorf("Expected (0.6, 0.8, 0), got %v", v)
	}

	zero := Vec3{}.Normalize()
	if !zero.Equals(Vec3{}) {
		t.Errorf("Normalizing zero vector should return zero, got %v", zero)
	}
}

func TestVec3_NearZero(t *testing.T) {
	tests := []struct {
		name     string
		v        Vec3
		expected bool
	}{
		{"zero", NewVec3(0, 0, 0), true},
		{"tiny", NewVec3(1e-9, -1e-9, 5e-9), true},
		{"one component large", NewVec3(1e-9, 1e-7, 0), false},
		{"unit", NewVec3(1, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.NearZero(); got != tt.expected {
				t.Errorf("NearZero(%v) = %t, expected %t", tt.v, got, tt.expected)
			}
		})
	}
}

func TestReflect(t *testing.T) {
	// 45 degree incidence onto a floor
	v := NewVec3(1, -1, 0)
	n := NewVec3(0, 1, 0)
	r := Reflect(v, n)
	if !r.Equals(NewVec3(1, 1, 0)) {
		t.Errorf("Expected (1, 1, 0), got %v", r)
	}

	// Head-on reflection reverses the vector
	r = Reflect(NewVec3(0, 0, -1), NewVec3(0, 0, 1))
	if !r.Equals(NewVec3(0, 0, 1)) {
		t.Errorf("Expected (0, 0, 1), got %v", r)
	}
}

func TestVec3_ClampAndSqrt(t *testing.T) {
	v := NewVec3(-0.5, 0.25, 4).Clamp(0, 0.999)
	if !v.Equals(NewVec3(0, 0.25, 0.999)) {
		t.Errorf("Clamp: got %v", v)
	}

	s := NewVec3(0.25, 1, 0).Sqrt()
	if !s.Equals(NewVec3(0.5, 1, 0)) {
		t.Errorf("Sqrt: got %v", s)
	}
}

func TestVec3_IsFinite(t *testing.T) {
	if !NewVec3(1, 2, 3).IsFinite() {
		t.Error("Expected finite vector")
	}
	if NewVec3(math.NaN(), 0, 0).IsFinite() {
		t.Error("NaN component should not be finite")
	}
	if NewVec3(0, math.Inf(-1), 0).IsFinite() {
		t.Error("Inf component should not be finite")
	}
}

func TestNewRay_NormalizesDirection(t *testing.T) {
	ray := NewRay(NewVec3(1, 2, 3), NewVec3(0, 0, -5))
	if !ray.Direction.Equals(NewVec3(0, 0, -1)) {
		t.Errorf("Expected normalized direction (0, 0, -1), got %v", ray.Direction)
	}

	p := ray.At(2)
	if !p.Equals(NewVec3(1, 2, 1)) {
		t.Errorf("Expected point (1, 2, 1), got %v", p)
	}
}
