package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1.5, 0.1, 100)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestPerspective(t *testing.T) {
	fov := float32(math.Pi / 4) // 45 degrees
	aspect := float32(1.0)
	near := float32(0.1)
	far := float32(100.0)

	m := Perspective(fov, aspect, near, far)

	// Should be a valid projection matrix (not identity)
	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	// Element [15] should be 0 for perspective projection
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	// Element [11] should be -1 for perspective projection
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAt(t *testing.T) {
	eye := Vec3{0, 0, 5}
	center := Vec3{0, 0, 0}
	up := Vec3{0, 1, 0}

	m := LookAt(eye, center, up)

	// Transform eye position - should result in origin (or close to it)
	// This is a simple sanity check
	if m[15] != 1 {
		t.Errorf("LookAt [15] should be 1, got %f", m[15])
	}
	v := m.MulVec4(Vec4{eye.X, eye.Y, eye.Z, 1})
	if abs(v[0]) > 0.001 || abs(v[1]) > 0.001 || abs(v[2]) > 0.001 {
		t.Errorf("LookAt should map eye to origin, got %v", v)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	view := LookAt(Vec3{3, 8, -5}, Vec3{0, 0, 0}, Vec3{0, 1, 0})
	proj := Perspective(float32(math.Pi/3), 16.0/9.0, 0.5, 2048)
	vp := proj.Mul(view)
	inv := vp.Inverse()

	p := Vec4{10, 2, -30, 1}
	clip := vp.MulVec4(p)
	back := inv.MulVec4(clip)

	for i := 0; i < 4; i++ {
		if abs(back[i]-p[i]) > 0.01 {
			t.Errorf("Inverse round trip element %d: got %f, want %f", i, back[i], p[i])
		}
	}
}

func TestInverseSingular(t *testing.T) {
	var zero Mat4
	inv := zero.Inverse()
	if inv != Identity() {
		t.Error("Inverse of singular matrix should return identity")
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
