package components

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCameraViewMatrixTracksSetters(t *testing.T) {
	camera := NewCamera()

	want := mgl32.LookAtV(camera.Position, camera.Target, camera.Up)
	if got := camera.ViewMatrix(); got != want {
		t.Errorf("ViewMatrix() = %v, want %v", got, want)
	}

	camera.SetPosition(mgl32.Vec3{5, 0, 1})
	camera.SetTarget(mgl32.Vec3{0, 1, 0})
	want = mgl32.LookAtV(mgl32.Vec3{5, 0, 1}, mgl32.Vec3{0, 1, 0}, camera.Up)
	if got := camera.ViewMatrix(); got != want {
		t.Errorf("ViewMatrix() after setters = %v, want %v", got, want)
	}
}

func TestCameraProjectionFlipsY(t *testing.T) {
	camera := NewCamera()
	camera.SetAspect(1280, 720)

	raw := mgl32.Perspective(camera.FovY, camera.Aspect, camera.Near, camera.Far)
	got := camera.ProjectionMatrix()

	if got[5] != -raw[5] {
		t.Errorf("projection[5] = %v, want %v", got[5], -raw[5])
	}
	if got[0] != raw[0] {
		t.Errorf("projection[0] = %v, want %v unchanged", got[0], raw[0])
	}
}

func TestCameraSetAspectIgnoresZeroHeight(t *testing.T) {
	camera := NewCamera()
	camera.SetAspect(1280, 720)
	before := camera.Aspect

	camera.SetAspect(800, 0)
	if camera.Aspect != before {
		t.Errorf("Aspect = %v after zero-height resize, want %v", camera.Aspect, before)
	}
}

func TestCameraOrbitKeepsDistance(t *testing.T) {
	camera := NewCamera()
	camera.SetTarget(mgl32.Vec3{1, 1, 0})
	camera.SetPosition(mgl32.Vec3{4, 1, 2})
	before := camera.Position.Sub(camera.Target).Len()

	camera.Orbit(mgl32.DegToRad(90))
	after := camera.Position.Sub(camera.Target).Len()

	if math.Abs(float64(after-before)) > 1e-5 {
		t.Errorf("orbit changed target distance from %v to %v", before, after)
	}
	// Height above the target plane is preserved by a Z-axis orbit.
	if math.Abs(float64(camera.Position.Z()-2)) > 1e-5 {
		t.Errorf("orbit changed Z from 2 to %v", camera.Position.Z())
	}
}

func TestCameraForwardIsUnitLength(t *testing.T) {
	camera := NewCamera()
	forward := camera.Forward()
	if math.Abs(float64(forward.Len()-1)) > 1e-6 {
		t.Errorf("Forward() length = %v, want 1", forward.Len())
	}
	// The default camera looks from {2,2,2} back at the origin.
	if forward.X() >= 0 || forward.Y() >= 0 || forward.Z() >= 0 {
		t.Errorf("Forward() = %v, want all components negative", forward)
	}
}
