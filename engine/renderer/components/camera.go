package components

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera produces the view and projection matrices a scene feeds into its
// uniforms. Setters mark the cached matrices dirty; the matrices are
// rebuilt lazily on the next read.
type Camera struct {
	// Do not write these directly; use the setters so the cached
	// matrices get rebuilt.
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	FovY   float32 // vertical field of view, radians
	Aspect float32
	Near   float32
	Far    float32

	viewDirty  bool
	projDirty  bool
	viewMatrix mgl32.Mat4
	projMatrix mgl32.Mat4
}

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.Position = mgl32.Vec3{2, 2, 2}
	c.Target = mgl32.Vec3{0, 0, 0}
	c.Up = mgl32.Vec3{0, 0, 1}
	c.FovY = mgl32.DegToRad(45)
	c.Aspect = 1
	c.Near = 0.1
	c.Far = 10
	c.viewDirty = true
	c.projDirty = true
}

func (c *Camera) SetPosition(position mgl32.Vec3) {
	c.Position = position
	c.viewDirty = true
}

func (c *Camera) SetTarget(target mgl32.Vec3) {
	c.Target = target
	c.viewDirty = true
}

// SetAspect is called when the view size changes, typically from a
// ViewChanged notification after a swapchain rebuild.
func (c *Camera) SetAspect(width, height uint32) {
	if height == 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
	c.projDirty = true
}

func (c *Camera) SetLens(fovY, near, far float32) {
	c.FovY = fovY
	c.Near = near
	c.Far = far
	c.projDirty = true
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	if c.viewDirty {
		c.viewMatrix = mgl32.LookAtV(c.Position, c.Target, c.Up)
		c.viewDirty = false
	}
	return c.viewMatrix
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	if c.projDirty {
		c.projMatrix = mgl32.Perspective(c.FovY, c.Aspect, c.Near, c.Far)
		// Vulkan clip space has Y pointing down, OpenGL's points up.
		c.projMatrix[5] *= -1
		c.projDirty = false
	}
	return c.projMatrix
}

func (c *Camera) Forward() mgl32.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// Orbit rotates the camera position around the Z axis through the target,
// keeping the distance fixed.
func (c *Camera) Orbit(radians float32) {
	offset := c.Position.Sub(c.Target)
	rotated := mgl32.Rotate3DZ(radians).Mul3x1(offset)
	c.Position = c.Target.Add(rotated)
	c.viewDirty = true
}
