package scene

import (
	reMath "backdrop/math"
)

// Camera is a perspective camera aimed at a target point.
// FOV is the vertical field of view in degrees. The projection matrix is
// only recomputed by UpdateProjectionMatrix, so several parameters can be
// changed before paying for one rebuild.
type Camera struct {
	Position reMath.Vec3
	Target   reMath.Vec3
	Up       reMath.Vec3

	FOV    float32
	Aspect float32
	Near   float32
	Far    float32

	projectionMatrix reMath.Mat4
}

func NewCamera(fov, aspect, near, far float32) *Camera {
	c := &Camera{
		Position: reMath.Vec3Zero,
		Target:   reMath.Vec3{X: 0, Y: 0, Z: -1},
		Up:       reMath.Vec3Up,
		FOV:      fov,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
	}
	c.UpdateProjectionMatrix()
	return c
}

func (c *Camera) SetPosition(pos reMath.Vec3) {
	c.Position = pos
}

func (c *Camera) LookAt(target reMath.Vec3) {
	c.Target = target
}

// SetAspect stores a new aspect ratio. Non-positive or non-finite values
// are ignored.
func (c *Camera) SetAspect(aspect float32) {
	if aspect > 0 && aspect < float32(1<<24) {
		c.Aspect = aspect
	}
}

func (c *Camera) UpdateProjectionMatrix() {
	c.projectionMatrix = reMath.Mat4Perspective(reMath.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

func (c *Camera) ViewMatrix() reMath.Mat4 {
	return reMath.Mat4LookAt(c.Position, c.Target, c.upVector())
}

func (c *Camera) ProjectionMatrix() reMath.Mat4 {
	return c.projectionMatrix
}

func (c *Camera) ViewProjectionMatrix() reMath.Mat4 {
	return c.ViewMatrix().Mul(c.projectionMatrix)
}

func (c *Camera) Forward() reMath.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// upVector falls back to +Z when the view direction is parallel to Up.
func (c *Camera) upVector() reMath.Vec3 {
	f := c.Forward()
	if d := f.Dot(c.Up.Normalize()); d > 0.999 || d < -0.999 {
		return reMath.Vec3Front
	}
	return c.Up
}
