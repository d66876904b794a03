package core

import (
	"backdrop/math"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
	ColorRed   = Color{1, 0, 0, 1}
	ColorGreen = Color{0, 1, 0, 1}
	ColorBlue  = Color{0, 0, 1, 1}
)

// ColorHex converts a packed 0xRRGGBB value into an opaque Color.
func ColorHex(hex uint32) Color {
	return Color{
		R: float32((hex>>16)&0xff) / 255,
		G: float32((hex>>8)&0xff) / 255,
		B: float32(hex&0xff) / 255,
		A: 1,
	}
}

type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	Color    Color
}

type Transform struct {
	Position math.Vec3
	Rotation math.Quaternion
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: math.Vec3Zero,
		Rotation: math.QuaternionIdentity(),
		Scale:    math.Vec3One,
	}
}

// Matrix returns the local matrix: scale, then rotation, then translation.
func (t Transform) Matrix() math.Mat4 {
	scale := math.Mat4Scale(t.Scale)
	rotation := t.Rotation.ToMat4()
	translation := math.Mat4Translation(t.Position)
	return scale.Mul(rotation).Mul(translation)
}

func (t Transform) Forward() math.Vec3 {
	return t.Rotation.RotateVector(math.Vec3Front)
}

// Rect is an axis-aligned screen rectangle in window coordinates
// (origin top-left, Y down).
type Rect struct {
	X, Y, Width, Height float32
}

func (r Rect) Top() float32 {
	return r.Y
}
