package math

import "math"

type Quaternion struct {
	X, Y, Z, W float32
}

func QuaternionIdentity() Quaternion {
	return Quaternion{W: 1}
}

// QuaternionFromAxisAngle returns a rotation of angle radians around axis.
func QuaternionFromAxisAngle(axis Vec3, angle float32) Quaternion {
	axis = axis.Normalize()
	s := float32(math.Sin(float64(angle) / 2))
	c := float32(math.Cos(float64(angle) / 2))
	return Quaternion{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: c}
}

// Mul composes two rotations: q.Mul(o) applies o first, then q.
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

func (q Quaternion) Normalize() Quaternion {
	l := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if l == 0 {
		return q
	}
	return Quaternion{X: q.X / l, Y: q.Y / l, Z: q.Z / l, W: q.W / l}
}

func (q Quaternion) RotateVector(v Vec3) Vec3 {
	u := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := u.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(u.Cross(t))
}

// ToMat4 returns the rotation as a row-vector matrix.
func (q Quaternion) ToMat4() Mat4 {
	xx, yy, zz := q.X*q.X, q.Y*q.Y, q.Z*q.Z
	xy, xz, yz := q.X*q.Y, q.X*q.Z, q.Y*q.Z
	wx, wy, wz := q.W*q.X, q.W*q.Y, q.W*q.Z

	return Mat4{
		{1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0},
		{2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0},
		{2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0},
		{0, 0, 0, 1},
	}
}
