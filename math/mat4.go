package math

import "math"

// Mat4 is a 4x4 matrix used with row vectors: p' = p * M.
// Translation lives in row 3, so a model-view-projection is model.Mul(view).Mul(proj).
// Uploaded to GLSL with transpose=false, the shader sees the transpose and
// multiplies as "M * column".
type Mat4 [4][4]float32

func Mat4Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[i][k] * other[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// MulVec3 transforms point v (w = 1) and applies the perspective divide.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return v.ToVec4(1).MulMat(m).ToVec3DivW()
}

// MulDir transforms direction v (w = 0), ignoring translation.
func (m Mat4) MulDir(v Vec3) Vec3 {
	return v.ToVec4(0).MulMat(m).ToVec3()
}

func (m Mat4) Transpose() Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

func Mat4Translation(t Vec3) Mat4 {
	m := Mat4Identity()
	m[3][0], m[3][1], m[3][2] = t.X, t.Y, t.Z
	return m
}

func Mat4Scale(s Vec3) Mat4 {
	m := Mat4Identity()
	m[0][0], m[1][1], m[2][2] = s.X, s.Y, s.Z
	return m
}

// Mat4Perspective builds an OpenGL-style (clip z in [-w, w]) projection.
// fovY is the vertical field of view in radians.
func Mat4Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1 / float32(math.Tan(float64(fovY)/2))

	var m Mat4
	m[0][0] = f / aspect
	m[1][1] = f
	m[2][2] = -(far + near) / (far - near)
	m[2][3] = -1
	m[3][2] = -(2 * far * near) / (far - near)
	return m
}

// Mat4LookAt builds a right-handed view matrix for an eye looking at target.
func Mat4LookAt(eye, target, up Vec3) Mat4 {
	z := eye.Sub(target).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)

	return Mat4{
		{x.X, y.X, z.X, 0},
		{x.Y, y.Y, z.Y, 0},
		{x.Z, y.Z, z.Z, 0},
		{-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1},
	}
}

// Inverse returns the inverse of m, or the identity when m is singular.
func (m Mat4) Inverse() Mat4 {
	a := m
	var inv Mat4

	inv[0][0] = a[1][1]*a[2][2]*a[3][3] - a[1][1]*a[2][3]*a[3][2] - a[2][1]*a[1][2]*a[3][3] + a[2][1]*a[1][3]*a[3][2] + a[3][1]*a[1][2]*a[2][3] - a[3][1]*a[1][3]*a[2][2]
	inv[1][0] = -a[1][0]*a[2][2]*a[3][3] + a[1][0]*a[2][3]*a[3][2] + a[2][0]*a[1][2]*a[3][3] - a[2][0]*a[1][3]*a[3][2] - a[3][0]*a[1][2]*a[2][3] + a[3][0]*a[1][3]*a[2][2]
	inv[2][0] = a[1][0]*a[2][1]*a[3][3] - a[1][0]*a[2][3]*a[3][1] - a[2][0]*a[1][1]*a[3][3] + a[2][0]*a[1][3]*a[3][1] + a[3][0]*a[1][1]*a[2][3] - a[3][0]*a[1][3]*a[2][1]
	inv[3][0] = -a[1][0]*a[2][1]*a[3][2] + a[1][0]*a[2][2]*a[3][1] + a[2][0]*a[1][1]*a[3][2] - a[2][0]*a[1][2]*a[3][1] - a[3][0]*a[1][1]*a[2][2] + a[3][0]*a[1][2]*a[2][1]

	det := a[0][0]*inv[0][0] + a[0][1]*inv[1][0] + a[0][2]*inv[2][0] + a[0][3]*inv[3][0]
	if det == 0 {
		return Mat4Identity()
	}

	inv[0][1] = -a[0][1]*a[2][2]*a[3][3] + a[0][1]*a[2][3]*a[3][2] + a[2][1]*a[0][2]*a[3][3] - a[2][1]*a[0][3]*a[3][2] - a[3][1]*a[0][2]*a[2][3] + a[3][1]*a[0][3]*a[2][2]
	inv[1][1] = a[0][0]*a[2][2]*a[3][3] - a[0][0]*a[2][3]*a[3][2] - a[2][0]*a[0][2]*a[3][3] + a[2][0]*a[0][3]*a[3][2] + a[3][0]*a[0][2]*a[2][3] - a[3][0]*a[0][3]*a[2][2]
	inv[2][1] = -a[0][0]*a[2][1]*a[3][3] + a[0][0]*a[2][3]*a[3][1] + a[2][0]*a[0][1]*a[3][3] - a[2][0]*a[0][3]*a[3][1] - a[3][0]*a[0][1]*a[2][3] + a[3][0]*a[0][3]*a[2][1]
	inv[3][1] = a[0][0]*a[2][1]*a[3][2] - a[0][0]*a[2][2]*a[3][1] - a[2][0]*a[0][1]*a[3][2] + a[2][0]*a[0][2]*a[3][1] + a[3][0]*a[0][1]*a[2][2] - a[3][0]*a[0][2]*a[2][1]

	inv[0][2] = a[0][1]*a[1][2]*a[3][3] - a[0][1]*a[1][3]*a[3][2] - a[1][1]*a[0][2]*a[3][3] + a[1][1]*a[0][3]*a[3][2] + a[3][1]*a[0][2]*a[1][3] - a[3][1]*a[0][3]*a[1][2]
	inv[1][2] = -a[0][0]*a[1][2]*a[3][3] + a[0][0]*a[1][3]*a[3][2] + a[1][0]*a[0][2]*a[3][3] - a[1][0]*a[0][3]*a[3][2] - a[3][0]*a[0][2]*a[1][3] + a[3][0]*a[0][3]*a[1][2]
	inv[2][2] = a[0][0]*a[1][1]*a[3][3] - a[0][0]*a[1][3]*a[3][1] - a[1][0]*a[0][1]*a[3][3] + a[1][0]*a[0][3]*a[3][1] + a[3][0]*a[0][1]*a[1][3] - a[3][0]*a[0][3]*a[1][1]
	inv[3][2] = -a[0][0]*a[1][1]*a[3][2] + a[0][0]*a[1][2]*a[3][1] + a[1][0]*a[0][1]*a[3][2] - a[1][0]*a[0][2]*a[3][1] - a[3][0]*a[0][1]*a[1][2] + a[3][0]*a[0][2]*a[1][1]

	inv[0][3] = -a[0][1]*a[1][2]*a[2][3] + a[0][1]*a[1][3]*a[2][2] + a[1][1]*a[0][2]*a[2][3] - a[1][1]*a[0][3]*a[2][2] - a[2][1]*a[0][2]*a[1][3] + a[2][1]*a[0][3]*a[1][2]
	inv[1][3] = a[0][0]*a[1][2]*a[2][3] - a[0][0]*a[1][3]*a[2][2] - a[1][0]*a[0][2]*a[2][3] + a[1][0]*a[0][3]*a[2][2] + a[2][0]*a[0][2]*a[1][3] - a[2][0]*a[0][3]*a[1][2]
	inv[2][3] = -a[0][0]*a[1][1]*a[2][3] + a[0][0]*a[1][3]*a[2][1] + a[1][0]*a[0][1]*a[2][3] - a[1][0]*a[0][3]*a[2][1] - a[2][0]*a[0][1]*a[1][3] + a[2][0]*a[0][3]*a[1][1]
	inv[3][3] = a[0][0]*a[1][1]*a[2][2] - a[0][0]*a[1][2]*a[2][1] - a[1][0]*a[0][1]*a[2][2] + a[1][0]*a[0][2]*a[2][1] + a[2][0]*a[0][1]*a[1][2] - a[2][0]*a[0][2]*a[1][1]

	invDet := 1 / det
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			inv[i][j] *= invDet
		}
	}
	return inv
}
