package scene

import "backdrop/math"

// Plane is the half-space Normal·p + D >= 0.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// DistanceTo returns the signed distance from pt to the plane. Positive is inside.
func (p Plane) DistanceTo(pt math.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view volume.
type Frustum struct {
	Planes [6]Plane // left, right, bottom, top, near, far
}

// FrustumFromVP extracts normalized clip planes from a view-projection matrix.
// With row vectors, clip.x = p·column0 + column0.w, so the Gribb/Hartmann
// rows are the columns of vp.
func FrustumFromVP(vp math.Mat4) Frustum {
	c0 := math.Vec4{X: vp[0][0], Y: vp[1][0], Z: vp[2][0], W: vp[3][0]}
	c1 := math.Vec4{X: vp[0][1], Y: vp[1][1], Z: vp[2][1], W: vp[3][1]}
	c2 := math.Vec4{X: vp[0][2], Y: vp[1][2], Z: vp[2][2], W: vp[3][2]}
	c3 := math.Vec4{X: vp[0][3], Y: vp[1][3], Z: vp[2][3], W: vp[3][3]}

	var f Frustum
	f.Planes[0] = normalizePlane(c3.X+c0.X, c3.Y+c0.Y, c3.Z+c0.Z, c3.W+c0.W)
	f.Planes[1] = normalizePlane(c3.X-c0.X, c3.Y-c0.Y, c3.Z-c0.Z, c3.W-c0.W)
	f.Planes[2] = normalizePlane(c3.X+c1.X, c3.Y+c1.Y, c3.Z+c1.Z, c3.W+c1.W)
	f.Planes[3] = normalizePlane(c3.X-c1.X, c3.Y-c1.Y, c3.Z-c1.Z, c3.W-c1.W)
	f.Planes[4] = normalizePlane(c3.X+c2.X, c3.Y+c2.Y, c3.Z+c2.Z, c3.W+c2.W)
	f.Planes[5] = normalizePlane(c3.X-c2.X, c3.Y-c2.Y, c3.Z-c2.Z, c3.W-c2.W)
	return f
}

func normalizePlane(a, b, c, d float32) Plane {
	l := math.Vec3{X: a, Y: b, Z: c}.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: math.Vec3{X: a / l, Y: b / l, Z: c / l}, D: d / l}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math.Vec3
}

func (box *AABB) extend(p math.Vec3) {
	if p.X < box.Min.X {
		box.Min.X = p.X
	}
	if p.Y < box.Min.Y {
		box.Min.Y = p.Y
	}
	if p.Z < box.Min.Z {
		box.Min.Z = p.Z
	}
	if p.X > box.Max.X {
		box.Max.X = p.X
	}
	if p.Y > box.Max.Y {
		box.Max.Y = p.Y
	}
	if p.Z > box.Max.Z {
		box.Max.Z = p.Z
	}
}

// IntersectsFrustum reports false only when the box lies entirely outside
// one of the planes.
func (box AABB) IntersectsFrustum(f *Frustum) bool {
	for _, p := range f.Planes {
		// corner furthest along the plane normal
		corner := box.Max
		if p.Normal.X < 0 {
			corner.X = box.Min.X
		}
		if p.Normal.Y < 0 {
			corner.Y = box.Min.Y
		}
		if p.Normal.Z < 0 {
			corner.Z = box.Min.Z
		}
		if p.DistanceTo(corner) < 0 {
			return false
		}
	}
	return true
}

// Transform returns the world-space box enclosing all eight transformed corners.
func (box AABB) Transform(m math.Mat4) AABB {
	mn, mx := box.Min, box.Max
	corners := [8]math.Vec3{
		{X: mn.X, Y: mn.Y, Z: mn.Z},
		{X: mx.X, Y: mn.Y, Z: mn.Z},
		{X: mn.X, Y: mx.Y, Z: mn.Z},
		{X: mx.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mn.Y, Z: mx.Z},
		{X: mx.X, Y: mn.Y, Z: mx.Z},
		{X: mn.X, Y: mx.Y, Z: mx.Z},
		{X: mx.X, Y: mx.Y, Z: mx.Z},
	}
	first := m.MulVec3(corners[0])
	out := AABB{Min: first, Max: first}
	for _, c := range corners[1:] {
		out.extend(m.MulVec3(c))
	}
	return out
}

// ComputeAABB returns the world-space bounds of mesh under worldMatrix.
func ComputeAABB(mesh *Mesh, worldMatrix math.Mat4) AABB {
	return mesh.LocalBounds().Transform(worldMatrix)
}
