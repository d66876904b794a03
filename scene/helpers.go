package scene

import "backdrop/core"
import "backdrop/math"

// lineBuilder accumulates colored GL_LINES segments.
type lineBuilder struct {
	vertices []core.Vertex
	indices  []uint32
}

func (b *lineBuilder) add(from, to math.Vec3, c core.Color) {
	base := uint32(len(b.vertices))
	b.vertices = append(b.vertices,
		core.Vertex{Position: from, Normal: math.Vec3Up, Color: c},
		core.Vertex{Position: to, Normal: math.Vec3Up, Color: c},
	)
	b.indices = append(b.indices, base, base+1)
}

func (b *lineBuilder) mesh(name string) *Mesh {
	m := NewMesh(name, b.vertices, b.indices)
	m.DrawMode = DrawLines
	m.Material = NewLineMaterial(name + "Material")
	return m
}

// GridHelper builds a flat grid on the XZ plane rendered as GL_LINES.
//
//	size      total extent (the grid spans -size/2 to +size/2)
//	divisions number of cells along each axis
//
// The two lines through the origin use centerColor, the rest gridColor.
func GridHelper(size float32, divisions int, centerColor, gridColor core.Color) *Mesh {
	if divisions < 1 {
		divisions = 1
	}

	half := size / 2.0
	step := size / float32(divisions)
	center := divisions / 2

	var b lineBuilder
	for i := 0; i <= divisions; i++ {
		k := -half + float32(i)*step
		c := gridColor
		if i == center {
			c = centerColor
		}
		b.add(math.Vec3{X: -half, Z: k}, math.Vec3{X: half, Z: k}, c)
		b.add(math.Vec3{X: k, Z: -half}, math.Vec3{X: k, Z: half}, c)
	}
	return b.mesh("GridHelper")
}

// AxesHelper draws the X (red), Y (green) and Z (blue) axes from the origin.
func AxesHelper(size float32) *Mesh {
	var b lineBuilder
	b.add(math.Vec3Zero, math.Vec3{X: size}, core.ColorRed)
	b.add(math.Vec3Zero, math.Vec3{Y: size}, core.ColorGreen)
	b.add(math.Vec3Zero, math.Vec3{Z: size}, core.ColorBlue)

	// Far ends fade towards the neighbouring hue.
	b.vertices[1].Color = core.Color{R: 1, G: 0.6, B: 0, A: 1}
	b.vertices[3].Color = core.Color{R: 0.6, G: 1, B: 0, A: 1}
	b.vertices[5].Color = core.Color{R: 0, G: 0.6, B: 1, A: 1}
	return b.mesh("AxesHelper")
}

// CameraHelper visualises a camera frustum. The lines are in world space, so
// the helper node keeps an identity transform; call Update after the camera
// moves or its projection changes.
type CameraHelper struct {
	Node   *Node
	Camera *Camera
}

var (
	frustumColor = core.ColorHex(0xffaa00)
	coneColor    = core.ColorHex(0xff0000)
	upColor      = core.ColorHex(0x00aaff)
)

// ndc corners: near plane then far plane, counter-clockwise from bottom-left.
var frustumNDC = [8]math.Vec3{
	{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
}

func NewCameraHelper(camera *Camera) *CameraHelper {
	var b lineBuilder
	for i := 0; i < 4; i++ {
		b.add(math.Vec3Zero, math.Vec3Zero, frustumColor) // near ring
		b.add(math.Vec3Zero, math.Vec3Zero, frustumColor) // far ring
		b.add(math.Vec3Zero, math.Vec3Zero, frustumColor) // near to far
		b.add(math.Vec3Zero, math.Vec3Zero, coneColor)    // eye to near
	}
	b.add(math.Vec3Zero, math.Vec3Zero, upColor) // up marker
	b.add(math.Vec3Zero, math.Vec3Zero, upColor)

	h := &CameraHelper{
		Node:   NewMeshNode("CameraHelper", b.mesh("CameraHelper")),
		Camera: camera,
	}
	h.Update()
	return h
}

// Corners returns the eight world-space frustum corners.
func (h *CameraHelper) Corners() [8]math.Vec3 {
	inv := h.Camera.ViewProjectionMatrix().Inverse()
	var out [8]math.Vec3
	for i, p := range frustumNDC {
		out[i] = inv.MulVec3(p)
	}
	return out
}

func (h *CameraHelper) Update() {
	c := h.Corners()
	v := h.Node.Mesh.Vertices
	set := func(seg int, a, b math.Vec3) {
		v[2*seg].Position = a
		v[2*seg+1].Position = b
	}

	seg := 0
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		set(seg, c[i], c[j])
		set(seg+1, c[4+i], c[4+j])
		set(seg+2, c[i], c[4+i])
		set(seg+3, h.Camera.Position, c[i])
		seg += 4
	}

	// Small triangle above the near plane marking "up".
	top := c[3].Lerp(c[2], 0.5)
	lift := c[3].Sub(c[0]).Mul(0.3)
	set(seg, c[3].Lerp(c[2], 0.25).Add(lift.Mul(0.1)), top.Add(lift))
	set(seg+1, top.Add(lift), c[3].Lerp(c[2], 0.75).Add(lift.Mul(0.1)))

	h.Node.Mesh.MarkDirty()
}
