package scene

import (
	"backdrop/core"
	"backdrop/math"
)

type ExtrudeSettings struct {
	// Depth is the extrusion length along +Z. The back cap sits at z = 0.
	Depth float32
}

// ExtrudeGeometry sweeps each shape along +Z, producing a front cap at
// z = Depth, a back cap at z = 0, and flat-shaded side walls for the outer
// contour and every hole. There is no bevel.
func ExtrudeGeometry(settings ExtrudeSettings, shapes ...*Shape) *Mesh {
	var vertices []core.Vertex
	var indices []uint32

	for _, s := range shapes {
		outer := orient(s.Contour(), true)
		if len(outer) < 3 {
			continue
		}
		var holes [][]math.Vec2
		for _, h := range s.Holes {
			if c := orient(h.Contour(), false); len(c) >= 3 {
				holes = append(holes, c)
			}
		}

		all := append([]math.Vec2(nil), outer...)
		for _, h := range holes {
			all = append(all, h...)
		}
		tris := Triangulate(outer, holes)

		// Front cap
		base := uint32(len(vertices))
		for _, p := range all {
			vertices = append(vertices, capVertex(p, settings.Depth, 1))
		}
		for _, i := range tris {
			indices = append(indices, base+i)
		}

		// Back cap, reversed winding
		base = uint32(len(vertices))
		for _, p := range all {
			vertices = append(vertices, capVertex(p, 0, -1))
		}
		for t := 0; t+2 < len(tris); t += 3 {
			indices = append(indices, base+tris[t], base+tris[t+2], base+tris[t+1])
		}

		vertices, indices = appendWalls(vertices, indices, outer, settings.Depth)
		for _, h := range holes {
			vertices, indices = appendWalls(vertices, indices, h, settings.Depth)
		}
	}

	m := NewMesh("Extrude", vertices, indices)
	m.Material = DefaultMaterial()
	return m
}

func capVertex(p math.Vec2, z, nz float32) core.Vertex {
	return core.Vertex{
		Position: math.Vec3{X: p.X, Y: p.Y, Z: z},
		Normal:   math.Vec3{X: 0, Y: 0, Z: nz},
		Color:    core.ColorWhite,
	}
}

// appendWalls adds one quad per contour edge. Outer contours must wind
// counter-clockwise and holes clockwise so normals face out of the solid.
func appendWalls(vertices []core.Vertex, indices []uint32, contour []math.Vec2, depth float32) ([]core.Vertex, []uint32) {
	for i := range contour {
		a, b := contour[i], contour[(i+1)%len(contour)]
		edge := b.Sub(a)
		normal := math.Vec3{X: edge.Y, Y: -edge.X}.Normalize()

		base := uint32(len(vertices))
		for _, v := range []math.Vec3{
			{X: a.X, Y: a.Y, Z: 0},
			{X: b.X, Y: b.Y, Z: 0},
			{X: b.X, Y: b.Y, Z: depth},
			{X: a.X, Y: a.Y, Z: depth},
		} {
			vertices = append(vertices, core.Vertex{Position: v, Normal: normal, Color: core.ColorWhite})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}

func orient(pts []math.Vec2, ccw bool) []math.Vec2 {
	out := append([]math.Vec2(nil), pts...)
	if (SignedArea(out) > 0) != ccw {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
