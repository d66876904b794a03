package scene

import (
	"backdrop/core"
)

// DrawMode controls the OpenGL primitive type used when rendering a mesh.
type DrawMode int

const (
	DrawTriangles DrawMode = iota // gl.TRIANGLES (default)
	DrawLines                     // gl.LINES, pairs of indices form segments
)

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32
	DrawMode DrawMode

	// Material holds surface shading properties. If nil, DefaultMaterial() is used.
	Material *Material

	// Revision is bumped by MarkDirty; the backend re-uploads when it changes.
	Revision uint32

	// GPUData is set by the renderer backend (e.g. *opengl.GPUMesh).
	GPUData interface{}

	bounds         AABB
	boundsRevision uint32
	hasBounds      bool
}

func NewMesh(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
}

// MarkDirty flags the vertex data as changed after an in-place edit.
func (m *Mesh) MarkDirty() {
	m.Revision++
}

func (m *Mesh) TriangleCount() int {
	if m.DrawMode != DrawTriangles {
		return 0
	}
	return len(m.Indices) / 3
}

// LocalBounds returns the model-space bounding box, cached per Revision.
func (m *Mesh) LocalBounds() AABB {
	if m.hasBounds && m.boundsRevision == m.Revision {
		return m.bounds
	}
	var box AABB
	if len(m.Vertices) > 0 {
		box = AABB{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
		for _, v := range m.Vertices[1:] {
			box.extend(v.Position)
		}
	}
	m.bounds, m.boundsRevision, m.hasBounds = box, m.Revision, true
	return box
}
