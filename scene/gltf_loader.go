package scene

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"backdrop/core"
	"backdrop/math"
)

// LoadGLTFMesh opens a .glb or .gltf file and merges every triangle
// primitive of its first mesh into one Mesh. The first primitive's base
// color factor becomes the Phong color; textures are ignored.
func LoadGLTFMesh(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	if len(doc.Meshes) == 0 {
		return nil, fmt.Errorf("gltf %q: no meshes", path)
	}

	gm := doc.Meshes[0]
	name := gm.Name
	if name == "" {
		name = "gltf_mesh_0"
	}

	var vertices []core.Vertex
	var indices []uint32
	var material *Material

	for pi, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			fmt.Printf("[GLTF] %s: skipping primitive %d (mode %v)\n", name, pi, prim.Mode)
			continue
		}
		verts, idx, err := loadGLTFPrimitive(doc, prim)
		if err != nil {
			return nil, fmt.Errorf("gltf %q prim %d: %w", path, pi, err)
		}
		base := uint32(len(vertices))
		vertices = append(vertices, verts...)
		for _, i := range idx {
			indices = append(indices, base+i)
		}
		if material == nil && prim.Material != nil && *prim.Material < len(doc.Materials) {
			material = gltfMaterial(doc.Materials[*prim.Material])
		}
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("gltf %q: mesh %q has no triangles", path, name)
	}

	m := NewMesh(name, vertices, indices)
	if material == nil {
		material = DefaultMaterial()
	}
	m.Material = material
	return m, nil
}

// gltfMaterial approximates PBR metallic-roughness with Phong:
// smooth surfaces get a high shininess, metallic ones a bright specular.
func gltfMaterial(gm *gltf.Material) *Material {
	mat := DefaultMaterial()
	mat.Name = gm.Name
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		mat.Color = core.Color{
			R: float32(cf[0]), G: float32(cf[1]),
			B: float32(cf[2]), A: float32(cf[3]),
		}
		roughness := float32(pbr.RoughnessFactorOrDefault())
		metallic := float32(pbr.MetallicFactorOrDefault())
		mat.Shininess = (1.0-roughness)*(1.0-roughness)*128.0 + 1.0
		s := metallic * 0.7
		mat.Specular = core.Color{R: s, G: s, B: s, A: 1}
	}
	mat.DoubleSided = gm.DoubleSided
	return mat
}

// loadGLTFPrimitive reads positions, normals and indices of one primitive.
// Non-indexed primitives get sequential indices.
func loadGLTFPrimitive(doc *gltf.Document, prim *gltf.Primitive) ([]core.Vertex, []uint32, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3{X: 0, Y: 1, Z: 0},
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(verts))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	return verts, indices, nil
}
