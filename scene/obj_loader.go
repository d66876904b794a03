package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"backdrop/core"
	reMath "backdrop/math"
)

// objCorner is one face corner: 0-based position and normal indices, -1 when absent.
type objCorner struct {
	v, vn int
}

// LoadOBJMesh reads a Wavefront .obj file into a single mesh. Groups and
// objects are merged; texture coordinates and materials are ignored.
func LoadOBJMesh(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	mesh.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return mesh, nil
}

// ParseOBJ builds a mesh from .obj text. Polygons are fan-triangulated and
// missing normals are generated from the faces.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	var positions, normals []reMath.Vec3
	var corners []objCorner

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v", "vn":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: %s needs 3 components", lineNo, fields[0])
			}
			vec, err := parseOBJVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if fields[0] == "v" {
				positions = append(positions, vec)
			} else {
				normals = append(normals, vec)
			}

		case "f":
			if len(fields) < 4 {
				continue
			}
			face := make([]objCorner, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				face = append(face, parseOBJCorner(tok, len(positions), len(normals)))
			}
			for i := 1; i+1 < len(face); i++ {
				corners = append(corners, face[0], face[i], face[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj: %w", err)
	}
	if len(corners) == 0 {
		return nil, fmt.Errorf("no faces found")
	}

	vertexOf := map[objCorner]uint32{}
	var vertices []core.Vertex
	indices := make([]uint32, 0, len(corners))
	for _, c := range corners {
		if c.v < 0 || c.v >= len(positions) {
			return nil, fmt.Errorf("face references missing vertex %d", c.v+1)
		}
		idx, ok := vertexOf[c]
		if !ok {
			v := core.Vertex{Position: positions[c.v], Color: core.ColorWhite}
			if c.vn >= 0 && c.vn < len(normals) {
				v.Normal = normals[c.vn]
			}
			idx = uint32(len(vertices))
			vertices = append(vertices, v)
			vertexOf[c] = idx
		}
		indices = append(indices, idx)
	}
	if len(normals) == 0 {
		generateNormals(vertices, indices)
	}

	mesh := NewMesh("obj", vertices, indices)
	mesh.Material = DefaultMaterial()
	return mesh, nil
}

func parseOBJVec3(fields []string) (reMath.Vec3, error) {
	var out [3]float32
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return reMath.Vec3{}, fmt.Errorf("bad number %q", f)
		}
		out[i] = float32(n)
	}
	return reMath.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

// parseOBJCorner parses "v", "v/vt", "v//vn" or "v/vt/vn". Indices are
// 1-based; negative ones count back from the current end of the list.
func parseOBJCorner(tok string, nPos, nNorm int) objCorner {
	resolve := func(s string, n int) int {
		i, err := strconv.Atoi(s)
		switch {
		case err != nil || i == 0:
			return -1
		case i < 0:
			return n + i
		default:
			return i - 1
		}
	}
	parts := strings.Split(tok, "/")
	c := objCorner{v: resolve(parts[0], nPos), vn: -1}
	if len(parts) > 2 {
		c.vn = resolve(parts[2], nNorm)
	}
	return c
}

// generateNormals writes area-weighted vertex normals.
func generateNormals(vertices []core.Vertex, indices []uint32) {
	accum := make([]reMath.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := vertices[i0].Position
		n := vertices[i1].Position.Sub(p0).Cross(vertices[i2].Position.Sub(p0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range vertices {
		vertices[i].Normal = accum[i].Normalize()
	}
}

// LoadModelMesh picks a loader by file extension: .obj, .gltf or .glb.
func LoadModelMesh(path string) (*Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJMesh(path)
	case ".gltf", ".glb":
		return LoadGLTFMesh(path)
	default:
		return nil, fmt.Errorf("unsupported model format %q", filepath.Ext(path))
	}
}
