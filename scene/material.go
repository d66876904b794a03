package scene

import "backdrop/core"

// Material describes Phong surface properties for a mesh.
type Material struct {
	Name      string
	Color     core.Color // diffuse color
	Specular  core.Color
	Shininess float32
	Unlit     bool // output the raw color, skip lighting

	// VertexColors multiplies Color with per-vertex colors.
	VertexColors bool
	// DoubleSided disables back-face culling.
	DoubleSided bool
}

// DefaultMaterial returns a plain white matte Phong material.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "Default",
		Color:     core.ColorWhite,
		Specular:  core.Color{R: 0.07, G: 0.07, B: 0.07, A: 1},
		Shininess: 30,
	}
}

func NewPhongMaterial(name string, color, specular core.Color, shininess float32) *Material {
	return &Material{
		Name:      name,
		Color:     color,
		Specular:  specular,
		Shininess: shininess,
	}
}

// NewLineMaterial returns the unlit vertex-colored material used by helpers.
func NewLineMaterial(name string) *Material {
	return &Material{
		Name:         name,
		Color:        core.ColorWhite,
		Unlit:        true,
		VertexColors: true,
	}
}
