package director

import (
	stdmath "math"

	"backdrop/core"
	"backdrop/math"
)

// BokehSettings are the depth-of-field values pushed when depth of field is
// enabled without the tweak panel.
type BokehSettings struct {
	Focus    float32
	Aperture float32
	MaxBlur  float32
}

// Config holds every constant the director builds the world from.
type Config struct {
	Background core.Color
	Ambient    core.Color

	FogColor core.Color
	FogNear  float32
	FogFar   float32

	CameraFOV      float32 // degrees
	CameraAspect   float32
	CameraNear     float32
	CameraFar      float32
	CameraPosition math.Vec3
	CameraTarget   math.Vec3

	SpotColor      core.Color
	SpotIntensity  float32
	SpotPosition   math.Vec3
	SpotAngle      float32 // cone half-angle, radians
	SpotPenumbra   float32
	ShadowNear     float32
	ShadowFar      float32
	ShadowMapSize  int
	ShowHelpers    bool // light frustum, grid and axes
	GridSize       float32
	GridDivisions  int
	GridColor      core.Color
	AxesSize       float32
	LayerOuter     float32 // half-size of the outer square
	LayerHole      float32 // half-size of the square hole
	LayerDepth     float32
	LayerColor     core.Color
	LayerSpecular  core.Color
	LayerShininess float32
	// LayerCopies is the number of clones stacked behind the base layer,
	// each LayerStep further along +Z than the previous one.
	LayerCopies int
	LayerStep   float32
	// PointerScale divides the cursor offset (in window units) to get the
	// layer offset in world units.
	PointerScale float32

	DepthOfField bool
	Bokeh        BokehSettings
	TweakPanel   bool

	// SVGPath, when set, adds a SVGPanelSize square panel with the SVG's
	// shapes cut out of it.
	SVGPath       string
	SVGPanelSize  float32
	SVGPanelDepth float32

	// ModelPath, when set, adds an .obj, .gltf or .glb model at the origin.
	ModelPath string
}

func DefaultConfig() Config {
	return Config{
		Background: core.ColorHex(0x001100),
		Ambient:    core.ColorBlack,

		FogColor: core.ColorHex(0xcccccc),
		FogNear:  50,
		FogFar:   100,

		CameraFOV:      45,
		CameraAspect:   1,
		CameraNear:     1,
		CameraFar:      100,
		CameraPosition: math.Vec3{X: 0, Y: 0, Z: -1.5},
		CameraTarget:   math.Vec3Zero,

		SpotColor:      core.ColorWhite,
		SpotIntensity:  1,
		SpotPosition:   math.Vec3{X: 0, Y: 0, Z: -10},
		SpotAngle:      stdmath.Pi / 5,
		SpotPenumbra:   0.3,
		ShadowNear:     0.1,
		ShadowFar:      20,
		ShadowMapSize:  128,
		ShowHelpers:    true,
		GridSize:       20,
		GridDivisions:  20,
		GridColor:      core.ColorHex(0xcccccc),
		AxesSize:       10,
		LayerOuter:     1,
		LayerHole:      0.4,
		LayerDepth:     0.01,
		LayerColor:     core.ColorHex(0x999999),
		LayerSpecular:  core.ColorHex(0x222222),
		LayerShininess: 0,
		LayerCopies:    4,
		LayerStep:      0.5,
		PointerScale:   1000,

		Bokeh: BokehSettings{Focus: 500, Aperture: 0.025, MaxBlur: 1},

		SVGPanelSize:  10,
		SVGPanelDepth: 0.1,
	}
}
