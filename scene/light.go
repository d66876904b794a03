package scene

import (
	"math"

	"backdrop/core"
	reMath "backdrop/math"
)

// LightShadow describes the shadow map rendered from a light.
type LightShadow struct {
	Camera  *Camera
	MapSize int
	Bias    float32
}

// Light is a spot light shining from Position towards Target.
// Angle is the cone half-angle in radians; Penumbra (0..1) is the fraction
// of the cone that fades out at the edge. Distance 0 means no falloff.
type Light struct {
	Position  reMath.Vec3
	Target    reMath.Vec3
	Color     core.Color
	Intensity float32
	Distance  float32
	Angle     float32
	Penumbra  float32

	CastShadow bool
	Shadow     LightShadow
}

func NewSpotLight(color core.Color, intensity float32) *Light {
	return &Light{
		Position:  reMath.Vec3Up,
		Target:    reMath.Vec3Zero,
		Color:     color,
		Intensity: intensity,
		Angle:     math.Pi / 3,
		Shadow: LightShadow{
			Camera:  NewCamera(50, 1, 0.5, 500),
			MapSize: 512,
			Bias:    0.005,
		},
	}
}

func (l *Light) Direction() reMath.Vec3 {
	return l.Target.Sub(l.Position).Normalize()
}

// UpdateShadowCamera fits the shadow camera to the light cone.
func (l *Light) UpdateShadowCamera() {
	cam := l.Shadow.Camera
	if cam == nil {
		return
	}
	fov := 2 * l.Angle * 180 / math.Pi
	far := cam.Far
	if l.Distance > 0 {
		far = l.Distance
	}
	if cam.FOV != fov || cam.Far != far || cam.Aspect != 1 {
		cam.FOV = fov
		cam.Far = far
		cam.Aspect = 1
		cam.UpdateProjectionMatrix()
	}
	cam.SetPosition(l.Position)
	cam.LookAt(l.Target)
}

// ShadowViewProjection returns the light-space view-projection matrix.
func (l *Light) ShadowViewProjection() reMath.Mat4 {
	l.UpdateShadowCamera()
	if l.Shadow.Camera == nil {
		return reMath.Mat4Identity()
	}
	return l.Shadow.Camera.ViewProjectionMatrix()
}

// CosCutoffs returns the cosines of the outer and inner cone angles.
func (l *Light) CosCutoffs() (outer, inner float32) {
	outer = float32(math.Cos(float64(l.Angle)))
	inner = float32(math.Cos(float64(l.Angle * (1 - l.Penumbra))))
	return outer, inner
}
