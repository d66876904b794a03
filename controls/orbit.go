// Package controls moves a camera in response to pointer input.
package controls

import (
	stdmath "math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"backdrop/core"
	"backdrop/math"
	"backdrop/scene"
)

// InputSource delivers pointer events. core.Window satisfies it.
type InputSource interface {
	OnMouseButton(fn func(button int, pressed bool)) func()
	OnPointerMove(fn func(x, y float64)) func()
	OnScroll(fn func(xoff, yoff float64)) func()
}

const minPolar = 1e-4

// Orbit keeps a camera on a sphere around Target.
// Left drag rotates, right drag pans, scrolling dollies in and out.
type Orbit struct {
	Camera  *scene.Camera
	Target  math.Vec3
	Enabled bool

	RotateSpeed float32
	PanSpeed    float32
	ZoomSpeed   float32
	MinDistance float32
	MaxDistance float32
	// ResetDuration is how long Reset takes to ease back, in seconds.
	ResetDuration float32
	// ViewportHeight scales drag distances so a full-height drag is one turn.
	ViewportHeight float32

	radius float32
	theta  float32 // azimuth around +Y, measured from +Z
	phi    float32 // polar angle from +Y

	savedTarget   math.Vec3
	savedPosition math.Vec3

	reset   *gween.Tween
	fromTgt math.Vec3
	fromPos math.Vec3

	rotating, panning bool
	lastX, lastY      float64
	havePointer       bool

	unsubscribe []func()
}

func NewOrbit(camera *scene.Camera, input InputSource) *Orbit {
	o := &Orbit{
		Camera:         camera,
		Target:         camera.Target,
		Enabled:        true,
		RotateSpeed:    1,
		PanSpeed:       1,
		ZoomSpeed:      1,
		MinDistance:    0,
		MaxDistance:    float32(stdmath.Inf(1)),
		ResetDuration:  0.6,
		ViewportHeight: 720,
	}
	o.syncSpherical()
	o.SaveState()

	if input != nil {
		o.unsubscribe = append(o.unsubscribe,
			input.OnMouseButton(o.onMouseButton),
			input.OnPointerMove(o.onPointerMove),
			input.OnScroll(o.onScroll),
		)
	}
	o.Update()
	return o
}

// Update places the camera from the spherical coordinates, applying the
// polar and distance limits, and aims it at Target.
func (o *Orbit) Update() {
	if o.phi < minPolar {
		o.phi = minPolar
	}
	if o.phi > stdmath.Pi-minPolar {
		o.phi = stdmath.Pi - minPolar
	}
	if o.radius < o.MinDistance {
		o.radius = o.MinDistance
	}
	if o.radius > o.MaxDistance {
		o.radius = o.MaxDistance
	}

	sinPhi := float32(stdmath.Sin(float64(o.phi)))
	offset := math.Vec3{
		X: o.radius * sinPhi * float32(stdmath.Sin(float64(o.theta))),
		Y: o.radius * float32(stdmath.Cos(float64(o.phi))),
		Z: o.radius * sinPhi * float32(stdmath.Cos(float64(o.theta))),
	}
	o.Camera.SetPosition(o.Target.Add(offset))
	o.Camera.LookAt(o.Target)
}

// SaveState remembers the current target and camera position for Reset.
func (o *Orbit) SaveState() {
	o.savedTarget = o.Target
	o.savedPosition = o.Camera.Position
}

// Reset eases the camera back to the last saved state. With a zero
// ResetDuration it jumps immediately.
func (o *Orbit) Reset() {
	if o.ResetDuration <= 0 {
		o.jumpTo(o.savedTarget, o.savedPosition)
		return
	}
	o.fromTgt = o.Target
	o.fromPos = o.Camera.Position
	o.reset = gween.New(0, 1, o.ResetDuration, ease.OutCubic)
}

// Resetting reports whether a Reset animation is in progress.
func (o *Orbit) Resetting() bool {
	return o.reset != nil
}

// Tick advances a running Reset by dt seconds.
func (o *Orbit) Tick(dt float32) {
	if o.reset == nil {
		return
	}
	t, done := o.reset.Update(dt)
	if done {
		o.reset = nil
		o.jumpTo(o.savedTarget, o.savedPosition)
		return
	}
	o.jumpTo(o.fromTgt.Lerp(o.savedTarget, t), o.fromPos.Lerp(o.savedPosition, t))
}

// Dispose detaches the controller from its input source.
func (o *Orbit) Dispose() {
	for _, off := range o.unsubscribe {
		off()
	}
	o.unsubscribe = nil
}

// Radius is the current distance between camera and target.
func (o *Orbit) Radius() float32 {
	return o.radius
}

func (o *Orbit) jumpTo(target, position math.Vec3) {
	o.Target = target
	o.Camera.SetPosition(position)
	o.syncSpherical()
	o.Update()
}

func (o *Orbit) syncSpherical() {
	offset := o.Camera.Position.Sub(o.Target)
	o.radius = offset.Length()
	if o.radius == 0 {
		o.theta, o.phi = 0, stdmath.Pi/2
		return
	}
	o.theta = float32(stdmath.Atan2(float64(offset.X), float64(offset.Z)))
	cosPhi := float64(offset.Y / o.radius)
	o.phi = float32(stdmath.Acos(stdmath.Max(-1, stdmath.Min(1, cosPhi))))
}

// Rotate turns the camera around the target by the given angles in radians.
func (o *Orbit) Rotate(dTheta, dPhi float32) {
	o.theta += dTheta
	o.phi += dPhi
	o.Update()
}

// Pan shifts both target and camera in the view plane. dx and dy are in
// pixels; the distance covered scales with the camera's distance.
func (o *Orbit) Pan(dx, dy float32) {
	fovRad := float64(math.DegToRad(o.Camera.FOV))
	worldPerPixel := 2 * o.radius * float32(stdmath.Tan(fovRad/2)) / o.viewportHeight()

	forward := o.Camera.Forward()
	right := forward.Cross(math.Vec3Up).Normalize()
	up := right.Cross(forward).Normalize()

	delta := right.Mul(-dx * worldPerPixel * o.PanSpeed).Add(up.Mul(dy * worldPerPixel * o.PanSpeed))
	o.Target = o.Target.Add(delta)
	o.Update()
}

// Dolly scales the distance to the target; scale < 1 moves closer.
func (o *Orbit) Dolly(scale float32) {
	if scale <= 0 {
		return
	}
	o.radius *= scale
	o.Update()
}

func (o *Orbit) viewportHeight() float32 {
	if o.ViewportHeight > 0 {
		return o.ViewportHeight
	}
	return 1
}

func (o *Orbit) onMouseButton(button int, pressed bool) {
	switch button {
	case core.MouseButtonLeft:
		o.rotating = pressed && o.Enabled
	case core.MouseButtonRight:
		o.panning = pressed && o.Enabled
	}
	if pressed {
		o.havePointer = false
		o.reset = nil
	}
}

func (o *Orbit) onPointerMove(x, y float64) {
	if !o.Enabled || (!o.rotating && !o.panning) {
		o.lastX, o.lastY, o.havePointer = x, y, true
		return
	}
	if !o.havePointer {
		o.lastX, o.lastY, o.havePointer = x, y, true
		return
	}
	dx := float32(x - o.lastX)
	dy := float32(y - o.lastY)
	o.lastX, o.lastY = x, y

	if o.rotating {
		h := o.viewportHeight()
		o.Rotate(-2*stdmath.Pi*dx/h*o.RotateSpeed, -2*stdmath.Pi*dy/h*o.RotateSpeed)
	} else {
		o.Pan(dx, dy)
	}
}

func (o *Orbit) onScroll(_, yoff float64) {
	if !o.Enabled || yoff == 0 {
		return
	}
	o.reset = nil
	scale := float32(stdmath.Pow(0.95, float64(o.ZoomSpeed)))
	if yoff < 0 {
		scale = 1 / scale
	}
	o.Dolly(scale)
}
