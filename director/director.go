// Package director builds the backdrop scene and keeps it in step with the
// window: resizes follow the window, the layer stack follows the pointer,
// and one frame is rendered per scheduler tick.
package director

import (
	"errors"
	"fmt"
	"os"
	"time"

	"backdrop/controls"
	"backdrop/core"
	"backdrop/frameloop"
	"backdrop/math"
	"backdrop/scene"
	"backdrop/tweak"
)

var (
	ErrNoContainer  = errors.New("director: no container")
	ErrNoTarget     = errors.New("director: no render target")
	ErrNoWindow     = errors.New("director: no window")
	ErrNoScheduler  = errors.New("director: no frame scheduler")
	ErrAlreadySetup = errors.New("director: already set up")
)

// RenderTarget draws frames. Its bounding rect is where it sits in the
// window after layout.
type RenderTarget interface {
	core.Element
	SetSize(width, height int)
	Render(s *scene.Scene, camera *scene.Camera) error
}

// Container hosts the render target.
type Container interface {
	AppendChild(e core.Element)
}

// Window supplies the viewport size and input events. core.Window
// satisfies it.
type Window interface {
	controls.InputSource
	InnerSize() (width, height int)
	OnResize(fn func(width, height int)) func()
}

// DepthOfField receives bokeh settings.
type DepthOfField = tweak.BokehSetter

// OverlaySink shows text lines polled every frame.
type OverlaySink interface {
	SetOverlay(lines func() []string)
}

// Deps are the collaborators a Director drives. DepthOfField and Overlay
// are optional.
type Deps struct {
	Container    Container
	Target       RenderTarget
	Window       Window
	Frames       frameloop.Scheduler
	DepthOfField DepthOfField
	Overlay      OverlaySink
}

// maxFrameDelta caps the time step handed to animations after a stall.
const maxFrameDelta = 0.1

type Director struct {
	cfg  Config
	deps Deps

	scene        *scene.Scene
	camera       *scene.Camera
	spotLight    *scene.Light
	shadowHelper *scene.CameraHelper
	orbit        *controls.Orbit
	panel        *tweak.Panel

	rect    core.Rect
	cursorX float64
	cursorY float64
	// hasCursor is set by the first pointer move; until then the layers
	// keep their populated positions.
	hasCursor bool

	layers []*scene.Node

	unsubscribe []func()
	cancelFrame func()
	lastFrame   time.Time
	setup       bool
	stopped     bool
}

func New(cfg Config, deps Deps) (*Director, error) {
	switch {
	case deps.Container == nil:
		return nil, ErrNoContainer
	case deps.Target == nil:
		return nil, ErrNoTarget
	case deps.Window == nil:
		return nil, ErrNoWindow
	case deps.Frames == nil:
		return nil, ErrNoScheduler
	}
	if cfg.PointerScale == 0 {
		return nil, fmt.Errorf("director: pointer scale must not be zero")
	}
	return &Director{cfg: cfg, deps: deps}, nil
}

// Setup builds the world, subscribes to the window, sizes the viewport,
// populates the layers and requests the first frame. It may only be called
// once.
func (d *Director) Setup() error {
	if d.setup {
		return ErrAlreadySetup
	}
	d.setup = true

	d.createWorld()
	d.initDepthOfField()
	d.addEventListeners()
	d.onResize()
	d.populate()

	d.cancelFrame = d.deps.Frames.RequestFrame(d.renderFrame)
	fmt.Printf("[Director] scene ready: %d layers\n", len(d.layers))
	return nil
}

// Stop cancels the pending frame and detaches from the window. The scene is
// left as it is.
func (d *Director) Stop() {
	if d.stopped {
		return
	}
	d.stopped = true
	if d.cancelFrame != nil {
		d.cancelFrame()
		d.cancelFrame = nil
	}
	for _, off := range d.unsubscribe {
		off()
	}
	d.unsubscribe = nil
	if d.orbit != nil {
		d.orbit.Dispose()
	}
	if d.panel != nil && d.deps.Overlay != nil {
		d.deps.Overlay.SetOverlay(nil)
	}
}

func (d *Director) Layers() []*scene.Node {
	return append([]*scene.Node(nil), d.layers...)
}

func (d *Director) Scene() *scene.Scene       { return d.scene }
func (d *Director) Camera() *scene.Camera     { return d.camera }
func (d *Director) SpotLight() *scene.Light   { return d.spotLight }
func (d *Director) Controls() *controls.Orbit { return d.orbit }
func (d *Director) ViewportRect() core.Rect   { return d.rect }
func (d *Director) TweakPanel() *tweak.Panel  { return d.panel }
func (d *Director) Config() Config            { return d.cfg }

// Cursor returns the last pointer offset from the viewport centre. ok is
// false until the pointer has moved.
func (d *Director) Cursor() (x, y float64, ok bool) {
	return d.cursorX, d.cursorY, d.hasCursor
}

// HandleKey routes a key press to the tweak panel, then to the camera
// controls. It reports whether the key was used.
func (d *Director) HandleKey(key int) bool {
	if d.panel != nil && d.panel.HandleKey(key) {
		return true
	}
	if key == core.KeyR && d.orbit != nil {
		d.orbit.Reset()
		return true
	}
	return false
}

// ── World ─────────────────────────────────────────────────────────────────────

func (d *Director) createWorld() {
	cfg := d.cfg

	d.deps.Container.AppendChild(d.deps.Target)
	d.rect = d.deps.Target.BoundingRect()

	d.scene = scene.NewScene()
	background := cfg.Background
	d.scene.Background = &background
	d.scene.Ambient = cfg.Ambient
	d.scene.Fog = scene.NewFog(cfg.FogColor, cfg.FogNear, cfg.FogFar)

	d.camera = scene.NewCamera(cfg.CameraFOV, cfg.CameraAspect, cfg.CameraNear, cfg.CameraFar)
	d.camera.SetPosition(cfg.CameraPosition)
	d.camera.LookAt(cfg.CameraTarget)

	spot := scene.NewSpotLight(cfg.SpotColor, cfg.SpotIntensity)
	spot.Position = cfg.SpotPosition
	spot.Target = math.Vec3Zero
	spot.Angle = cfg.SpotAngle
	spot.Penumbra = cfg.SpotPenumbra
	spot.CastShadow = true
	spot.Shadow.Camera.Near = cfg.ShadowNear
	spot.Shadow.Camera.Far = cfg.ShadowFar
	spot.Shadow.MapSize = cfg.ShadowMapSize
	spot.UpdateShadowCamera()
	spot.Shadow.Camera.UpdateProjectionMatrix()
	d.scene.AddLight(spot)
	d.spotLight = spot

	if cfg.ShowHelpers {
		d.shadowHelper = scene.NewCameraHelper(spot.Shadow.Camera)
		d.scene.Add(d.shadowHelper.Node)

		grid := scene.GridHelper(cfg.GridSize, cfg.GridDivisions, cfg.GridColor, cfg.GridColor)
		d.scene.Add(scene.NewMeshNode("grid", grid))
		d.scene.Add(scene.NewMeshNode("axes", scene.AxesHelper(cfg.AxesSize)))
	}

	d.orbit = controls.NewOrbit(d.camera, d.deps.Window)
	d.orbit.Update()
}

// initDepthOfField pushes the initial bokeh settings and, with the tweak
// panel enabled, hands the panel to the overlay.
func (d *Director) initDepthOfField() {
	dof := d.deps.DepthOfField
	if !d.cfg.DepthOfField || dof == nil {
		if d.cfg.TweakPanel {
			fmt.Println("[Director] tweak panel needs depth of field, skipped")
		}
		return
	}
	b := d.cfg.Bokeh
	dof.SetBokeh(b.Focus, b.Aperture, b.MaxBlur)

	if !d.cfg.TweakPanel {
		return
	}
	d.panel = tweak.DepthOfFieldPanel(dof)
	focus := d.panel.Get(tweak.ParamFocus)
	aperture := d.panel.Get(tweak.ParamAperture)
	maxBlur := d.panel.Get(tweak.ParamMaxBlur)
	dof.SetBokeh(float32(focus.Value), float32(aperture.Value*tweak.ApertureScale), float32(maxBlur.Value))

	if d.deps.Overlay != nil {
		d.deps.Overlay.SetOverlay(d.panel.Lines)
	}
}

func (d *Director) addEventListeners() {
	w := d.deps.Window
	d.unsubscribe = append(d.unsubscribe,
		w.OnPointerMove(d.onPointerMove),
		w.OnResize(func(int, int) { d.onResize() }),
	)
}

// onResize fits the render target to the window area below the target's
// top edge and matches the camera to it.
func (d *Director) onResize() {
	innerW, innerH := d.deps.Window.InnerSize()
	d.rect = d.deps.Target.BoundingRect()

	height := innerH - int(d.rect.Top())
	d.deps.Target.SetSize(innerW, height)
	if height > 0 {
		d.camera.SetAspect(float32(innerW) / float32(height))
	}
	d.camera.UpdateProjectionMatrix()
	d.rect = d.deps.Target.BoundingRect()

	if height > 0 {
		d.orbit.ViewportHeight = float32(height)
	}
	d.orbit.SaveState()
}

func (d *Director) onPointerMove(x, y float64) {
	d.cursorX = x - float64(d.rect.Width)/2
	d.cursorY = y - float64(d.rect.Height)/2
	d.hasCursor = true
}

// ── Content ───────────────────────────────────────────────────────────────────

// populate adds the base layer and its clones, each clone LayerStep
// further along +Z than the one before.
func (d *Director) populate() {
	base := d.createLayerMesh()
	d.addLayer(base)
	for i := 1; i <= d.cfg.LayerCopies; i++ {
		clone := base.Clone()
		clone.TranslateZ(float32(i) * d.cfg.LayerStep)
		d.addLayer(clone)
	}

	if d.cfg.SVGPath != "" {
		if err := d.loadSVGPanel(d.cfg.SVGPath); err != nil {
			fmt.Printf("[Director] WARNING: svg panel skipped: %v\n", err)
		}
	}
	if d.cfg.ModelPath != "" {
		if err := d.loadModel(d.cfg.ModelPath); err != nil {
			fmt.Printf("[Director] WARNING: model skipped: %v\n", err)
		}
	}
}

func (d *Director) addLayer(n *scene.Node) {
	d.layers = append(d.layers, n)
	d.scene.Add(n)
}

// createLayerMesh builds a square frame: an outer square with a square
// hole, extruded LayerDepth along +Z.
func (d *Director) createLayerMesh() *scene.Node {
	cfg := d.cfg
	shape := scene.NewRectShape(cfg.LayerOuter, cfg.LayerOuter)
	h := cfg.LayerHole
	shape.AddHole().
		MoveTo(-h, -h).
		LineTo(h, -h).
		LineTo(h, h).
		LineTo(-h, h).
		LineTo(-h, -h)

	mesh := scene.ExtrudeGeometry(scene.ExtrudeSettings{Depth: cfg.LayerDepth}, shape)
	mesh.Name = "layer"
	mesh.Material = scene.NewPhongMaterial("layer", cfg.LayerColor, cfg.LayerSpecular, cfg.LayerShininess)

	node := scene.NewMeshNode("layer", mesh)
	node.CastShadow = true
	node.ReceiveShadow = true
	return node
}

// loadSVGPanel cuts the shapes of an SVG file out of a square panel with
// its corner at the origin. The shapes are scaled to fit inside the panel.
func (d *Director) loadSVGPanel(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	shapes, err := scene.LoadSVGShapes(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	size := d.cfg.SVGPanelSize
	panel := scene.NewShape()
	panel.MoveTo(0, 0).
		LineTo(size, 0).
		LineTo(size, size).
		LineTo(0, size).
		LineTo(0, 0)
	fitShapes(shapes, size)
	for _, s := range shapes {
		outline := s.Path
		panel.Holes = append(panel.Holes, &outline)
	}

	mesh := scene.ExtrudeGeometry(scene.ExtrudeSettings{Depth: d.cfg.SVGPanelDepth}, panel)
	mesh.Name = "svg-panel"
	mesh.Material = scene.DefaultMaterial()
	node := scene.NewMeshNode("svg-panel", mesh)
	node.CastShadow = true
	node.ReceiveShadow = true
	d.scene.Add(node)
	fmt.Printf("[Director] svg panel: %d shapes from %s\n", len(shapes), path)
	return nil
}

// svgFill is the fraction of the panel the fitted shapes may cover.
const svgFill = 0.8

// fitShapes scales and moves the outlines of shapes uniformly so their
// bounds are centred in a size x size square, covering svgFill of it.
func fitShapes(shapes []*scene.Shape, size float32) {
	first := true
	var lo, hi math.Vec2
	for _, s := range shapes {
		for _, p := range s.Points {
			if first {
				lo, hi, first = p, p, false
				continue
			}
			lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
			hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
		}
	}
	extent := max(hi.X-lo.X, hi.Y-lo.Y)
	if first || extent <= 0 {
		return
	}

	scale := size * svgFill / extent
	cx, cy := (lo.X+hi.X)/2, (lo.Y+hi.Y)/2
	for _, s := range shapes {
		pts := make([]math.Vec2, len(s.Points))
		for i, p := range s.Points {
			pts[i] = math.Vec2{
				X: (p.X-cx)*scale + size/2,
				Y: (p.Y-cy)*scale + size/2,
			}
		}
		s.Points = pts
	}
}

func (d *Director) loadModel(path string) error {
	mesh, err := scene.LoadModelMesh(path)
	if err != nil {
		return err
	}
	node := scene.NewMeshNode(mesh.Name, mesh)
	node.CastShadow = true
	node.ReceiveShadow = true
	d.scene.Add(node)
	fmt.Printf("[Director] model %q: %d triangles\n", mesh.Name, mesh.TriangleCount())
	return nil
}

// ── Frame ─────────────────────────────────────────────────────────────────────

// renderFrame moves the layers to the cursor, advances the controls,
// renders and requests the next frame.
func (d *Director) renderFrame(now time.Time) {
	d.cancelFrame = nil
	if d.stopped {
		return
	}

	if d.hasCursor {
		x := float32(d.cursorX) / d.cfg.PointerScale
		y := float32(d.cursorY) / d.cfg.PointerScale
		for _, layer := range d.layers {
			layer.SetPosition(math.Vec3{X: x, Y: y, Z: layer.Position().Z})
		}
	}

	var dt float32
	if !d.lastFrame.IsZero() {
		dt = min(float32(now.Sub(d.lastFrame).Seconds()), maxFrameDelta)
	}
	d.lastFrame = now
	d.orbit.Tick(dt)

	if err := d.deps.Target.Render(d.scene, d.camera); err != nil {
		fmt.Printf("[Director] render failed: %v\n", err)
	}

	d.cancelFrame = d.deps.Frames.RequestFrame(d.renderFrame)
}
