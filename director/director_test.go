package director

import (
	"errors"
	stdmath "math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"backdrop/core"
	"backdrop/frameloop"
	"backdrop/math"
	"backdrop/scene"
)

const tolerance = 0.0001

func near(a, b float32) bool {
	return stdmath.Abs(float64(a-b)) <= tolerance
}

type fakeContainer struct {
	children []core.Element
}

func (c *fakeContainer) AppendChild(e core.Element) {
	c.children = append(c.children, e)
}

// fakeTarget sits top units below the top of the window and takes the size
// it was last given.
type fakeTarget struct {
	top     int
	width   int
	height  int
	sizes   int
	renders int
	err     error
}

func (t *fakeTarget) BoundingRect() core.Rect {
	return core.Rect{Y: float32(t.top), Width: float32(t.width), Height: float32(t.height)}
}

func (t *fakeTarget) SetSize(width, height int) {
	t.width, t.height = width, height
	t.sizes++
}

func (t *fakeTarget) Render(*scene.Scene, *scene.Camera) error {
	t.renders++
	return t.err
}

type fakeWindow struct {
	width, height int

	nextID  int
	moves   map[int]func(float64, float64)
	resizes map[int]func(int, int)
	buttons map[int]func(int, bool)
	scrolls map[int]func(float64, float64)
}

func newFakeWindow(width, height int) *fakeWindow {
	return &fakeWindow{
		width:   width,
		height:  height,
		moves:   map[int]func(float64, float64){},
		resizes: map[int]func(int, int){},
		buttons: map[int]func(int, bool){},
		scrolls: map[int]func(float64, float64){},
	}
}

func subscribe[F any](w *fakeWindow, m map[int]F, fn F) func() {
	w.nextID++
	id := w.nextID
	m[id] = fn
	return func() { delete(m, id) }
}

func (w *fakeWindow) InnerSize() (int, int) { return w.width, w.height }

func (w *fakeWindow) OnPointerMove(fn func(x, y float64)) func() {
	return subscribe(w, w.moves, fn)
}

func (w *fakeWindow) OnResize(fn func(width, height int)) func() {
	return subscribe(w, w.resizes, fn)
}

func (w *fakeWindow) OnMouseButton(fn func(button int, pressed bool)) func() {
	return subscribe(w, w.buttons, fn)
}

func (w *fakeWindow) OnScroll(fn func(xoff, yoff float64)) func() {
	return subscribe(w, w.scrolls, fn)
}

func (w *fakeWindow) listeners() int {
	return len(w.moves) + len(w.resizes) + len(w.buttons) + len(w.scrolls)
}

func (w *fakeWindow) move(x, y float64) {
	for _, fn := range w.moves {
		fn(x, y)
	}
}

func (w *fakeWindow) resize(width, height int) {
	w.width, w.height = width, height
	for _, fn := range w.resizes {
		fn(width, height)
	}
}

type fakeBokeh struct {
	calls    int
	focus    float32
	aperture float32
	maxBlur  float32
}

func (b *fakeBokeh) SetBokeh(focus, aperture, maxBlur float32) {
	b.calls++
	b.focus, b.aperture, b.maxBlur = focus, aperture, maxBlur
}

type fakeOverlay struct {
	source func() []string
}

func (o *fakeOverlay) SetOverlay(lines func() []string) {
	o.source = lines
}

type fixture struct {
	container *fakeContainer
	target    *fakeTarget
	window    *fakeWindow
	frames    *frameloop.Manual
	director  *Director
	now       time.Time
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		container: &fakeContainer{},
		target:    &fakeTarget{top: 80},
		window:    newFakeWindow(1280, 800),
		frames:    frameloop.NewManual(),
		now:       time.Unix(1000, 0),
	}
	d, err := New(cfg, Deps{
		Container: f.container,
		Target:    f.target,
		Window:    f.window,
		Frames:    f.frames,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.director = d
	return f
}

func (f *fixture) setup(t *testing.T) {
	t.Helper()
	if err := f.director.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
}

func (f *fixture) step() int {
	f.now = f.now.Add(16 * time.Millisecond)
	return f.frames.Step(f.now)
}

func TestNewValidatesDeps(t *testing.T) {
	full := Deps{
		Container: &fakeContainer{},
		Target:    &fakeTarget{},
		Window:    newFakeWindow(10, 10),
		Frames:    frameloop.NewManual(),
	}
	cases := []struct {
		name   string
		modify func(*Deps)
		want   error
	}{
		{"container", func(d *Deps) { d.Container = nil }, ErrNoContainer},
		{"target", func(d *Deps) { d.Target = nil }, ErrNoTarget},
		{"window", func(d *Deps) { d.Window = nil }, ErrNoWindow},
		{"frames", func(d *Deps) { d.Frames = nil }, ErrNoScheduler},
	}
	for _, c := range cases {
		deps := full
		c.modify(&deps)
		if _, err := New(DefaultConfig(), deps); !errors.Is(err, c.want) {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, err)
		}
	}
	if _, err := New(DefaultConfig(), full); err != nil {
		t.Errorf("complete deps: unexpected error %v", err)
	}
}

func TestSetupMountsTarget(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.setup(t)

	if len(f.container.children) != 1 {
		t.Fatalf("expected 1 child in the container, got %d", len(f.container.children))
	}
	if f.container.children[0] != core.Element(f.target) {
		t.Errorf("container child is not the render target")
	}
}

func TestInitialResizeFillsWindowBelowTarget(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.setup(t)

	if f.target.width != 1280 || f.target.height != 720 {
		t.Errorf("target size: expected 1280x720, got %dx%d", f.target.width, f.target.height)
	}
	if cam := f.director.Camera(); !near(cam.Aspect, 1280.0/720.0) {
		t.Errorf("camera aspect: expected %v, got %v", 1280.0/720.0, cam.Aspect)
	}
	want := core.Rect{X: 0, Y: 80, Width: 1280, Height: 720}
	if got := f.director.ViewportRect(); got != want {
		t.Errorf("viewport rect: expected %+v, got %+v", want, got)
	}
}

func TestPopulateStacksLayers(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.setup(t)

	layers := f.director.Layers()
	if len(layers) != 5 {
		t.Fatalf("expected 5 layers, got %d", len(layers))
	}
	for i, layer := range layers {
		p := layer.Position()
		if !near(p.Z, float32(i)*0.5) {
			t.Errorf("layer %d: expected z=%v, got %v", i, float32(i)*0.5, p.Z)
		}
		if p.X != 0 || p.Y != 0 {
			t.Errorf("layer %d: expected x=y=0, got %v", i, p)
		}
		if layer.Mesh != layers[0].Mesh {
			t.Errorf("layer %d does not share the base mesh", i)
		}
		if !layer.CastShadow || !layer.ReceiveShadow {
			t.Errorf("layer %d: expected cast and receive shadow", i)
		}
		if layer.Parent != f.director.Scene().Root {
			t.Errorf("layer %d is not in the scene", i)
		}
	}
}

func TestFrameWithoutPointerKeepsLayers(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.setup(t)

	before := make([]math.Vec3, 0, 5)
	for _, layer := range f.director.Layers() {
		before = append(before, layer.Position())
	}
	if ran := f.step(); ran != 1 {
		t.Fatalf("expected 1 frame callback, got %d", ran)
	}
	for i, layer := range f.director.Layers() {
		if layer.Position() != before[i] {
			t.Errorf("layer %d moved without a pointer: %v -> %v", i, before[i], layer.Position())
		}
	}
	if _, _, ok := f.director.Cursor(); ok {
		t.Errorf("cursor reported before any pointer move")
	}
	if f.target.renders != 1 {
		t.Errorf("expected 1 render, got %d", f.target.renders)
	}
	if f.frames.Pending() != 1 {
		t.Errorf("expected the next frame to be requested, pending=%d", f.frames.Pending())
	}
}

func TestPointerMoveDrivesLayers(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.setup(t)

	// viewport is 1280x720, so its centre is (640, 360)
	f.window.move(740, 160)
	x, y, ok := f.director.Cursor()
	if !ok || x != 100 || y != -200 {
		t.Fatalf("cursor: expected (100, -200, true), got (%v, %v, %v)", x, y, ok)
	}

	f.step()
	for i, layer := range f.director.Layers() {
		p := layer.Position()
		if !near(p.X, 0.1) || !near(p.Y, -0.2) {
			t.Errorf("layer %d: expected (0.1, -0.2), got (%v, %v)", i, p.X, p.Y)
		}
		if !near(p.Z, float32(i)*0.5) {
			t.Errorf("layer %d: depth changed to %v", i, p.Z)
		}
	}

	// last write wins
	f.window.move(640, 360)
	f.step()
	if p := f.director.Layers()[0].Position(); p.X != 0 || p.Y != 0 {
		t.Errorf("expected layers back at the centre, got %v", p)
	}
}

func TestResizeKeepsLayersAndCursor(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.setup(t)
	f.window.move(700, 400)
	f.step()
	x, y, _ := f.director.Cursor()
	layers := f.director.Layers()

	f.window.resize(1000, 600)

	if f.target.width != 1000 || f.target.height != 520 {
		t.Errorf("target size: expected 1000x520, got %dx%d", f.target.width, f.target.height)
	}
	if cam := f.director.Camera(); !near(cam.Aspect, 1000.0/520.0) {
		t.Errorf("camera aspect: expected %v, got %v", 1000.0/520.0, cam.Aspect)
	}
	if nx, ny, _ := f.director.Cursor(); nx != x || ny != y {
		t.Errorf("cursor changed on resize: (%v, %v) -> (%v, %v)", x, y, nx, ny)
	}
	after := f.director.Layers()
	if len(after) != len(layers) {
		t.Fatalf("layer count changed on resize: %d -> %d", len(layers), len(after))
	}
	for i := range after {
		if after[i] != layers[i] || after[i].Position() != layers[i].Position() {
			t.Errorf("layer %d changed on resize", i)
		}
	}
}

func TestResizeIgnoresEmptyViewport(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.setup(t)
	aspect := f.director.Camera().Aspect

	f.window.resize(1000, 80)
	if f.target.height != 0 {
		t.Errorf("expected zero target height, got %d", f.target.height)
	}
	if f.director.Camera().Aspect != aspect {
		t.Errorf("aspect changed for an empty viewport: %v -> %v", aspect, f.director.Camera().Aspect)
	}
}

func TestSetupTwiceFails(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.setup(t)
	if err := f.director.Setup(); !errors.Is(err, ErrAlreadySetup) {
		t.Errorf("expected ErrAlreadySetup, got %v", err)
	}
	if len(f.container.children) != 1 {
		t.Errorf("second Setup mounted the target again")
	}
}

func TestStopEndsFramesAndListeners(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.setup(t)
	f.step()
	if f.window.listeners() == 0 {
		t.Fatalf("expected listeners after Setup")
	}

	f.director.Stop()
	if f.frames.Pending() != 0 {
		t.Errorf("expected no pending frame after Stop, got %d", f.frames.Pending())
	}
	if ran := f.step(); ran != 0 {
		t.Errorf("expected no frames after Stop, %d ran", ran)
	}
	if n := f.window.listeners(); n != 0 {
		t.Errorf("expected all listeners removed, %d left", n)
	}
	renders := f.target.renders
	f.director.Stop()
	f.step()
	if f.target.renders != renders {
		t.Errorf("rendered after Stop")
	}
}

func TestRenderErrorKeepsLoopRunning(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.target.err = errors.New("boom")
	f.setup(t)
	f.step()
	f.step()
	if f.target.renders != 2 {
		t.Errorf("expected 2 renders, got %d", f.target.renders)
	}
}

func TestWorldMatchesConfig(t *testing.T) {
	cfg := DefaultConfig()
	f := newFixture(t, cfg)
	f.setup(t)
	s := f.director.Scene()

	if s.Background == nil || *s.Background != core.ColorHex(0x001100) {
		t.Errorf("background: got %v", s.Background)
	}
	if s.Fog == nil || s.Fog.Near != 50 || s.Fog.Far != 100 {
		t.Errorf("fog: got %+v", s.Fog)
	}
	cam := f.director.Camera()
	if !near(cam.Position.Z, -1.5) || cam.Target != math.Vec3Zero {
		t.Errorf("camera: position %v target %v", cam.Position, cam.Target)
	}
	if cam.FOV != 45 || cam.Near != 1 || cam.Far != 100 {
		t.Errorf("camera lens: fov %v near %v far %v", cam.FOV, cam.Near, cam.Far)
	}
	light := f.director.SpotLight()
	if s.ShadowLight() != light {
		t.Fatalf("spot light is not the scene's shadow light")
	}
	if light.Position.Z != -10 || light.Shadow.MapSize != 128 || light.Shadow.Camera.Near != 0.1 {
		t.Errorf("spot light: %+v", light)
	}
	for _, name := range []string{"grid", "axes", "CameraHelper"} {
		if s.Root.Find(name) == nil {
			t.Errorf("expected %q in the scene", name)
		}
	}
}

func TestHelpersCanBeHidden(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShowHelpers = false
	f := newFixture(t, cfg)
	f.setup(t)
	if f.director.Scene().Root.Find("grid") != nil {
		t.Errorf("grid added with helpers off")
	}
}

func TestDepthOfFieldWithTweakPanel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DepthOfField = true
	cfg.TweakPanel = true
	bokeh := &fakeBokeh{}
	overlay := &fakeOverlay{}

	f := newFixture(t, cfg)
	f.director.deps.DepthOfField = bokeh
	f.director.deps.Overlay = overlay
	f.setup(t)

	if bokeh.focus != 500 || !near(bokeh.aperture, 5*0.00001) || bokeh.maxBlur != 1 {
		t.Errorf("bokeh: got focus %v aperture %v maxblur %v", bokeh.focus, bokeh.aperture, bokeh.maxBlur)
	}
	if overlay.source == nil {
		t.Fatalf("overlay source not installed")
	}
	if lines := overlay.source(); len(lines) != 0 {
		t.Errorf("closed panel should show nothing, got %q", lines)
	}

	if !f.director.HandleKey(core.KeyTab) {
		t.Fatalf("Tab not handled")
	}
	if lines := overlay.source(); len(lines) != 4 {
		t.Errorf("open panel: expected title and 3 rows, got %q", lines)
	}
	f.director.HandleKey(core.KeyRight)
	if bokeh.focus != 510 {
		t.Errorf("nudging focus: expected 510, got %v", bokeh.focus)
	}

	f.director.Stop()
	if overlay.source != nil {
		t.Errorf("overlay not cleared on Stop")
	}
}

func TestDepthOfFieldWithoutPanel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DepthOfField = true
	bokeh := &fakeBokeh{}

	f := newFixture(t, cfg)
	f.director.deps.DepthOfField = bokeh
	f.setup(t)

	if bokeh.calls != 1 || bokeh.focus != 500 || !near(bokeh.aperture, 0.025) || bokeh.maxBlur != 1 {
		t.Errorf("bokeh: got %+v", bokeh)
	}
	if f.director.TweakPanel() != nil {
		t.Errorf("panel created without TweakPanel")
	}
	if f.director.HandleKey(core.KeyTab) {
		t.Errorf("Tab handled without a panel")
	}
}

func TestResetKeyRestoresCamera(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.setup(t)
	orbit := f.director.Controls()
	start := f.director.Camera().Position

	orbit.Rotate(0.5, 0)
	if !f.director.HandleKey(core.KeyR) {
		t.Fatalf("R not handled")
	}
	if !orbit.Resetting() {
		t.Fatalf("expected a reset animation")
	}
	for i := 0; i < 60; i++ {
		f.step()
	}
	if p := f.director.Camera().Position; p.Sub(start).Length() > tolerance {
		t.Errorf("camera not restored: expected %v, got %v", start, p)
	}
}

func TestFitShapesCentresInPanel(t *testing.T) {
	s := scene.NewShape()
	s.MoveTo(0, 0).LineTo(100, 0).LineTo(100, 50).LineTo(0, 50)
	fitShapes([]*scene.Shape{s}, 10)

	want := []math.Vec2{{X: 1, Y: 3}, {X: 9, Y: 3}, {X: 9, Y: 7}, {X: 1, Y: 7}}
	for i, p := range s.Points {
		if !near(p.X, want[i].X) || !near(p.Y, want[i].Y) {
			t.Errorf("point %d: expected %v, got %v", i, want[i], p)
		}
	}
}

func TestOptionalAssets(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "tri.obj")
	svgPath := filepath.Join(dir, "star.svg")
	obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
<path d="M20 20 L80 20 L80 80 L20 80 Z"/>
</svg>`
	if err := os.WriteFile(objPath, []byte(obj), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(svgPath, []byte(svg), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.ModelPath = objPath
	cfg.SVGPath = svgPath
	f := newFixture(t, cfg)
	f.setup(t)

	root := f.director.Scene().Root
	if n := root.Find("tri"); n == nil || n.Mesh.TriangleCount() != 1 {
		t.Errorf("model node missing or wrong: %v", n)
	}
	panel := root.Find("svg-panel")
	if panel == nil {
		t.Fatalf("svg panel missing")
	}
	if panel.Mesh.TriangleCount() == 0 {
		t.Errorf("svg panel has no triangles")
	}
	if len(f.director.Layers()) != 5 {
		t.Errorf("assets changed the layer count")
	}
}

func TestMissingAssetsAreSkipped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = filepath.Join(t.TempDir(), "missing.obj")
	cfg.SVGPath = filepath.Join(t.TempDir(), "missing.svg")
	f := newFixture(t, cfg)
	f.setup(t)

	if len(f.director.Layers()) != 5 {
		t.Errorf("expected 5 layers, got %d", len(f.director.Layers()))
	}
	if f.director.Scene().Root.Find("svg-panel") != nil {
		t.Errorf("svg panel added for a missing file")
	}
}
