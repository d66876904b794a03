package renderer

import (
	"fmt"

	"backdrop/core"
	"backdrop/internal/opengl"
	"backdrop/math"
	"backdrop/scene"
)

// ShadowType selects the shadow filtering. Every type is rendered with
// hardware 3x3 PCF; VSM is accepted and falls back to it.
type ShadowType int

const (
	ShadowPCF ShadowType = iota
	ShadowPCFSoft
	ShadowVSM
)

func (t ShadowType) String() string {
	switch t {
	case ShadowPCFSoft:
		return "PCFSoft"
	case ShadowVSM:
		return "VSM"
	default:
		return "PCF"
	}
}

// BokehParams are the depth-of-field settings.
type BokehParams struct {
	Focus    float32
	Aperture float32
	MaxBlur  float32
}

func DefaultBokehParams() BokehParams {
	return BokehParams{Focus: 500, Aperture: 0.025, MaxBlur: 1}
}

// RenderEngine draws a scene into a window's content area.
type RenderEngine struct {
	gl     *opengl.Renderer
	window *core.Window

	// logical size of the render target, in window coordinates
	width, height int

	clear core.Color

	ShadowsEnabled bool
	shadowType     ShadowType
	// FrustumCulling skips meshes whose bounds lie outside the camera view.
	FrustumCulling bool

	bokeh   BokehParams
	overlay func() []string

	lastObjects   int
	lastTriangles int
	lastCulled    int
}

func NewRenderEngine(window *core.Window) (*RenderEngine, error) {
	glRenderer, err := opengl.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}

	w, h := window.InnerSize()
	re := &RenderEngine{
		gl:             glRenderer,
		window:         window,
		clear:          core.ColorBlack,
		FrustumCulling: true,
		bokeh:          DefaultBokehParams(),
	}
	re.SetSize(w, h-window.ContentTop())

	fmt.Println("[Render] render engine initialized (OpenGL)")
	return re, nil
}

// SetSize sets the logical size of the render target. The GL viewport is
// scaled by the window's framebuffer-to-window ratio.
func (re *RenderEngine) SetSize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	re.width, re.height = width, height

	sx, sy := re.pixelRatio()
	re.gl.SetViewport(int(float32(width)*sx), int(float32(height)*sy))
}

func (re *RenderEngine) pixelRatio() (float32, float32) {
	winW, winH := re.window.InnerSize()
	fbW, fbH := re.window.FramebufferSize()
	if winW <= 0 || winH <= 0 || fbW <= 0 || fbH <= 0 {
		return 1, 1
	}
	return float32(fbW) / float32(winW), float32(fbH) / float32(winH)
}

// Size returns the logical size set by SetSize.
func (re *RenderEngine) Size() (int, int) {
	return re.width, re.height
}

// BoundingRect reports where the render target sits in the window: directly
// below the content inset, with the size set by SetSize.
func (re *RenderEngine) BoundingRect() core.Rect {
	return core.Rect{
		X:      0,
		Y:      float32(re.window.ContentTop()),
		Width:  float32(re.width),
		Height: float32(re.height),
	}
}

func (re *RenderEngine) SetClearColor(c core.Color) {
	re.clear = c
}

// EnableShadows turns on the shadow pass for the scene's first
// shadow-casting light. The depth map is created on the first frame at the
// light's MapSize.
func (re *RenderEngine) EnableShadows(t ShadowType) {
	if t == ShadowVSM {
		fmt.Printf("[Render] %s shadows not supported, using PCF\n", t)
	} else {
		fmt.Printf("[Render] %s shadows enabled\n", t)
	}
	re.ShadowsEnabled = true
	re.shadowType = t
}

// EnableDepthOfField routes the scene through the bokeh pass.
func (re *RenderEngine) EnableDepthOfField(p BokehParams) error {
	if err := re.gl.EnableBokeh(); err != nil {
		return fmt.Errorf("depth of field: %w", err)
	}
	re.SetBokeh(p.Focus, p.Aperture, p.MaxBlur)
	return nil
}

// SetBokeh updates the depth-of-field settings. Values are kept even while
// depth of field is off.
func (re *RenderEngine) SetBokeh(focus, aperture, maxBlur float32) {
	re.bokeh = BokehParams{Focus: focus, Aperture: aperture, MaxBlur: maxBlur}
	if b := re.gl.Bokeh(); b != nil {
		b.Focus, b.Aperture, b.MaxBlur = focus, aperture, maxBlur
	}
}

func (re *RenderEngine) Bokeh() BokehParams {
	return re.bokeh
}

// SetOverlay installs a text source polled every frame. nil removes it.
func (re *RenderEngine) SetOverlay(lines func() []string) {
	re.overlay = lines
	if lines == nil {
		_ = re.gl.SetOverlayText(nil)
	}
}

// Render draws scene from camera: shadow pass, main pass (through the bokeh
// pass when enabled) and overlay. Presenting is left to the frame loop.
func (re *RenderEngine) Render(s *scene.Scene, camera *scene.Camera) error {
	if s == nil || camera == nil {
		return fmt.Errorf("no scene or camera")
	}
	if re.width == 0 || re.height == 0 {
		return nil
	}
	nodes := s.VisibleNodes()

	// ── Shadow pass ───────────────────────────────────────────────────────────
	var shadowLight *scene.Light
	lightVP := math.Mat4Identity()
	if re.ShadowsEnabled {
		if l := s.ShadowLight(); l != nil {
			if err := re.gl.EnableShadows(l.Shadow.MapSize); err != nil {
				fmt.Printf("[Render] WARNING: shadows disabled: %v\n", err)
				re.ShadowsEnabled = false
			} else {
				shadowLight = l
				lightVP = l.ShadowViewProjection()
				re.renderShadowPass(nodes, lightVP)
			}
		}
	}

	// ── Main pass ─────────────────────────────────────────────────────────────
	background := re.clear
	if s.Background != nil {
		background = *s.Background
	}
	re.gl.BeginFrame(opengl.FrameParams{
		Clear:       background,
		Ambient:     s.Ambient,
		Lights:      s.Lights,
		CameraPos:   camera.Position,
		Fog:         s.Fog,
		ShadowLight: shadowLight,
		LightVP:     lightVP,
	})

	vp := camera.ViewProjectionMatrix()
	frustum := scene.FrustumFromVP(vp)
	objects, triangles, culled := 0, 0, 0
	for _, node := range nodes {
		model := node.WorldMatrix()
		if re.FrustumCulling && node.Mesh.DrawMode == scene.DrawTriangles {
			box := scene.ComputeAABB(node.Mesh, model)
			if !box.IntersectsFrustum(&frustum) {
				culled++
				continue
			}
		}
		re.gl.DrawMesh(node.Mesh, model.Mul(vp), model, node.ReceiveShadow)
		objects++
		triangles += node.Mesh.TriangleCount()
	}
	re.lastObjects, re.lastTriangles, re.lastCulled = objects, triangles, culled

	// ── Composite ─────────────────────────────────────────────────────────────
	if re.overlay != nil {
		if err := re.gl.SetOverlayText(re.overlay()); err != nil {
			fmt.Printf("[Render] WARNING: %v\n", err)
			re.overlay = nil
		}
	}
	re.gl.EndFrame(camera.Near, camera.Far, camera.Aspect)
	return nil
}

func (re *RenderEngine) renderShadowPass(nodes []*scene.Node, lightVP math.Mat4) {
	re.gl.BeginShadowPass()
	for _, node := range nodes {
		if !node.CastShadow || node.Mesh.DrawMode != scene.DrawTriangles {
			continue
		}
		model := node.WorldMatrix()
		re.gl.DrawMeshShadow(node.Mesh, model.Mul(lightVP))
	}
	re.gl.EndShadowPass()
}

// DrawStats returns counts from the most recent Render call.
func (re *RenderEngine) DrawStats() (objects, triangles, culled int) {
	return re.lastObjects, re.lastTriangles, re.lastCulled
}

func (re *RenderEngine) Destroy() {
	re.gl.Destroy()
}
