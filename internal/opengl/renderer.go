package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"backdrop/core"
	"backdrop/math"
	"backdrop/scene"
)

// MaxSpotLights is the number of spot lights the shader evaluates.
const MaxSpotLights = 4

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
	Revision   uint32
}

// FrameParams carries the per-frame state shared by every draw call.
type FrameParams struct {
	Clear     core.Color
	Ambient   core.Color
	Lights    []*scene.Light
	CameraPos math.Vec3
	Fog       *scene.Fog

	// ShadowLight is the light whose depth map is bound, nil without shadows.
	ShadowLight *scene.Light
	LightVP     math.Mat4
}

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	program uint32

	mvpLoc           int32
	modelLoc         int32
	lightViewProjLoc int32

	ambientColorLoc int32
	cameraPosLoc    int32

	spotCountLoc     int32
	spotPosLoc       [MaxSpotLights]int32
	spotDirLoc       [MaxSpotLights]int32
	spotColorLoc     [MaxSpotLights]int32
	spotIntensityLoc [MaxSpotLights]int32
	spotDistanceLoc  [MaxSpotLights]int32
	spotCosOuterLoc  [MaxSpotLights]int32
	spotCosInnerLoc  [MaxSpotLights]int32
	shadowSpotLoc    int32

	matColorLoc     int32
	matSpecularLoc  int32
	matShininessLoc int32
	unlitLoc        int32
	vertexColorsLoc int32
	doubleSidedLoc  int32

	fogEnabledLoc int32
	fogColorLoc   int32
	fogNearLoc    int32
	fogFarLoc     int32

	shadowMapLoc     int32
	hasShadowsLoc    int32
	receiveShadowLoc int32
	shadowBiasLoc    int32
	shadowTexelLoc   int32

	// Depth-only program for the shadow pass
	shadowProg        uint32
	shadowLightMVPLoc int32

	shadowMap *ShadowMap
	bokeh     *BokehPass
	overlay   *Overlay

	viewportW int32
	viewportH int32

	gpuMeshes map[*scene.Mesh]*GPUMesh
}

// ── Shaders ───────────────────────────────────────────────────────────────────

const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec4 inColor;

uniform mat4 mvp;
uniform mat4 model;
uniform mat4 lightViewProj;

out vec4 fragColor;
out vec3 fragNormal;
out vec3 fragWorldPos;
out vec4 fragLightSpacePos;

void main() {
    vec4 worldPos     = model * vec4(inPosition, 1.0);
    gl_Position       = mvp * vec4(inPosition, 1.0);
    fragColor         = inColor;
    fragNormal        = mat3(model) * inNormal;
    fragWorldPos      = worldPos.xyz;
    fragLightSpacePos = lightViewProj * worldPos;
}
` + "\x00"

// Phong with spot lights. The cone edge fades over the penumbra with
// smoothstep between the outer and inner cutoff cosines.
const fragSrc = `
#version 410 core
in vec4 fragColor;
in vec3 fragNormal;
in vec3 fragWorldPos;
in vec4 fragLightSpacePos;

out vec4 outColor;

uniform vec3 ambientColor;
uniform vec3 cameraPos;

#define MAX_SPOT_LIGHTS 4
uniform int   spotCount;
uniform vec3  spotPos[MAX_SPOT_LIGHTS];
uniform vec3  spotDir[MAX_SPOT_LIGHTS];
uniform vec3  spotColor[MAX_SPOT_LIGHTS];
uniform float spotIntensity[MAX_SPOT_LIGHTS];
uniform float spotDistance[MAX_SPOT_LIGHTS];
uniform float spotCosOuter[MAX_SPOT_LIGHTS];
uniform float spotCosInner[MAX_SPOT_LIGHTS];
uniform int   shadowSpot; // index of the shadow-casting spot, -1 for none

uniform vec3  matColor;
uniform vec3  matSpecular;
uniform float matShininess;
uniform bool  unlit;
uniform bool  vertexColors;
uniform bool  doubleSided;

uniform bool  fogEnabled;
uniform vec3  fogColor;
uniform float fogNear;
uniform float fogFar;

uniform sampler2DShadow shadowMap;
uniform bool  hasShadows;
uniform bool  receiveShadow;
uniform float shadowBias;
uniform float shadowTexel;

// ── Shadow ───────────────────────────────────────────────────────────────────

float calcShadow() {
    vec3 p = fragLightSpacePos.xyz / fragLightSpacePos.w;
    p = p * 0.5 + 0.5;
    if (p.z > 1.0) return 1.0;
    float shadow = 0.0;
    for (int x = -1; x <= 1; x++) {
        for (int y = -1; y <= 1; y++) {
            shadow += texture(shadowMap, vec3(p.xy + vec2(float(x), float(y)) * shadowTexel, p.z - shadowBias));
        }
    }
    return shadow / 9.0;
}

vec3 applyFog(vec3 color) {
    if (!fogEnabled) return color;
    float depth = length(fragWorldPos - cameraPos);
    return mix(color, fogColor, smoothstep(fogNear, fogFar, depth));
}

// ── Main ─────────────────────────────────────────────────────────────────────

void main() {
    vec3 base = matColor;
    if (vertexColors) {
        base *= fragColor.rgb;
    }
    if (unlit) {
        outColor = vec4(applyFog(base), 1.0);
        return;
    }

    vec3 N = normalize(fragNormal);
    if (doubleSided && !gl_FrontFacing) {
        N = -N;
    }
    vec3 V = normalize(cameraPos - fragWorldPos);

    vec3 color = ambientColor * base;
    for (int i = 0; i < spotCount && i < MAX_SPOT_LIGHTS; i++) {
        vec3  toLight = spotPos[i] - fragWorldPos;
        float dist    = length(toLight);
        vec3  L       = toLight / max(dist, 0.0001);

        float atten = 1.0;
        if (spotDistance[i] > 0.0) {
            atten = clamp(1.0 - dist / spotDistance[i], 0.0, 1.0);
            atten *= atten;
        }
        float theta = dot(L, normalize(-spotDir[i]));
        float cone  = smoothstep(spotCosOuter[i], spotCosInner[i], theta);
        float lit   = atten * cone * spotIntensity[i];
        if (i == shadowSpot && hasShadows && receiveShadow) {
            lit *= calcShadow();
        }

        float NdL = max(dot(N, L), 0.0);
        color += spotColor[i] * lit * NdL * base;
        if (NdL > 0.0) {
            vec3 H = normalize(L + V);
            color += spotColor[i] * lit * matSpecular * pow(max(dot(N, H), 0.0), max(matShininess, 0.0001));
        }
    }
    outColor = vec4(applyFog(color), 1.0);
}
` + "\x00"

const depthVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
uniform mat4 lightMVP;
void main() {
    gl_Position = lightMVP * vec4(inPosition, 1.0);
}
` + "\x00"

const depthFragSrc = `
#version 410 core
void main() {}
` + "\x00"

// ── NewRenderer ───────────────────────────────────────────────────────────────

// NewRenderer initialises OpenGL.
// Must be called after the GLFW window context is made current.
func NewRenderer() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	fmt.Printf("[Render] OpenGL version: %s\n", gl.GoStr(gl.GetString(gl.VERSION)))

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("main shader compile: %w", err)
	}
	shadowProg, err := newProgram(depthVertSrc, depthFragSrc)
	if err != nil {
		gl.DeleteProgram(prog)
		return nil, fmt.Errorf("depth shader compile: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.CullFace(gl.BACK)

	loc := func(name string) int32 {
		return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
	}
	r := &Renderer{
		program:    prog,
		shadowProg: shadowProg,

		mvpLoc:           loc("mvp"),
		modelLoc:         loc("model"),
		lightViewProjLoc: loc("lightViewProj"),
		ambientColorLoc:  loc("ambientColor"),
		cameraPosLoc:     loc("cameraPos"),
		spotCountLoc:     loc("spotCount"),
		shadowSpotLoc:    loc("shadowSpot"),

		matColorLoc:     loc("matColor"),
		matSpecularLoc:  loc("matSpecular"),
		matShininessLoc: loc("matShininess"),
		unlitLoc:        loc("unlit"),
		vertexColorsLoc: loc("vertexColors"),
		doubleSidedLoc:  loc("doubleSided"),

		fogEnabledLoc: loc("fogEnabled"),
		fogColorLoc:   loc("fogColor"),
		fogNearLoc:    loc("fogNear"),
		fogFarLoc:     loc("fogFar"),

		shadowMapLoc:     loc("shadowMap"),
		hasShadowsLoc:    loc("hasShadows"),
		receiveShadowLoc: loc("receiveShadow"),
		shadowBiasLoc:    loc("shadowBias"),
		shadowTexelLoc:   loc("shadowTexel"),

		shadowLightMVPLoc: gl.GetUniformLocation(shadowProg, gl.Str("lightMVP\x00")),

		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
	}
	for i := 0; i < MaxSpotLights; i++ {
		r.spotPosLoc[i] = loc(fmt.Sprintf("spotPos[%d]", i))
		r.spotDirLoc[i] = loc(fmt.Sprintf("spotDir[%d]", i))
		r.spotColorLoc[i] = loc(fmt.Sprintf("spotColor[%d]", i))
		r.spotIntensityLoc[i] = loc(fmt.Sprintf("spotIntensity[%d]", i))
		r.spotDistanceLoc[i] = loc(fmt.Sprintf("spotDistance[%d]", i))
		r.spotCosOuterLoc[i] = loc(fmt.Sprintf("spotCosOuter[%d]", i))
		r.spotCosInnerLoc[i] = loc(fmt.Sprintf("spotCosInner[%d]", i))
	}

	// Shadow map lives on texture unit 1
	gl.UseProgram(prog)
	gl.Uniform1i(r.shadowMapLoc, 1)
	ident := math.Mat4Identity()
	gl.UniformMatrix4fv(r.lightViewProjLoc, 1, false, &ident[0][0])

	return r, nil
}

// ── Viewport ──────────────────────────────────────────────────────────────────

// SetViewport resizes the OpenGL viewport (in framebuffer pixels) and the
// bokeh targets when depth of field is on.
func (r *Renderer) SetViewport(width, height int) {
	r.viewportW = int32(width)
	r.viewportH = int32(height)
	gl.Viewport(0, 0, r.viewportW, r.viewportH)
	if r.bokeh != nil {
		r.bokeh.Resize(width, height)
	}
}

// ── Shadow map ────────────────────────────────────────────────────────────────

// EnableShadows creates the depth FBO on first use. Later calls with a
// different size reallocate its texture in place.
func (r *Renderer) EnableShadows(size int) error {
	if r.shadowMap != nil {
		return r.shadowMap.Resize(size)
	}
	sm, err := NewShadowMap(size)
	if err != nil {
		return err
	}
	r.shadowMap = sm
	return nil
}

// BeginShadowPass binds the depth FBO and the depth-only program.
func (r *Renderer) BeginShadowPass() {
	if r.shadowMap == nil {
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.shadowMap.FBO)
	gl.Viewport(0, 0, r.shadowMap.Size, r.shadowMap.Size)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	gl.Disable(gl.CULL_FACE)
	gl.UseProgram(r.shadowProg)
}

// DrawMeshShadow draws a triangle mesh into the depth map.
func (r *Renderer) DrawMeshShadow(mesh *scene.Mesh, lightMVP math.Mat4) {
	if r.shadowMap == nil || mesh.DrawMode != scene.DrawTriangles {
		return
	}
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}
	gl.UniformMatrix4fv(r.shadowLightMVPLoc, 1, false, &lightMVP[0][0])
	r.drawGPU(gpu, gl.TRIANGLES, len(mesh.Vertices))
}

// EndShadowPass restores the default framebuffer and viewport.
func (r *Renderer) EndShadowPass() {
	if r.shadowMap == nil {
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, r.viewportW, r.viewportH)
}

// ── Depth of field ────────────────────────────────────────────────────────────

// EnableBokeh creates the off-screen targets for the depth-of-field pass.
func (r *Renderer) EnableBokeh() error {
	if r.bokeh != nil {
		return nil
	}
	b, err := NewBokehPass(int(r.viewportW), int(r.viewportH))
	if err != nil {
		return err
	}
	r.bokeh = b
	return nil
}

// Bokeh returns the depth-of-field pass, nil when disabled.
func (r *Renderer) Bokeh() *BokehPass {
	return r.bokeh
}

// ── Frame ─────────────────────────────────────────────────────────────────────

// BeginFrame binds the scene target, clears it, and uploads the per-frame
// light, camera, fog and shadow uniforms.
func (r *Renderer) BeginFrame(fp FrameParams) {
	if r.bokeh != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, r.bokeh.FBO)
	} else {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
	gl.Viewport(0, 0, r.viewportW, r.viewportH)
	gl.ClearColor(fp.Clear.R, fp.Clear.G, fp.Clear.B, fp.Clear.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	gl.Uniform3f(r.ambientColorLoc, fp.Ambient.R, fp.Ambient.G, fp.Ambient.B)
	gl.Uniform3f(r.cameraPosLoc, fp.CameraPos.X, fp.CameraPos.Y, fp.CameraPos.Z)

	if fp.Fog != nil {
		gl.Uniform1i(r.fogEnabledLoc, 1)
		gl.Uniform3f(r.fogColorLoc, fp.Fog.Color.R, fp.Fog.Color.G, fp.Fog.Color.B)
		gl.Uniform1f(r.fogNearLoc, fp.Fog.Near)
		gl.Uniform1f(r.fogFarLoc, fp.Fog.Far)
	} else {
		gl.Uniform1i(r.fogEnabledLoc, 0)
	}

	lightVP := fp.LightVP
	gl.UniformMatrix4fv(r.lightViewProjLoc, 1, false, &lightVP[0][0])

	shadowSpot := int32(-1)
	count := 0
	for _, l := range fp.Lights {
		if l == nil || count >= MaxSpotLights {
			continue
		}
		dir := l.Direction()
		cosOuter, cosInner := l.CosCutoffs()
		gl.Uniform3f(r.spotPosLoc[count], l.Position.X, l.Position.Y, l.Position.Z)
		gl.Uniform3f(r.spotDirLoc[count], dir.X, dir.Y, dir.Z)
		gl.Uniform3f(r.spotColorLoc[count], l.Color.R, l.Color.G, l.Color.B)
		gl.Uniform1f(r.spotIntensityLoc[count], l.Intensity)
		gl.Uniform1f(r.spotDistanceLoc[count], l.Distance)
		gl.Uniform1f(r.spotCosOuterLoc[count], cosOuter)
		gl.Uniform1f(r.spotCosInnerLoc[count], cosInner)
		if l == fp.ShadowLight {
			shadowSpot = int32(count)
		}
		count++
	}
	gl.Uniform1i(r.spotCountLoc, int32(count))
	gl.Uniform1i(r.shadowSpotLoc, shadowSpot)

	if fp.ShadowLight != nil && r.shadowMap != nil {
		gl.ActiveTexture(gl.TEXTURE1)
		gl.BindTexture(gl.TEXTURE_2D, r.shadowMap.DepthTex)
		gl.Uniform1i(r.hasShadowsLoc, 1)
		gl.Uniform1f(r.shadowBiasLoc, fp.ShadowLight.Shadow.Bias)
		gl.Uniform1f(r.shadowTexelLoc, 1/float32(r.shadowMap.Size))
	} else {
		gl.Uniform1i(r.hasShadowsLoc, 0)
	}
}

// DrawMesh draws one mesh with its material. receiveShadow selects whether
// the shadow map darkens it.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, mvp, model math.Mat4, receiveShadow bool) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.mvpLoc, 1, false, &mvp[0][0])
	gl.UniformMatrix4fv(r.modelLoc, 1, false, &model[0][0])
	gl.Uniform1i(r.receiveShadowLoc, boolToInt(receiveShadow))

	mat := mesh.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}
	r.applyMaterial(mat)

	primitive := uint32(gl.TRIANGLES)
	if mesh.DrawMode == scene.DrawLines {
		primitive = gl.LINES
	}
	r.drawGPU(gpu, primitive, len(mesh.Vertices))
}

// EndFrame resolves the depth-of-field pass, when enabled, to the default
// framebuffer and draws the overlay on top. Presenting is left to the caller.
func (r *Renderer) EndFrame(near, far, aspect float32) {
	if r.bokeh != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, r.viewportW, r.viewportH)
		r.bokeh.Composite(near, far, aspect)
	}
	if r.overlay != nil {
		r.overlay.Draw(r.viewportW, r.viewportH)
	}
}

// ── Overlay ───────────────────────────────────────────────────────────────────

// SetOverlayText replaces the overlay text. No lines hides the overlay.
func (r *Renderer) SetOverlayText(lines []string) error {
	if len(lines) == 0 {
		if r.overlay != nil {
			r.overlay.SetLines(nil)
		}
		return nil
	}
	if r.overlay == nil {
		o, err := NewOverlay()
		if err != nil {
			return fmt.Errorf("overlay: %w", err)
		}
		r.overlay = o
	}
	r.overlay.SetLines(lines)
	return nil
}

// ── Material ──────────────────────────────────────────────────────────────────

func (r *Renderer) applyMaterial(mat *scene.Material) {
	gl.Uniform3f(r.matColorLoc, mat.Color.R, mat.Color.G, mat.Color.B)
	gl.Uniform3f(r.matSpecularLoc, mat.Specular.R, mat.Specular.G, mat.Specular.B)
	gl.Uniform1f(r.matShininessLoc, mat.Shininess)
	gl.Uniform1i(r.unlitLoc, boolToInt(mat.Unlit))
	gl.Uniform1i(r.vertexColorsLoc, boolToInt(mat.VertexColors))
	gl.Uniform1i(r.doubleSidedLoc, boolToInt(mat.DoubleSided))
	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
	}
}

// ── Resource management ───────────────────────────────────────────────────────

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	gpu, ok := r.gpuMeshes[mesh]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &gpu.VAO)
	gl.DeleteBuffers(1, &gpu.VBO)
	if gpu.EBO != 0 {
		gl.DeleteBuffers(1, &gpu.EBO)
	}
	delete(r.gpuMeshes, mesh)
	mesh.GPUData = nil
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
	}
	if r.bokeh != nil {
		r.bokeh.Destroy()
	}
	if r.overlay != nil {
		r.overlay.Destroy()
	}
	gl.DeleteProgram(r.shadowProg)
	gl.DeleteProgram(r.program)
}

// ── Internal helpers ──────────────────────────────────────────────────────────

func (r *Renderer) drawGPU(gpu *GPUMesh, primitive uint32, vertexCount int) {
	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(primitive, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(primitive, 0, int32(vertexCount))
	}
	gl.BindVertexArray(0)
}

// ensureUploaded uploads vertex/index data on first use and again whenever
// the mesh revision changes.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if len(mesh.Vertices) == 0 {
		return nil
	}
	gpu, ok := r.gpuMeshes[mesh]
	if ok && gpu.Revision == mesh.Revision {
		return gpu
	}
	if !ok {
		gpu = &GPUMesh{}
		gl.GenVertexArrays(1, &gpu.VAO)
		gl.GenBuffers(1, &gpu.VBO)
		r.bindLayout(gpu)
		r.gpuMeshes[mesh] = gpu
		mesh.GPUData = gpu
	}

	stride := int(unsafe.Sizeof(core.Vertex{}))
	gl.BindVertexArray(gpu.VAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*stride, gl.Ptr(mesh.Vertices), gl.DYNAMIC_DRAW)

	gpu.IndexCount = int32(len(mesh.Indices))
	gpu.HasIndices = len(mesh.Indices) > 0
	if gpu.HasIndices {
		if gpu.EBO == 0 {
			gl.GenBuffers(1, &gpu.EBO)
		}
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.DYNAMIC_DRAW)
	}
	gl.BindVertexArray(0)

	gpu.Revision = mesh.Revision
	return gpu
}

func (r *Renderer) bindLayout(gpu *GPUMesh) {
	var v core.Vertex
	stride := int32(unsafe.Sizeof(v))

	gl.BindVertexArray(gpu.VAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Position))))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Normal))))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Color))))

	gl.BindVertexArray(0)
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
