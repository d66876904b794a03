package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// BokehPass is a depth-of-field post-process. The scene renders into FBO;
// Composite then blurs each pixel by how far its depth lies from Focus.
type BokehPass struct {
	FBO      uint32
	ColorTex uint32 // RGBA8 colour attachment
	DepthTex uint32 // sampleable depth attachment
	Width    int32
	Height   int32

	Focus    float32
	Aperture float32
	MaxBlur  float32

	prog        uint32
	focusLoc    int32
	apertureLoc int32
	maxBlurLoc  int32
	nearLoc     int32
	farLoc      int32
	aspectLoc   int32

	quadVAO uint32 // empty VAO for the fullscreen triangle
}

// ── Shaders ───────────────────────────────────────────────────────────────────

// fullscreen triangle via gl_VertexID, no VBO needed
const quadVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

const bokehFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D tColor; // unit 0
uniform sampler2D tDepth; // unit 1
uniform float focus;
uniform float aperture;
uniform float maxblur;
uniform float nearClip;
uniform float farClip;
uniform float aspect;

const vec2 ring[12] = vec2[12](
    vec2( 0.0,    0.4  ), vec2( 0.2,    0.346), vec2( 0.346,  0.2  ),
    vec2( 0.4,    0.0  ), vec2( 0.346, -0.2  ), vec2( 0.2,   -0.346),
    vec2( 0.0,   -0.4  ), vec2(-0.2,   -0.346), vec2(-0.346, -0.2  ),
    vec2(-0.4,    0.0  ), vec2(-0.346,  0.2  ), vec2(-0.2,    0.346)
);
const float scales[3] = float[3](1.0, 0.7, 0.4);

// view-space z (negative in front of the camera) from a [0,1] depth sample
float viewZ(float depth) {
    return (nearClip * farClip) / ((farClip - nearClip) * depth - farClip);
}

void main() {
    vec2  aspectCorrect = vec2(1.0, aspect);
    float factor = focus + viewZ(texture(tDepth, fragUV).x);
    vec2  blur   = vec2(clamp(factor * aperture, -maxblur, maxblur));

    vec4 col = texture(tColor, fragUV);
    for (int s = 0; s < 3; s++) {
        for (int i = 0; i < 12; i++) {
            col += texture(tColor, fragUV + ring[i] * aspectCorrect * blur * scales[s]);
        }
    }
    outColor = vec4((col / 37.0).rgb, 1.0);
}
` + "\x00"

// ── Constructor ───────────────────────────────────────────────────────────────

func NewBokehPass(width, height int) (*BokehPass, error) {
	prog, err := newProgram(quadVertSrc, bokehFragSrc)
	if err != nil {
		return nil, fmt.Errorf("bokeh shader: %w", err)
	}
	b := &BokehPass{
		Focus:    1,
		Aperture: 0.025,
		MaxBlur:  1,

		prog:        prog,
		focusLoc:    gl.GetUniformLocation(prog, gl.Str("focus\x00")),
		apertureLoc: gl.GetUniformLocation(prog, gl.Str("aperture\x00")),
		maxBlurLoc:  gl.GetUniformLocation(prog, gl.Str("maxblur\x00")),
		nearLoc:     gl.GetUniformLocation(prog, gl.Str("nearClip\x00")),
		farLoc:      gl.GetUniformLocation(prog, gl.Str("farClip\x00")),
		aspectLoc:   gl.GetUniformLocation(prog, gl.Str("aspect\x00")),
	}
	gl.UseProgram(prog)
	gl.Uniform1i(gl.GetUniformLocation(prog, gl.Str("tColor\x00")), 0)
	gl.Uniform1i(gl.GetUniformLocation(prog, gl.Str("tDepth\x00")), 1)

	gl.GenVertexArrays(1, &b.quadVAO)

	if err := b.allocFBO(width, height); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

// ── FBO lifecycle ─────────────────────────────────────────────────────────────

func (b *BokehPass) allocFBO(width, height int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	b.Width = int32(width)
	b.Height = int32(height)

	gl.GenTextures(1, &b.ColorTex)
	gl.BindTexture(gl.TEXTURE_2D, b.ColorTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, b.Width, b.Height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	setClampLinear()

	gl.GenTextures(1, &b.DepthTex)
	gl.BindTexture(gl.TEXTURE_2D, b.DepthTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, b.Width, b.Height, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &b.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, b.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, b.ColorTex, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, b.DepthTex, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("bokeh FBO incomplete: status=0x%X", status)
	}
	return nil
}

func (b *BokehPass) freeFBO() {
	if b.FBO != 0 {
		gl.DeleteFramebuffers(1, &b.FBO)
		b.FBO = 0
	}
	if b.ColorTex != 0 {
		gl.DeleteTextures(1, &b.ColorTex)
		b.ColorTex = 0
	}
	if b.DepthTex != 0 {
		gl.DeleteTextures(1, &b.DepthTex)
		b.DepthTex = 0
	}
}

// Resize recreates the targets at the new pixel size.
func (b *BokehPass) Resize(width, height int) {
	if int32(width) == b.Width && int32(height) == b.Height {
		return
	}
	b.freeFBO()
	if err := b.allocFBO(width, height); err != nil {
		fmt.Printf("[Render] WARNING: %v\n", err)
	}
}

func (b *BokehPass) Destroy() {
	b.freeFBO()
	if b.prog != 0 {
		gl.DeleteProgram(b.prog)
		b.prog = 0
	}
	if b.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &b.quadVAO)
		b.quadVAO = 0
	}
}

// ── Composite ─────────────────────────────────────────────────────────────────

// Composite draws the blurred scene into the currently bound framebuffer.
// near and far are the camera clip planes the depth buffer was written with.
func (b *BokehPass) Composite(near, far, aspect float32) {
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.BindVertexArray(b.quadVAO)

	gl.UseProgram(b.prog)
	gl.Uniform1f(b.focusLoc, b.Focus)
	gl.Uniform1f(b.apertureLoc, b.Aperture)
	gl.Uniform1f(b.maxBlurLoc, b.MaxBlur)
	gl.Uniform1f(b.nearLoc, near)
	gl.Uniform1f(b.farLoc, far)
	gl.Uniform1f(b.aspectLoc, aspect)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, b.ColorTex)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, b.DepthTex)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)

	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}
