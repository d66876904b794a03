package opengl

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	overlayPadding = 6
	overlayMargin  = 10
)

var (
	overlayBackground = color.RGBA{A: 170}
	overlayForeground = color.RGBA{R: 0xcc, G: 0xff, B: 0xcc, A: 0xff}
)

// RasterizeLines draws lines of text with the 7x13 bitmap face onto a
// translucent panel sized to fit them.
func RasterizeLines(lines []string) *image.RGBA {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()

	width := 0
	for _, line := range lines {
		if w := font.MeasureString(face, line).Ceil(); w > width {
			width = w
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, width+2*overlayPadding, len(lines)*lineHeight+2*overlayPadding))
	draw.Draw(img, img.Bounds(), image.NewUniform(overlayBackground), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(overlayForeground),
		Face: face,
	}
	for i, line := range lines {
		d.Dot = fixed.P(overlayPadding, overlayPadding+i*lineHeight+metrics.Ascent.Ceil())
		d.DrawString(line)
	}
	return img
}

// Overlay is a screen-space text panel drawn in the top-left corner.
type Overlay struct {
	// Scale multiplies the panel's pixel size, for HiDPI framebuffers.
	Scale float32

	prog    uint32
	rectLoc int32
	quadVAO uint32
	tex     uint32
	width   int
	height  int

	text  string
	lines []string
	dirty bool
}

const overlayVertSrc = `
#version 410 core
uniform vec4 rect; // x, y of the top-left corner and w, h, in NDC
out vec2 fragUV;
void main() {
    vec2 corner = vec2(gl_VertexID & 1, gl_VertexID >> 1);
    gl_Position = vec4(rect.x + corner.x * rect.z, rect.y - corner.y * rect.w, 0.0, 1.0);
    fragUV      = corner;
}
` + "\x00"

const overlayFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;
uniform sampler2D panel;
void main() {
    outColor = texture(panel, fragUV);
}
` + "\x00"

func NewOverlay() (*Overlay, error) {
	prog, err := newProgram(overlayVertSrc, overlayFragSrc)
	if err != nil {
		return nil, fmt.Errorf("overlay shader: %w", err)
	}
	o := &Overlay{
		Scale:   1,
		prog:    prog,
		rectLoc: gl.GetUniformLocation(prog, gl.Str("rect\x00")),
	}
	gl.UseProgram(prog)
	gl.Uniform1i(gl.GetUniformLocation(prog, gl.Str("panel\x00")), 0)
	gl.GenVertexArrays(1, &o.quadVAO)
	return o, nil
}

// SetLines replaces the text. The texture is rebuilt on the next Draw only
// when the text changed.
func (o *Overlay) SetLines(lines []string) {
	text := strings.Join(lines, "\n")
	if text == o.text && len(lines) == len(o.lines) {
		return
	}
	o.text = text
	o.lines = append(o.lines[:0], lines...)
	o.dirty = true
}

// Draw blends the panel over the currently bound framebuffer of the given
// pixel size. Nothing is drawn without text.
func (o *Overlay) Draw(viewW, viewH int32) {
	if len(o.lines) == 0 || viewW <= 0 || viewH <= 0 {
		return
	}
	if o.dirty {
		img := RasterizeLines(o.lines)
		if o.tex == 0 {
			o.tex = uploadRGBA(img)
		} else {
			replaceRGBA(o.tex, img)
		}
		o.width, o.height = img.Bounds().Dx(), img.Bounds().Dy()
		o.dirty = false
	}

	sx := 2 * o.Scale / float32(viewW)
	sy := 2 * o.Scale / float32(viewH)

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.UseProgram(o.prog)
	gl.Uniform4f(o.rectLoc, -1+overlayMargin*sx, 1-overlayMargin*sy, float32(o.width)*sx, float32(o.height)*sy)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, o.tex)
	gl.BindVertexArray(o.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)

	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

func (o *Overlay) Destroy() {
	deleteTexture(&o.tex)
	if o.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &o.quadVAO)
		o.quadVAO = 0
	}
	if o.prog != 0 {
		gl.DeleteProgram(o.prog)
		o.prog = 0
	}
}
