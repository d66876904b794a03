package opengl

import (
	"image"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// uploadRGBA creates a 2D texture from img. The image's first row is
// sampled at v = 0.
func uploadRGBA(img *image.RGBA) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	setClampLinear()
	writeRGBA(img)
	return id
}

// replaceRGBA re-specifies texture id with the contents of img.
func replaceRGBA(id uint32, img *image.RGBA) {
	gl.BindTexture(gl.TEXTURE_2D, id)
	writeRGBA(img)
}

func writeRGBA(img *image.RGBA) {
	b := img.Bounds()
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// setClampLinear applies linear filtering and edge clamping to the bound texture.
func setClampLinear() {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

func deleteTexture(id *uint32) {
	if *id == 0 {
		return
	}
	gl.DeleteTextures(1, id)
	*id = 0
}
