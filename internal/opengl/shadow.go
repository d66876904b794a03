package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// maxShadowMapSize bounds LightShadow.MapSize.
const maxShadowMapSize = 8192

// ShadowMap is the depth-only target a spot light renders into. The
// framebuffer and texture objects live as long as the map; only the
// texture storage changes with Resize.
type ShadowMap struct {
	FBO      uint32
	DepthTex uint32
	Size     int32
}

func checkShadowMapSize(size int) error {
	if size <= 0 || size > maxShadowMapSize {
		return fmt.Errorf("shadow map size must be in 1..%d, got %d", maxShadowMapSize, size)
	}
	return nil
}

// NewShadowMap allocates a size×size depth texture sampled with hardware
// PCF and attaches it to a depth-only framebuffer.
func NewShadowMap(size int) (*ShadowMap, error) {
	if err := checkShadowMapSize(size); err != nil {
		return nil, err
	}
	sm := &ShadowMap{}

	gl.GenTextures(1, &sm.DepthTex)
	gl.BindTexture(gl.TEXTURE_2D, sm.DepthTex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	// Outside the light frustum counts as lit.
	border := [4]float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)
	sm.allocate(int32(size))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &sm.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, sm.DepthTex, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if err := sm.check(); err != nil {
		sm.Destroy()
		return nil, err
	}
	fmt.Printf("[Render] shadow map %dx%d\n", size, size)
	return sm, nil
}

// Resize reallocates the depth texture at a new edge length. The
// framebuffer keeps its attachment, so nothing rebinds. An invalid size
// leaves the map untouched.
func (sm *ShadowMap) Resize(size int) error {
	if int(sm.Size) == size {
		return nil
	}
	if err := checkShadowMapSize(size); err != nil {
		return err
	}
	gl.BindTexture(gl.TEXTURE_2D, sm.DepthTex)
	sm.allocate(int32(size))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := sm.check(); err != nil {
		return err
	}
	fmt.Printf("[Render] shadow map resized to %dx%d\n", size, size)
	return nil
}

// allocate sets the storage of the bound depth texture.
func (sm *ShadowMap) allocate(size int32) {
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, size, size, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	sm.Size = size
}

func (sm *ShadowMap) check() error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.FBO)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("shadow FBO incomplete: status=0x%X", status)
	}
	return nil
}

func (sm *ShadowMap) Destroy() {
	if sm.FBO != 0 {
		gl.DeleteFramebuffers(1, &sm.FBO)
		sm.FBO = 0
	}
	if sm.DepthTex != 0 {
		gl.DeleteTextures(1, &sm.DepthTex)
		sm.DepthTex = 0
	}
}
