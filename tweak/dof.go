package tweak

// BokehSetter receives depth-of-field settings.
type BokehSetter interface {
	SetBokeh(focus, aperture, maxBlur float32)
}

// ApertureScale converts the panel's aperture to the value the bokeh pass uses.
const ApertureScale = 0.00001

const (
	ParamFocus    = "focus"
	ParamAperture = "aperture"
	ParamMaxBlur  = "maxblur"
)

// DepthOfFieldPanel builds the focus, aperture and maxblur controls and
// forwards every change to dof.
func DepthOfFieldPanel(dof BokehSetter) *Panel {
	p := NewPanel("Depth of field")
	focus := p.Add(NewParam(ParamFocus, 10, 3000, 10, 500))
	aperture := p.Add(NewParam(ParamAperture, 0, 10, 0.1, 5))
	maxBlur := p.Add(NewParam(ParamMaxBlur, 0, 3, 0.025, 1))

	p.OnChange(func(*Param) {
		dof.SetBokeh(
			float32(focus.Value),
			float32(aperture.Value*ApertureScale),
			float32(maxBlur.Value),
		)
	})
	return p
}
