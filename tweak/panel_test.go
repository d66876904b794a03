package tweak

import (
	"math"
	"strings"
	"testing"

	"backdrop/core"
)

const tolerance = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestParamClampAndSnap(t *testing.T) {
	p := NewParam("x", 0, 3, 0.025, 1)

	p.Set(1.0201)
	if !near(p.Value, 1.025) {
		t.Errorf("expected snap to 1.025, got %v", p.Value)
	}
	p.Set(7)
	if p.Value != 3 {
		t.Errorf("expected clamp to 3, got %v", p.Value)
	}
	p.Set(-1)
	if p.Value != 0 {
		t.Errorf("expected clamp to 0, got %v", p.Value)
	}
	if p.Set(math.NaN()) {
		t.Errorf("NaN should not change the value")
	}
}

func TestParamSnapsFromMin(t *testing.T) {
	p := NewParam("focus", 10, 3000, 10, 500)
	p.Set(504)
	if p.Value != 500 {
		t.Errorf("expected 500, got %v", p.Value)
	}
	p.Set(506)
	if p.Value != 510 {
		t.Errorf("expected 510, got %v", p.Value)
	}
}

func TestPanelStartsClosed(t *testing.T) {
	p := NewPanel("test")
	p.Add(NewParam("a", 0, 1, 0.1, 0.5))
	if p.IsOpen() {
		t.Errorf("panel should start closed")
	}
	if lines := p.Lines(); lines != nil {
		t.Errorf("closed panel rendered %v", lines)
	}
	if p.HandleKey(core.KeyRight) {
		t.Errorf("closed panel consumed an arrow key")
	}
	if !near(p.Get("a").Value, 0.5) {
		t.Errorf("closed panel changed a value")
	}
}

func TestPanelKeyboard(t *testing.T) {
	p := NewPanel("test")
	a := p.Add(NewParam("a", 0, 1, 0.1, 0.5))
	b := p.Add(NewParam("b", 0, 10, 1, 2))

	var changed []string
	p.OnChange(func(param *Param) { changed = append(changed, param.Name) })

	p.HandleKey(core.KeyTab)
	if !p.IsOpen() {
		t.Fatalf("Tab should open the panel")
	}

	p.HandleKey(core.KeyRight)
	if !near(a.Value, 0.6) {
		t.Errorf("expected a=0.6, got %v", a.Value)
	}

	p.HandleKey(core.KeyDown)
	p.HandleKey(core.KeyLeft)
	p.HandleKey(core.KeyLeft)
	if b.Value != 0 {
		t.Errorf("expected b=0, got %v", b.Value)
	}

	// Already at the minimum: no change, no notification.
	p.HandleKey(core.KeyLeft)
	if len(changed) != 3 {
		t.Errorf("expected 3 change notifications, got %v", changed)
	}

	p.HandleKey(core.KeyDown)
	if p.Selected() != a {
		t.Errorf("selection should wrap around to the first parameter")
	}
	p.HandleKey(core.KeyUp)
	if p.Selected() != b {
		t.Errorf("selection should wrap around to the last parameter")
	}

	p.HandleKey(core.KeyEscape)
	if p.IsOpen() {
		t.Errorf("Escape should close an open panel")
	}
}

func TestPanelLines(t *testing.T) {
	p := NewPanel("Depth of field")
	p.Add(NewParam("maxblur", 0, 3, 0.025, 1))
	p.Add(NewParam("focus", 10, 3000, 10, 500))
	p.Toggle()

	lines := p.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected title plus 2 rows, got %v", lines)
	}
	if lines[0] != "Depth of field" {
		t.Errorf("unexpected title %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], ">") || !strings.HasSuffix(lines[1], "1.000") {
		t.Errorf("unexpected selected row %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], " ") || !strings.HasSuffix(lines[2], "500") {
		t.Errorf("unexpected row %q", lines[2])
	}
}

type fakeBokeh struct {
	calls                   int
	focus, aperture, maxBlur float32
}

func (f *fakeBokeh) SetBokeh(focus, aperture, maxBlur float32) {
	f.calls++
	f.focus, f.aperture, f.maxBlur = focus, aperture, maxBlur
}

func TestDepthOfFieldPanel(t *testing.T) {
	dof := &fakeBokeh{}
	p := DepthOfFieldPanel(dof)

	if got := p.Get(ParamFocus).Value; got != 500 {
		t.Errorf("expected focus 500, got %v", got)
	}
	if got := p.Get(ParamAperture).Value; got != 5 {
		t.Errorf("expected aperture 5, got %v", got)
	}
	if got := p.Get(ParamMaxBlur).Value; got != 1 {
		t.Errorf("expected maxblur 1, got %v", got)
	}
	if dof.calls != 0 {
		t.Errorf("building the panel should not push settings")
	}

	p.SetValue(p.Get(ParamAperture), 10)
	if dof.calls != 1 {
		t.Fatalf("expected one SetBokeh call, got %d", dof.calls)
	}
	if math.Abs(float64(dof.aperture)-0.0001) > 1e-9 {
		t.Errorf("expected aperture 0.0001, got %v", dof.aperture)
	}
	if dof.focus != 500 || dof.maxBlur != 1 {
		t.Errorf("other settings should be forwarded unchanged: %+v", dof)
	}
}
