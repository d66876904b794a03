// Package tweak is a small keyboard-driven panel for adjusting numeric
// parameters while the scene runs.
package tweak

import (
	"fmt"
	"math"

	"backdrop/core"
)

// Param is one adjustable value. Value always lies in [Min, Max] on a
// multiple of Step counted from Min.
type Param struct {
	Name  string
	Min   float64
	Max   float64
	Step  float64
	Value float64
}

func NewParam(name string, lo, hi, step, value float64) *Param {
	p := &Param{Name: name, Min: lo, Max: hi, Step: step}
	p.Value = p.constrain(value)
	return p
}

// Set stores v after clamping and snapping, and reports whether the value
// changed.
func (p *Param) Set(v float64) bool {
	v = p.constrain(v)
	if v == p.Value {
		return false
	}
	p.Value = v
	return true
}

func (p *Param) constrain(v float64) float64 {
	if math.IsNaN(v) {
		return p.Value
	}
	if p.Step > 0 {
		v = p.Min + math.Round((v-p.Min)/p.Step)*p.Step
	}
	if v < p.Min {
		v = p.Min
	}
	if v > p.Max {
		v = p.Max
	}
	return v
}

// Panel is an ordered list of parameters with one selected entry.
type Panel struct {
	Title string

	params   []*Param
	selected int
	open     bool
	onChange []func(*Param)
}

func NewPanel(title string) *Panel {
	return &Panel{Title: title}
}

func (p *Panel) Add(param *Param) *Param {
	p.params = append(p.params, param)
	return param
}

func (p *Panel) Params() []*Param {
	return p.params
}

// Get returns the parameter with the given name, or nil.
func (p *Panel) Get(name string) *Param {
	for _, param := range p.params {
		if param.Name == name {
			return param
		}
	}
	return nil
}

// OnChange registers fn to run after any parameter changes value.
func (p *Panel) OnChange(fn func(*Param)) {
	p.onChange = append(p.onChange, fn)
}

func (p *Panel) IsOpen() bool { return p.open }
func (p *Panel) Toggle()      { p.open = !p.open }
func (p *Panel) Close()       { p.open = false }

// Selected returns the highlighted parameter, or nil for an empty panel.
func (p *Panel) Selected() *Param {
	if len(p.params) == 0 {
		return nil
	}
	return p.params[p.selected]
}

// Select moves the highlight by delta entries, wrapping around.
func (p *Panel) Select(delta int) {
	n := len(p.params)
	if n == 0 {
		return
	}
	p.selected = ((p.selected+delta)%n + n) % n
}

// Nudge moves the selected parameter by steps increments.
func (p *Panel) Nudge(steps int) {
	param := p.Selected()
	if param == nil {
		return
	}
	p.SetValue(param, param.Value+float64(steps)*param.Step)
}

// SetValue assigns v to param and notifies listeners when the value changed.
func (p *Panel) SetValue(param *Param, v float64) {
	if !param.Set(v) {
		return
	}
	for _, fn := range p.onChange {
		fn(param)
	}
}

// HandleKey applies a key press and reports whether the panel consumed it.
// Tab opens and closes the panel; the arrow keys only act while it is open.
func (p *Panel) HandleKey(key int) bool {
	if key == core.KeyTab {
		p.Toggle()
		return true
	}
	if !p.open {
		return false
	}
	switch key {
	case core.KeyUp:
		p.Select(-1)
	case core.KeyDown:
		p.Select(1)
	case core.KeyLeft:
		p.Nudge(-1)
	case core.KeyRight:
		p.Nudge(1)
	case core.KeyEscape:
		p.Close()
	default:
		return false
	}
	return true
}

// Lines renders the panel as text, one row per parameter. A closed panel
// renders nothing.
func (p *Panel) Lines() []string {
	if !p.open {
		return nil
	}
	lines := make([]string, 0, len(p.params)+1)
	lines = append(lines, p.Title)
	for i, param := range p.params {
		marker := " "
		if i == p.selected {
			marker = ">"
		}
		lines = append(lines, fmt.Sprintf("%s %-10s %10s", marker, param.Name, formatValue(param)))
	}
	return lines
}

func formatValue(param *Param) string {
	decimals := 0
	for step := param.Step; decimals < 4 && step > 0 && step != math.Trunc(step); step *= 10 {
		decimals++
	}
	return fmt.Sprintf("%.*f", decimals, param.Value)
}
