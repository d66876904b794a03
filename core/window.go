package core

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

// Element is anything mounted into a window's content area.
type Element interface {
	BoundingRect() Rect
}

type Window struct {
	Handle *glfw.Window
	Title  string

	topInset int
	children []Element

	pointerMove listeners[func(x, y float64)]
	resize      listeners[func(width, height int)]
	mouseButton listeners[func(button int, pressed bool)]
	scroll      listeners[func(xoff, yoff float64)]
	key         listeners[func(key int)]
}

type WindowConfig struct {
	Width      int
	Height     int
	Title      string
	Resizable  bool
	VSync      bool
	Fullscreen bool
	// TopInset reserves rows at the top of the window that the content
	// area does not cover, like a page header above a background element.
	TopInset int
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:      1280,
		Height:     720,
		Title:      "Backdrop",
		Resizable:  true,
		VSync:      true,
		Fullscreen: false,
	}
}

func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	monitor := (*glfw.Monitor)(nil)
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	glfw.SwapInterval(boolToInt(config.VSync))

	window := &Window{
		Handle:   handle,
		Title:    config.Title,
		topInset: config.TopInset,
	}

	handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		for _, fn := range window.pointerMove.snapshot() {
			fn(x, y)
		}
	})
	handle.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		for _, fn := range window.resize.snapshot() {
			fn(width, height)
		}
	})
	handle.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		for _, fn := range window.mouseButton.snapshot() {
			fn(int(button), action == glfw.Press)
		}
	})
	handle.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		for _, fn := range window.scroll.snapshot() {
			fn(xoff, yoff)
		}
	})
	handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Release {
			return
		}
		for _, fn := range window.key.snapshot() {
			fn(int(key))
		}
	})

	return window, nil
}

// InnerSize is the window size in screen coordinates.
func (w *Window) InnerSize() (int, int) {
	return w.Handle.GetSize()
}

// FramebufferSize is the drawable size in pixels; it differs from
// InnerSize on high-DPI displays.
func (w *Window) FramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

// ContentTop is the Y offset of the content area inside the window.
func (w *Window) ContentTop() int {
	return w.topInset
}

func (w *Window) AppendChild(e Element) {
	w.children = append(w.children, e)
}

func (w *Window) Children() []Element {
	return w.children
}

// OnPointerMove subscribes fn to cursor movement in window coordinates.
// The returned function unsubscribes; calling it again is a no-op.
func (w *Window) OnPointerMove(fn func(x, y float64)) func() {
	return w.pointerMove.add(fn)
}

func (w *Window) OnResize(fn func(width, height int)) func() {
	return w.resize.add(fn)
}

func (w *Window) OnMouseButton(fn func(button int, pressed bool)) func() {
	return w.mouseButton.add(fn)
}

func (w *Window) OnScroll(fn func(xoff, yoff float64)) func() {
	return w.scroll.add(fn)
}

// OnKey reports key presses and repeats. Releases are not delivered.
func (w *Window) OnKey(fn func(key int)) func() {
	return w.key.add(fn)
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) SetShouldClose(v bool) {
	w.Handle.SetShouldClose(v)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const (
	MouseButtonLeft   = int(glfw.MouseButtonLeft)
	MouseButtonRight  = int(glfw.MouseButtonRight)
	MouseButtonMiddle = int(glfw.MouseButtonMiddle)
)

const (
	KeyEscape = int(glfw.KeyEscape)
	KeyEnter  = int(glfw.KeyEnter)
	KeyTab    = int(glfw.KeyTab)
	KeyRight  = int(glfw.KeyRight)
	KeyLeft   = int(glfw.KeyLeft)
	KeyDown   = int(glfw.KeyDown)
	KeyUp     = int(glfw.KeyUp)
	KeyR      = int(glfw.KeyR)
	KeyF1     = int(glfw.KeyF1)
)
