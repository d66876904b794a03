// Command backdrop shows the layered parallax backdrop in a window.
//
// Moving the pointer shifts the layer stack. Left drag orbits the camera,
// right drag pans and the wheel zooms; R eases the camera back, Tab opens
// the depth-of-field panel (with -dof -tweaks) and Esc quits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"backdrop/core"
	"backdrop/director"
	"backdrop/frameloop"
	"backdrop/renderer"
)

func main() {
	windowConfig := core.DefaultWindowConfig()
	cfg := director.DefaultConfig()

	flag.IntVar(&windowConfig.Width, "width", windowConfig.Width, "window width")
	flag.IntVar(&windowConfig.Height, "height", windowConfig.Height, "window height")
	flag.IntVar(&windowConfig.TopInset, "top", windowConfig.TopInset, "rows kept free above the backdrop")
	flag.BoolVar(&windowConfig.Fullscreen, "fullscreen", false, "run fullscreen on the primary monitor")
	flag.StringVar(&windowConfig.Title, "title", windowConfig.Title, "window title")
	flag.BoolVar(&cfg.DepthOfField, "dof", false, "enable the depth-of-field pass")
	flag.BoolVar(&cfg.TweakPanel, "tweaks", false, "enable the depth-of-field panel (needs -dof)")
	flag.StringVar(&cfg.SVGPath, "svg", "", "SVG file cut out of a panel behind the layers")
	flag.StringVar(&cfg.ModelPath, "model", "", ".obj, .gltf or .glb model to add to the scene")
	flag.IntVar(&cfg.LayerCopies, "layers", cfg.LayerCopies, "number of layers stacked behind the first")
	flag.Parse()

	if err := run(windowConfig, cfg); err != nil {
		fmt.Printf("backdrop: %v\n", err)
		os.Exit(1)
	}
}

func run(windowConfig core.WindowConfig, cfg director.Config) error {
	window, err := core.NewWindow(windowConfig)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()

	engine, err := renderer.NewRenderEngine(window)
	if err != nil {
		return fmt.Errorf("create render engine: %w", err)
	}
	defer engine.Destroy()

	engine.SetClearColor(cfg.Background)
	engine.EnableShadows(renderer.ShadowVSM)

	loop := frameloop.NewLoop(window)
	deps := director.Deps{
		Container: window,
		Target:    engine,
		Window:    window,
		Frames:    loop,
		Overlay:   engine,
	}
	if cfg.DepthOfField {
		b := cfg.Bokeh
		if err := engine.EnableDepthOfField(renderer.BokehParams{Focus: b.Focus, Aperture: b.Aperture, MaxBlur: b.MaxBlur}); err != nil {
			fmt.Printf("[Render] depth of field unavailable (continuing without it): %v\n", err)
			cfg.DepthOfField = false
		} else {
			deps.DepthOfField = engine
		}
	}

	d, err := director.New(cfg, deps)
	if err != nil {
		return err
	}
	if err := d.Setup(); err != nil {
		return err
	}
	defer d.Stop()

	offKey := window.OnKey(func(key int) {
		if d.HandleKey(key) {
			return
		}
		if key == core.KeyEscape {
			window.SetShouldClose(true)
		}
	})
	defer offKey()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = loop.Run(ctx)
	objects, triangles, culled := engine.DrawStats()
	fmt.Printf("[Director] %d frames, last frame: %d objects, %d triangles, %d culled\n",
		loop.Frames(), objects, triangles, culled)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
