package scene

import (
	"backdrop/core"
)

// Fog blends fragments linearly towards Color between Near and Far
// (distance from the camera).
type Fog struct {
	Color core.Color
	Near  float32
	Far   float32
}

func NewFog(color core.Color, near, far float32) *Fog {
	return &Fog{Color: color, Near: near, Far: far}
}

// Scene manages a collection of nodes and lights
type Scene struct {
	Root       *Node
	Lights     []*Light
	Ambient    core.Color
	// Background overrides the renderer's clear color when set.
	Background *core.Color
	Fog        *Fog
}

func NewScene() *Scene {
	return &Scene{
		Root:    NewNode("Root"),
		Lights:  make([]*Light, 0),
		Ambient: core.Color{R: 0.2, G: 0.2, B: 0.2, A: 1.0},
	}
}

func (s *Scene) Add(node *Node) {
	s.Root.AddChild(node)
}

func (s *Scene) Remove(node *Node) {
	s.Root.RemoveChild(node)
}

func (s *Scene) AddLight(light *Light) {
	s.Lights = append(s.Lights, light)
}

func (s *Scene) RemoveLight(light *Light) {
	for i, l := range s.Lights {
		if l == light {
			s.Lights = append(s.Lights[:i], s.Lights[i+1:]...)
			return
		}
	}
}

// VisibleNodes returns all nodes with meshes whose whole ancestor chain is visible.
func (s *Scene) VisibleNodes() []*Node {
	var visible []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Mesh != nil {
			visible = append(visible, n)
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(s.Root)
	return visible
}

// ShadowLight returns the first light that casts shadows, or nil.
func (s *Scene) ShadowLight() *Light {
	for _, l := range s.Lights {
		if l != nil && l.CastShadow {
			return l
		}
	}
	return nil
}
