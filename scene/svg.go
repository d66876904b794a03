package scene

import (
	"fmt"
	"io"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"backdrop/math"
)

// LoadSVGShapes parses an SVG document and turns every path (rects, circles
// and polygons included) into extrudable shapes. Curves are flattened, SVG's
// downward Y axis is flipped to point up, and per-element transforms are
// not applied. Sub-paths nested inside one another become holes.
func LoadSVGShapes(r io.Reader) ([]*Shape, error) {
	icon, err := oksvg.ReadIconStream(r, oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}

	var shapes []*Shape
	for _, p := range icon.SVGPaths {
		var c contourCollector
		p.Path.AddTo(&c)
		c.flush()
		shapes = append(shapes, ShapesFromContours(c.contours)...)
	}
	if len(shapes) == 0 {
		return nil, fmt.Errorf("parse svg: no closed paths")
	}
	return shapes, nil
}

// contourCollector implements rasterx.Adder, recording flattened contours.
type contourCollector struct {
	current  Path
	contours [][]math.Vec2
}

var _ rasterx.Adder = (*contourCollector)(nil)

func toVec2(p fixed.Point26_6) (float32, float32) {
	return float32(p.X) / 64, -float32(p.Y) / 64
}

func (c *contourCollector) Start(a fixed.Point26_6) {
	c.flush()
	c.current.MoveTo(toVec2(a))
}

func (c *contourCollector) Line(b fixed.Point26_6) {
	c.current.LineTo(toVec2(b))
}

func (c *contourCollector) QuadBezier(b, d fixed.Point26_6) {
	bx, by := toVec2(b)
	dx, dy := toVec2(d)
	c.current.QuadTo(bx, by, dx, dy)
}

func (c *contourCollector) CubeBezier(b, d, e fixed.Point26_6) {
	bx, by := toVec2(b)
	dx, dy := toVec2(d)
	ex, ey := toVec2(e)
	c.current.CubicTo(bx, by, dx, dy, ex, ey)
}

// Stop ends a sub-path. Fills close open sub-paths implicitly, so every
// contour is kept whether or not it was explicitly closed.
func (c *contourCollector) Stop(closeLoop bool) {
	c.flush()
}

func (c *contourCollector) flush() {
	if pts := c.current.Contour(); len(pts) >= 3 {
		c.contours = append(c.contours, append([]math.Vec2(nil), pts...))
	}
	c.current.Points = c.current.Points[:0]
}
