package scene

import (
	"backdrop/math"
)

// curveSegments is the number of line segments a curve is flattened into.
const curveSegments = 12

// Path is a 2D contour. Curves are flattened as they are added.
type Path struct {
	Points []math.Vec2
}

func (p *Path) MoveTo(x, y float32) *Path {
	p.Points = append(p.Points[:0], math.Vec2{X: x, Y: y})
	return p
}

func (p *Path) LineTo(x, y float32) *Path {
	p.Points = append(p.Points, math.Vec2{X: x, Y: y})
	return p
}

// QuadTo adds a quadratic Bezier from the current point through control (cx, cy).
func (p *Path) QuadTo(cx, cy, x, y float32) *Path {
	start := p.current()
	for i := 1; i <= curveSegments; i++ {
		t := float32(i) / curveSegments
		u := 1 - t
		p.Points = append(p.Points, math.Vec2{
			X: u*u*start.X + 2*u*t*cx + t*t*x,
			Y: u*u*start.Y + 2*u*t*cy + t*t*y,
		})
	}
	return p
}

// CubicTo adds a cubic Bezier from the current point.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float32) *Path {
	start := p.current()
	for i := 1; i <= curveSegments; i++ {
		t := float32(i) / curveSegments
		u := 1 - t
		a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
		p.Points = append(p.Points, math.Vec2{
			X: a*start.X + b*c1x + c*c2x + d*x,
			Y: a*start.Y + b*c1y + c*c2y + d*y,
		})
	}
	return p
}

func (p *Path) current() math.Vec2 {
	if len(p.Points) == 0 {
		return math.Vec2{}
	}
	return p.Points[len(p.Points)-1]
}

// Contour returns the points without a closing duplicate of the first one.
func (p *Path) Contour() []math.Vec2 {
	pts := p.Points
	for len(pts) > 1 && pts[len(pts)-1] == pts[0] {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// Shape is an outer contour with zero or more holes.
type Shape struct {
	Path
	Holes []*Path
}

func NewShape() *Shape {
	return &Shape{}
}

// NewRectShape returns an axis-aligned rectangle centred on the origin.
func NewRectShape(halfW, halfH float32) *Shape {
	s := NewShape()
	s.MoveTo(-halfW, -halfH).
		LineTo(halfW, -halfH).
		LineTo(halfW, halfH).
		LineTo(-halfW, halfH).
		LineTo(-halfW, -halfH)
	return s
}

// AddHole appends a hole contour and returns it for chaining.
func (s *Shape) AddHole() *Path {
	h := &Path{}
	s.Holes = append(s.Holes, h)
	return h
}

// SignedArea is positive for counter-clockwise contours.
func SignedArea(pts []math.Vec2) float32 {
	var a float32
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return a / 2
}

func pointInPolygon(p math.Vec2, poly []math.Vec2) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// ShapesFromContours groups closed contours into shapes using nesting depth:
// a contour inside an even number of others is an outer boundary, one inside
// an odd number is a hole of its innermost enclosing outer boundary.
func ShapesFromContours(contours [][]math.Vec2) []*Shape {
	type entry struct {
		pts    []math.Vec2
		area   float32
		depth  int
		parent int
		shape  *Shape
	}
	var entries []*entry
	for _, c := range contours {
		if len(c) < 3 {
			continue
		}
		a := SignedArea(c)
		if a == 0 {
			continue
		}
		if a < 0 {
			a = -a
		}
		entries = append(entries, &entry{pts: c, area: a, parent: -1})
	}

	for i, e := range entries {
		best := -1
		for j, o := range entries {
			if i == j || o.area <= e.area || !pointInPolygon(e.pts[0], o.pts) {
				continue
			}
			e.depth++
			if best < 0 || o.area < entries[best].area {
				best = j
			}
		}
		e.parent = best
	}

	var shapes []*Shape
	for _, e := range entries {
		if e.depth%2 == 0 {
			e.shape = &Shape{Path: Path{Points: e.pts}}
			shapes = append(shapes, e.shape)
		}
	}
	for _, e := range entries {
		if e.depth%2 == 1 && e.parent >= 0 {
			if outer := entries[e.parent].shape; outer != nil {
				outer.Holes = append(outer.Holes, &Path{Points: e.pts})
			}
		}
	}
	return shapes
}
