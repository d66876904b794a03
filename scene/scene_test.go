package scene

import (
	stdmath "math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"backdrop/core"
	"backdrop/math"
)

const tolerance = 0.0001

func near(a, b float32) bool {
	return stdmath.Abs(float64(a-b)) <= tolerance
}

func TestCloneSharesMeshNotTransform(t *testing.T) {
	mesh := NewMesh("m", nil, nil)
	base := NewMeshNode("base", mesh)
	base.CastShadow = true
	base.AddChild(NewNode("child"))

	c := base.Clone()
	if c.Mesh != base.Mesh {
		t.Errorf("clone should share the mesh pointer")
	}
	if c.Id == base.Id {
		t.Errorf("clone should get a new Id")
	}
	if !c.CastShadow {
		t.Errorf("clone should copy CastShadow")
	}
	if len(c.Children) != 1 || c.Children[0] == base.Children[0] {
		t.Errorf("children should be cloned, not shared")
	}
	if c.Parent != nil {
		t.Errorf("clone should have no parent")
	}

	c.TranslateZ(0.5)
	if base.Position().Z != 0 {
		t.Errorf("moving the clone moved the original: %v", base.Position())
	}
	if c.Position().Z != 0.5 {
		t.Errorf("TranslateZ: expected z=0.5, got %v", c.Position().Z)
	}
}

func TestWorldMatrixComposesParent(t *testing.T) {
	parent := NewNode("parent")
	parent.SetPosition(math.NewVec3(1, 0, 0))
	child := NewNode("child")
	child.SetPosition(math.NewVec3(0, 2, 0))
	parent.AddChild(child)

	got := child.WorldMatrix().MulVec3(math.Vec3Zero)
	if got != math.NewVec3(1, 2, 0) {
		t.Errorf("expected (1,2,0), got %v", got)
	}

	parent.SetPosition(math.NewVec3(5, 0, 0))
	got = child.WorldMatrix().MulVec3(math.Vec3Zero)
	if got != math.NewVec3(5, 2, 0) {
		t.Errorf("expected world matrix to refresh to (5,2,0), got %v", got)
	}
}

func TestVisibleNodesSkipsHiddenSubtrees(t *testing.T) {
	s := NewScene()
	shown := NewMeshNode("shown", NewMesh("a", nil, nil))
	group := NewNode("group")
	group.Visible = false
	group.AddChild(NewMeshNode("hidden", NewMesh("b", nil, nil)))
	s.Add(shown)
	s.Add(group)

	v := s.VisibleNodes()
	if len(v) != 1 || v[0] != shown {
		t.Errorf("expected only the shown node, got %d nodes", len(v))
	}
}

func TestTriangulateSquare(t *testing.T) {
	sq := []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	tris := Triangulate(sq, nil)
	if len(tris) != 6 {
		t.Fatalf("expected 2 triangles, got %d indices", len(tris))
	}
	if a := triangleArea(sq, tris); !near(a, 1) {
		t.Errorf("expected area 1, got %v", a)
	}
}

func TestTriangulateClockwiseInput(t *testing.T) {
	sq := []math.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	tris := Triangulate(sq, nil)
	for i := 0; i+2 < len(tris); i += 3 {
		a, b, c := sq[tris[i]], sq[tris[i+1]], sq[tris[i+2]]
		if b.Sub(a).Cross(c.Sub(a)) <= 0 {
			t.Errorf("triangle %d is not counter-clockwise", i/3)
		}
	}
}

func TestTriangulateSquareWithHole(t *testing.T) {
	outer := []math.Vec2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}
	hole := []math.Vec2{{X: -0.4, Y: -0.4}, {X: 0.4, Y: -0.4}, {X: 0.4, Y: 0.4}, {X: -0.4, Y: 0.4}}
	tris := Triangulate(outer, [][]math.Vec2{hole})

	pts := append(append([]math.Vec2(nil), outer...), hole...)
	if got := len(tris) / 3; got != 8 {
		t.Errorf("expected 8 triangles, got %d", got)
	}
	if a := triangleArea(pts, tris); !near(a, 4-0.64) {
		t.Errorf("expected area 3.36, got %v", a)
	}
	for _, p := range []math.Vec2{{X: 0, Y: 0}, {X: 0.3, Y: -0.2}, {X: -0.35, Y: 0.35}} {
		for i := 0; i+2 < len(tris); i += 3 {
			if strictlyInside(p, pts[tris[i]], pts[tris[i+1]], pts[tris[i+2]]) {
				t.Errorf("triangle %d covers hole point %v", i/3, p)
			}
		}
	}
}

// holeSquare returns a clockwise square of half-size r centred on (x, y).
func holeSquare(x, y, r float32) []math.Vec2 {
	return []math.Vec2{{X: x - r, Y: y - r}, {X: x - r, Y: y + r}, {X: x + r, Y: y + r}, {X: x + r, Y: y - r}}
}

func TestTriangulateAlignedHoles(t *testing.T) {
	panel := []math.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	ell := []math.Vec2{{X: 4, Y: 2}, {X: 4, Y: 8}, {X: 6, Y: 8}, {X: 6, Y: 7}, {X: 5, Y: 7}, {X: 5, Y: 2}}
	cases := []struct {
		name   string
		holes  [][]math.Vec2
		inside []math.Vec2
		area   float32
	}{
		{
			"two stacked",
			[][]math.Vec2{holeSquare(5, 3, 1), holeSquare(5, 7, 1)},
			[]math.Vec2{{X: 5, Y: 3}, {X: 5, Y: 7}},
			92,
		},
		{
			"three stacked",
			[][]math.Vec2{holeSquare(5, 2, 1), holeSquare(5, 5, 1), holeSquare(5, 8, 1)},
			[]math.Vec2{{X: 5, Y: 2}, {X: 5, Y: 5}, {X: 5, Y: 8}},
			88,
		},
		{
			"stacked reversed",
			[][]math.Vec2{holeSquare(5, 8, 1), holeSquare(5, 5, 1), holeSquare(5, 2, 1)},
			[]math.Vec2{{X: 5, Y: 2}, {X: 5, Y: 5}, {X: 5, Y: 8}},
			88,
		},
		{
			"row",
			[][]math.Vec2{holeSquare(2, 5, 1), holeSquare(5, 5, 1), holeSquare(8, 5, 1)},
			[]math.Vec2{{X: 2, Y: 5}, {X: 5, Y: 5}, {X: 8, Y: 5}},
			88,
		},
		{
			"letters",
			[][]math.Vec2{holeSquare(2, 3, 1), holeSquare(2, 7, 1), ell, holeSquare(8, 3, 1), holeSquare(8, 7, 1)},
			[]math.Vec2{{X: 2, Y: 3}, {X: 2, Y: 7}, {X: 4.5, Y: 5}, {X: 5.5, Y: 7.5}, {X: 8, Y: 3}, {X: 8, Y: 7}},
			100 - 16 - 7,
		},
	}

	for _, tc := range cases {
		pts := append([]math.Vec2(nil), panel...)
		for _, h := range tc.holes {
			pts = append(pts, h...)
		}
		tris := Triangulate(panel, tc.holes)
		if len(tris) == 0 {
			t.Errorf("%s: no triangles", tc.name)
			continue
		}

		for i := 0; i+2 < len(tris); i += 3 {
			a, b, c := pts[tris[i]], pts[tris[i+1]], pts[tris[i+2]]
			if b.Sub(a).Cross(c.Sub(a)) < 0 {
				t.Errorf("%s: triangle %d is clockwise", tc.name, i/3)
			}
			for _, p := range tc.inside {
				if strictlyInside(p, a, b, c) {
					t.Errorf("%s: triangle %d covers hole point %v", tc.name, i/3, p)
				}
			}
		}
		if a := triangleArea(pts, tris); !near(a, tc.area) {
			t.Errorf("%s: expected area %v, got %v", tc.name, tc.area, a)
		}
	}
}

func TestExtrudeHollowSquare(t *testing.T) {
	shape := NewRectShape(1, 1)
	shape.AddHole().
		MoveTo(-0.4, -0.4).
		LineTo(-0.4, 0.4).
		LineTo(0.4, 0.4).
		LineTo(0.4, -0.4).
		LineTo(-0.4, -0.4)

	m := ExtrudeGeometry(ExtrudeSettings{Depth: 0.01}, shape)
	if m.DrawMode != DrawTriangles {
		t.Fatalf("expected triangles")
	}
	if len(m.Indices)%3 != 0 {
		t.Fatalf("index count %d is not a multiple of 3", len(m.Indices))
	}

	var front, back, walls int
	var frontArea float32
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Vertices[m.Indices[i]], m.Vertices[m.Indices[i+1]], m.Vertices[m.Indices[i+2]]
		switch {
		case a.Normal.Z == 1:
			front++
			ab, ac := b.Position.Sub(a.Position), c.Position.Sub(a.Position)
			frontArea += ab.Cross(ac).Z / 2
			if strictlyInside(math.Vec2{}, xy(a), xy(b), xy(c)) {
				t.Errorf("front cap triangle covers the hole centre")
			}
		case a.Normal.Z == -1:
			back++
		default:
			walls++
		}
	}
	if front != 8 || back != 8 {
		t.Errorf("expected 8 triangles per cap, got front=%d back=%d", front, back)
	}
	if walls != 16 {
		t.Errorf("expected 16 wall triangles (8 edges), got %d", walls)
	}
	if !near(frontArea, 3.36) {
		t.Errorf("front cap area: expected 3.36, got %v", frontArea)
	}

	for _, v := range m.Vertices {
		if v.Position.Z < 0 || v.Position.Z > 0.01+tolerance {
			t.Fatalf("vertex outside extrusion depth: %v", v.Position)
		}
	}
}

func TestExtrudeWallNormalsPointOutward(t *testing.T) {
	m := ExtrudeGeometry(ExtrudeSettings{Depth: 1}, NewRectShape(1, 1))
	for _, v := range m.Vertices {
		if v.Normal.Z != 0 {
			continue
		}
		// Wall vertices sit on the boundary; the normal must point away from the centre.
		if v.Normal.X*v.Position.X+v.Normal.Y*v.Position.Y <= 0 {
			t.Errorf("wall normal %v at %v points inward", v.Normal, v.Position)
		}
	}
}

func TestShapesFromContoursNesting(t *testing.T) {
	square := func(h float32) []math.Vec2 {
		return []math.Vec2{{X: -h, Y: -h}, {X: h, Y: -h}, {X: h, Y: h}, {X: -h, Y: h}}
	}
	shapes := ShapesFromContours([][]math.Vec2{square(3), square(2), square(1)})
	if len(shapes) != 2 {
		t.Fatalf("expected 2 shapes (ring + island), got %d", len(shapes))
	}
	if len(shapes[0].Holes) != 1 {
		t.Errorf("outer shape should have one hole, got %d", len(shapes[0].Holes))
	}
	if len(shapes[1].Holes) != 0 {
		t.Errorf("island should have no holes, got %d", len(shapes[1].Holes))
	}
}

func TestLoadSVGShapes(t *testing.T) {
	const doc = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
<path d="M0 0 L10 0 L10 10 L0 10 Z M3 3 L7 3 L7 7 L3 7 Z"/>
</svg>`
	shapes, err := LoadSVGShapes(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadSVGShapes: %v", err)
	}
	if len(shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(shapes))
	}
	if len(shapes[0].Holes) != 1 {
		t.Fatalf("expected 1 hole, got %d", len(shapes[0].Holes))
	}
	outer := shapes[0].Contour()
	if a := SignedArea(outer); !near(a, 100) && !near(a, -100) {
		t.Errorf("outer area: expected 100, got %v", a)
	}
	for _, p := range outer {
		if p.Y > 0 {
			t.Errorf("expected Y flipped to point up (y <= 0), got %v", p)
		}
	}
}

func TestLoadSVGShapesRejectsEmpty(t *testing.T) {
	_, err := LoadSVGShapes(strings.NewReader(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`))
	if err == nil {
		t.Errorf("expected an error for an SVG without paths")
	}
}

func TestLoadGLTFMesh(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Meshes = []*gltf.Mesh{{
		Name: "Tri",
		Primitives: []*gltf.Primitive{{
			Indices: gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 2})),
			Attributes: map[string]int{
				"POSITION": modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}),
			},
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "Root", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	m, err := LoadGLTFMesh(path)
	if err != nil {
		t.Fatalf("LoadGLTFMesh: %v", err)
	}
	if len(m.Vertices) != 3 || len(m.Indices) != 3 {
		t.Errorf("expected 3 vertices and 3 indices, got %d and %d", len(m.Vertices), len(m.Indices))
	}
	if m.Vertices[1].Position != math.NewVec3(1, 0, 0) {
		t.Errorf("unexpected vertex position %v", m.Vertices[1].Position)
	}
	if m.Material == nil {
		t.Errorf("expected a default material")
	}
}

func TestLoadGLTFMeshMissingFile(t *testing.T) {
	if _, err := LoadGLTFMesh(filepath.Join(t.TempDir(), "missing.glb")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestParseOBJQuad(t *testing.T) {
	src := `# unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`
	m, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if len(m.Vertices) != 4 || len(m.Indices) != 6 {
		t.Fatalf("expected 4 vertices and 2 triangles, got %d and %d", len(m.Vertices), len(m.Indices)/3)
	}
	for _, v := range m.Vertices {
		if !near(v.Normal.Z, 1) {
			t.Errorf("expected generated +Z normal, got %v", v.Normal)
		}
	}
}

func TestParseOBJNegativeIndicesAndNormals(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 -1
f -3//1 -2//1 -1//1
`
	m, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if len(m.Vertices) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(m.Vertices))
	}
	if m.Vertices[0].Normal.Z != -1 {
		t.Errorf("file normals should be kept, got %v", m.Vertices[0].Normal)
	}
	if m.Vertices[2].Position.Y != 1 {
		t.Errorf("negative index resolved wrongly: %v", m.Vertices[2].Position)
	}
}

func TestParseOBJErrors(t *testing.T) {
	if _, err := ParseOBJ(strings.NewReader("v 0 0 0\n")); err == nil {
		t.Errorf("expected an error for a file without faces")
	}
	if _, err := ParseOBJ(strings.NewReader("v 0 0 0\nf 1 2 3\n")); err == nil {
		t.Errorf("expected an error for a face with missing vertices")
	}
	if _, err := LoadModelMesh("model.stl"); err == nil {
		t.Errorf("expected an error for an unknown extension")
	}
}

func TestSpotLightShadowCamera(t *testing.T) {
	l := NewSpotLight(core.ColorWhite, 1)
	l.Position = math.NewVec3(0, 0, -10)
	l.Angle = stdmath.Pi / 5
	l.UpdateShadowCamera()

	cam := l.Shadow.Camera
	if !near(cam.FOV, 72) {
		t.Errorf("shadow camera FOV: expected 72 degrees, got %v", cam.FOV)
	}
	if cam.Position != l.Position || cam.Target != l.Target {
		t.Errorf("shadow camera should sit at the light looking at its target")
	}

	outer, inner := l.CosCutoffs()
	if inner < outer {
		t.Errorf("inner cutoff cosine %v should not be below outer %v", inner, outer)
	}
}

func TestCameraHelperCorners(t *testing.T) {
	cam := NewCamera(90, 1, 1, 10)
	cam.SetPosition(math.Vec3Zero)
	cam.LookAt(math.NewVec3(0, 0, -1))

	h := NewCameraHelper(cam)
	c := h.Corners()
	// With a 90 degree FOV the near plane spans +-near in X and Y.
	if !near(c[0].X, -1) || !near(c[0].Y, -1) || !near(c[0].Z, -1) {
		t.Errorf("near bottom-left: expected (-1,-1,-1), got %v", c[0])
	}
	if !near(c[6].X, 10) || !near(c[6].Y, 10) || !near(c[6].Z, -10) {
		t.Errorf("far top-right: expected (10,10,-10), got %v", c[6])
	}
	if h.Node.Mesh.Revision == 0 {
		t.Errorf("Update should mark the mesh dirty")
	}
}

func TestGridHelperCenterColor(t *testing.T) {
	center := core.ColorHex(0xff0000)
	grid := core.ColorHex(0x00ff00)
	m := GridHelper(20, 20, center, grid)

	if m.DrawMode != DrawLines {
		t.Fatalf("expected line mesh")
	}
	// 21 lines per axis, 2 vertices each.
	if len(m.Vertices) != 2*2*21 {
		t.Errorf("expected %d vertices, got %d", 2*2*21, len(m.Vertices))
	}
	centered := 0
	for _, v := range m.Vertices {
		if v.Color == center {
			centered++
			if v.Position.X != 0 && v.Position.Z != 0 {
				t.Errorf("center-colored vertex off the axes: %v", v.Position)
			}
		}
	}
	if centered != 4 {
		t.Errorf("expected 4 center-colored vertices, got %d", centered)
	}
}

func TestFrustumCulling(t *testing.T) {
	cam := NewCamera(45, 1, 1, 100)
	cam.SetPosition(math.NewVec3(0, 0, -1.5))
	cam.LookAt(math.Vec3Zero)
	f := FrustumFromVP(cam.ViewProjectionMatrix())

	cases := []struct {
		name   string
		center math.Vec3
		want   bool
	}{
		{"origin", math.Vec3Zero, true},
		{"behind camera", math.NewVec3(0, 0, -10), false},
		{"off to the side", math.NewVec3(50, 0, 0), false},
		{"past far plane", math.NewVec3(0, 0, 200), false},
		{"deep in view", math.NewVec3(0, 0, 50), true},
	}
	for _, c := range cases {
		half := math.NewVec3(0.1, 0.1, 0.1)
		box := AABB{Min: c.center.Sub(half), Max: c.center.Add(half)}
		if got := box.IntersectsFrustum(&f); got != c.want {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

func TestLocalBoundsFollowRevision(t *testing.T) {
	m := NewMesh("m", []core.Vertex{
		{Position: math.NewVec3(-1, 0, 0)},
		{Position: math.NewVec3(2, 3, -4)},
	}, nil)
	b := m.LocalBounds()
	if b.Min != math.NewVec3(-1, 0, -4) || b.Max != math.NewVec3(2, 3, 0) {
		t.Errorf("unexpected bounds %+v", b)
	}

	m.Vertices[1].Position = math.NewVec3(5, 0, 0)
	if m.LocalBounds().Max.X != 2 {
		t.Errorf("bounds should stay cached until MarkDirty")
	}
	m.MarkDirty()
	if m.LocalBounds().Max.X != 5 {
		t.Errorf("bounds not recomputed after MarkDirty")
	}

	world := ComputeAABB(m, math.Mat4Translation(math.NewVec3(0, 10, 0)))
	if world.Min.Y != 10 {
		t.Errorf("expected translated bounds, got %+v", world)
	}
}

func triangleArea(pts []math.Vec2, tris []uint32) float32 {
	var sum float32
	for i := 0; i+2 < len(tris); i += 3 {
		a, b, c := pts[tris[i]], pts[tris[i+1]], pts[tris[i+2]]
		sum += b.Sub(a).Cross(c.Sub(a)) / 2
	}
	return sum
}

func strictlyInside(p, a, b, c math.Vec2) bool {
	d1 := b.Sub(a).Cross(p.Sub(a))
	d2 := c.Sub(b).Cross(p.Sub(b))
	d3 := a.Sub(c).Cross(p.Sub(c))
	return (d1 > 0 && d2 > 0 && d3 > 0) || (d1 < 0 && d2 < 0 && d3 < 0)
}

func xy(v core.Vertex) math.Vec2 {
	return math.Vec2{X: v.Position.X, Y: v.Position.Y}
}
