package scene

import (
	stdmath "math"
	"sort"

	"backdrop/math"
)

// Triangulate splits a polygon with holes into counter-clockwise triangles.
// Indices refer to the outer points followed by each hole's points, in the
// order given; holes with fewer than three points keep their indices but
// are ignored.
//
// Holes are joined to the outer ring left to right. Each hole's leftmost
// point is bridged to the closest outer point visible along a leftward ray,
// so holes that share an X extent bridge through each other instead of
// crossing. The joined ring is then ear-clipped, with a split pass for
// rings that no longer yield ears.
func Triangulate(outer []math.Vec2, holes [][]math.Vec2) []uint32 {
	if len(outer) < 3 {
		return nil
	}

	pts := append([]math.Vec2(nil), outer...)
	ring := linkRing(pts, 0, len(outer), true)
	if ring == nil || ring.next == ring.prev {
		return nil
	}

	var lefts []*ringNode
	for _, h := range holes {
		start := len(pts)
		pts = append(pts, h...)
		if len(h) < 3 {
			continue
		}
		if n := linkRing(pts, start, len(h), false); n != nil {
			lefts = append(lefts, n.leftmost())
		}
	}
	sort.SliceStable(lefts, func(i, j int) bool {
		if lefts[i].x != lefts[j].x {
			return lefts[i].x < lefts[j].x
		}
		return lefts[i].y < lefts[j].y
	})
	for _, h := range lefts {
		ring = joinHole(h, ring)
	}

	return clipEars(ring, nil, 0)
}

// ringNode is a vertex of a doubly linked polygon ring. Bridges duplicate
// vertices, so several nodes may share one index.
type ringNode struct {
	i          uint32
	x, y       float32
	prev, next *ringNode
}

func (n *ringNode) same(o *ringNode) bool { return n.x == o.x && n.y == o.y }

func (n *ringNode) unlink() {
	n.next.prev = n.prev
	n.prev.next = n.next
}

func (n *ringNode) leftmost() *ringNode {
	left := n
	for p := n.next; p != n; p = p.next {
		if p.x < left.x || (p.x == left.x && p.y < left.y) {
			left = p
		}
	}
	return left
}

// linkRing links pts[start:start+count] into a ring, counter-clockwise
// when ccw is set and clockwise otherwise. It returns the last node.
func linkRing(pts []math.Vec2, start, count int, ccw bool) *ringNode {
	var sum float32
	for i, j := start, start+count-1; i < start+count; j, i = i, i+1 {
		sum += (pts[j].X - pts[i].X) * (pts[i].Y + pts[j].Y)
	}

	var last *ringNode
	insert := func(i int) {
		n := &ringNode{i: uint32(i), x: pts[i].X, y: pts[i].Y}
		if last == nil {
			n.prev, n.next = n, n
		} else {
			n.next, n.prev = last.next, last
			last.next.prev = n
			last.next = n
		}
		last = n
	}
	if ccw == (sum > 0) {
		for i := start; i < start+count; i++ {
			insert(i)
		}
	} else {
		for i := start + count - 1; i >= start; i-- {
			insert(i)
		}
	}

	if last != nil && last.same(last.next) {
		last.unlink()
		last = last.next
	}
	return last
}

// turn is negative for a counter-clockwise turn p→q→r.
func turn(p, q, r *ringNode) float32 {
	return (q.y-p.y)*(r.x-q.x) - (q.x-p.x)*(r.y-q.y)
}

// dropDegenerate removes duplicate and collinear vertices between start
// and end.
func dropDegenerate(start, end *ringNode) *ringNode {
	if start == nil {
		return nil
	}
	if end == nil {
		end = start
	}
	p := start
	for {
		again := false
		if p.same(p.next) || turn(p.prev, p, p.next) == 0 {
			p.unlink()
			p = p.prev
			end = p
			if p == p.next {
				break
			}
			again = true
		} else {
			p = p.next
		}
		if !again && p == end {
			break
		}
	}
	return end
}

func clipEars(ear *ringNode, tris []uint32, pass int) []uint32 {
	if ear == nil {
		return tris
	}
	stop := ear
	for ear.prev != ear.next {
		prev, next := ear.prev, ear.next
		if isEar(ear) {
			tris = append(tris, prev.i, ear.i, next.i)
			ear.unlink()
			ear = next.next
			stop = next.next
			continue
		}
		ear = next
		if ear != stop {
			continue
		}
		// A full lap without an ear: clean up, then untangle, then split.
		switch pass {
		case 0:
			tris = clipEars(dropDegenerate(ear, nil), tris, 1)
		case 1:
			ear, tris = cureSelfIntersections(dropDegenerate(ear, nil), tris)
			tris = clipEars(ear, tris, 2)
		case 2:
			tris = splitRing(ear, tris)
		}
		return tris
	}
	return tris
}

func isEar(ear *ringNode) bool {
	a, b, c := ear.prev, ear, ear.next
	if turn(a, b, c) >= 0 {
		return false
	}
	minX, maxX := min(a.x, b.x, c.x), max(a.x, b.x, c.x)
	minY, maxY := min(a.y, b.y, c.y), max(a.y, b.y, c.y)
	for p := c.next; p != a; p = p.next {
		if p.x >= minX && p.x <= maxX && p.y >= minY && p.y <= maxY &&
			inTriangle(a.x, a.y, b.x, b.y, c.x, c.y, p.x, p.y) &&
			turn(p.prev, p, p.next) >= 0 {
			return false
		}
	}
	return true
}

// cureSelfIntersections clips the small triangles left where the ring
// crosses itself locally.
func cureSelfIntersections(start *ringNode, tris []uint32) (*ringNode, []uint32) {
	p := start
	for {
		a, b := p.prev, p.next.next
		if !a.same(b) && crosses(a, p, p.next, b) && locallyInside(a, b) && locallyInside(b, a) {
			tris = append(tris, a.i, p.i, b.i)
			p.unlink()
			p.next.unlink()
			p, start = b, b
		}
		p = p.next
		if p == start {
			break
		}
	}
	return dropDegenerate(p, nil), tris
}

// splitRing cuts the ring along the first valid diagonal and clips both
// halves.
func splitRing(start *ringNode, tris []uint32) []uint32 {
	a := start
	for {
		for b := a.next.next; b != a.prev; b = b.next {
			if a.i != b.i && validDiagonal(a, b) {
				c := split(a, b)
				a = dropDegenerate(a, a.next)
				c = dropDegenerate(c, c.next)
				tris = clipEars(a, tris, 0)
				return clipEars(c, tris, 0)
			}
		}
		a = a.next
		if a == start {
			return tris
		}
	}
}

// ── Holes ─────────────────────────────────────────────────────────────────────

func joinHole(hole, ring *ringNode) *ringNode {
	bridge := holeBridge(hole, ring)
	if bridge == nil {
		return ring
	}
	back := split(bridge, hole)
	dropDegenerate(back, back.next)
	return dropDegenerate(bridge, bridge.next)
}

// holeBridge finds the ring vertex hole can connect to without crossing
// any edge: the nearest edge hit by a leftward ray from hole, or a reflex
// vertex inside the triangle that ray spans, whichever makes the smallest
// angle with the ray.
func holeBridge(hole, ring *ringNode) *ringNode {
	hx, hy := hole.x, hole.y
	qx := float32(stdmath.Inf(-1))
	var m *ringNode

	p := ring
	for {
		if hy <= p.y && hy >= p.next.y && p.next.y != p.y {
			x := p.x + (hy-p.y)*(p.next.x-p.x)/(p.next.y-p.y)
			if x <= hx && x > qx {
				qx = x
				m = p.next
				if p.x < p.next.x {
					m = p
				}
				if x == hx {
					// hole touches the edge
					return m
				}
			}
		}
		p = p.next
		if p == ring {
			break
		}
	}
	if m == nil {
		return nil
	}

	stop := m
	mx, my := m.x, m.y
	tanMin := float32(stdmath.Inf(1))
	p = m
	for {
		if hx >= p.x && p.x >= mx && hx != p.x {
			ax, cx := qx, hx
			if hy < my {
				ax, cx = hx, qx
			}
			if inTriangle(ax, hy, mx, my, cx, hy, p.x, p.y) {
				tan := float32(stdmath.Abs(float64(hy-p.y))) / (hx - p.x)
				if locallyInside(p, hole) &&
					(tan < tanMin || (tan == tanMin && (p.x > m.x || (p.x == m.x && sectorContains(m, p))))) {
					m = p
					tanMin = tan
				}
			}
		}
		p = p.next
		if p == stop {
			break
		}
	}
	return m
}

// sectorContains reports whether the sector at p lies inside the sector at m.
func sectorContains(m, p *ringNode) bool {
	return turn(m.prev, m, p.prev) < 0 && turn(p.next, m, m.next) < 0
}

// split joins a and b with a two-way edge, returning the copy of b that
// starts the second ring.
func split(a, b *ringNode) *ringNode {
	a2 := &ringNode{i: a.i, x: a.x, y: a.y}
	b2 := &ringNode{i: b.i, x: b.x, y: b.y}
	an, bp := a.next, b.prev

	a.next, b.prev = b, a
	a2.next, an.prev = an, a2
	b2.next, a2.prev = a2, b2
	bp.next, b2.prev = b2, bp
	return b2
}

// ── Predicates ────────────────────────────────────────────────────────────────

// inTriangle is inclusive of the edges.
func inTriangle(ax, ay, bx, by, cx, cy, px, py float32) bool {
	return (cx-px)*(ay-py) >= (ax-px)*(cy-py) &&
		(ax-px)*(by-py) >= (bx-px)*(ay-py) &&
		(bx-px)*(cy-py) >= (cx-px)*(by-py)
}

func validDiagonal(a, b *ringNode) bool {
	if a.next.i == b.i || a.prev.i == b.i || crossesRing(a, b) {
		return false
	}
	if locallyInside(a, b) && locallyInside(b, a) && insideMidpoint(a, b) &&
		(turn(a.prev, a, b.prev) != 0 || turn(a, b.prev, b) != 0) {
		return true
	}
	return a.same(b) && turn(a.prev, a, a.next) > 0 && turn(b.prev, b, b.next) > 0
}

func sign(v float32) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// crosses reports whether segments p1q1 and p2q2 touch, including
// collinear overlap.
func crosses(p1, q1, p2, q2 *ringNode) bool {
	o1 := sign(turn(p1, q1, p2))
	o2 := sign(turn(p1, q1, q2))
	o3 := sign(turn(p2, q2, p1))
	o4 := sign(turn(p2, q2, q1))

	switch {
	case o1 != o2 && o3 != o4:
		return true
	case o1 == 0 && onSegment(p1, p2, q1),
		o2 == 0 && onSegment(p1, q2, q1),
		o3 == 0 && onSegment(p2, p1, q2),
		o4 == 0 && onSegment(p2, q1, q2):
		return true
	}
	return false
}

// onSegment reports whether q lies in the bounding box of pr; q is known to
// be collinear with it.
func onSegment(p, q, r *ringNode) bool {
	return q.x <= max(p.x, r.x) && q.x >= min(p.x, r.x) &&
		q.y <= max(p.y, r.y) && q.y >= min(p.y, r.y)
}

// crossesRing reports whether ab crosses an edge not incident to a or b.
func crossesRing(a, b *ringNode) bool {
	p := a
	for {
		if p.i != a.i && p.next.i != a.i && p.i != b.i && p.next.i != b.i && crosses(p, p.next, a, b) {
			return true
		}
		p = p.next
		if p == a {
			return false
		}
	}
}

// locallyInside reports whether the diagonal ab leaves a into the interior.
func locallyInside(a, b *ringNode) bool {
	if turn(a.prev, a, a.next) < 0 {
		return turn(a, b, a.next) >= 0 && turn(a, a.prev, b) >= 0
	}
	return turn(a, b, a.prev) < 0 || turn(a, a.next, b) < 0
}

func insideMidpoint(a, b *ringNode) bool {
	inside := false
	px, py := (a.x+b.x)/2, (a.y+b.y)/2
	p := a
	for {
		if (p.y > py) != (p.next.y > py) && p.next.y != p.y &&
			px < (p.next.x-p.x)*(py-p.y)/(p.next.y-p.y)+p.x {
			inside = !inside
		}
		p = p.next
		if p == a {
			return inside
		}
	}
}
