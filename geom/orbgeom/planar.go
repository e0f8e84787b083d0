package orbgeom

import (
	"math"

	"github.com/paulmach/orb"
)

// seg is one line segment in the plane.
type seg struct {
	ax, ay, bx, by float64
}

func (s seg) length() float64 {
	return math.Hypot(s.bx-s.ax, s.by-s.ay)
}

// segments extracts every edge of g. Point parts contribute degenerate
// segments so distance code can treat all geometries uniformly.
func segments(g orb.Geometry) []seg {
	var out []seg
	add := func(pts []orb.Point, closed bool) {
		for i := 1; i < len(pts); i++ {
			out = append(out, seg{pts[i-1][0], pts[i-1][1], pts[i][0], pts[i][1]})
		}
		if closed && len(pts) > 1 && pts[0] != pts[len(pts)-1] {
			last := pts[len(pts)-1]
			out = append(out, seg{last[0], last[1], pts[0][0], pts[0][1]})
		}
	}
	for _, ls := range lineParts(g) {
		add(ls, false)
	}
	for _, p := range polyParts(g) {
		for _, r := range p {
			add(r, true)
		}
	}
	for _, pt := range pointParts(g) {
		out = append(out, seg{pt[0], pt[1], pt[0], pt[1]})
	}
	return out
}

// pointSegDist returns the distance from (px,py) to segment s.
func pointSegDist(px, py float64, s seg) float64 {
	dx, dy := s.bx-s.ax, s.by-s.ay
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(px-s.ax, py-s.ay)
	}
	t := ((px-s.ax)*dx + (py-s.ay)*dy) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(px-(s.ax+t*dx), py-(s.ay+t*dy))
}

// segSegDist returns the minimum distance between two segments; zero when
// they intersect.
func segSegDist(a, b seg) float64 {
	if segIntersects(a, b) {
		return 0
	}
	d := pointSegDist(a.ax, a.ay, b)
	if v := pointSegDist(a.bx, a.by, b); v < d {
		d = v
	}
	if v := pointSegDist(b.ax, b.ay, a); v < d {
		d = v
	}
	if v := pointSegDist(b.bx, b.by, a); v < d {
		d = v
	}
	return d
}

func cross(ox, oy, ax, ay, bx, by float64) float64 {
	return (ax-ox)*(by-oy) - (ay-oy)*(bx-ox)
}

func onSegment(px, py float64, s seg) bool {
	return pointSegDist(px, py, s) <= eps
}

// segIntersects reports whether two segments share any point, including
// endpoint touches and collinear overlap.
func segIntersects(a, b seg) bool {
	d1 := cross(b.ax, b.ay, b.bx, b.by, a.ax, a.ay)
	d2 := cross(b.ax, b.ay, b.bx, b.by, a.bx, a.by)
	d3 := cross(a.ax, a.ay, a.bx, a.by, b.ax, b.ay)
	d4 := cross(a.ax, a.ay, a.bx, a.by, b.bx, b.by)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if math.Abs(d1) <= eps && onSegment(a.ax, a.ay, b) {
		return true
	}
	if math.Abs(d2) <= eps && onSegment(a.bx, a.by, b) {
		return true
	}
	if math.Abs(d3) <= eps && onSegment(b.ax, b.ay, a) {
		return true
	}
	if math.Abs(d4) <= eps && onSegment(b.bx, b.by, a) {
		return true
	}
	return false
}

// segProperCross reports whether the segments cross at a single interior
// point of both. Touching at endpoints or running collinear does not count.
func segProperCross(a, b seg) bool {
	d1 := cross(b.ax, b.ay, b.bx, b.by, a.ax, a.ay)
	d2 := cross(b.ax, b.ay, b.bx, b.by, a.bx, a.by)
	d3 := cross(a.ax, a.ay, a.bx, a.by, b.ax, b.ay)
	d4 := cross(a.ax, a.ay, a.bx, a.by, b.bx, b.by)
	return ((d1 > eps && d2 < -eps) || (d1 < -eps && d2 > eps)) &&
		((d3 > eps && d4 < -eps) || (d3 < -eps && d4 > eps))
}

// segCrossPoint returns the intersection parameter t on segment a for a
// proper crossing with b. Valid only when segProperCross(a, b).
func segCrossPoint(a, b seg) (t float64) {
	rx, ry := a.bx-a.ax, a.by-a.ay
	sx, sy := b.bx-b.ax, b.by-b.ay
	den := rx*sy - ry*sx
	if den == 0 {
		return 0
	}
	return ((b.ax-a.ax)*sy - (b.ay-a.ay)*sx) / den
}

// pointInPolygonal reports whether (x,y) lies inside or on the boundary of
// any polygonal part of g. Even-odd ray casting across all rings of a part
// handles holes; the boundary counts as inside.
func pointInPolygonal(g orb.Geometry, x, y float64) bool {
	for _, p := range polyParts(g) {
		if pointInPolygon(p, x, y) {
			return true
		}
	}
	return false
}

func pointInPolygon(p orb.Polygon, x, y float64) bool {
	for _, r := range p {
		for _, s := range ringSegs(r) {
			if onSegment(x, y, s) {
				return true
			}
		}
	}
	inside := false
	for _, r := range p {
		for _, s := range ringSegs(r) {
			if (s.ay > y) != (s.by > y) {
				xint := s.ax + (y-s.ay)/(s.by-s.ay)*(s.bx-s.ax)
				if x < xint {
					inside = !inside
				}
			}
		}
	}
	return inside
}

func ringSegs(r orb.Ring) []seg {
	if len(r) < 2 {
		return nil
	}
	out := make([]seg, 0, len(r))
	for i := 1; i < len(r); i++ {
		out = append(out, seg{r[i-1][0], r[i-1][1], r[i][0], r[i][1]})
	}
	if r[0] != r[len(r)-1] {
		last := r[len(r)-1]
		out = append(out, seg{last[0], last[1], r[0][0], r[0][1]})
	}
	return out
}

// polygonalSegs returns the ring edges of every polygonal part of g.
func polygonalSegs(g orb.Geometry) []seg {
	var out []seg
	for _, p := range polyParts(g) {
		for _, r := range p {
			out = append(out, ringSegs(r)...)
		}
	}
	return out
}
