package orbgeom

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// clipLine splits a line string at every proper crossing with the ring edges
// of the polygonal geometry and keeps the pieces whose midpoints are inside
// (keepInside) or outside the polygons. Midpoints lying on the boundary
// count as inside, so a line running along a polygon edge clips to empty on
// the outside.
func clipLine(ls orb.LineString, polygonal orb.Geometry, keepInside bool) orb.MultiLineString {
	edges := polygonalSegs(polygonal)
	var out orb.MultiLineString

	for i := 1; i < len(ls); i++ {
		s := seg{ls[i-1][0], ls[i-1][1], ls[i][0], ls[i][1]}
		if s.length() <= eps {
			continue
		}

		ts := crossParams(s, edges)
		for j := 1; j < len(ts); j++ {
			t0, t1 := ts[j-1], ts[j]
			if t1-t0 <= eps {
				continue
			}
			tm := (t0 + t1) / 2
			mx := s.ax + tm*(s.bx-s.ax)
			my := s.ay + tm*(s.by-s.ay)
			if pointInPolygonal(polygonal, mx, my) != keepInside {
				continue
			}
			out = append(out, orb.LineString{
				{s.ax + t0*(s.bx-s.ax), s.ay + t0*(s.by-s.ay)},
				{s.ax + t1*(s.bx-s.ax), s.ay + t1*(s.by-s.ay)},
			})
		}
	}
	return out
}

// crossParams returns the sorted split parameters of s at its proper
// crossings with edges, with 0 and 1 included.
func crossParams(s seg, edges []seg) []float64 {
	ts := []float64{0, 1}
	for _, e := range edges {
		if segProperCross(s, e) {
			ts = append(ts, segCrossPoint(s, e))
		}
	}
	sort.Float64s(ts)
	return ts
}

// segCoveredBy reports whether segment s lies entirely inside the polygonal
// geometry g. The segment is split at its proper crossings with g's ring
// edges and every piece is classified by its midpoint, so a segment passing
// over a shared internal edge of two adjacent parts still counts as covered.
func segCoveredBy(s seg, edges []seg, g orb.Geometry) bool {
	ts := crossParams(s, edges)
	for j := 1; j < len(ts); j++ {
		t0, t1 := ts[j-1], ts[j]
		if t1-t0 <= eps {
			continue
		}
		tm := (t0 + t1) / 2
		if !pointInPolygonal(g, s.ax+tm*(s.bx-s.ax), s.ay+tm*(s.by-s.ay)) {
			return false
		}
	}
	return true
}

// boundaryInsideIntegral integrates x dy - y dx over the portions of a's
// ring boundary lying inside b, traversing exterior rings counterclockwise
// and holes clockwise. Pieces running along b's own boundary count half, so
// summing the integral from both sides counts shared runs exactly once.
func boundaryInsideIntegral(a, b orb.Geometry) float64 {
	edges := polygonalSegs(b)
	var sum float64
	for _, p := range polyParts(a) {
		for ri, r := range p {
			want := orb.CCW
			if ri > 0 {
				want = orb.CW
			}
			sign := 1.0
			if r.Orientation() != want {
				sign = -1
			}
			for _, s := range ringSegs(r) {
				ts := crossParams(s, edges)
				for j := 1; j < len(ts); j++ {
					t0, t1 := ts[j-1], ts[j]
					if t1-t0 <= eps {
						continue
					}
					tm := (t0 + t1) / 2
					mx := s.ax + tm*(s.bx-s.ax)
					my := s.ay + tm*(s.by-s.ay)
					if !pointInPolygonal(b, mx, my) {
						continue
					}
					w := sign
					for _, e := range edges {
						if onSegment(mx, my, e) {
							w /= 2
							break
						}
					}
					x0, y0 := s.ax+t0*(s.bx-s.ax), s.ay+t0*(s.by-s.ay)
					x1, y1 := s.ax+t1*(s.bx-s.ax), s.ay+t1*(s.by-s.ay)
					sum += w * (x0*y1 - x1*y0)
				}
			}
		}
	}
	return sum / 2
}

// lineLineIntersection returns the shared portion of two linear geometries:
// collinear overlaps as line pieces, crossings and touches as points.
func lineLineIntersection(a, b orb.Geometry) orb.Collection {
	var lines orb.MultiLineString
	var points orb.MultiPoint

	for _, sa := range segments(a) {
		for _, sb := range segments(b) {
			if !segIntersects(sa, sb) {
				continue
			}
			if piece, ok := collinearOverlap(sa, sb); ok {
				if piece.length() > eps {
					lines = append(lines, orb.LineString{
						{piece.ax, piece.ay}, {piece.bx, piece.by},
					})
					continue
				}
			}
			if segProperCross(sa, sb) {
				t := segCrossPoint(sa, sb)
				points = append(points, orb.Point{
					sa.ax + t*(sa.bx-sa.ax), sa.ay + t*(sa.by-sa.ay),
				})
				continue
			}
			// Endpoint touch.
			for _, pt := range [][2]float64{{sa.ax, sa.ay}, {sa.bx, sa.by}} {
				if onSegment(pt[0], pt[1], sb) {
					points = append(points, orb.Point{pt[0], pt[1]})
				}
			}
			for _, pt := range [][2]float64{{sb.ax, sb.ay}, {sb.bx, sb.by}} {
				if onSegment(pt[0], pt[1], sa) {
					points = append(points, orb.Point{pt[0], pt[1]})
				}
			}
		}
	}

	var out orb.Collection
	if len(lines) > 0 {
		out = append(out, lines)
	}
	if len(points) > 0 {
		out = append(out, points)
	}
	return out
}

// collinearOverlap returns the shared run of two collinear segments.
func collinearOverlap(a, b seg) (seg, bool) {
	if math.Abs(cross(a.ax, a.ay, a.bx, a.by, b.ax, b.ay)) > eps ||
		math.Abs(cross(a.ax, a.ay, a.bx, a.by, b.bx, b.by)) > eps {
		return seg{}, false
	}
	dx, dy := a.bx-a.ax, a.by-a.ay
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return seg{}, false
	}
	proj := func(x, y float64) float64 {
		return ((x-a.ax)*dx + (y-a.ay)*dy) / l2
	}
	t0, t1 := proj(b.ax, b.ay), proj(b.bx, b.by)
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	t0 = math.Max(t0, 0)
	t1 = math.Min(t1, 1)
	if t1 <= t0 {
		return seg{}, false
	}
	return seg{
		a.ax + t0*dx, a.ay + t0*dy,
		a.ax + t1*dx, a.ay + t1*dy,
	}, true
}
