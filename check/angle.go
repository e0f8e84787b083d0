package check

import (
	"math"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
)

// vectorEps skips direction vectors too short to carry a meaningful
// direction.
const vectorEps = 1e-12

// angleBetweenDeg returns the angle in degrees between two direction
// vectors via the arccosine of the normalized dot product. The quotient is
// clamped to [-1,1] so floating-point drift cannot push it out of acos's
// domain. Vectors shorter than vectorEps yield ok=false.
func angleBetweenDeg(ax, ay, bx, by float64) (deg float64, ok bool) {
	la := math.Hypot(ax, ay)
	lb := math.Hypot(bx, by)
	if la < vectorEps || lb < vectorEps {
		return 0, false
	}
	cos := (ax*bx + ay*by) / (la * lb)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi, true
}

// bendAngleDeg returns the vertex angle at p measured between the edges
// toward prev and next. Collinear continuation yields 180, a right-angle
// turn yields 90.
func bendAngleDeg(prevX, prevY, px, py, nextX, nextY float64) (deg float64, ok bool) {
	return angleBetweenDeg(prevX-px, prevY-py, nextX-px, nextY-py)
}

// directionChangeDeg returns the deviation from straight continuation for
// two segments leaving a shared junction: 0 for collinear continuation, 90
// for a perpendicular branch.
func directionChangeDeg(awayAX, awayAY, awayBX, awayBY float64) (deg float64, ok bool) {
	between, ok := angleBetweenDeg(awayAX, awayAY, awayBX, awayBY)
	if !ok {
		return 0, false
	}
	return 180 - between, true
}

// awayVector returns the direction of segment s leaving the junction at
// (jx,jy): from the matching end vertex toward its neighbor vertex.
func awayVector(s *LineSegmentInfo, jx, jy, tolerance float64) (dx, dy float64, ok bool) {
	g := s.Geometry
	n := g.PointCount()
	if n < 2 {
		return 0, 0, false
	}
	if math.Hypot(s.StartX-jx, s.StartY-jy) <= tolerance {
		return g.X(1) - s.StartX, g.Y(1) - s.StartY, true
	}
	if math.Hypot(s.EndX-jx, s.EndY-jy) <= tolerance {
		return g.X(n-2) - s.EndX, g.Y(n-2) - s.EndY, true
	}
	return 0, 0, false
}

// vertices returns the flattened vertex sequence of a geometry.
func vertices(g geom.Geometry) []pt {
	n := g.PointCount()
	if n == 0 {
		return nil
	}
	run := make([]pt, n)
	for i := 0; i < n; i++ {
		run[i] = pt{g.X(i), g.Y(i)}
	}
	return run
}

type pt struct {
	x, y float64
}

// segsProperCross reports whether segments a1-a2 and b1-b2 cross at interior
// points of both.
func segsProperCross(a1, a2, b1, b2 pt) bool {
	crossP := func(o, a, b pt) float64 {
		return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
	}
	const e = 1e-12
	d1 := crossP(b1, b2, a1)
	d2 := crossP(b1, b2, a2)
	d3 := crossP(a1, a2, b1)
	d4 := crossP(a1, a2, b2)
	return ((d1 > e && d2 < -e) || (d1 < -e && d2 > e)) &&
		((d3 > e && d4 < -e) || (d3 < -e && d4 > e))
}
