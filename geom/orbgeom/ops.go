package orbgeom

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
)

// errUnsupported marks operand combinations the planar kernel cannot answer
// exactly or conservatively.
type errUnsupported struct {
	op   string
	a, b geom.Type
}

func (e *errUnsupported) Error() string {
	return fmt.Sprintf("orbgeom: %s not supported for %s/%s", e.op, e.a, e.b)
}

func asOrb(g geom.Geometry) (orb.Geometry, bool) {
	if t, ok := g.(*G); ok {
		return t.g, true
	}
	return nil, false
}

// Union merges the operands into one multi-part geometry. Parts are kept
// as-is; every predicate in this kernel uses any-part semantics, so the
// union of overlapping polygons still answers containment queries like a
// dissolved merge would.
func (t *G) Union(other geom.Geometry) (geom.Geometry, error) {
	og, ok := asOrb(other)
	if !ok {
		return nil, &errUnsupported{op: "union", a: t.Type(), b: other.Type()}
	}

	if t.Type().IsPolygonal() && other.Type().IsPolygonal() {
		var mp orb.MultiPolygon
		for _, p := range polyParts(t.g) {
			mp = append(mp, p.Clone())
		}
		for _, p := range polyParts(og) {
			mp = append(mp, p.Clone())
		}
		return New(mp), nil
	}
	if t.Type().IsLinear() && other.Type().IsLinear() {
		var ml orb.MultiLineString
		for _, ls := range lineParts(t.g) {
			ml = append(ml, ls.Clone())
		}
		for _, ls := range lineParts(og) {
			ml = append(ml, ls.Clone())
		}
		return New(ml), nil
	}
	return New(orb.Collection{orb.Clone(t.g), orb.Clone(og)}), nil
}

// Difference subtracts other from the receiver.
//
// Line minus polygonal is exact: segments are split at ring crossings and
// the pieces inside other are dropped. Point minus polygonal is exact.
// Polygon minus polygonal keeps whole parts that are not within other, which
// overestimates the residual for partially overlapping parts.
func (t *G) Difference(other geom.Geometry) (geom.Geometry, error) {
	og, ok := asOrb(other)
	if !ok {
		return nil, &errUnsupported{op: "difference", a: t.Type(), b: other.Type()}
	}
	if !other.Type().IsPolygonal() && other.Type() != geom.TypeCollection {
		// Subtracting a zero-area geometry leaves the receiver unchanged.
		return t.Clone(), nil
	}

	switch {
	case t.Type().IsLinear():
		var ml orb.MultiLineString
		for _, ls := range lineParts(t.g) {
			ml = append(ml, clipLine(ls, og, false)...)
		}
		return New(ml), nil
	case t.Type() == geom.TypePoint, t.Type() == geom.TypeMultiPoint:
		var mp orb.MultiPoint
		for _, pt := range pointParts(t.g) {
			if !pointInPolygonal(og, pt[0], pt[1]) {
				mp = append(mp, pt)
			}
		}
		return New(mp), nil
	case t.Type().IsPolygonal():
		var out orb.MultiPolygon
		for _, p := range polyParts(t.g) {
			if polygonWithinPolygonal(p, og) {
				continue
			}
			out = append(out, p.Clone())
		}
		return New(out), nil
	default:
		return nil, &errUnsupported{op: "difference", a: t.Type(), b: other.Type()}
	}
}

// Intersection returns the shared portion of the operands.
//
// Exact for line/polygonal, point/polygonal and line/line (collinear
// overlaps become line pieces, crossings become points). Polygon/polygon is
// answered only for containment or disjoint envelopes; partial overlap
// returns an error.
func (t *G) Intersection(other geom.Geometry) (geom.Geometry, error) {
	og, ok := asOrb(other)
	if !ok {
		return nil, &errUnsupported{op: "intersection", a: t.Type(), b: other.Type()}
	}

	switch {
	case t.Type().IsLinear() && other.Type().IsPolygonal():
		var ml orb.MultiLineString
		for _, ls := range lineParts(t.g) {
			ml = append(ml, clipLine(ls, og, true)...)
		}
		return New(ml), nil
	case t.Type().IsPolygonal() && other.Type().IsLinear():
		return other.Intersection(t)
	case (t.Type() == geom.TypePoint || t.Type() == geom.TypeMultiPoint) && other.Type().IsPolygonal():
		var mp orb.MultiPoint
		for _, pt := range pointParts(t.g) {
			if pointInPolygonal(og, pt[0], pt[1]) {
				mp = append(mp, pt)
			}
		}
		return New(mp), nil
	case t.Type().IsLinear() && other.Type().IsLinear():
		return New(lineLineIntersection(t.g, og)), nil
	case t.Type().IsPolygonal() && other.Type().IsPolygonal():
		if !t.Envelope().Intersects(other.Envelope()) {
			return New(orb.Collection{}), nil
		}
		if within, _ := t.Within(other); within {
			return t.Clone(), nil
		}
		if within, _ := other.Within(t); within {
			return other.Clone(), nil
		}
		disjoint := true
		for _, p := range polyParts(t.g) {
			if polygonTouchesPolygonal(p, og) {
				disjoint = false
				break
			}
		}
		if disjoint {
			return New(orb.Collection{}), nil
		}
		return nil, &errUnsupported{op: "intersection", a: t.Type(), b: other.Type()}
	default:
		return nil, &errUnsupported{op: "intersection", a: t.Type(), b: other.Type()}
	}
}

// Boundary returns the rings of polygonal geometries as lines and the
// endpoints of linear geometries as points.
func (t *G) Boundary() (geom.Geometry, error) {
	switch {
	case t.Type().IsPolygonal():
		var ml orb.MultiLineString
		for _, p := range polyParts(t.g) {
			for _, r := range p {
				ls := make(orb.LineString, len(r))
				copy(ls, r)
				if len(ls) > 0 && ls[0] != ls[len(ls)-1] {
					ls = append(ls, ls[0])
				}
				ml = append(ml, ls)
			}
		}
		return New(ml), nil
	case t.Type().IsLinear():
		var mp orb.MultiPoint
		for _, ls := range lineParts(t.g) {
			if len(ls) > 0 {
				mp = append(mp, ls[0], ls[len(ls)-1])
			}
		}
		return New(mp), nil
	default:
		return New(orb.Collection{}), nil
	}
}

// Buffer returns a polygon covering everything within distance of the
// geometry. Points get a regular polygon with the requested segment count;
// other types get their envelope expanded by distance, which is sufficient
// for the candidate prefilters that call it.
func (t *G) Buffer(distance float64, segs int) (geom.Geometry, error) {
	if segs < 4 {
		segs = 16
	}
	if t.Type() == geom.TypePoint || t.Type() == geom.TypeMultiPoint {
		var mp orb.MultiPolygon
		for _, pt := range pointParts(t.g) {
			r := make(orb.Ring, 0, segs+1)
			for i := 0; i < segs; i++ {
				a := 2 * math.Pi * float64(i) / float64(segs)
				r = append(r, orb.Point{pt[0] + distance*math.Cos(a), pt[1] + distance*math.Sin(a)})
			}
			r = append(r, r[0])
			mp = append(mp, orb.Polygon{r})
		}
		return New(mp), nil
	}
	e := t.Envelope().Expand(distance)
	return Polygon([][2]float64{
		{e.MinX, e.MinY}, {e.MaxX, e.MinY}, {e.MaxX, e.MaxY}, {e.MinX, e.MaxY},
	}), nil
}

// Distance returns the minimum planar distance between the operands, zero
// when they intersect or one contains a vertex of the other.
func (t *G) Distance(other geom.Geometry) (float64, error) {
	og, ok := asOrb(other)
	if !ok {
		return 0, &errUnsupported{op: "distance", a: t.Type(), b: other.Type()}
	}

	if t.Type().IsPolygonal() {
		for _, pt := range flatten(og) {
			if pointInPolygonal(t.g, pt[0], pt[1]) {
				return 0, nil
			}
		}
	}
	if other.Type().IsPolygonal() {
		for _, pt := range flatten(t.g) {
			if pointInPolygonal(og, pt[0], pt[1]) {
				return 0, nil
			}
		}
	}

	sa, sb := segments(t.g), segments(og)
	if len(sa) == 0 || len(sb) == 0 {
		return 0, &errUnsupported{op: "distance", a: t.Type(), b: other.Type()}
	}
	min := math.Inf(1)
	for _, a := range sa {
		for _, b := range sb {
			if d := segSegDist(a, b); d < min {
				min = d
				if min == 0 {
					return 0, nil
				}
			}
		}
	}
	return min, nil
}

// Intersects reports whether the operands share any point.
func (t *G) Intersects(other geom.Geometry) (bool, error) {
	og, ok := asOrb(other)
	if !ok {
		return false, &errUnsupported{op: "intersects", a: t.Type(), b: other.Type()}
	}
	if !t.Envelope().Intersects(other.Envelope()) {
		return false, nil
	}

	if t.Type().IsPolygonal() {
		for _, pt := range flatten(og) {
			if pointInPolygonal(t.g, pt[0], pt[1]) {
				return true, nil
			}
		}
	}
	if other.Type().IsPolygonal() {
		for _, pt := range flatten(t.g) {
			if pointInPolygonal(og, pt[0], pt[1]) {
				return true, nil
			}
		}
	}
	for _, a := range segments(t.g) {
		for _, b := range segments(og) {
			if segIntersects(a, b) {
				return true, nil
			}
		}
	}
	return false, nil
}

// Contains reports whether every point of other lies inside the receiver.
func (t *G) Contains(other geom.Geometry) (bool, error) {
	og, ok := asOrb(other)
	if !ok {
		return false, &errUnsupported{op: "contains", a: t.Type(), b: other.Type()}
	}
	if !t.Type().IsPolygonal() && t.Type() != geom.TypeCollection {
		return false, &errUnsupported{op: "contains", a: t.Type(), b: other.Type()}
	}

	// Every vertex inside (or on the boundary), and every edge covered. An
	// edge of other may properly cross an internal shared ring edge of a
	// multi-part receiver while staying inside it, so crossings split the
	// edge and each piece is classified by its midpoint instead of being
	// rejected outright.
	vertices := flatten(og)
	if len(vertices) == 0 {
		return false, nil
	}
	for _, pt := range vertices {
		if !pointInPolygonal(t.g, pt[0], pt[1]) {
			return false, nil
		}
	}
	ringEdges := polygonalSegs(t.g)
	for _, s := range segments(og) {
		if !segCoveredBy(s, ringEdges, t.g) {
			return false, nil
		}
	}
	return true, nil
}

// Within reports whether every point of the receiver lies inside other.
func (t *G) Within(other geom.Geometry) (bool, error) {
	return other.Contains(t)
}

// Overlaps reports whether two polygonal operands share interior area while
// neither contains the other.
func (t *G) Overlaps(other geom.Geometry) (bool, error) {
	if !t.Type().IsPolygonal() || !other.Type().IsPolygonal() {
		return false, &errUnsupported{op: "overlaps", a: t.Type(), b: other.Type()}
	}
	inter, err := t.Intersects(other)
	if err != nil || !inter {
		return false, err
	}
	// Containment is not overlap.
	if c, _ := t.Contains(other); c {
		return false, nil
	}
	if w, _ := t.Within(other); w {
		return false, nil
	}
	og, _ := asOrb(other)
	for _, s := range segments(t.g) {
		for _, r := range polygonalSegs(og) {
			if segProperCross(s, r) {
				return true, nil
			}
		}
	}
	// No proper crossing: interior sharing shows up as a vertex or an edge
	// midpoint of one operand strictly inside the other. Vertices alone are
	// not enough; a sliver overlap can keep every vertex of both operands on
	// the other's boundary.
	if anyStrictlyInside(t.g, og) || anyStrictlyInside(og, t.g) {
		return true, nil
	}
	return false, nil
}

// anyStrictlyInside reports whether a vertex or edge midpoint of a lies in
// the interior of b, off b's boundary.
func anyStrictlyInside(a, b orb.Geometry) bool {
	edges := polygonalSegs(b)
	strict := func(x, y float64) bool {
		if !pointInPolygonal(b, x, y) {
			return false
		}
		for _, e := range edges {
			if onSegment(x, y, e) {
				return false
			}
		}
		return true
	}
	for _, pt := range flatten(a) {
		if strict(pt[0], pt[1]) {
			return true
		}
	}
	for _, s := range segments(a) {
		if strict((s.ax+s.bx)/2, (s.ay+s.by)/2) {
			return true
		}
	}
	return false
}

// SharedArea measures the area the operands have in common without
// constructing the intersection geometry: the boundary pieces of each
// operand lying inside the other are integrated via Green's theorem.
// Pieces the boundaries share are weighted half on each side.
func (t *G) SharedArea(other geom.Geometry) (float64, error) {
	og, ok := asOrb(other)
	if !ok || !t.Type().IsPolygonal() || !other.Type().IsPolygonal() {
		return 0, &errUnsupported{op: "shared area", a: t.Type(), b: other.Type()}
	}
	if !t.Envelope().Intersects(other.Envelope()) {
		return 0, nil
	}
	area := boundaryInsideIntegral(t.g, og) + boundaryInsideIntegral(og, t.g)
	if area < 0 {
		// Numeric noise on touching boundaries.
		area = 0
	}
	return area, nil
}

// polygonWithinPolygonal reports whether polygon p lies entirely inside g.
// Ring edges crossing an internal shared edge of a multi-part g are split
// and classified piecewise, matching Contains.
func polygonWithinPolygonal(p orb.Polygon, g orb.Geometry) bool {
	for _, pt := range flatten(p) {
		if !pointInPolygonal(g, pt[0], pt[1]) {
			return false
		}
	}
	edges := polygonalSegs(g)
	for _, r := range p {
		for _, s := range ringSegs(r) {
			if !segCoveredBy(s, edges, g) {
				return false
			}
		}
	}
	return true
}

// polygonTouchesPolygonal reports whether p shares any point with g.
func polygonTouchesPolygonal(p orb.Polygon, g orb.Geometry) bool {
	for _, pt := range flatten(p) {
		if pointInPolygonal(g, pt[0], pt[1]) {
			return true
		}
	}
	for _, pt := range flatten(g) {
		if pointInPolygon(p, pt[0], pt[1]) {
			return true
		}
	}
	edges := polygonalSegs(g)
	for _, r := range p {
		for _, s := range ringSegs(r) {
			for _, e := range edges {
				if segIntersects(s, e) {
					return true
				}
			}
		}
	}
	return false
}
