// Package orbgeom implements the geom.Geometry kernel interface on top of
// github.com/paulmach/orb using planar (projected-coordinate) math.
//
// Set operations are exact for the line/point-versus-polygon combinations
// the relation checks rely on. Polygon-versus-polygon difference and
// intersection are conservative for partially overlapping operands: the
// kernel keeps or rejects whole parts rather than splitting rings, or
// returns an error where no conservative answer exists. Callers treat such
// errors per-pair, as with any geometry-engine failure.
package orbgeom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
)

// eps absorbs floating-point drift in coincidence tests.
const eps = 1e-9

// G adapts an orb.Geometry to the geom.Geometry interface.
type G struct {
	g orb.Geometry

	// flattened vertex sequence, built lazily for PointCount/X/Y
	pts []orb.Point
}

var _ geom.Geometry = (*G)(nil)
var _ geom.RingProvider = (*G)(nil)
var _ geom.PointMaker = (*G)(nil)
var _ geom.SharedAreaComputer = (*G)(nil)

// New wraps an orb geometry. The wrapper takes ownership of g.
func New(g orb.Geometry) *G {
	if g == nil {
		g = orb.Collection{}
	}
	return &G{g: g}
}

// Point returns a point geometry.
func Point(x, y float64) *G { return New(orb.Point{x, y}) }

// NewPoint implements geom.PointMaker.
func (t *G) NewPoint(x, y float64) geom.Geometry { return Point(x, y) }

// Line returns a line-string geometry from coordinate pairs.
func Line(coords ...[2]float64) *G {
	ls := make(orb.LineString, len(coords))
	for i, c := range coords {
		ls[i] = orb.Point{c[0], c[1]}
	}
	return New(ls)
}

// Polygon returns a polygon from an exterior ring and optional holes. Rings
// are closed automatically when the last vertex differs from the first.
func Polygon(exterior [][2]float64, holes ...[][2]float64) *G {
	poly := orb.Polygon{closedRing(exterior)}
	for _, h := range holes {
		poly = append(poly, closedRing(h))
	}
	return New(poly)
}

func closedRing(coords [][2]float64) orb.Ring {
	r := make(orb.Ring, len(coords))
	for i, c := range coords {
		r[i] = orb.Point{c[0], c[1]}
	}
	if len(r) > 0 && r[0] != r[len(r)-1] {
		r = append(r, r[0])
	}
	return r
}

// Orb returns the wrapped orb geometry.
func (t *G) Orb() orb.Geometry { return t.g }

// Type classifies the wrapped geometry.
func (t *G) Type() geom.Type {
	switch t.g.(type) {
	case orb.Point:
		return geom.TypePoint
	case orb.MultiPoint:
		return geom.TypeMultiPoint
	case orb.LineString:
		return geom.TypeLineString
	case orb.MultiLineString:
		return geom.TypeMultiLineString
	case orb.Ring, orb.Polygon, orb.Bound:
		return geom.TypePolygon
	case orb.MultiPolygon:
		return geom.TypeMultiPolygon
	case orb.Collection:
		return geom.TypeCollection
	default:
		return geom.TypeUnknown
	}
}

// Envelope returns the bounding box.
func (t *G) Envelope() geom.Envelope {
	b := t.g.Bound()
	return geom.Envelope{MinX: b.Min[0], MinY: b.Min[1], MaxX: b.Max[0], MaxY: b.Max[1]}
}

// Area returns the summed absolute area of the polygonal parts.
func (t *G) Area() float64 {
	var sum float64
	for _, p := range polyParts(t.g) {
		sum += math.Abs(planar.Area(p))
	}
	return sum
}

// Length returns the summed length of the linear parts.
func (t *G) Length() float64 {
	var sum float64
	for _, ls := range lineParts(t.g) {
		sum += planar.Length(ls)
	}
	return sum
}

func (t *G) flat() []orb.Point {
	if t.pts == nil {
		t.pts = flatten(t.g)
		if t.pts == nil {
			t.pts = []orb.Point{}
		}
	}
	return t.pts
}

// PointCount returns the number of vertices across all parts.
func (t *G) PointCount() int { return len(t.flat()) }

// X returns the x coordinate of vertex i.
func (t *G) X(i int) float64 { return t.flat()[i][0] }

// Y returns the y coordinate of vertex i.
func (t *G) Y(i int) float64 { return t.flat()[i][1] }

// Clone returns a deep copy owned by the caller.
func (t *G) Clone() geom.Geometry { return New(orb.Clone(t.g)) }

// Release is a no-op: orb geometries are garbage collected. The method
// exists so the engine's ownership discipline holds for kernels with manual
// lifetimes.
func (t *G) Release() {}

// MakeValid returns a copy; orb geometries built by this kernel are
// structurally valid.
func (t *G) MakeValid() (geom.Geometry, error) { return t.Clone(), nil }

// ExteriorRings returns one hole-free polygon per polygonal part.
func (t *G) ExteriorRings() []geom.Geometry {
	var out []geom.Geometry
	for _, p := range polyParts(t.g) {
		if len(p) == 0 {
			continue
		}
		out = append(out, New(orb.Polygon{p[0].Clone()}))
	}
	return out
}

// InteriorRings returns every hole as a standalone polygon.
func (t *G) InteriorRings() []geom.Geometry {
	var out []geom.Geometry
	for _, p := range polyParts(t.g) {
		for i := 1; i < len(p); i++ {
			out = append(out, New(orb.Polygon{p[i].Clone()}))
		}
	}
	return out
}

// flatten collects every vertex of g in order.
func flatten(g orb.Geometry) []orb.Point {
	switch v := g.(type) {
	case orb.Point:
		return []orb.Point{v}
	case orb.MultiPoint:
		return []orb.Point(v)
	case orb.LineString:
		return []orb.Point(v)
	case orb.MultiLineString:
		var out []orb.Point
		for _, ls := range v {
			out = append(out, ls...)
		}
		return out
	case orb.Ring:
		return []orb.Point(v)
	case orb.Polygon:
		var out []orb.Point
		for _, r := range v {
			out = append(out, r...)
		}
		return out
	case orb.MultiPolygon:
		var out []orb.Point
		for _, p := range v {
			out = append(out, flatten(p)...)
		}
		return out
	case orb.Collection:
		var out []orb.Point
		for _, c := range v {
			out = append(out, flatten(c)...)
		}
		return out
	case orb.Bound:
		return flatten(v.ToPolygon())
	default:
		return nil
	}
}

// polyParts decomposes g into plain polygons.
func polyParts(g orb.Geometry) []orb.Polygon {
	switch v := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{v}
	case orb.MultiPolygon:
		return []orb.Polygon(v)
	case orb.Ring:
		return []orb.Polygon{{v}}
	case orb.Bound:
		return []orb.Polygon{v.ToPolygon()}
	case orb.Collection:
		var out []orb.Polygon
		for _, c := range v {
			out = append(out, polyParts(c)...)
		}
		return out
	default:
		return nil
	}
}

// lineParts decomposes g into line strings. Rings count as closed lines only
// when they appear standalone, not as polygon boundaries.
func lineParts(g orb.Geometry) []orb.LineString {
	switch v := g.(type) {
	case orb.LineString:
		return []orb.LineString{v}
	case orb.MultiLineString:
		return []orb.LineString(v)
	case orb.Collection:
		var out []orb.LineString
		for _, c := range v {
			out = append(out, lineParts(c)...)
		}
		return out
	default:
		return nil
	}
}

// pointParts decomposes g into bare points.
func pointParts(g orb.Geometry) []orb.Point {
	switch v := g.(type) {
	case orb.Point:
		return []orb.Point{v}
	case orb.MultiPoint:
		return []orb.Point(v)
	case orb.Collection:
		var out []orb.Point
		for _, c := range v {
			out = append(out, pointParts(c)...)
		}
		return out
	default:
		return nil
	}
}
