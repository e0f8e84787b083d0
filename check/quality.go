package check

import (
	"context"
	"fmt"
	"math"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/filter"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/internal/geocache"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
)

// Quality error codes.
const (
	codeSharpBend     = "SHARP_BEND"
	codeSelfIntersect = "LINE_SELF_INTERSECTION"
	codeLineCross     = "LINE_CROSSES_LINE"
	codeDuplicateGeom = "DUPLICATE_GEOMETRY"
)

// evalSharpBend flags interior vertices whose bend angle falls below the
// minimum (the rule tolerance, in degrees). Each feature reports at most
// the first violation so noisy digitization cannot flood the result.
func evalSharpBend(ctx context.Context, ec *Context) error {
	layer := ec.mainLayer()
	if layer == nil {
		return nil
	}
	minAngle := ec.Tolerance
	if minAngle <= 0 {
		minAngle = DefaultTolerance(model.CaseSharpBend)
	}

	h := filter.Apply(layer, ec.FieldFilter, ec.Logger)
	defer h.Release()
	pred := ec.featurePred()
	rep := newReporter(ec, layer.FeatureCount())
	processed := 0

	_, err := ec.iterate(ctx, layer, func(f geom.Feature) error {
		processed++
		rep.step(processed)
		if pred != nil && !pred(f) {
			return nil
		}
		g := f.Geometry()
		if g == nil || !g.Type().IsLinear() {
			return nil
		}
		vs := vertices(g)
		for i := 1; i < len(vs)-1; i++ {
			deg, ok := bendAngleDeg(vs[i-1].x, vs[i-1].y, vs[i].x, vs[i].y, vs[i+1].x, vs[i+1].y)
			if !ok {
				// Degenerate edge shorter than the numeric epsilon.
				continue
			}
			if deg < minAngle {
				e := ec.addError(codeSharpBend,
					fmt.Sprintf("sharp bend of %.1f deg (minimum %.1f deg)", deg, minAngle), f.OID(), nil)
				e.X, e.Y = vs[i].x, vs[i].y
				break
			}
		}
		return nil
	})
	rep.done(processed)
	return err
}

// evalSelfIntersection reports lines crossing themselves. Adjacent segments
// share a vertex and are skipped; only proper interior crossings count.
func evalSelfIntersection(ctx context.Context, ec *Context) error {
	layer := ec.mainLayer()
	if layer == nil {
		return nil
	}
	h := filter.Apply(layer, ec.FieldFilter, ec.Logger)
	defer h.Release()
	pred := ec.featurePred()
	rep := newReporter(ec, layer.FeatureCount())
	processed := 0

	_, err := ec.iterate(ctx, layer, func(f geom.Feature) error {
		processed++
		rep.step(processed)
		if pred != nil && !pred(f) {
			return nil
		}
		g := f.Geometry()
		if g == nil || !g.Type().IsLinear() {
			return nil
		}
		vs := vertices(g)
		for i := 1; i < len(vs); i++ {
			for j := i + 2; j < len(vs); j++ {
				if segsProperCross(vs[i-1], vs[i], vs[j-1], vs[j]) {
					e := ec.addError(codeSelfIntersect, "line intersects itself", f.OID(), g)
					e.X, e.Y = vs[i].x, vs[i].y
					return nil
				}
			}
		}
		return nil
	})
	rep.done(processed)
	return err
}

// evalLineCrossLine reports main-layer lines properly crossing
// related-layer lines. Shared endpoints and touches are legal junctions and
// do not count.
func evalLineCrossLine(ctx context.Context, ec *Context) error {
	main := ec.mainLayer()
	related := ec.relatedLayer()
	if main == nil || related == nil {
		return nil
	}
	idx, err := ec.Caches.PolygonIndex(ctx, related, ec.Rule.RelatedTableID, "", nil)
	if err != nil {
		return ec.cacheUnavailable(ctx, err, "line index")
	}

	h := filter.Apply(main, ec.FieldFilter, ec.Logger)
	defer h.Release()
	pred := ec.featurePred()
	rep := newReporter(ec, main.FeatureCount())
	processed := 0

	_, err = ec.iterate(ctx, main, func(f geom.Feature) error {
		processed++
		rep.step(processed)
		if pred != nil && !pred(f) {
			return nil
		}
		g := f.Geometry()
		if g == nil || !g.Type().IsLinear() {
			return nil
		}
		vs := vertices(g)
		for _, payload := range idx.Index.Query(g.Envelope()) {
			other := payload.(geocache.IndexedFeature)
			ovs := vertices(other.Geometry)
			if crossAt, ok := firstProperCross(vs, ovs); ok {
				e := ec.addError(codeLineCross,
					fmt.Sprintf("line crosses line feature %d", other.OID), f.OID(), nil)
				e.X, e.Y = crossAt.x, crossAt.y
				e.SetMeta("OtherFeatureId", other.OID)
			}
		}
		return nil
	})
	rep.done(processed)
	return err
}

// firstProperCross returns the first interior crossing between two vertex
// chains.
func firstProperCross(a, b []pt) (pt, bool) {
	for i := 1; i < len(a); i++ {
		for j := 1; j < len(b); j++ {
			if segsProperCross(a[i-1], a[i], b[j-1], b[j]) {
				// Midpoint of the crossing segment locates the error well
				// enough for review.
				return pt{(a[i-1].x + a[i].x) / 2, (a[i-1].y + a[i].y) / 2}, true
			}
		}
	}
	return pt{}, false
}

// evalDuplicateGeometry reports main-layer features whose geometry
// duplicates another feature's: matching envelopes within tolerance, equal
// vertex counts, area difference within tolerance squared and every vertex
// within tolerance of its counterpart.
func evalDuplicateGeometry(ctx context.Context, ec *Context) error {
	layer := ec.mainLayer()
	if layer == nil {
		return nil
	}
	idx, err := ec.Caches.PolygonIndex(ctx, layer, ec.Rule.MainTableID, ec.FieldFilter, ec.featurePred())
	if err != nil {
		return ec.cacheUnavailable(ctx, err, "index")
	}

	rep := newReporter(ec, idx.FeatureCount)
	for i, cur := range idx.Features {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.step(i)
		env := cur.Geometry.Envelope().Expand(ec.Tolerance)
		for _, payload := range idx.Index.Query(env) {
			cand := payload.(geocache.IndexedFeature)
			if cand.OID <= cur.OID {
				continue
			}
			if !geometriesNearEqual(cur.Geometry, cand.Geometry, ec.Tolerance) {
				continue
			}
			e := ec.addError(codeDuplicateGeom,
				fmt.Sprintf("geometry duplicates feature %d", cand.OID), cur.OID, cur.Geometry)
			e.SetMeta("OtherFeatureId", cand.OID)
		}
	}
	rep.done(idx.FeatureCount)
	return nil
}

// geometriesNearEqual compares two geometries vertex by vertex.
func geometriesNearEqual(a, b geom.Geometry, tol float64) bool {
	if a.PointCount() != b.PointCount() {
		return false
	}
	if math.Abs(a.Area()-b.Area()) > tol*tol {
		return false
	}
	n := a.PointCount()
	for i := 0; i < n; i++ {
		if math.Hypot(a.X(i)-b.X(i), a.Y(i)-b.Y(i)) > tol {
			return false
		}
	}
	return true
}
