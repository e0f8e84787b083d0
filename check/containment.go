package check

import (
	"context"
	"fmt"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/filter"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/internal/geocache"
)

// Containment error codes.
const (
	codePointNotCovered   = "POINT_NOT_COVERED"
	codePolygonNotMatched = "POLYGON_WITHOUT_POINT"
	codePointOutside      = "POINT_OUTSIDE_POLYGON"
	codeLineOutside       = "LINE_OUTSIDE_POLYGON"
	codePolygonOutside    = "POLYGON_OUTSIDE_POLYGON"
	codeVertexMisaligned  = "VERTEX_NOT_ALIGNED"
)

// evalPointCoverage checks point-in-polygon completeness in both
// directions. The naive polygons-then-points scan is inverted: points are
// iterated once and candidate polygons come from the bbox index, turning
// O(P*G) into per-point index queries. Polygons never matched by any point
// and points matching no polygon are both reported.
func evalPointCoverage(ctx context.Context, ec *Context) error {
	points := ec.mainLayer()
	polygons := ec.relatedLayer()
	if points == nil || polygons == nil {
		return nil
	}

	idx, err := ec.Caches.PolygonIndex(ctx, polygons, ec.Rule.RelatedTableID, "", nil)
	if err != nil {
		return ec.cacheUnavailable(ctx, err, "polygon index")
	}

	h := filter.Apply(points, ec.FieldFilter, ec.Logger)
	defer h.Release()
	pred := ec.featurePred()

	rep := newReporter(ec, points.FeatureCount())
	matched := make(map[int64]struct{}, idx.FeatureCount)
	processed := 0

	_, err = ec.iterate(ctx, points, func(f geom.Feature) error {
		processed++
		rep.step(processed)
		if pred != nil && !pred(f) {
			return nil
		}
		g := f.Geometry()
		if g == nil {
			return nil
		}
		env := g.Envelope().Expand(ec.Tolerance)
		hits := 0
		for _, payload := range idx.Index.Query(env) {
			cand := payload.(geocache.IndexedFeature)
			inside, cerr := cand.Geometry.Contains(g)
			if cerr != nil {
				ec.Logger.Warn("containment test failed",
					"feature", f.OID(), "polygon", cand.OID, "error", cerr)
				continue
			}
			if !inside && ec.Tolerance > 0 {
				if d, derr := cand.Geometry.Distance(g); derr == nil && d <= ec.Tolerance {
					inside = true
				}
			}
			if inside {
				hits++
				matched[cand.OID] = struct{}{}
			}
		}
		if hits == 0 {
			ec.addError(codePointNotCovered,
				"point is not covered by any polygon", f.OID(), g)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, cand := range idx.Features {
		if _, ok := matched[cand.OID]; ok {
			continue
		}
		ec.addRelatedError(codePolygonNotMatched,
			"polygon contains no point feature", cand.OID, cand.Geometry)
	}
	rep.done(processed)
	return nil
}

// evalPointWithinPolygon requires every main point to fall inside the union
// of the related polygons, with a distance grace of tolerance.
func evalPointWithinPolygon(ctx context.Context, ec *Context) error {
	points := ec.mainLayer()
	polygons := ec.relatedLayer()
	if points == nil || polygons == nil {
		return nil
	}
	union, err := ec.Caches.Union(ctx, polygons, ec.Rule.RelatedTableID, "", nil)
	if err != nil {
		return ec.cacheUnavailable(ctx, err, "union")
	}

	h := filter.Apply(points, ec.FieldFilter, ec.Logger)
	defer h.Release()
	pred := ec.featurePred()
	rep := newReporter(ec, points.FeatureCount())
	processed := 0

	_, err = ec.iterate(ctx, points, func(f geom.Feature) error {
		processed++
		rep.step(processed)
		if pred != nil && !pred(f) {
			return nil
		}
		g := f.Geometry()
		if g == nil {
			return nil
		}
		inside, cerr := union.Contains(g)
		if cerr != nil {
			ec.Logger.Warn("containment test failed", "feature", f.OID(), "error", cerr)
			return nil
		}
		if !inside && ec.Tolerance > 0 {
			if d, derr := union.Distance(g); derr == nil && d <= ec.Tolerance {
				inside = true
			}
		}
		if !inside {
			ec.addError(codePointOutside, "point lies outside the boundary polygons", f.OID(), g)
		}
		return nil
	})
	rep.done(processed)
	return err
}

// evalLineWithinPolygon is the tolerant boundary containment check: the
// line's residual outside the boundary union is an error only when both
// absorb conditions fail — the residual length exceeds tolerance AND some
// vertex sits farther than tolerance from the boundary outline. The
// two-stage test absorbs digitization snap noise without masking genuine
// excursions.
func evalLineWithinPolygon(ctx context.Context, ec *Context) error {
	lines := ec.mainLayer()
	polygons := ec.relatedLayer()
	if lines == nil || polygons == nil {
		return nil
	}
	union, err := ec.Caches.Union(ctx, polygons, ec.Rule.RelatedTableID, "", nil)
	if err != nil {
		return ec.cacheUnavailable(ctx, err, "union")
	}
	outline, err := union.Boundary()
	if err != nil {
		ec.Logger.Warn("boundary extraction failed, skipping rule", "rule", ec.Rule.RuleID, "error", err)
		return nil
	}
	defer outline.Release()

	h := filter.Apply(lines, ec.FieldFilter, ec.Logger)
	defer h.Release()
	pred := ec.featurePred()
	rep := newReporter(ec, lines.FeatureCount())
	processed := 0

	_, err = ec.iterate(ctx, lines, func(f geom.Feature) error {
		processed++
		rep.step(processed)
		if pred != nil && !pred(f) {
			return nil
		}
		g := f.Geometry()
		if g == nil || !g.Type().IsLinear() {
			return nil
		}
		diff, derr := g.Difference(union)
		if derr != nil {
			ec.Logger.Warn("difference failed", "feature", f.OID(), "error", derr)
			return nil
		}
		residual := diff.Length()
		diff.Release()
		if residual <= 0 {
			return nil
		}
		if residual <= ec.Tolerance {
			return nil
		}
		if maxVertexDistance(g, outline) <= ec.Tolerance {
			return nil
		}
		ec.addError(codeLineOutside,
			fmt.Sprintf("line leaves the boundary polygons by %.3f", residual), f.OID(), g)
		return nil
	})
	rep.done(processed)
	return err
}

// maxVertexDistance returns the largest distance from any vertex of g to
// target. Vertices whose distance cannot be computed are ignored.
func maxVertexDistance(g, target geom.Geometry) float64 {
	var max float64
	for _, v := range vertices(g) {
		d, ok := vertexDistance(g, v, target)
		if !ok {
			continue
		}
		if d > max {
			max = d
		}
	}
	return max
}

// vertexDistance measures the distance from one vertex to target, minting a
// point through the sibling geometry's kernel.
func vertexDistance(sibling geom.Geometry, v pt, target geom.Geometry) (float64, bool) {
	pm, ok := sibling.(geom.PointMaker)
	if !ok {
		return 0, false
	}
	p := pm.NewPoint(v.x, v.y)
	d, err := p.Distance(target)
	p.Release()
	if err != nil {
		return 0, false
	}
	return d, true
}

// evalPolygonWithinPolygon requires each main polygon to lie within the
// related union; the residual area may fall under the absolute tolerance or
// under the percentage-tolerance fraction of the feature's own area.
func evalPolygonWithinPolygon(ctx context.Context, ec *Context) error {
	return polygonContainmentScan(ctx, ec, false)
}

// evalPolygonContainsLine requires each related line to lie within the
// union of the main polygons, with the same absolute/percentage residual
// absorption applied to length.
func evalPolygonContainsLine(ctx context.Context, ec *Context) error {
	return polygonContainmentScan(ctx, ec, true)
}

func polygonContainmentScan(ctx context.Context, ec *Context, lineMode bool) error {
	var scanned, coverSource geom.Layer
	var coverID string
	if lineMode {
		// Cover comes from the main polygons; the related lines are scanned.
		coverSource = ec.mainLayer()
		scanned = ec.relatedLayer()
		coverID = ec.Rule.MainTableID
	} else {
		scanned = ec.mainLayer()
		coverSource = ec.relatedLayer()
		coverID = ec.Rule.RelatedTableID
	}
	if scanned == nil || coverSource == nil {
		return nil
	}
	union, err := ec.Caches.Union(ctx, coverSource, coverID, "", nil)
	if err != nil {
		return ec.cacheUnavailable(ctx, err, "union")
	}

	h := filter.Apply(scanned, ec.FieldFilter, ec.Logger)
	defer h.Release()
	pred := ec.featurePred()
	rep := newReporter(ec, scanned.FeatureCount())
	processed := 0

	_, err = ec.iterate(ctx, scanned, func(f geom.Feature) error {
		processed++
		rep.step(processed)
		if pred != nil && !pred(f) {
			return nil
		}
		g := f.Geometry()
		if g == nil {
			return nil
		}
		within, werr := g.Within(union)
		if werr == nil && within {
			return nil
		}
		diff, derr := g.Difference(union)
		if derr != nil {
			ec.Logger.Warn("difference failed", "feature", f.OID(), "error", derr)
			return nil
		}
		defer diff.Release()

		if lineMode {
			residual := diff.Length()
			if residual <= ec.Tolerance || residual <= ec.Config.PercentTolerance*g.Length() {
				return nil
			}
			ec.addRelatedError(codeLineOutside,
				fmt.Sprintf("line extends %.3f beyond the covering polygons", residual), f.OID(), g)
			return nil
		}
		residual := diff.Area()
		if residual <= ec.Tolerance || residual <= ec.Config.PercentTolerance*g.Area() {
			return nil
		}
		ec.addError(codePolygonOutside,
			fmt.Sprintf("polygon extends %.3f beyond the boundary polygons", residual), f.OID(), g)
		return nil
	})
	rep.done(processed)
	return err
}

// evalVertexAlignment requires every exterior-ring vertex of a main polygon
// to sit within tolerance of the related boundary outline. Polygons whose
// boundary never touches the outline (zero-length intersection) have no
// assigned adjacency; the rule does not apply to them and they pass
// unconditionally.
func evalVertexAlignment(ctx context.Context, ec *Context) error {
	polygons := ec.mainLayer()
	boundaries := ec.relatedLayer()
	if polygons == nil || boundaries == nil {
		return nil
	}
	union, err := ec.Caches.Union(ctx, boundaries, ec.Rule.RelatedTableID, "", nil)
	if err != nil {
		return ec.cacheUnavailable(ctx, err, "union")
	}
	outline, err := union.Boundary()
	if err != nil {
		ec.Logger.Warn("boundary extraction failed, skipping rule", "rule", ec.Rule.RuleID, "error", err)
		return nil
	}
	defer outline.Release()

	h := filter.Apply(polygons, ec.FieldFilter, ec.Logger)
	defer h.Release()
	pred := ec.featurePred()
	rep := newReporter(ec, polygons.FeatureCount())
	processed := 0

	_, err = ec.iterate(ctx, polygons, func(f geom.Feature) error {
		processed++
		rep.step(processed)
		if pred != nil && !pred(f) {
			return nil
		}
		g := f.Geometry()
		if g == nil || !g.Type().IsPolygonal() {
			return nil
		}
		bnd, berr := g.Boundary()
		if berr != nil {
			ec.Logger.Warn("boundary failed", "feature", f.OID(), "error", berr)
			return nil
		}
		inter, ierr := bnd.Intersection(outline)
		bnd.Release()
		if ierr != nil {
			ec.Logger.Warn("intersection failed", "feature", f.OID(), "error", ierr)
			return nil
		}
		shared := inter.Length()
		inter.Release()
		if shared <= 0 {
			// No assigned adjacency; not applicable.
			return nil
		}

		rings, ok := g.(geom.RingProvider)
		if !ok {
			ec.Logger.Warn("kernel does not expose rings, skipping feature", "feature", f.OID())
			return nil
		}
		for _, ring := range rings.ExteriorRings() {
			misaligned := false
			for _, v := range vertices(ring) {
				d, ok := vertexDistance(g, v, outline)
				if !ok {
					continue
				}
				if d > ec.Tolerance {
					ec.addError(codeVertexMisaligned,
						fmt.Sprintf("boundary vertex is %.3f from the target outline", d), f.OID(), g)
					misaligned = true
					break
				}
			}
			ring.Release()
			if misaligned {
				break
			}
		}
		return nil
	})
	rep.done(processed)
	return err
}
