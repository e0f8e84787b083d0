package check

import (
	"context"
	"fmt"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/filter"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/internal/geocache"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
)

// Exclusion error codes.
const (
	codePolygonOverlap     = "POLYGON_OVERLAP"
	codePolygonCrossesLine = "POLYGON_INTERSECTS_LINE"
	codePolygonContainsPt  = "POLYGON_CONTAINS_POINT"
)

// evalPolygonNotOverlap reports pairs of main-layer polygons whose
// interiors overlap. Candidate pairs come from the bbox index; each
// unordered pair is tested once.
func evalPolygonNotOverlap(ctx context.Context, ec *Context) error {
	polygons := ec.mainLayer()
	if polygons == nil {
		return nil
	}
	idx, err := ec.Caches.PolygonIndex(ctx, polygons, ec.Rule.MainTableID, ec.FieldFilter, ec.featurePred())
	if err != nil {
		return ec.cacheUnavailable(ctx, err, "polygon index")
	}

	rep := newReporter(ec, idx.FeatureCount)
	for i, cur := range idx.Features {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.step(i)
		for _, payload := range idx.Index.Query(cur.Geometry.Envelope()) {
			cand := payload.(geocache.IndexedFeature)
			if cand.OID <= cur.OID {
				continue
			}
			ec.reportOverlap(cur, cand, false)
		}
	}
	rep.done(idx.FeatureCount)
	return nil
}

// evalPolygonNotOverlapRelated reports main-layer polygons overlapping
// related-layer polygons.
func evalPolygonNotOverlapRelated(ctx context.Context, ec *Context) error {
	polygons := ec.mainLayer()
	related := ec.relatedLayer()
	if polygons == nil || related == nil {
		return nil
	}
	idx, err := ec.Caches.PolygonIndex(ctx, related, ec.Rule.RelatedTableID, "", nil)
	if err != nil {
		return ec.cacheUnavailable(ctx, err, "polygon index")
	}

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
		cur := geocache.IndexedFeature{OID: f.OID(), Geometry: g}
		for _, payload := range idx.Index.Query(g.Envelope()) {
			ec.reportOverlap(cur, payload.(geocache.IndexedFeature), true)
		}
		return nil
	})
	rep.done(processed)
	return err
}

// reportOverlap tests one polygon pair and reports it when interior area is
// shared. The rule is about shared area, not the strict DE-9IM overlap
// relation, so full containment of one polygon by the other is flagged too.
// With a positive tolerance the shared area decides; when the kernel cannot
// measure it, the predicates alone stand.
func (ec *Context) reportOverlap(cur, cand geocache.IndexedFeature, related bool) {
	over, err := cur.Geometry.Overlaps(cand.Geometry)
	if err != nil {
		ec.Logger.Warn("overlap test failed", "feature", cur.OID, "other", cand.OID, "error", err)
		return
	}
	if !over && !pairContained(cur.Geometry, cand.Geometry) {
		return
	}
	if ec.Tolerance > 0 {
		if area, ok := sharedArea(cur.Geometry, cand.Geometry); ok && area <= ec.Tolerance {
			return
		}
	}
	e := ec.addError(codePolygonOverlap,
		fmt.Sprintf("polygon overlaps feature %d", cand.OID), cur.OID, cur.Geometry)
	if related {
		e.SetMeta(model.MetadataRelatedTableID, ec.Rule.RelatedTableID)
		e.SetMeta(model.MetadataRelatedTableName, ec.Rule.RelatedTableName)
	}
	e.SetMeta("OtherFeatureId", cand.OID)
}

// pairContained reports whether either polygon fully contains the other.
func pairContained(a, b geom.Geometry) bool {
	if c, err := a.Contains(b); err == nil && c {
		return true
	}
	if w, err := a.Within(b); err == nil && w {
		return true
	}
	return false
}

// sharedArea measures the overlap area through the kernel's shared-area
// capability, falling back to constructing the intersection.
func sharedArea(a, b geom.Geometry) (float64, bool) {
	if sc, ok := a.(geom.SharedAreaComputer); ok {
		if area, err := sc.SharedArea(b); err == nil {
			return area, true
		}
	}
	if inter, err := a.Intersection(b); err == nil {
		area := inter.Area()
		inter.Release()
		return area, true
	}
	return 0, false
}

// evalPolygonNotIntersectLine reports main-layer polygons crossed by
// related-layer lines. A positive tolerance allows incursions whose length
// inside the polygon stays within it.
func evalPolygonNotIntersectLine(ctx context.Context, ec *Context) error {
	polygons := ec.mainLayer()
	lines := ec.relatedLayer()
	if polygons == nil || lines == nil {
		return nil
	}
	idx, err := ec.Caches.PolygonIndex(ctx, lines, ec.Rule.RelatedTableID, "", nil)
	if err != nil {
		return ec.cacheUnavailable(ctx, err, "line index")
	}

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
		for _, payload := range idx.Index.Query(g.Envelope()) {
			line := payload.(geocache.IndexedFeature)
			hit, herr := g.Intersects(line.Geometry)
			if herr != nil {
				ec.Logger.Warn("intersect test failed", "feature", f.OID(), "line", line.OID, "error", herr)
				continue
			}
			if !hit {
				continue
			}
			if ec.Tolerance > 0 {
				if inter, ierr := line.Geometry.Intersection(g); ierr == nil {
					inside := inter.Length()
					inter.Release()
					if inside <= ec.Tolerance {
						continue
					}
				}
			}
			e := ec.addError(codePolygonCrossesLine,
				fmt.Sprintf("polygon intersects line feature %d", line.OID), f.OID(), g)
			e.SetMeta("OtherFeatureId", line.OID)
		}
		return nil
	})
	rep.done(processed)
	return err
}

// evalPolygonNotContainPoint reports main-layer polygons containing
// related-layer points.
func evalPolygonNotContainPoint(ctx context.Context, ec *Context) error {
	polygons := ec.mainLayer()
	points := ec.relatedLayer()
	if polygons == nil || points == nil {
		return nil
	}
	idx, err := ec.Caches.PolygonIndex(ctx, points, ec.Rule.RelatedTableID, "", nil)
	if err != nil {
		return ec.cacheUnavailable(ctx, err, "point index")
	}

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
		for _, payload := range idx.Index.Query(g.Envelope()) {
			ptFeat := payload.(geocache.IndexedFeature)
			inside, cerr := g.Contains(ptFeat.Geometry)
			if cerr != nil {
				ec.Logger.Warn("containment test failed", "feature", f.OID(), "point", ptFeat.OID, "error", cerr)
				continue
			}
			if inside {
				e := ec.addError(codePolygonContainsPt,
					fmt.Sprintf("polygon contains forbidden point feature %d", ptFeat.OID), f.OID(), g)
				e.SetMeta("OtherFeatureId", ptFeat.OID)
			}
		}
		return nil
	})
	rep.done(processed)
	return err
}
