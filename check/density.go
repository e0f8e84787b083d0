package check

import (
	"context"
	"fmt"
	"math"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/filter"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/spatial"
)

// Density error codes.
const (
	codePointsTooClose   = "POINTS_TOO_CLOSE"
	codeVerticesTooClose = "VERTICES_TOO_CLOSE"
)

// gridPoint is one point feature staged for a spacing scan.
type gridPoint struct {
	oid     int64
	x, y    float64
	surface string
}

// collectPoints stages the layer's point features for spacing checks.
func (ec *Context) collectPoints(ctx context.Context, layer geom.Layer, pred func(geom.Feature) bool) ([]gridPoint, error) {
	var pts []gridPoint
	_, err := ec.iterate(ctx, layer, func(f geom.Feature) error {
		if pred != nil && !pred(f) {
			return nil
		}
		g := f.Geometry()
		if g == nil || g.Type() != geom.TypePoint || g.PointCount() == 0 {
			return nil
		}
		pts = append(pts, gridPoint{oid: f.OID(), x: g.X(0), y: g.Y(0)})
		return nil
	})
	return pts, err
}

// evalPointSpacing reports pairs of main-layer points closer than the
// minimum spacing (the rule tolerance).
func evalPointSpacing(ctx context.Context, ec *Context) error {
	layer := ec.mainLayer()
	if layer == nil {
		return nil
	}
	minSpacing := ec.Tolerance
	if minSpacing <= 0 {
		minSpacing = DefaultTolerance(model.CasePointSpacing)
	}

	h := filter.Apply(layer, ec.FieldFilter, ec.Logger)
	defer h.Release()
	pts, err := ec.collectPoints(ctx, layer, ec.featurePred())
	if err != nil {
		return err
	}
	return ec.spacingScan(ctx, pts, func(a, b *gridPoint) float64 { return minSpacing }, minSpacing)
}

// evalPointSpacingBySurface applies surface-dependent minimum spacing:
// points on the sidewalk and roadway polygons use their configured spacing,
// everything else uses the flatland spacing. A pair on differing surfaces
// uses the smaller of the two minimums.
func evalPointSpacingBySurface(ctx context.Context, ec *Context) error {
	layer := ec.mainLayer()
	if layer == nil {
		return nil
	}
	sc := ec.Config.Surface

	h := filter.Apply(layer, ec.FieldFilter, ec.Logger)
	defer h.Release()
	pts, err := ec.collectPoints(ctx, layer, ec.featurePred())
	if err != nil {
		return err
	}

	sidewalk := ec.surfaceUnion(ctx, sc.SidewalkLayer)
	roadway := ec.surfaceUnion(ctx, sc.RoadwayLayer)
	spacingFor := func(surface string) float64 {
		switch surface {
		case "sidewalk":
			return sc.SidewalkSpacing
		case "roadway":
			return sc.RoadwaySpacing
		default:
			return sc.FlatlandSpacing
		}
	}
	for i := range pts {
		pts[i].surface = classifySurface(&pts[i], layer, sidewalk, roadway)
	}

	// The grid cell must cover the widest minimum so no candidate pair
	// falls outside the neighborhood query.
	maxSpacing := math.Max(sc.FlatlandSpacing, math.Max(sc.SidewalkSpacing, sc.RoadwaySpacing))
	return ec.spacingScan(ctx, pts, func(a, b *gridPoint) float64 {
		return math.Min(spacingFor(a.surface), spacingFor(b.surface))
	}, maxSpacing)
}

// surfaceUnion resolves a surface layer's cached union; nil when the layer
// is not configured or has no polygons.
func (ec *Context) surfaceUnion(ctx context.Context, name string) geom.Geometry {
	if name == "" {
		return nil
	}
	layer := ec.Layer(name)
	if layer == nil {
		ec.Logger.Warn("surface layer not found", "rule", ec.Rule.RuleID, "layer", name)
		return nil
	}
	u, err := ec.Caches.Union(ctx, layer, name, "", nil)
	if err != nil {
		ec.Logger.Warn("surface union unavailable", "rule", ec.Rule.RuleID, "layer", name, "error", err)
		return nil
	}
	return u
}

func classifySurface(p *gridPoint, layer geom.Layer, sidewalk, roadway geom.Geometry) string {
	pm, ok := anyPointMaker(layer)
	if !ok {
		return "flatland"
	}
	pt := pm.NewPoint(p.x, p.y)
	defer pt.Release()
	if sidewalk != nil {
		if in, err := sidewalk.Contains(pt); err == nil && in {
			return "sidewalk"
		}
	}
	if roadway != nil {
		if in, err := roadway.Contains(pt); err == nil && in {
			return "roadway"
		}
	}
	return "flatland"
}

// anyPointMaker finds a kernel point factory from the layer's features.
func anyPointMaker(layer geom.Layer) (geom.PointMaker, bool) {
	layer.ResetReading()
	defer layer.ResetReading()
	for f := layer.NextFeature(); f != nil; f = layer.NextFeature() {
		if g := f.Geometry(); g != nil {
			if pm, ok := g.(geom.PointMaker); ok {
				return pm, true
			}
		}
	}
	return nil, false
}

// spacingScan reports each unordered pair of points closer than the pair's
// minimum spacing. cellSize sizes the neighborhood grid and must be at
// least the largest minimum any pair can use.
func (ec *Context) spacingScan(ctx context.Context, pts []gridPoint, minFor func(a, b *gridPoint) float64, cellSize float64) error {
	if cellSize <= 0 {
		ec.Logger.Warn("non-positive spacing, skipping rule", "rule", ec.Rule.RuleID)
		return nil
	}
	grid := spatial.NewEndpointGrid(cellSize)
	byOID := make(map[int64]*gridPoint, len(pts))
	for i := range pts {
		grid.Insert(pts[i].x, pts[i].y, pts[i].oid, true)
		byOID[pts[i].oid] = &pts[i]
	}

	rep := newReporter(ec, len(pts))
	for i := range pts {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.step(i)
		cur := &pts[i]
		for _, ep := range grid.QueryNearby(cur.x, cur.y, cellSize) {
			if ep.OID <= cur.oid {
				continue
			}
			other := byOID[ep.OID]
			if other == nil {
				continue
			}
			min := minFor(cur, other)
			d := math.Hypot(other.x-cur.x, other.y-cur.y)
			if d >= min {
				continue
			}
			e := ec.addError(codePointsTooClose,
				fmt.Sprintf("points %.2f apart, minimum spacing %.2f", d, min), cur.oid, nil)
			e.X, e.Y = cur.x, cur.y
			e.SetMeta("OtherFeatureId", other.oid)
			e.SetMeta("Distance", d)
		}
	}
	rep.done(len(pts))
	return nil
}

// evalVertexSpacing reports features carrying consecutive vertices closer
// than the minimum spacing. One report per feature, at the first offending
// vertex.
func evalVertexSpacing(ctx context.Context, ec *Context) error {
	layer := ec.mainLayer()
	if layer == nil {
		return nil
	}
	minSpacing := ec.Tolerance
	if minSpacing <= 0 {
		minSpacing = DefaultTolerance(model.CaseVertexSpacing)
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
		if g == nil || g.Type() == geom.TypePoint || g.Type() == geom.TypeMultiPoint {
			return nil
		}
		for _, vs := range vertexRuns(g) {
			if v, d, found := closeVertexPair(vs, minSpacing); found {
				e := ec.addError(codeVerticesTooClose,
					fmt.Sprintf("consecutive vertices %.4f apart, minimum spacing %.4f", d, minSpacing),
					f.OID(), nil)
				e.X, e.Y = v.x, v.y
				return nil
			}
		}
		return nil
	})
	rep.done(processed)
	return err
}

// vertexRuns splits a geometry into runs of genuinely consecutive
// vertices. Polygonal geometries yield one run per ring so ring boundaries
// never pair up; everything else uses the flat vertex sequence.
func vertexRuns(g geom.Geometry) [][]pt {
	rp, ok := g.(geom.RingProvider)
	if !ok || !g.Type().IsPolygonal() {
		return [][]pt{vertices(g)}
	}
	var runs [][]pt
	rings := append(rp.ExteriorRings(), rp.InteriorRings()...)
	for _, ring := range rings {
		runs = append(runs, vertices(ring))
		ring.Release()
	}
	return runs
}

// closeVertexPair returns the first vertex closer than minSpacing to its
// predecessor.
func closeVertexPair(vs []pt, minSpacing float64) (pt, float64, bool) {
	for i := 1; i < len(vs); i++ {
		d := math.Hypot(vs[i].x-vs[i-1].x, vs[i].y-vs[i-1].y)
		if d < minSpacing {
			return vs[i], d, true
		}
	}
	return pt{}, 0, false
}
