package check

import (
	"context"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
)

// LineSegmentInfo is one line feature prepared for connectivity work: an
// owned geometry clone plus its first and last vertex. Built once per
// evaluator pass and released when the pass completes.
type LineSegmentInfo struct {
	OID      int64
	Geometry geom.Geometry
	StartX   float64
	StartY   float64
	EndX     float64
	EndY     float64
	// Attrs carries the attribute values requested at build time, for the
	// consistency checks.
	Attrs map[string]any
}

// buildSegments extracts every line feature of the layer passing pred into
// segment infos, cloning geometries and capturing attrFields. The caller
// owns the result and must release it via releaseSegments.
func (ec *Context) buildSegments(ctx context.Context, layer geom.Layer, pred func(geom.Feature) bool, attrFields []string) ([]*LineSegmentInfo, error) {
	var segs []*LineSegmentInfo
	_, err := ec.iterate(ctx, layer, func(f geom.Feature) error {
		if pred != nil && !pred(f) {
			return nil
		}
		g := f.Geometry()
		if g == nil || !g.Type().IsLinear() || g.PointCount() < 2 {
			return nil
		}
		clone := g.Clone()
		n := clone.PointCount()
		info := &LineSegmentInfo{
			OID:      f.OID(),
			Geometry: clone,
			StartX:   clone.X(0),
			StartY:   clone.Y(0),
			EndX:     clone.X(n - 1),
			EndY:     clone.Y(n - 1),
		}
		if len(attrFields) > 0 {
			info.Attrs = make(map[string]any, len(attrFields))
			for _, name := range attrFields {
				if v, ok := f.Attr(name); ok {
					info.Attrs[name] = v
				}
			}
		}
		segs = append(segs, info)
		return nil
	})
	if err != nil {
		releaseSegments(segs)
		return nil, err
	}
	return segs, nil
}

// releaseSegments releases every owned geometry clone exactly once.
func releaseSegments(segs []*LineSegmentInfo) {
	for _, s := range segs {
		if s.Geometry != nil {
			s.Geometry.Release()
			s.Geometry = nil
		}
	}
}
