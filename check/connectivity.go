package check

import (
	"context"
	"strings"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/filter"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/spatial"
)

// Connectivity error codes.
const (
	codeLineNotConnected = "LINE_NOT_CONNECTED"
	codeLineIsolated     = "LINE_ISOLATED"
)

func evalLineConnectivity(ctx context.Context, ec *Context) error {
	return connectivityScan(ctx, ec, false, false)
}

func evalLineDisconnection(ctx context.Context, ec *Context) error {
	return connectivityScan(ctx, ec, true, false)
}

func evalLineConnectivityByField(ctx context.Context, ec *Context) error {
	return connectivityScan(ctx, ec, false, true)
}

func evalLineDisconnectionByField(ctx context.Context, ec *Context) error {
	return connectivityScan(ctx, ec, true, true)
}

// partitionField returns the field the by-field connectivity variants
// partition on: the first field referenced by the rule filter, or the whole
// filter string when it is a bare identifier.
func (ec *Context) partitionField() string {
	s := strings.TrimSpace(ec.FieldFilter)
	if s == "" {
		return ""
	}
	if fs := filter.Fields(s); len(fs) > 0 {
		return fs[0]
	}
	return s
}

// connectivityScan builds the endpoint grid and segment bbox index over the
// main layer's lines and classifies every endpoint.
//
// An endpoint is connected when another segment's endpoint lies within
// tolerance. It is near-but-unconnected when some other segment's geometry
// (not just its endpoints) passes within tolerance: a genuine topological
// disconnection, reported by the connectivity variant. Endpoints near
// nothing are dangling ends (cul-de-sacs) and are not errors.
//
// The isolation variant instead reports whole segments with no connection
// and no nearby geometry at either end: features cut off from the network.
//
// With byField set, only segments sharing the partition field's value count
// as connection partners.
func connectivityScan(ctx context.Context, ec *Context, isolationMode, byField bool) error {
	layer := ec.mainLayer()
	if layer == nil {
		return nil
	}
	tol := ec.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance(model.CaseLineConnectivity)
	}

	var attrFields []string
	pfield := ""
	if byField {
		pfield = ec.partitionField()
		if pfield == "" {
			ec.Logger.Warn("partitioned connectivity rule has no partition field, skipping",
				"rule", ec.Rule.RuleID)
			return nil
		}
		if !layer.Schema().Has(pfield) {
			ec.Logger.Warn("partition field missing from layer, skipping rule",
				"rule", ec.Rule.RuleID, "field", pfield)
			return nil
		}
		attrFields = []string{pfield}
	}

	var pred func(geom.Feature) bool
	if !byField {
		h := filter.Apply(layer, ec.FieldFilter, ec.Logger)
		defer h.Release()
		pred = ec.featurePred()
	}

	segs, err := ec.buildSegments(ctx, layer, pred, attrFields)
	if err != nil {
		return err
	}
	defer releaseSegments(segs)

	grid := spatial.NewEndpointGrid(tol)
	segIdx := spatial.NewBBoxIndex()
	for _, s := range segs {
		grid.Insert(s.StartX, s.StartY, s.OID, true)
		grid.Insert(s.EndX, s.EndY, s.OID, false)
		segIdx.Insert(s.Geometry.Envelope(), s)
	}
	segIdx.Build()

	part := func(s *LineSegmentInfo) string {
		if !byField {
			return ""
		}
		if v, ok := s.Attrs[pfield]; ok {
			return strings.TrimSpace(strings.ToUpper(stringifyAttr(v)))
		}
		return ""
	}
	partByOID := make(map[int64]string, len(segs))
	for _, s := range segs {
		partByOID[s.OID] = part(s)
	}

	rep := newReporter(ec, len(segs))
	for i, s := range segs {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.step(i)

		anyConnected, anyNear := false, false
		for _, end := range [][2]float64{{s.StartX, s.StartY}, {s.EndX, s.EndY}} {
			connected := false
			for _, ep := range grid.QueryNearby(end[0], end[1], tol) {
				if ep.OID == s.OID {
					continue
				}
				if byField && partByOID[ep.OID] != part(s) {
					continue
				}
				connected = true
				break
			}

			near := false
			if !connected {
				env := geom.NewEnvelope(end[0], end[1], end[0], end[1]).Expand(tol)
				for _, payload := range segIdx.Query(env) {
					o := payload.(*LineSegmentInfo)
					if o.OID == s.OID {
						continue
					}
					if byField && part(o) != part(s) {
						continue
					}
					if d, ok := vertexDistance(s.Geometry, pt{end[0], end[1]}, o.Geometry); ok && d <= tol {
						near = true
						break
					}
				}
			}

			anyConnected = anyConnected || connected
			anyNear = anyNear || near

			if !isolationMode && !connected && near {
				e := ec.addError(codeLineNotConnected,
					"line endpoint lies on another line but is not snapped to an endpoint",
					s.OID, nil)
				e.X, e.Y = end[0], end[1]
			}
		}

		if isolationMode && !anyConnected && !anyNear && len(segs) > 1 {
			ec.addError(codeLineIsolated,
				"line is disconnected from the rest of the network", s.OID, s.Geometry)
		}
	}
	rep.done(len(segs))
	return nil
}
