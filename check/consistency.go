package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/spatial"
)

// Consistency error codes.
const (
	codeFieldMismatch      = "CONNECTED_FIELD_MISMATCH"
	codeCenterlineMismatch = "CENTERLINE_FIELD_MISMATCH"
)

// compareFields resolves the attribute fields a consistency rule compares:
// the rule filter as a pipe/comma separated name list, restricted to the
// schema. An empty filter compares every schema field.
func compareFields(fieldFilter string, schema geom.Schema) []string {
	raw := strings.FieldsFunc(fieldFilter, func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})
	var out []string
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name != "" && schema.Has(name) {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		out = schema.Names()
	}
	return out
}

// junctionExempt applies the two intersection heuristics: a junction where
// meetingCount segments meet is a legitimate intersection once the count
// reaches the configured threshold, and a connected pair whose direction
// change at the junction exceeds the angle threshold is a crossing rather
// than a continuation. True topological intersections are geometrically
// indistinguishable from collinear segments sharing an endpoint without one
// of these signals.
func (ec *Context) junctionExempt(meetingCount int, s, o *LineSegmentInfo, jx, jy, tol float64) bool {
	if meetingCount >= ec.Config.IntersectionThreshold {
		return true
	}
	ax, ay, okA := awayVector(s, jx, jy, tol)
	bx, by, okB := awayVector(o, jx, jy, tol)
	if !okA || !okB {
		return false
	}
	change, ok := directionChangeDeg(ax, ay, bx, by)
	return ok && change > ec.Config.AngleThresholdDeg
}

// evalConnectedFieldConsistency compares attributes across segments that
// continue one another: pairs meeting at a shared endpoint within tolerance
// that pass neither junction exemption must agree on every compared field.
func evalConnectedFieldConsistency(ctx context.Context, ec *Context) error {
	layer := ec.mainLayer()
	if layer == nil {
		return nil
	}
	tol := ec.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance(model.CaseConnectedFieldConsistency)
	}
	fields := compareFields(ec.FieldFilter, layer.Schema())

	segs, err := ec.buildSegments(ctx, layer, nil, fields)
	if err != nil {
		return err
	}
	defer releaseSegments(segs)

	byOID := make(map[int64]*LineSegmentInfo, len(segs))
	grid := spatial.NewEndpointGrid(tol)
	for _, s := range segs {
		byOID[s.OID] = s
		grid.Insert(s.StartX, s.StartY, s.OID, true)
		grid.Insert(s.EndX, s.EndY, s.OID, false)
	}

	reported := make(map[[2]int64]struct{})
	rep := newReporter(ec, len(segs))

	for i, s := range segs {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.step(i)

		for _, end := range [][2]float64{{s.StartX, s.StartY}, {s.EndX, s.EndY}} {
			nearby := grid.QueryNearby(end[0], end[1], tol)
			meeting := distinctOIDs(nearby, s.OID)
			if len(meeting) == 0 {
				continue
			}
			for _, otherOID := range meeting {
				o := byOID[otherOID]
				if o == nil {
					continue
				}
				key := pairKey(s.OID, o.OID)
				if _, done := reported[key]; done {
					continue
				}
				if ec.junctionExempt(len(meeting)+1, s, o, end[0], end[1], tol) {
					continue
				}
				for _, field := range fields {
					a := stringifyAttr(s.Attrs[field])
					b := stringifyAttr(o.Attrs[field])
					if a == b {
						continue
					}
					reported[key] = struct{}{}
					e := ec.addError(codeFieldMismatch,
						fmt.Sprintf("connected lines disagree on %s", field), s.OID, nil)
					e.X, e.Y = end[0], end[1]
					e.SetMeta("Field", field)
					e.SetMeta("Value", a)
					e.SetMeta("OtherValue", b)
					e.SetMeta("OtherFeatureId", o.OID)
					break
				}
			}
		}
	}
	rep.done(len(segs))
	return nil
}

// evalCenterlineFieldMismatch compares attributes across two centerline
// layers where their segments meet, with the same hybrid junction
// exemptions as the single-layer consistency check.
func evalCenterlineFieldMismatch(ctx context.Context, ec *Context) error {
	main := ec.mainLayer()
	related := ec.relatedLayer()
	if main == nil || related == nil {
		return nil
	}
	tol := ec.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance(model.CaseCenterlineFieldMismatch)
	}

	fields := compareFields(ec.FieldFilter, main.Schema())
	shared := fields[:0:0]
	for _, f := range fields {
		if related.Schema().Has(f) {
			shared = append(shared, f)
		}
	}
	if len(shared) == 0 {
		ec.Logger.Warn("no shared fields to compare, skipping rule", "rule", ec.Rule.RuleID)
		return nil
	}

	mainSegs, err := ec.buildSegments(ctx, main, nil, shared)
	if err != nil {
		return err
	}
	defer releaseSegments(mainSegs)
	relSegs, err := ec.buildSegments(ctx, related, nil, shared)
	if err != nil {
		return err
	}
	defer releaseSegments(relSegs)

	relByOID := make(map[int64]*LineSegmentInfo, len(relSegs))
	relGrid := spatial.NewEndpointGrid(tol)
	for _, s := range relSegs {
		relByOID[s.OID] = s
		relGrid.Insert(s.StartX, s.StartY, s.OID, true)
		relGrid.Insert(s.EndX, s.EndY, s.OID, false)
	}
	mainGrid := spatial.NewEndpointGrid(tol)
	for _, s := range mainSegs {
		mainGrid.Insert(s.StartX, s.StartY, s.OID, true)
		mainGrid.Insert(s.EndX, s.EndY, s.OID, false)
	}

	reported := make(map[[2]int64]struct{})
	rep := newReporter(ec, len(mainSegs))

	for i, s := range mainSegs {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.step(i)

		for _, end := range [][2]float64{{s.StartX, s.StartY}, {s.EndX, s.EndY}} {
			relNearby := distinctOIDs(relGrid.QueryNearby(end[0], end[1], tol), -1)
			if len(relNearby) == 0 {
				continue
			}
			// Junction cardinality counts segments from both layers.
			meeting := len(distinctOIDs(mainGrid.QueryNearby(end[0], end[1], tol), s.OID)) + 1 + len(relNearby)
			for _, relOID := range relNearby {
				o := relByOID[relOID]
				if o == nil {
					continue
				}
				key := pairKey(s.OID, o.OID)
				if _, done := reported[key]; done {
					continue
				}
				if ec.junctionExempt(meeting, s, o, end[0], end[1], tol) {
					continue
				}
				for _, field := range shared {
					a := stringifyAttr(s.Attrs[field])
					b := stringifyAttr(o.Attrs[field])
					if a == b {
						continue
					}
					reported[key] = struct{}{}
					e := ec.addError(codeCenterlineMismatch,
						fmt.Sprintf("centerlines disagree on %s", field), s.OID, nil)
					e.X, e.Y = end[0], end[1]
					e.SetMeta("Field", field)
					e.SetMeta("Value", a)
					e.SetMeta("OtherValue", b)
					e.SetMeta("OtherFeatureId", o.OID)
					e.SetMeta(model.MetadataRelatedTableID, ec.Rule.RelatedTableID)
					e.SetMeta(model.MetadataRelatedTableName, ec.Rule.RelatedTableName)
					break
				}
			}
		}
	}
	rep.done(len(mainSegs))
	return nil
}

// distinctOIDs returns the distinct endpoint owners excluding self.
func distinctOIDs(eps []spatial.Endpoint, self int64) []int64 {
	seen := make(map[int64]struct{}, len(eps))
	var out []int64
	for _, ep := range eps {
		if ep.OID == self {
			continue
		}
		if _, ok := seen[ep.OID]; ok {
			continue
		}
		seen[ep.OID] = struct{}{}
		out = append(out, ep.OID)
	}
	return out
}

func pairKey(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}
