package check

import (
	"context"
	"fmt"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/spatial"
)

const codeHoleDuplicate = "HOLE_DUPLICATE"

// holeInfo is one interior ring lifted out of a polygon feature.
type holeInfo struct {
	tableID   string
	tableName string
	oid       int64
	ring      geom.Geometry
}

// holeLayers resolves the layers the hole-duplicate check scans:
// Config.HoleLayers when set, otherwise the rule's main and related layers.
func (ec *Context) holeLayers() []geom.Layer {
	var out []geom.Layer
	if len(ec.Config.HoleLayers) > 0 {
		for _, name := range ec.Config.HoleLayers {
			if l := ec.Layer(name); l != nil {
				out = append(out, l)
			} else {
				ec.Logger.Warn("hole layer not found", "rule", ec.Rule.RuleID, "layer", name)
			}
		}
		return out
	}
	if l := ec.mainLayer(); l != nil {
		out = append(out, l)
	}
	if ec.Rule.RelatedTableName != "" && ec.Rule.RelatedTableName != ec.Rule.MainTableName {
		if l := ec.Layer(ec.Rule.RelatedTableName); l != nil {
			out = append(out, l)
		}
	}
	return out
}

// evalHoleDuplicate reports interior rings that appear in more than one
// polygon across the scanned layers. Two holes duplicate each other when
// their envelopes match within tolerance and their ring geometries are
// near-equal. A hole punched where another feature's hole already sits is
// almost always a digitization artifact.
func evalHoleDuplicate(ctx context.Context, ec *Context) error {
	layers := ec.holeLayers()
	if len(layers) == 0 {
		return nil
	}
	tol := ec.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance(model.CaseHoleDuplicate)
	}

	var holes []holeInfo
	defer func() {
		for _, h := range holes {
			h.ring.Release()
		}
	}()

	for _, layer := range layers {
		tableID, tableName := ec.Rule.MainTableID, ec.Rule.MainTableName
		if layer.Name() == ec.Rule.RelatedTableName {
			tableID, tableName = ec.Rule.RelatedTableID, ec.Rule.RelatedTableName
		}
		_, err := ec.iterate(ctx, layer, func(f geom.Feature) error {
			g := f.Geometry()
			if g == nil || !g.Type().IsPolygonal() {
				return nil
			}
			rp, ok := g.(geom.RingProvider)
			if !ok {
				return nil
			}
			for _, ring := range rp.InteriorRings() {
				holes = append(holes, holeInfo{
					tableID:   tableID,
					tableName: tableName,
					oid:       f.OID(),
					ring:      ring,
				})
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	idx := spatial.NewBBoxIndex()
	for i := range holes {
		idx.Insert(holes[i].ring.Envelope(), i)
	}
	idx.Build()

	rep := newReporter(ec, len(holes))
	reported := make(map[[2]int]struct{})
	for i := range holes {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.step(i)
		cur := &holes[i]
		for _, payload := range idx.Query(cur.ring.Envelope().Expand(tol)) {
			j := payload.(int)
			if j == i {
				continue
			}
			other := &holes[j]
			// Multiple holes on one feature are legal.
			if other.oid == cur.oid && other.tableID == cur.tableID {
				continue
			}
			key := [2]int{i, j}
			if j < i {
				key = [2]int{j, i}
			}
			if _, done := reported[key]; done {
				continue
			}
			if !geometriesNearEqual(cur.ring, other.ring, tol) {
				continue
			}
			reported[key] = struct{}{}
			e := ec.addErrorAt(codeHoleDuplicate,
				fmt.Sprintf("hole duplicates a hole of feature %d in %s", other.oid, other.tableName),
				cur.tableID, cur.tableName, cur.oid, cur.ring)
			e.SetMeta("OtherFeatureId", other.oid)
			e.SetMeta("OtherTableId", other.tableID)
		}
	}
	rep.done(len(holes))
	return nil
}
