package check

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/driver/memory"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom/orbgeom"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/internal/geocache"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/spatial"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestContext(ds geom.Dataset, rule model.RelationRule, tol float64) *Context {
	return &Context{
		Dataset:     ds,
		Layer:       ds.LayerByName,
		Result:      model.NewValidationResult(),
		Rule:        rule,
		Tolerance:   tol,
		FieldFilter: rule.FieldFilter,
		Caches: geocache.New(func() geom.SpatialIndex {
			return spatial.NewBBoxIndex()
		}, 0, discardLogger()),
		Logger: discardLogger(),
		Config: DefaultConfig(),
	}
}

func pointFeature(id int64, x, y float64, attrs map[string]any) *memory.Feature {
	return &memory.Feature{ID: id, Geom: orbgeom.Point(x, y), Attrs: attrs}
}

func lineFeature(id int64, attrs map[string]any, coords ...[2]float64) *memory.Feature {
	return &memory.Feature{ID: id, Geom: orbgeom.Line(coords...), Attrs: attrs}
}

func squareFeature(id int64, minX, minY, side float64, attrs map[string]any) *memory.Feature {
	return &memory.Feature{
		ID: id,
		Geom: orbgeom.Polygon([][2]float64{
			{minX, minY}, {minX + side, minY}, {minX + side, minY + side}, {minX, minY + side},
		}),
		Attrs: attrs,
	}
}

func polygonGeom(exterior [][2]float64, holes ...[][2]float64) geom.Geometry {
	return orbgeom.Polygon(exterior, holes...)
}

func layerOf(name string, schema geom.Schema, features ...*memory.Feature) *memory.Layer {
	return memory.NewLayer(name, schema, features)
}

func twoTableRule(ct model.CaseType, main, related string) model.RelationRule {
	return model.RelationRule{
		RuleID:           "T-" + string(ct),
		CaseType:         ct,
		MainTableID:      main,
		MainTableName:    main,
		RelatedTableID:   related,
		RelatedTableName: related,
	}
}

func oneTableRule(ct model.CaseType, main string) model.RelationRule {
	return model.RelationRule{
		RuleID:        "T-" + string(ct),
		CaseType:      ct,
		MainTableID:   main,
		MainTableName: main,
	}
}

func codes(result *model.ValidationResult) []string {
	out := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		out = append(out, e.ErrorCode)
	}
	return out
}

func TestMissingLayerIsNotFatal(t *testing.T) {
	ds := memory.Open(layerOf("present", nil))
	ec := newTestContext(ds, twoTableRule(model.CasePointWithinPolygon, "absent", "present"), 0)

	if err := evalPointWithinPolygon(context.Background(), ec); err != nil {
		t.Fatalf("missing layer should not be an error: %v", err)
	}
	if len(ec.Result.Errors) != 0 {
		t.Errorf("findings = %d, want 0", len(ec.Result.Errors))
	}
}

func TestProgressCompletionEvent(t *testing.T) {
	ds := memory.Open(
		layerOf("pts", nil, pointFeature(1, 5, 5, nil)),
		layerOf("zones", nil, squareFeature(1, 0, 0, 10, nil)),
	)
	ec := newTestContext(ds, twoTableRule(model.CasePointWithinPolygon, "pts", "zones"), 0)

	var events []model.ProgressEvent
	ec.Progress = func(ev model.ProgressEvent) { events = append(events, ev) }

	if err := evalPointWithinPolygon(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(events) == 0 {
		t.Fatal("no progress events")
	}
	last := events[len(events)-1]
	if !last.Completed {
		t.Errorf("final event not completed: %+v", last)
	}
	if last.CaseType != model.CasePointWithinPolygon {
		t.Errorf("case type = %s", last.CaseType)
	}
}

func TestIterateCancellation(t *testing.T) {
	ds := memory.Open(
		layerOf("pts", nil, pointFeature(1, 5, 5, nil), pointFeature(2, 6, 6, nil)),
		layerOf("zones", nil, squareFeature(1, 0, 0, 10, nil)),
	)
	ec := newTestContext(ds, twoTableRule(model.CasePointWithinPolygon, "pts", "zones"), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := evalPointWithinPolygon(ctx, ec); err == nil {
		t.Fatal("cancelled context should surface")
	}
}

func TestDefaultRegistryCoversAllCaseTypes(t *testing.T) {
	r := DefaultRegistry()
	want := []model.CaseType{
		model.CasePointCoverage, model.CasePointWithinPolygon,
		model.CaseLineWithinPolygon, model.CasePolygonWithinPolygon,
		model.CasePolygonContainsLine, model.CaseVertexAlignment,
		model.CasePolygonNotOverlap, model.CasePolygonNotOverlapRelated,
		model.CasePolygonNotIntersectLine, model.CasePolygonNotContainPoint,
		model.CaseLineConnectivity, model.CaseLineDisconnection,
		model.CaseLineConnectivityByField, model.CaseLineDisconnectByField,
		model.CaseConnectedFieldConsistency, model.CaseCenterlineFieldMismatch,
		model.CaseSharpBend, model.CaseSelfIntersection,
		model.CaseLineCrossLine, model.CaseHoleDuplicate,
		model.CaseDuplicateGeometry, model.CasePointSpacing,
		model.CasePointSpacingBySurface, model.CaseVertexSpacing,
	}
	if got := len(r.CaseTypes()); got != len(want) {
		t.Fatalf("registered case types = %d, want %d", got, len(want))
	}
	for _, ct := range want {
		if _, ok := r.Lookup(ct); !ok {
			t.Errorf("case type %s not registered", ct)
		}
	}
}

func TestRegistryOverride(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register(model.CaseSharpBend, EvaluatorFunc(func(ctx context.Context, ec *Context) error {
		called = true
		return nil
	}))
	ev, ok := r.Lookup(model.CaseSharpBend)
	if !ok {
		t.Fatal("lookup failed")
	}
	if err := ev.Evaluate(context.Background(), nil); err != nil || !called {
		t.Errorf("custom evaluator not invoked: %v", err)
	}
}
