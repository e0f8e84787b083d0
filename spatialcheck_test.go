package spatialcheck

import (
	"context"
	"errors"
	"testing"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/driver/memory"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom/orbgeom"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
)

func testDataset() *memory.Dataset {
	points := memory.NewLayer("points", nil, []*memory.Feature{
		{ID: 1, Geom: orbgeom.Point(5, 5)},
		{ID: 2, Geom: orbgeom.Point(50, 50)}, // outside every zone
	})
	zones := memory.NewLayer("zones", nil, []*memory.Feature{
		{ID: 1, Geom: orbgeom.Polygon([][2]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}})},
	})
	return memory.Open(points, zones)
}

func containmentRule() model.RelationRule {
	return model.RelationRule{
		RuleID:           "R-001",
		CaseType:         model.CasePointWithinPolygon,
		MainTableID:      "points",
		MainTableName:    "points",
		RelatedTableID:   "zones",
		RelatedTableName: "zones",
	}
}

func TestNewNilDataset(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilDataset) {
		t.Fatalf("err = %v, want ErrNilDataset", err)
	}
}

func TestProcess(t *testing.T) {
	ds := testDataset()
	defer ds.Close()

	engine, err := New(ds)
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	result, err := engine.Process(context.Background(), []model.RelationRule{containmentRule()})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.CheckedRules != 1 || result.SkippedRules != 0 {
		t.Errorf("checked=%d skipped=%d, want 1/0", result.CheckedRules, result.SkippedRules)
	}
	if result.ErrorCount != 1 || result.IsValid {
		t.Fatalf("result = %+v, want one finding and invalid", result)
	}
	e := result.Errors[0]
	if e.FeatureID != 2 || e.TableID != "points" {
		t.Errorf("finding = %+v, want points #2", e)
	}
	if e.Metadata[model.MetadataRelationType] != string(model.CasePointWithinPolygon) {
		t.Errorf("relation type meta = %v", e.Metadata[model.MetadataRelationType])
	}
}

func TestProcessUnknownCaseTypeSkipped(t *testing.T) {
	ds := testDataset()
	defer ds.Close()

	engine, err := New(ds)
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	rule := containmentRule()
	rule.CaseType = model.CaseType("NoSuchCheck")
	result, err := engine.Process(context.Background(), []model.RelationRule{rule})
	if err != nil {
		t.Fatalf("unknown case type must not be fatal: %v", err)
	}
	if result.SkippedRules != 1 || result.CheckedRules != 0 {
		t.Errorf("checked=%d skipped=%d, want 0/1", result.CheckedRules, result.SkippedRules)
	}
	if result.ErrorCount != 0 || !result.IsValid {
		t.Errorf("result = %+v, want clean", result)
	}
}

func TestValidateRules(t *testing.T) {
	ds := testDataset()
	defer ds.Close()

	engine, err := New(ds)
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	if err := engine.ValidateRules([]model.RelationRule{containmentRule()}); err != nil {
		t.Fatalf("valid catalog: %v", err)
	}

	bad := containmentRule()
	bad.CaseType = model.CaseType("NoSuchCheck")
	err = engine.ValidateRules([]model.RelationRule{containmentRule(), bad})
	var unknown *ErrUnknownCaseType
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want ErrUnknownCaseType", err)
	}
	if unknown.CaseType != bad.CaseType {
		t.Errorf("case type = %s, want %s", unknown.CaseType, bad.CaseType)
	}
}

func TestProcessChangeExclusion(t *testing.T) {
	ds := testDataset()
	defer ds.Close()

	// Feature 2 is the only finding, but only feature 1 changed: the
	// finding is dropped and the counters restored.
	engine, err := New(ds, WithChangeExclusion("points", []int64{1}))
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	result, err := engine.Process(context.Background(), []model.RelationRule{containmentRule()})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) != 0 || result.ErrorCount != 0 || !result.IsValid {
		t.Fatalf("result = %+v, want exclusion to drop the finding", result)
	}
}

func TestProcessRuleTolerance(t *testing.T) {
	ds := testDataset()
	defer ds.Close()

	engine, err := New(ds)
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	// A huge per-rule tolerance absorbs the outside point.
	rule := containmentRule()
	tol := 100.0
	rule.Tolerance = &tol
	result, err := engine.ProcessRule(context.Background(), rule)
	if err != nil {
		t.Fatal(err)
	}
	if result.ErrorCount != 0 {
		t.Errorf("tolerant rule findings = %d, want 0", result.ErrorCount)
	}
}

func TestProcessMetrics(t *testing.T) {
	ds := testDataset()
	defer ds.Close()

	mc := &BasicMetricsCollector{}
	engine, err := New(ds, WithMetricsCollector(mc))
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	if _, err := engine.Process(context.Background(), []model.RelationRule{containmentRule()}); err != nil {
		t.Fatal(err)
	}
	stats := mc.GetStats()
	if stats.RuleCount != 1 || stats.RunCount != 1 {
		t.Errorf("stats = %+v, want one rule in one run", stats)
	}
	if stats.RuleFindings != 1 {
		t.Errorf("findings = %d, want 1", stats.RuleFindings)
	}
}

func TestCloseMakesEngineUnusable(t *testing.T) {
	ds := testDataset()
	defer ds.Close()

	engine, err := New(ds)
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := engine.Process(context.Background(), nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
	if _, err := engine.ProcessRule(context.Background(), containmentRule()); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestProcessCancellation(t *testing.T) {
	ds := testDataset()
	defer ds.Close()

	engine, err := New(ds)
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.Process(ctx, []model.RelationRule{containmentRule()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
