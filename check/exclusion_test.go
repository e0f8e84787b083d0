package check

import (
	"context"
	"testing"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/driver/memory"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
)

func TestPolygonNotOverlapPairReportedOnce(t *testing.T) {
	ds := memory.Open(
		layerOf("zones", nil,
			squareFeature(1, 0, 0, 10, nil),
			squareFeature(2, 5, 5, 10, nil),     // overlaps feature 1
			squareFeature(3, 100, 100, 10, nil), // disjoint
		),
	)
	ec := newTestContext(ds, oneTableRule(model.CasePolygonNotOverlap, "zones"), 0)
	if err := evalPolygonNotOverlap(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 1 {
		t.Fatalf("findings = %v, want the pair once", codes(ec.Result))
	}
	e := ec.Result.Errors[0]
	if e.ErrorCode != codePolygonOverlap || e.FeatureID != 1 {
		t.Errorf("finding = %+v, want POLYGON_OVERLAP on feature 1", e)
	}
	if e.Metadata["OtherFeatureId"] != int64(2) {
		t.Errorf("OtherFeatureId = %v, want 2", e.Metadata["OtherFeatureId"])
	}
}

func TestPolygonNotOverlapAreaTolerance(t *testing.T) {
	// 0.5 x 10 sliver of shared area.
	ds := memory.Open(
		layerOf("zones", nil,
			squareFeature(1, 0, 0, 10, nil),
			squareFeature(2, 9.5, 0, 10, nil),
		),
	)
	rule := oneTableRule(model.CasePolygonNotOverlap, "zones")

	ec := newTestContext(ds, rule, 0)
	if err := evalPolygonNotOverlap(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 1 {
		t.Fatalf("tolerance 0 findings = %v, want the sliver reported", codes(ec.Result))
	}

	ec = newTestContext(ds, rule, 6)
	if err := evalPolygonNotOverlap(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 0 {
		t.Fatalf("tolerance 6 findings = %v, want sliver absorbed", codes(ec.Result))
	}
}

func TestPolygonNotOverlapContainedPolygon(t *testing.T) {
	// One zone fully inside another shares interior area and is flagged
	// even though the strict overlap relation excludes containment.
	ds := memory.Open(
		layerOf("zones", nil,
			squareFeature(1, 0, 0, 10, nil),
			squareFeature(2, 2, 2, 4, nil), // contained, 16 shared
		),
	)
	rule := oneTableRule(model.CasePolygonNotOverlap, "zones")

	ec := newTestContext(ds, rule, 0)
	if err := evalPolygonNotOverlap(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 1 {
		t.Fatalf("findings = %v, want the contained pair", codes(ec.Result))
	}
	if ec.Result.Errors[0].Metadata["OtherFeatureId"] != int64(2) {
		t.Errorf("OtherFeatureId = %v, want 2", ec.Result.Errors[0].Metadata["OtherFeatureId"])
	}

	ec = newTestContext(ds, rule, 20)
	if err := evalPolygonNotOverlap(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 0 {
		t.Fatalf("tolerance 20 findings = %v, want the 16 absorbed", codes(ec.Result))
	}
}

func TestPolygonNotOverlapFieldFilterEquality(t *testing.T) {
	schema := geom.Schema{{Name: "TYPE", Type: geom.FieldString}}
	ds := memory.Open(
		layerOf("zones", schema,
			squareFeature(1, 0, 0, 10, map[string]any{"TYPE": "A"}),
			squareFeature(2, 5, 5, 10, map[string]any{"TYPE": "B"}),
			squareFeature(3, 5, 0, 10, map[string]any{"TYPE": "A"}),
		),
	)
	rule := oneTableRule(model.CasePolygonNotOverlap, "zones")

	// Unfiltered, every pair overlaps.
	ec := newTestContext(ds, rule, 0)
	if err := evalPolygonNotOverlap(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 3 {
		t.Fatalf("unfiltered findings = %v, want all three pairs", codes(ec.Result))
	}

	// An equality clause must keep the type-B polygon out of the index.
	rule.FieldFilter = "TYPE = 'A'"
	ec = newTestContext(ds, rule, 0)
	if err := evalPolygonNotOverlap(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 1 {
		t.Fatalf("filtered findings = %v, want only the A pair", codes(ec.Result))
	}
	e := ec.Result.Errors[0]
	if e.FeatureID != 1 || e.Metadata["OtherFeatureId"] != int64(3) {
		t.Errorf("finding = %+v, want feature 1 against 3", e)
	}
}

func TestPolygonNotOverlapRelated(t *testing.T) {
	ds := memory.Open(
		layerOf("parcels", nil,
			squareFeature(1, 0, 0, 10, nil),
			squareFeature(2, 100, 100, 10, nil),
		),
		layerOf("water", nil, squareFeature(7, 5, 5, 10, nil)),
	)
	ec := newTestContext(ds, twoTableRule(model.CasePolygonNotOverlapRelated, "parcels", "water"), 0)
	if err := evalPolygonNotOverlapRelated(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 1 {
		t.Fatalf("findings = %v, want one overlap", codes(ec.Result))
	}
	e := ec.Result.Errors[0]
	if e.FeatureID != 1 || e.TableID != "parcels" {
		t.Errorf("finding charged to %s #%d, want parcels #1", e.TableID, e.FeatureID)
	}
	if e.Metadata[model.MetadataRelatedTableID] != "water" {
		t.Errorf("related table meta = %v", e.Metadata[model.MetadataRelatedTableID])
	}
	if e.Metadata["OtherFeatureId"] != int64(7) {
		t.Errorf("OtherFeatureId = %v, want 7", e.Metadata["OtherFeatureId"])
	}
}

func TestPolygonNotIntersectLine(t *testing.T) {
	ds := memory.Open(
		layerOf("zones", nil, squareFeature(1, 0, 0, 10, nil)),
		layerOf("roads", nil,
			lineFeature(1, nil, [2]float64{-5, 5}, [2]float64{15, 5}), // crosses, 10 inside
			lineFeature(2, nil, [2]float64{0, 50}, [2]float64{10, 50}),
		),
	)
	rule := twoTableRule(model.CasePolygonNotIntersectLine, "zones", "roads")

	ec := newTestContext(ds, rule, 0)
	if err := evalPolygonNotIntersectLine(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 1 || ec.Result.Errors[0].ErrorCode != codePolygonCrossesLine {
		t.Fatalf("findings = %v, want one crossing", codes(ec.Result))
	}
	if ec.Result.Errors[0].Metadata["OtherFeatureId"] != int64(1) {
		t.Errorf("OtherFeatureId = %v, want 1", ec.Result.Errors[0].Metadata["OtherFeatureId"])
	}

	// A length grace above the 10 units inside absorbs the crossing.
	ec = newTestContext(ds, rule, 12)
	if err := evalPolygonNotIntersectLine(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 0 {
		t.Fatalf("tolerance 12 findings = %v, want none", codes(ec.Result))
	}
}

func TestPolygonNotContainPoint(t *testing.T) {
	ds := memory.Open(
		layerOf("zones", nil, squareFeature(1, 0, 0, 10, nil)),
		layerOf("wells", nil,
			pointFeature(1, 5, 5, nil),   // inside, forbidden
			pointFeature(2, 50, 50, nil), // outside
		),
	)
	ec := newTestContext(ds, twoTableRule(model.CasePolygonNotContainPoint, "zones", "wells"), 0)
	if err := evalPolygonNotContainPoint(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 1 || ec.Result.Errors[0].ErrorCode != codePolygonContainsPt {
		t.Fatalf("findings = %v, want one contained point", codes(ec.Result))
	}
	if ec.Result.Errors[0].Metadata["OtherFeatureId"] != int64(1) {
		t.Errorf("OtherFeatureId = %v, want 1", ec.Result.Errors[0].Metadata["OtherFeatureId"])
	}
}
