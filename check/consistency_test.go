package check

import (
	"context"
	"testing"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/driver/memory"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
)

func TestConnectedFieldConsistency(t *testing.T) {
	// Two collinear segments continuing one another must agree on KIND.
	ds := memory.Open(
		layerOf("roads", roadSchema(),
			lineFeature(1, map[string]any{"KIND": "ROAD"},
				[2]float64{0, 0}, [2]float64{10, 0}),
			lineFeature(2, map[string]any{"KIND": "PATH"},
				[2]float64{10, 0}, [2]float64{20, 0}),
		),
	)
	rule := oneTableRule(model.CaseConnectedFieldConsistency, "roads")
	rule.FieldFilter = "KIND"

	ec := newTestContext(ds, rule, 0)
	if err := evalConnectedFieldConsistency(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 1 {
		t.Fatalf("findings = %v, want the pair once", codes(ec.Result))
	}
	e := ec.Result.Errors[0]
	if e.ErrorCode != codeFieldMismatch {
		t.Errorf("code = %s", e.ErrorCode)
	}
	if e.Metadata["Field"] != "KIND" || e.Metadata["Value"] != "ROAD" || e.Metadata["OtherValue"] != "PATH" {
		t.Errorf("metadata = %v", e.Metadata)
	}
	if e.X != 10 || e.Y != 0 {
		t.Errorf("finding at (%v,%v), want the junction (10,0)", e.X, e.Y)
	}
}

func TestConnectedFieldConsistencyAgreeingPairPasses(t *testing.T) {
	ds := memory.Open(
		layerOf("roads", roadSchema(),
			lineFeature(1, map[string]any{"KIND": "ROAD"},
				[2]float64{0, 0}, [2]float64{10, 0}),
			lineFeature(2, map[string]any{"KIND": "ROAD"},
				[2]float64{10, 0}, [2]float64{20, 0}),
		),
	)
	rule := oneTableRule(model.CaseConnectedFieldConsistency, "roads")
	rule.FieldFilter = "KIND"

	ec := newTestContext(ds, rule, 0)
	if err := evalConnectedFieldConsistency(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 0 {
		t.Fatalf("agreeing pair should pass, got %v", codes(ec.Result))
	}
}

func TestConnectedFieldConsistencyJunctionExempt(t *testing.T) {
	// Three segments meeting at (10,0) form a legitimate intersection.
	ds := memory.Open(
		layerOf("roads", roadSchema(),
			lineFeature(1, map[string]any{"KIND": "ROAD"},
				[2]float64{0, 0}, [2]float64{10, 0}),
			lineFeature(2, map[string]any{"KIND": "PATH"},
				[2]float64{10, 0}, [2]float64{20, 0}),
			lineFeature(3, map[string]any{"KIND": "TRACK"},
				[2]float64{10, 0}, [2]float64{10, 5}),
		),
	)
	rule := oneTableRule(model.CaseConnectedFieldConsistency, "roads")
	rule.FieldFilter = "KIND"

	ec := newTestContext(ds, rule, 0)
	if err := evalConnectedFieldConsistency(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 0 {
		t.Fatalf("three-way junction should be exempt, got %v", codes(ec.Result))
	}
}

func TestConnectedFieldConsistencyAngleExempt(t *testing.T) {
	// The second segment branches off at well over the angle threshold, so
	// it does not continue the first.
	ds := memory.Open(
		layerOf("roads", roadSchema(),
			lineFeature(1, map[string]any{"KIND": "ROAD"},
				[2]float64{0, 0}, [2]float64{10, 0}),
			lineFeature(2, map[string]any{"KIND": "PATH"},
				[2]float64{10, 0}, [2]float64{15, 10}),
		),
	)
	rule := oneTableRule(model.CaseConnectedFieldConsistency, "roads")
	rule.FieldFilter = "KIND"

	ec := newTestContext(ds, rule, 0)
	if err := evalConnectedFieldConsistency(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 0 {
		t.Fatalf("sharp branch should be exempt, got %v", codes(ec.Result))
	}
}

func TestCenterlineFieldMismatch(t *testing.T) {
	ds := memory.Open(
		layerOf("roads_a", roadSchema(),
			lineFeature(1, map[string]any{"KIND": "ROAD"},
				[2]float64{0, 0}, [2]float64{10, 0}),
		),
		layerOf("roads_b", roadSchema(),
			lineFeature(1, map[string]any{"KIND": "PATH"},
				[2]float64{10, 0}, [2]float64{20, 0}),
		),
	)
	rule := twoTableRule(model.CaseCenterlineFieldMismatch, "roads_a", "roads_b")
	rule.FieldFilter = "KIND"

	ec := newTestContext(ds, rule, 0)
	if err := evalCenterlineFieldMismatch(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 1 {
		t.Fatalf("findings = %v, want one mismatch", codes(ec.Result))
	}
	e := ec.Result.Errors[0]
	if e.ErrorCode != codeCenterlineMismatch || e.TableID != "roads_a" {
		t.Errorf("finding = %+v", e)
	}
	if e.Metadata[model.MetadataRelatedTableID] != "roads_b" {
		t.Errorf("related table meta = %v", e.Metadata[model.MetadataRelatedTableID])
	}
}

func TestCenterlineFieldMismatchNoSharedFields(t *testing.T) {
	ds := memory.Open(
		layerOf("roads_a", roadSchema(),
			lineFeature(1, map[string]any{"KIND": "ROAD"},
				[2]float64{0, 0}, [2]float64{10, 0}),
		),
		layerOf("roads_b", nil,
			lineFeature(1, nil, [2]float64{10, 0}, [2]float64{20, 0}),
		),
	)
	rule := twoTableRule(model.CaseCenterlineFieldMismatch, "roads_a", "roads_b")
	rule.FieldFilter = "KIND"

	ec := newTestContext(ds, rule, 0)
	if err := evalCenterlineFieldMismatch(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 0 {
		t.Fatalf("nothing to compare should yield nothing, got %v", codes(ec.Result))
	}
}
