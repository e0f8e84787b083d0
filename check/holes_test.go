package check

import (
	"context"
	"testing"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/driver/memory"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
)

func TestHoleDuplicate(t *testing.T) {
	hole := [][2]float64{{20, 20}, {22, 20}, {22, 22}, {20, 22}}
	ds := memory.Open(
		layerOf("ponds", nil,
			&memory.Feature{ID: 1, Geom: polygonGeom(
				[][2]float64{{0, 0}, {50, 0}, {50, 50}, {0, 50}}, hole,
			)},
			&memory.Feature{ID: 2, Geom: polygonGeom(
				[][2]float64{{10, 10}, {60, 10}, {60, 60}, {10, 60}}, hole,
			)},
		),
	)
	ec := newTestContext(ds, oneTableRule(model.CaseHoleDuplicate, "ponds"), 0)
	if err := evalHoleDuplicate(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 1 {
		t.Fatalf("findings = %v, want the shared hole once", codes(ec.Result))
	}
	e := ec.Result.Errors[0]
	if e.ErrorCode != codeHoleDuplicate || e.FeatureID != 1 {
		t.Errorf("finding = %+v, want HOLE_DUPLICATE on feature 1", e)
	}
	if e.Metadata["OtherFeatureId"] != int64(2) {
		t.Errorf("OtherFeatureId = %v, want 2", e.Metadata["OtherFeatureId"])
	}
}

func TestHoleDuplicateDistinctHolesPass(t *testing.T) {
	ds := memory.Open(
		layerOf("ponds", nil,
			&memory.Feature{ID: 1, Geom: polygonGeom(
				[][2]float64{{0, 0}, {50, 0}, {50, 50}, {0, 50}},
				[][2]float64{{20, 20}, {22, 20}, {22, 22}, {20, 22}},
			)},
			&memory.Feature{ID: 2, Geom: polygonGeom(
				[][2]float64{{0, 0}, {50, 0}, {50, 50}, {0, 50}},
				[][2]float64{{30, 30}, {35, 30}, {35, 35}, {30, 35}},
			)},
		),
	)
	ec := newTestContext(ds, oneTableRule(model.CaseHoleDuplicate, "ponds"), 0)
	if err := evalHoleDuplicate(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 0 {
		t.Fatalf("distinct holes should pass, got %v", codes(ec.Result))
	}
}

func TestHoleDuplicateSameFeatureHolesLegal(t *testing.T) {
	// Two holes in one feature are its own geometry, not a duplication
	// between features.
	ds := memory.Open(
		layerOf("ponds", nil,
			&memory.Feature{ID: 1, Geom: polygonGeom(
				[][2]float64{{0, 0}, {50, 0}, {50, 50}, {0, 50}},
				[][2]float64{{20, 20}, {22, 20}, {22, 22}, {20, 22}},
				[][2]float64{{20, 20.5}, {22, 20.5}, {22, 22.5}, {20, 22.5}},
			)},
		),
	)
	ec := newTestContext(ds, oneTableRule(model.CaseHoleDuplicate, "ponds"), 1)
	if err := evalHoleDuplicate(context.Background(), ec); err != nil {
		t.Fatal(err)
	}
	if len(ec.Result.Errors) != 0 {
		t.Fatalf("same-feature holes should pass, got %v", codes(ec.Result))
	}
}
