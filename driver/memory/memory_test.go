package memory

import (
	"testing"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom/orbgeom"
)

func testLayer() *Layer {
	schema := geom.Schema{
		{Name: "KIND", Type: geom.FieldString},
		{Name: "WIDTH", Type: geom.FieldFloat},
	}
	features := []*Feature{
		{ID: 1, Geom: orbgeom.Point(0, 0), Attrs: map[string]any{"KIND": "ROAD", "WIDTH": 3.5}},
		{ID: 2, Geom: orbgeom.Point(50, 50), Attrs: map[string]any{"KIND": "PATH", "WIDTH": 1.2}},
		{ID: 3, Geom: orbgeom.Point(100, 100), Attrs: map[string]any{"KIND": "ROAD", "WIDTH": 7.0}},
	}
	return NewLayer("lines", schema, features)
}

func scanOIDs(l *Layer) []int64 {
	l.ResetReading()
	var out []int64
	for f := l.NextFeature(); f != nil; f = l.NextFeature() {
		out = append(out, f.OID())
	}
	return out
}

func TestAttributeFilterEquality(t *testing.T) {
	l := testLayer()
	if err := l.SetAttributeFilter("KIND = 'ROAD'"); err != nil {
		t.Fatalf("SetAttributeFilter: %v", err)
	}
	got := scanOIDs(l)
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("filtered oids = %v, want [1 3]", got)
	}

	// Clearing restores the full scan.
	if err := l.SetAttributeFilter(""); err != nil {
		t.Fatal(err)
	}
	if got := scanOIDs(l); len(got) != 3 {
		t.Errorf("unfiltered oids = %v, want all 3", got)
	}
}

func TestAttributeFilterNumericComparison(t *testing.T) {
	l := testLayer()
	if err := l.SetAttributeFilter("WIDTH >= 3"); err != nil {
		t.Fatal(err)
	}
	got := scanOIDs(l)
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("filtered oids = %v, want [1 3]", got)
	}
}

func TestAttributeFilterLike(t *testing.T) {
	l := testLayer()
	if err := l.SetAttributeFilter("KIND LIKE 'RO%'"); err != nil {
		t.Fatal(err)
	}
	got := scanOIDs(l)
	if len(got) != 2 {
		t.Errorf("LIKE oids = %v, want 2 roads", got)
	}
}

func TestAttributeFilterRejectsIn(t *testing.T) {
	l := testLayer()
	// This driver mirrors backends without IN pushdown; callers must fall
	// back to in-memory predicates.
	if err := l.SetAttributeFilter("KIND IN ('ROAD')"); err == nil {
		t.Fatal("IN filter should be rejected")
	}
	if err := l.SetAttributeFilter("KIND NOT IN ('ROAD')"); err == nil {
		t.Fatal("NOT IN filter should be rejected")
	}
	// A rejected filter leaves the layer unfiltered.
	if got := scanOIDs(l); len(got) != 3 {
		t.Errorf("oids after rejected filter = %v, want all 3", got)
	}
}

func TestAttributeFilterUnknownField(t *testing.T) {
	l := testLayer()
	if err := l.SetAttributeFilter("NOPE = '1'"); err == nil {
		t.Fatal("unknown field should be rejected")
	}
}

func TestSpatialFilter(t *testing.T) {
	l := testLayer()
	window := orbgeom.Polygon([][2]float64{{-10, -10}, {60, -10}, {60, 60}, {-10, 60}})
	l.SetSpatialFilter(window)
	got := scanOIDs(l)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("spatially filtered oids = %v, want [1 2]", got)
	}

	l.SetSpatialFilter(nil)
	if got := scanOIDs(l); len(got) != 3 {
		t.Errorf("oids after clearing spatial filter = %v, want all 3", got)
	}
}

func TestDatasetLayerLookup(t *testing.T) {
	ds := Open(testLayer())
	if ds.LayerCount() != 1 {
		t.Fatalf("LayerCount = %d, want 1", ds.LayerCount())
	}
	if ds.LayerByName("lines") == nil {
		t.Fatal("LayerByName(lines) = nil")
	}
	if ds.LayerByName("nope") != nil {
		t.Fatal("LayerByName(nope) should be nil")
	}
	if ds.LayerByIndex(0) == nil || ds.LayerByIndex(5) != nil {
		t.Fatal("LayerByIndex bounds handling")
	}
	if err := ds.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := ds.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
