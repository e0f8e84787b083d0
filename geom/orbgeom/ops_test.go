package orbgeom

import (
	"math"
	"testing"
)

func square(minX, minY, side float64) *G {
	return Polygon([][2]float64{
		{minX, minY},
		{minX + side, minY},
		{minX + side, minY + side},
		{minX, minY + side},
	})
}

func TestContainsPoint(t *testing.T) {
	poly := square(0, 0, 10)

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"interior", 5, 5, true},
		{"boundary edge", 0, 5, true},
		{"boundary corner", 0, 0, true},
		{"outside", 15, 5, false},
		{"outside diagonal", -1, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := poly.Contains(Point(tt.x, tt.y))
			if err != nil {
				t.Fatalf("Contains: %v", err)
			}
			if got != tt.want {
				t.Errorf("Contains(%g,%g) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestContainsLine(t *testing.T) {
	poly := square(0, 0, 10)

	inside := Line([2]float64{1, 1}, [2]float64{9, 9})
	got, err := poly.Contains(inside)
	if err != nil || !got {
		t.Errorf("line inside: got %v, %v", got, err)
	}

	crossing := Line([2]float64{5, 5}, [2]float64{15, 5})
	got, err = poly.Contains(crossing)
	if err != nil || got {
		t.Errorf("crossing line: got %v, %v", got, err)
	}
}

func TestLineDifferenceResidual(t *testing.T) {
	poly := square(0, 0, 10)

	// Half in, half out: 10 units of the 20-unit line stick out.
	line := Line([2]float64{5, 5}, [2]float64{25, 5})
	diff, err := line.Difference(poly)
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	if got := diff.Length(); math.Abs(got-15) > 1e-9 {
		t.Errorf("residual length = %g, want 15", got)
	}

	inter, err := line.Intersection(poly)
	if err != nil {
		t.Fatalf("Intersection: %v", err)
	}
	if got := inter.Length(); math.Abs(got-5) > 1e-9 {
		t.Errorf("inside length = %g, want 5", got)
	}
}

func TestLineDifferenceFullyInside(t *testing.T) {
	poly := square(0, 0, 10)
	line := Line([2]float64{2, 2}, [2]float64{8, 2})

	diff, err := line.Difference(poly)
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	if got := diff.Length(); got != 0 {
		t.Errorf("residual length = %g, want 0", got)
	}
}

func TestIntersectsAndOverlaps(t *testing.T) {
	a := square(0, 0, 10)
	b := square(5, 5, 10)  // overlaps a
	c := square(20, 20, 5) // disjoint
	d := square(2, 2, 4)   // inside a

	if got, _ := a.Intersects(b); !got {
		t.Error("a should intersect b")
	}
	if got, _ := a.Intersects(c); got {
		t.Error("a should not intersect c")
	}
	if got, _ := a.Overlaps(b); !got {
		t.Error("a should overlap b")
	}
	if got, _ := a.Overlaps(c); got {
		t.Error("a should not overlap c")
	}
	// Containment is not overlap.
	if got, _ := a.Overlaps(d); got {
		t.Error("a contains d, not overlaps")
	}
}

func rect(minX, minY, maxX, maxY float64) *G {
	return Polygon([][2]float64{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY},
	})
}

func TestContainsSpansUnionParts(t *testing.T) {
	// Two boundary squares sharing the edge x=10. A geometry straddling the
	// shared edge crosses an internal ring edge of the union but never
	// leaves it.
	u, err := square(0, 0, 10).Union(square(10, 0, 10))
	if err != nil {
		t.Fatalf("Union: %v", err)
	}

	straddling := rect(2, 2, 18, 8)
	got, err := u.Contains(straddling)
	if err != nil || !got {
		t.Errorf("straddling rect: got %v, %v, want contained", got, err)
	}

	line := Line([2]float64{2, 5}, [2]float64{18, 5})
	got, err = u.Contains(line)
	if err != nil || !got {
		t.Errorf("straddling line: got %v, %v, want contained", got, err)
	}

	escaping := rect(15, 2, 25, 8)
	got, err = u.Contains(escaping)
	if err != nil || got {
		t.Errorf("escaping rect: got %v, %v, want not contained", got, err)
	}

	diff, err := straddling.Difference(u)
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	if residual := diff.Area(); residual != 0 {
		t.Errorf("straddling residual area = %g, want 0", residual)
	}
}

func TestOverlapsSliverWithoutProperCross(t *testing.T) {
	// 0.5 x 10 shared strip: every vertex of each square sits on the
	// other's boundary and no edges properly cross.
	a := square(0, 0, 10)
	b := square(9.5, 0, 10)
	got, err := a.Overlaps(b)
	if err != nil || !got {
		t.Errorf("sliver: got %v, %v, want overlap", got, err)
	}

	// Touching along an edge shares no interior.
	c := square(10, 0, 10)
	got, err = a.Overlaps(c)
	if err != nil || got {
		t.Errorf("edge touch: got %v, %v, want no overlap", got, err)
	}
}

func TestSharedArea(t *testing.T) {
	a := square(0, 0, 10)

	tests := []struct {
		name  string
		other *G
		want  float64
	}{
		{"corner overlap", square(5, 5, 10), 25},
		{"sliver", square(9.5, 0, 10), 5},
		{"contained", square(2, 2, 4), 16},
		{"identical", square(0, 0, 10), 100},
		{"edge touch", square(10, 0, 10), 0},
		{"disjoint", square(50, 50, 10), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.SharedArea(tt.other)
			if err != nil {
				t.Fatalf("SharedArea: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SharedArea = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestSharedAreaWithHole(t *testing.T) {
	donut := Polygon(
		[][2]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
		[][2]float64{{4, 4}, {6, 4}, {6, 6}, {4, 6}},
	)
	// The rectangle covers the hole entirely; only the ring area counts.
	got, err := donut.SharedArea(rect(3, 3, 7, 7))
	if err != nil {
		t.Fatalf("SharedArea: %v", err)
	}
	if math.Abs(got-12) > 1e-9 {
		t.Errorf("SharedArea = %g, want 12", got)
	}
}

func TestWithinIsContainsMirrored(t *testing.T) {
	outer := square(0, 0, 10)
	inner := square(2, 2, 4)

	within, err := inner.Within(outer)
	if err != nil {
		t.Fatalf("Within: %v", err)
	}
	if !within {
		t.Error("inner square should be within outer")
	}

	within, err = outer.Within(inner)
	if err != nil {
		t.Fatalf("Within: %v", err)
	}
	if within {
		t.Error("outer square should not be within inner")
	}
}

func TestUnionAnyPartSemantics(t *testing.T) {
	a := square(0, 0, 10)
	b := square(100, 100, 10)

	u, err := a.Union(b)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}

	// A point inside either operand is inside the union.
	for _, pt := range [][2]float64{{5, 5}, {105, 105}} {
		got, err := u.Contains(Point(pt[0], pt[1]))
		if err != nil || !got {
			t.Errorf("union should contain (%g,%g): %v, %v", pt[0], pt[1], got, err)
		}
	}
	got, err := u.Contains(Point(50, 50))
	if err != nil || got {
		t.Errorf("union should not contain the gap point: %v, %v", got, err)
	}
}

func TestDistance(t *testing.T) {
	a := square(0, 0, 10)

	if got, _ := a.Distance(Point(5, 5)); got != 0 {
		t.Errorf("distance to interior point = %g, want 0", got)
	}
	if got, _ := a.Distance(Point(13, 5)); math.Abs(got-3) > 1e-9 {
		t.Errorf("distance to outside point = %g, want 3", got)
	}

	lineA := Line([2]float64{0, 0}, [2]float64{10, 0})
	lineB := Line([2]float64{0, 4}, [2]float64{10, 4})
	if got, _ := lineA.Distance(lineB); math.Abs(got-4) > 1e-9 {
		t.Errorf("parallel line distance = %g, want 4", got)
	}
}

func TestBoundaryOfPolygon(t *testing.T) {
	poly := square(0, 0, 10)
	b, err := poly.Boundary()
	if err != nil {
		t.Fatalf("Boundary: %v", err)
	}
	if got := b.Length(); math.Abs(got-40) > 1e-9 {
		t.Errorf("boundary length = %g, want 40", got)
	}
}

func TestPolygonWithHole(t *testing.T) {
	donut := Polygon(
		[][2]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
		[][2]float64{{4, 4}, {6, 4}, {6, 6}, {4, 6}},
	)

	rings := donut.InteriorRings()
	if len(rings) != 1 {
		t.Fatalf("interior rings = %d, want 1", len(rings))
	}
	if got := rings[0].Area(); math.Abs(got-4) > 1e-9 {
		t.Errorf("hole area = %g, want 4", got)
	}
	if got := donut.Area(); math.Abs(got-96) > 1e-9 {
		t.Errorf("donut area = %g, want 96", got)
	}
}

func TestBufferPoint(t *testing.T) {
	p := Point(0, 0)
	buf, err := p.Buffer(5, 16)
	if err != nil {
		t.Fatalf("Buffer: %v", err)
	}
	if !buf.Type().IsPolygonal() {
		t.Fatalf("buffered point type = %v, want polygonal", buf.Type())
	}
	got, err := buf.Contains(Point(3, 0))
	if err != nil || !got {
		t.Errorf("buffer should contain near point: %v, %v", got, err)
	}
	got, err = buf.Contains(Point(6, 0))
	if err != nil || got {
		t.Errorf("buffer should not contain far point: %v, %v", got, err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := square(0, 0, 10)
	c := a.Clone()
	if c == nil {
		t.Fatal("nil clone")
	}
	if got := c.Envelope(); got != a.Envelope() {
		t.Errorf("clone envelope = %+v, want %+v", got, a.Envelope())
	}
	if c.(*G).Orb() == nil {
		t.Fatal("clone lost geometry")
	}
}
