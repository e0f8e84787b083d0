// Package spatial provides the engine's spatial lookup primitives: a
// fixed-cell grid for line-endpoint proximity queries and a bounding-box
// index backed by an R-tree.
package spatial

import "math"

// Endpoint is one bucketed line endpoint. It lives only inside the grid for
// the duration of a single evaluator call.
type Endpoint struct {
	OID     int64
	X, Y    float64
	IsStart bool
}

type cellKey struct {
	cx, cy int64
}

// EndpointGrid hashes 2-D points into fixed-size cells for amortized O(1)
// proximity candidate lookup. The grid only bounds candidates; callers must
// apply exact Euclidean filtering against their search radius.
type EndpointGrid struct {
	cells    map[cellKey][]Endpoint
	cellSize float64
	count    int
}

// NewEndpointGrid returns a grid with the given cell size. Query radii must
// not exceed the cell size, or the 3x3 neighborhood scan could miss
// candidates; all call sites in this module guarantee radius <= cellSize.
func NewEndpointGrid(cellSize float64) *EndpointGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &EndpointGrid{
		cells:    make(map[cellKey][]Endpoint),
		cellSize: cellSize,
	}
}

func (g *EndpointGrid) key(x, y float64) cellKey {
	return cellKey{
		cx: int64(math.Floor(x / g.cellSize)),
		cy: int64(math.Floor(y / g.cellSize)),
	}
}

// Insert buckets one endpoint.
func (g *EndpointGrid) Insert(x, y float64, oid int64, isStart bool) {
	k := g.key(x, y)
	g.cells[k] = append(g.cells[k], Endpoint{OID: oid, X: x, Y: y, IsStart: isStart})
	g.count++
}

// Len returns the number of bucketed endpoints.
func (g *EndpointGrid) Len() int { return g.count }

// QueryNearby returns every endpoint bucketed in the 3x3 block of cells
// around (x,y) whose exact distance is within searchRadius. The block is
// computed from the grid's cell size, so a radius up to one cell never
// produces false negatives; false positives are excluded by the exact
// distance check.
func (g *EndpointGrid) QueryNearby(x, y, searchRadius float64) []Endpoint {
	center := g.key(x, y)
	var out []Endpoint
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			bucket := g.cells[cellKey{cx: center.cx + dx, cy: center.cy + dy}]
			for _, ep := range bucket {
				if math.Hypot(ep.X-x, ep.Y-y) <= searchRadius {
					out = append(out, ep)
				}
			}
		}
	}
	return out
}
