package spatial

import (
	"github.com/tidwall/rtree"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
)

// BBoxIndex adapts an R-tree to the geom.SpatialIndex contract.
type BBoxIndex struct {
	tr rtree.RTreeG[any]
}

var _ geom.SpatialIndex = (*BBoxIndex)(nil)

// NewBBoxIndex returns an empty bounding-box index.
func NewBBoxIndex() *BBoxIndex { return &BBoxIndex{} }

// Insert adds a payload under its envelope.
func (x *BBoxIndex) Insert(env geom.Envelope, payload any) {
	x.tr.Insert([2]float64{env.MinX, env.MinY}, [2]float64{env.MaxX, env.MaxY}, payload)
}

// Build is a no-op; the R-tree maintains itself on insert. It exists so the
// index satisfies collaborators that require an explicit build step.
func (x *BBoxIndex) Build() {}

// Query returns every payload whose envelope intersects env.
func (x *BBoxIndex) Query(env geom.Envelope) []any {
	var out []any
	x.tr.Search(
		[2]float64{env.MinX, env.MinY},
		[2]float64{env.MaxX, env.MaxY},
		func(_, _ [2]float64, payload any) bool {
			out = append(out, payload)
			return true
		},
	)
	return out
}

// Len returns the number of indexed payloads.
func (x *BBoxIndex) Len() int { return x.tr.Len() }
