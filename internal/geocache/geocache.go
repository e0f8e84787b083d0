// Package geocache memoizes the two expensive derived structures the
// relation checks keep rebuilding: layer-wide union geometries and per-layer
// polygon bounding-box indexes. Entries are keyed by (table, filter) so two
// rules with different filters never share a stale union, and evicted by
// age.
//
// The cache is owned by the long-lived engine instance, not by any rule
// execution; every cached geometry belongs to the cache and is released on
// eviction or Clear. Callers must not release geometries returned from
// lookups and must not outlive the engine holding them.
package geocache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
)

const (
	// DefaultMaxAge is the eviction age for cache entries.
	DefaultMaxAge = 20 * time.Minute

	// evictThreshold triggers an opportunistic expiry sweep once either map
	// grows past it.
	evictThreshold = 5
)

// ErrNoFeatures is returned when a union is requested over a layer with no
// features passing the filter; there is nothing meaningful to cache.
var ErrNoFeatures = errors.New("geocache: no features to merge")

// IndexedFeature is the payload stored in a polygon bounding-box index.
type IndexedFeature struct {
	OID      int64
	Geometry geom.Geometry
}

// PolygonIndex is a built bbox index over one layer's polygon clones. The
// entry owns every indexed geometry.
type PolygonIndex struct {
	Index        geom.SpatialIndex
	Features     []IndexedFeature
	FeatureCount int
}

func (p *PolygonIndex) release() {
	for _, f := range p.Features {
		f.Geometry.Release()
	}
	p.Features = nil
}

type unionEntry struct {
	g       geom.Geometry
	builtAt time.Time
}

type indexEntry struct {
	idx     *PolygonIndex
	builtAt time.Time
}

// Cache holds the engine-lifetime union and polygon-index caches.
type Cache struct {
	unions   map[string]*unionEntry
	indexes  map[string]*indexEntry
	group    singleflight.Group
	newIndex func() geom.SpatialIndex
	logger   *slog.Logger
	maxAge   time.Duration
	now      func() time.Time
}

// New returns an empty cache. newIndex constructs the bbox index used for
// polygon-index entries.
func New(newIndex func() geom.SpatialIndex, maxAge time.Duration, logger *slog.Logger) *Cache {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		unions:   make(map[string]*unionEntry),
		indexes:  make(map[string]*indexEntry),
		newIndex: newIndex,
		logger:   logger,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// UnionKey derives the union-cache key for a table and filter expression.
func UnionKey(tableID, filterExpr string) string {
	if filterExpr == "" {
		return tableID + "_UNION"
	}
	return tableID + "_UNION_" + filterExpr
}

// IndexKey derives the polygon-index cache key.
func IndexKey(tableID, filterExpr string) string {
	return "poly_index_" + tableID + "_" + filterExpr
}

// Union returns the merged geometry of every feature of the layer passing
// pred (nil matches all), building and caching it on first use. The result
// is owned by the cache.
func (c *Cache) Union(ctx context.Context, layer geom.Layer, tableID, filterExpr string, pred func(geom.Feature) bool) (geom.Geometry, error) {
	key := UnionKey(tableID, filterExpr)
	if e, ok := c.unions[key]; ok {
		return e.g, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		start := c.now()
		g, err := c.buildUnion(ctx, layer, pred)
		if err != nil {
			return nil, err
		}
		c.unions[key] = &unionEntry{g: g, builtAt: c.now()}
		c.logger.Debug("built union geometry",
			"key", key,
			"elapsed", c.now().Sub(start),
		)
		c.sweepIfCrowded()
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(geom.Geometry), nil
}

func (c *Cache) buildUnion(ctx context.Context, layer geom.Layer, pred func(geom.Feature) bool) (geom.Geometry, error) {
	var clones []geom.Geometry
	defer func() {
		for _, g := range clones {
			g.Release()
		}
	}()

	layer.ResetReading()
	for f := layer.NextFeature(); f != nil; f = layer.NextFeature() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pred != nil && !pred(f) {
			continue
		}
		if g := f.Geometry(); g != nil {
			clones = append(clones, g.Clone())
		}
	}
	layer.ResetReading()

	if len(clones) == 0 {
		return nil, ErrNoFeatures
	}
	u, err := geom.UnionAll(clones)
	if err != nil {
		c.logger.Warn("batch union failed, falling back to sequential merge", "error", err)
		return geom.UnionSequential(clones)
	}
	return u, nil
}

// PolygonIndex returns a built bbox index over clones of the layer's
// features passing pred, cached per (table, filter). The returned structure
// and its geometries are owned by the cache.
func (c *Cache) PolygonIndex(ctx context.Context, layer geom.Layer, tableID, filterExpr string, pred func(geom.Feature) bool) (*PolygonIndex, error) {
	key := IndexKey(tableID, filterExpr)
	if e, ok := c.indexes[key]; ok {
		return e.idx, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		idx := &PolygonIndex{Index: c.newIndex()}
		layer.ResetReading()
		for f := layer.NextFeature(); f != nil; f = layer.NextFeature() {
			if err := ctx.Err(); err != nil {
				idx.release()
				return nil, err
			}
			if pred != nil && !pred(f) {
				continue
			}
			g := f.Geometry()
			if g == nil {
				continue
			}
			clone := g.Clone()
			idx.Features = append(idx.Features, IndexedFeature{OID: f.OID(), Geometry: clone})
			idx.Index.Insert(clone.Envelope(), IndexedFeature{OID: f.OID(), Geometry: clone})
			idx.FeatureCount++
		}
		layer.ResetReading()
		idx.Index.Build()

		c.indexes[key] = &indexEntry{idx: idx, builtAt: c.now()}
		c.logger.Debug("built polygon index", "key", key, "features", idx.FeatureCount)
		c.sweepIfCrowded()
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*PolygonIndex), nil
}

func (c *Cache) sweepIfCrowded() {
	if len(c.unions) > evictThreshold || len(c.indexes) > evictThreshold {
		c.ClearExpired(c.maxAge)
	}
}

// ClearExpired removes and disposes entries older than maxAge. A
// non-positive maxAge falls back to the configured age.
func (c *Cache) ClearExpired(maxAge time.Duration) {
	if maxAge <= 0 {
		maxAge = c.maxAge
	}
	cutoff := c.now().Add(-maxAge)
	for key, e := range c.unions {
		if e.builtAt.Before(cutoff) {
			e.g.Release()
			delete(c.unions, key)
			c.logger.Debug("evicted union cache entry", "key", key)
		}
	}
	for key, e := range c.indexes {
		if e.builtAt.Before(cutoff) {
			e.idx.release()
			delete(c.indexes, key)
			c.logger.Debug("evicted polygon index entry", "key", key)
		}
	}
}

// Clear disposes every entry. Called at engine shutdown.
func (c *Cache) Clear() {
	for key, e := range c.unions {
		e.g.Release()
		delete(c.unions, key)
	}
	for key, e := range c.indexes {
		e.idx.release()
		delete(c.indexes, key)
	}
}

// SetClock overrides the time source. Test hook.
func (c *Cache) SetClock(now func() time.Time) { c.now = now }
