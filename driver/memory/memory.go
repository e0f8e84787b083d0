// Package memory implements an in-memory dataset driver. It backs the unit
// tests and the FlatGeobuf loader, and emulates the weak attribute pushdown
// of common vector drivers: IN and NOT IN are rejected so callers exercise
// their in-memory fallback.
package memory

import (
	"fmt"
	"strings"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/filter"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
)

// Feature is one in-memory record.
type Feature struct {
	ID    int64
	Geom  geom.Geometry
	Attrs map[string]any
}

// OID implements geom.Feature.
func (f *Feature) OID() int64 { return f.ID }

// Geometry implements geom.Feature.
func (f *Feature) Geometry() geom.Geometry { return f.Geom }

// Attr implements geom.Feature.
func (f *Feature) Attr(name string) (any, bool) {
	v, ok := f.Attrs[name]
	return v, ok
}

// Layer is an in-memory feature collection.
type Layer struct {
	name     string
	schema   geom.Schema
	features []*Feature

	pos         int
	spatialEnv  *geom.Envelope
	attrClauses []filter.Clause
}

var _ geom.Layer = (*Layer)(nil)

// NewLayer builds a layer over the given features. The layer borrows the
// features and their geometries for its lifetime.
func NewLayer(name string, schema geom.Schema, features []*Feature) *Layer {
	return &Layer{name: name, schema: schema, features: features}
}

// Name implements geom.Layer.
func (l *Layer) Name() string { return l.name }

// Schema implements geom.Layer.
func (l *Layer) Schema() geom.Schema { return l.schema }

// FeatureCount implements geom.Layer. The count ignores active filters, as
// real drivers report the unfiltered total cheaply.
func (l *Layer) FeatureCount() int { return len(l.features) }

// ResetReading implements geom.Layer.
func (l *Layer) ResetReading() { l.pos = 0 }

// SetSpatialFilter implements geom.Layer. A nil geometry clears the filter.
func (l *Layer) SetSpatialFilter(g geom.Geometry) {
	if g == nil {
		l.spatialEnv = nil
		return
	}
	env := g.Envelope()
	l.spatialEnv = &env
}

// SetAttributeFilter implements geom.Layer. IN and NOT IN are rejected:
// this driver mirrors backends whose SQL dialect cannot push them down,
// so callers fall back to in-memory predicates.
func (l *Layer) SetAttributeFilter(expr string) error {
	if strings.TrimSpace(expr) == "" {
		l.attrClauses = nil
		return nil
	}
	clauses, err := filter.Parse(expr)
	if err != nil {
		return err
	}
	for _, c := range clauses {
		if c.Op == filter.OpIn || c.Op == filter.OpNotIn {
			return fmt.Errorf("memory: %s not supported in attribute filter", c.Op)
		}
		if !l.schema.Has(c.Field) {
			return fmt.Errorf("memory: unknown field %q", c.Field)
		}
	}
	l.attrClauses = clauses
	return nil
}

// NextFeature implements geom.Layer.
func (l *Layer) NextFeature() geom.Feature {
	for l.pos < len(l.features) {
		f := l.features[l.pos]
		l.pos++
		if l.matches(f) {
			return f
		}
	}
	return nil
}

func (l *Layer) matches(f *Feature) bool {
	if l.spatialEnv != nil {
		if f.Geom == nil || !l.spatialEnv.Intersects(f.Geom.Envelope()) {
			return false
		}
	}
	for _, c := range l.attrClauses {
		v, ok := f.Attrs[c.Field]
		if !c.Match(v, ok) {
			return false
		}
	}
	return true
}

// Dataset is an in-memory dataset: an ordered set of layers.
type Dataset struct {
	layers []*Layer
	byName map[string]*Layer
	closed bool
}

var _ geom.Dataset = (*Dataset)(nil)

// Open builds a dataset over the given layers.
func Open(layers ...*Layer) *Dataset {
	ds := &Dataset{byName: make(map[string]*Layer, len(layers))}
	for _, l := range layers {
		ds.layers = append(ds.layers, l)
		ds.byName[l.name] = l
	}
	return ds
}

// LayerCount implements geom.Dataset.
func (ds *Dataset) LayerCount() int { return len(ds.layers) }

// LayerByIndex implements geom.Dataset.
func (ds *Dataset) LayerByIndex(i int) geom.Layer {
	if i < 0 || i >= len(ds.layers) {
		return nil
	}
	return ds.layers[i]
}

// LayerByName implements geom.Dataset.
func (ds *Dataset) LayerByName(name string) geom.Layer {
	l, ok := ds.byName[name]
	if !ok {
		return nil
	}
	return l
}

// Close implements geom.Dataset. Feature geometries are released once.
func (ds *Dataset) Close() error {
	if ds.closed {
		return nil
	}
	ds.closed = true
	for _, l := range ds.layers {
		for _, f := range l.features {
			if f.Geom != nil {
				f.Geom.Release()
			}
		}
	}
	return nil
}
