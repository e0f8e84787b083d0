// Package geom declares the interfaces of the external geometry and vector
// I/O collaborators: datasets, layers, features, geometries and the
// bounding-box spatial index. The engine is written entirely against these
// interfaces; concrete kernels (driver/memory, geom/orbgeom) plug in
// underneath.
package geom

// Type enumerates the geometry types the engine distinguishes.
type Type int

const (
	// TypeUnknown marks geometries the kernel cannot classify.
	TypeUnknown Type = iota
	// TypePoint is a single coordinate.
	TypePoint
	// TypeMultiPoint is a set of coordinates.
	TypeMultiPoint
	// TypeLineString is an ordered vertex chain.
	TypeLineString
	// TypeMultiLineString is a set of vertex chains.
	TypeMultiLineString
	// TypePolygon is an exterior ring plus zero or more holes.
	TypePolygon
	// TypeMultiPolygon is a set of polygons.
	TypeMultiPolygon
	// TypeCollection is a heterogeneous geometry collection.
	TypeCollection
)

func (t Type) String() string {
	switch t {
	case TypePoint:
		return "Point"
	case TypeMultiPoint:
		return "MultiPoint"
	case TypeLineString:
		return "LineString"
	case TypeMultiLineString:
		return "MultiLineString"
	case TypePolygon:
		return "Polygon"
	case TypeMultiPolygon:
		return "MultiPolygon"
	case TypeCollection:
		return "Collection"
	default:
		return "Unknown"
	}
}

// IsPolygonal reports whether t is a polygon or multi-polygon.
func (t Type) IsPolygonal() bool {
	return t == TypePolygon || t == TypeMultiPolygon
}

// IsLinear reports whether t is a line or multi-line.
func (t Type) IsLinear() bool {
	return t == TypeLineString || t == TypeMultiLineString
}

// Geometry is the primitive-operation surface of the geometry kernel.
//
// Set operations and predicates return an error when the kernel cannot
// perform the operation on the given operands; callers treat such failures
// per-pair (log and skip), never as fatal.
//
// Ownership: geometries returned by Clone and by the set operations are owned
// by the caller and must be released exactly once via Release.
type Geometry interface {
	Type() Type

	Union(other Geometry) (Geometry, error)
	Difference(other Geometry) (Geometry, error)
	Intersection(other Geometry) (Geometry, error)
	Buffer(distance float64, segments int) (Geometry, error)
	Boundary() (Geometry, error)
	MakeValid() (Geometry, error)

	Area() float64
	Length() float64
	Distance(other Geometry) (float64, error)

	Within(other Geometry) (bool, error)
	Contains(other Geometry) (bool, error)
	Overlaps(other Geometry) (bool, error)
	Intersects(other Geometry) (bool, error)

	Envelope() Envelope
	// PointCount, X and Y expose the flattened vertex sequence.
	PointCount() int
	X(i int) float64
	Y(i int) float64

	Clone() Geometry
	Release()
}

// SharedAreaComputer is implemented by kernels that can measure the area two
// polygonal geometries have in common without constructing the intersection
// geometry.
type SharedAreaComputer interface {
	SharedArea(other Geometry) (float64, error)
}

// PointMaker is implemented by geometries whose kernel can mint point
// geometries compatible with its set operations and predicates.
type PointMaker interface {
	NewPoint(x, y float64) Geometry
}

// RingProvider is implemented by polygonal geometries that expose their
// rings. Each returned ring is a standalone polygon geometry owned by the
// caller.
type RingProvider interface {
	// ExteriorRings returns one polygon per part, holes stripped.
	ExteriorRings() []Geometry
	// InteriorRings returns every hole, each as a standalone polygon.
	InteriorRings() []Geometry
}

// FieldType enumerates attribute field types.
type FieldType int

const (
	// FieldUnknown marks unrecognized field types.
	FieldUnknown FieldType = iota
	// FieldInt is a 64-bit integer field.
	FieldInt
	// FieldFloat is a 64-bit float field.
	FieldFloat
	// FieldString is a text field.
	FieldString
	// FieldBool is a boolean field.
	FieldBool
)

// Field is one attribute column of a layer schema.
type Field struct {
	Name string
	Type FieldType
}

// Schema is the ordered attribute schema of a layer.
type Schema []Field

// Has reports whether the schema carries a field with the exact name.
func (s Schema) Has(name string) bool {
	for _, f := range s {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Feature is one record of a layer: an object id, a geometry and attributes.
// The returned geometry is borrowed from the layer; clone it to keep it past
// the next read.
type Feature interface {
	OID() int64
	Geometry() Geometry
	Attr(name string) (any, bool)
}

// Layer is an ordered, filterable feature collection.
//
// Spatial and attribute filters are sticky until reset with a nil/empty
// argument; evaluators that set a filter must restore the unfiltered state
// before returning.
type Layer interface {
	Name() string
	FeatureCount() int
	ResetReading()
	// NextFeature returns the next feature passing the active filters, or
	// nil when the scan is exhausted.
	NextFeature() Feature
	SetSpatialFilter(g Geometry)
	// SetAttributeFilter applies a pushdown filter expression. Drivers with
	// weak predicate support return an error for expressions they cannot
	// honor; callers must then filter in memory.
	SetAttributeFilter(expr string) error
	Schema() Schema
}

// Dataset is an open vector data source.
type Dataset interface {
	LayerCount() int
	LayerByIndex(i int) Layer
	// LayerByName returns nil when no layer has the given name.
	LayerByName(name string) Layer
	Close() error
}

// SpatialIndex is the bounding-box index collaborator: bulk insert, one
// Build, then envelope queries.
type SpatialIndex interface {
	Insert(env Envelope, payload any)
	Build()
	Query(env Envelope) []any
}
