// Package flatgeobuf loads FlatGeobuf (.fgb) files into in-memory datasets.
// One file is one layer; the file's column schema becomes the layer schema
// and every attribute value is normalized to bool, int64, float64 or string
// so filter comparisons behave uniformly across drivers.
package flatgeobuf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	fgb "github.com/flatgeobuf/flatgeobuf/src/go"
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/paulmach/orb"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/driver/memory"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom/orbgeom"
)

// ErrNoIndex is returned for files without a packed spatial index; the
// upstream Go reader can only enumerate features through index search.
var ErrNoIndex = errors.New("flatgeobuf: file has no spatial index")

// Load reads a .fgb file into a single-layer dataset. The file is
// memory-mapped while loading; the returned dataset owns copies.
func Load(path, layerName string) (*memory.Dataset, error) {
	l, err := LoadLayer(path, layerName)
	if err != nil {
		return nil, err
	}
	return memory.Open(l), nil
}

// LoadLayer reads a .fgb file into one in-memory layer. Use it to merge
// several files into a combined dataset.
func LoadLayer(path, layerName string) (*memory.Layer, error) {
	f, err := fgb.New(path)
	if err != nil {
		return nil, fmt.Errorf("flatgeobuf: open %s: %w", path, err)
	}
	return buildLayer(f, layerName)
}

// LoadData reads a .fgb byte slice into a single-layer dataset.
func LoadData(data []byte, layerName string) (*memory.Dataset, error) {
	f, err := fgb.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("flatgeobuf: decode: %w", err)
	}
	l, err := buildLayer(f, layerName)
	if err != nil {
		return nil, err
	}
	return memory.Open(l), nil
}

func buildLayer(f *fgb.FlatGeoBuf, layerName string) (*memory.Layer, error) {
	h := f.Header()
	if h == nil {
		return nil, errors.New("flatgeobuf: missing header")
	}
	if layerName == "" {
		layerName = string(h.Name())
	}
	if h.IndexNodeSize() == 0 {
		return nil, ErrNoIndex
	}

	schema := schemaFromHeader(h)

	var features []*memory.Feature
	if h.EnvelopeLength() >= 4 {
		raw, err := f.Search(h.Envelope(0), h.Envelope(1), h.Envelope(2), h.Envelope(3))
		if err != nil {
			return nil, fmt.Errorf("flatgeobuf: scan: %w", err)
		}
		features = make([]*memory.Feature, 0, len(raw))
		for i, rf := range raw {
			mf := convertFeature(rf, h, int64(i+1))
			if mf != nil {
				features = append(features, mf)
			}
		}
	}

	return memory.NewLayer(layerName, schema, features), nil
}

func schemaFromHeader(h *flattypes.Header) geom.Schema {
	n := h.ColumnsLength()
	schema := make(geom.Schema, 0, n)
	for i := 0; i < n; i++ {
		var col flattypes.Column
		if !h.Columns(&col, i) {
			continue
		}
		schema = append(schema, geom.Field{
			Name: string(col.Name()),
			Type: fieldType(col.Type()),
		})
	}
	return schema
}

func fieldType(ct flattypes.ColumnType) geom.FieldType {
	switch ct {
	case flattypes.ColumnTypeBool:
		return geom.FieldBool
	case flattypes.ColumnTypeByte, flattypes.ColumnTypeUByte,
		flattypes.ColumnTypeShort, flattypes.ColumnTypeUShort,
		flattypes.ColumnTypeInt, flattypes.ColumnTypeUInt,
		flattypes.ColumnTypeLong, flattypes.ColumnTypeULong:
		return geom.FieldInt
	case flattypes.ColumnTypeFloat, flattypes.ColumnTypeDouble:
		return geom.FieldFloat
	default:
		return geom.FieldString
	}
}

func convertFeature(rf *flattypes.Feature, h *flattypes.Header, oid int64) *memory.Feature {
	if rf == nil {
		return nil
	}
	var raw flattypes.Geometry
	fg := rf.Geometry(&raw)
	if fg == nil {
		return nil
	}
	og := decodeGeometry(fg)
	if og == nil {
		return nil
	}

	attrs := map[string]any{}
	if n := rf.PropertiesLength(); n > 0 {
		data := make([]byte, n)
		for i := 0; i < n; i++ {
			data[i] = byte(rf.Properties(i))
		}
		attrs = decodeProperties(data, h)
	}

	return &memory.Feature{ID: oid, Geom: orbgeom.New(og), Attrs: attrs}
}

// decodeGeometry rebuilds an orb geometry from the flat xy/ends encoding.
func decodeGeometry(fg *flattypes.Geometry) orb.Geometry {
	switch fg.Type() {
	case flattypes.GeometryTypePoint:
		if fg.XyLength() < 2 {
			return nil
		}
		return orb.Point{fg.Xy(0), fg.Xy(1)}
	case flattypes.GeometryTypeMultiPoint:
		mp := make(orb.MultiPoint, 0, fg.XyLength()/2)
		for i := 0; i+1 < fg.XyLength(); i += 2 {
			mp = append(mp, orb.Point{fg.Xy(i), fg.Xy(i + 1)})
		}
		return mp
	case flattypes.GeometryTypeLineString:
		return orb.LineString(decodeRun(fg, 0, uint32(fg.XyLength()/2)))
	case flattypes.GeometryTypeMultiLineString:
		if fg.EndsLength() == 0 {
			return orb.MultiLineString{orb.LineString(decodeRun(fg, 0, uint32(fg.XyLength()/2)))}
		}
		mls := make(orb.MultiLineString, 0, fg.EndsLength())
		start := uint32(0)
		for i := 0; i < fg.EndsLength(); i++ {
			end := fg.Ends(i)
			mls = append(mls, orb.LineString(decodeRun(fg, start, end)))
			start = end
		}
		return mls
	case flattypes.GeometryTypePolygon:
		return decodePolygon(fg)
	case flattypes.GeometryTypeMultiPolygon:
		if fg.PartsLength() == 0 {
			return orb.MultiPolygon{decodePolygon(fg)}
		}
		mp := make(orb.MultiPolygon, 0, fg.PartsLength())
		for i := 0; i < fg.PartsLength(); i++ {
			var part flattypes.Geometry
			if fg.Parts(&part, i) {
				if poly := decodePolygon(&part); len(poly) > 0 {
					mp = append(mp, poly)
				}
			}
		}
		return mp
	case flattypes.GeometryTypeGeometryCollection:
		coll := make(orb.Collection, 0, fg.PartsLength())
		for i := 0; i < fg.PartsLength(); i++ {
			var part flattypes.Geometry
			if fg.Parts(&part, i) {
				if g := decodeGeometry(&part); g != nil {
					coll = append(coll, g)
				}
			}
		}
		return coll
	default:
		return nil
	}
}

func decodeRun(fg *flattypes.Geometry, start, end uint32) []orb.Point {
	pts := make([]orb.Point, 0, end-start)
	for j := start; j < end; j++ {
		idx := int(j) * 2
		if idx+1 < fg.XyLength() {
			pts = append(pts, orb.Point{fg.Xy(idx), fg.Xy(idx + 1)})
		}
	}
	return pts
}

func decodePolygon(fg *flattypes.Geometry) orb.Polygon {
	if fg.EndsLength() == 0 {
		return orb.Polygon{orb.Ring(decodeRun(fg, 0, uint32(fg.XyLength()/2)))}
	}
	poly := make(orb.Polygon, 0, fg.EndsLength())
	start := uint32(0)
	for i := 0; i < fg.EndsLength(); i++ {
		end := fg.Ends(i)
		poly = append(poly, orb.Ring(decodeRun(fg, start, end)))
		start = end
	}
	return poly
}

// decodeProperties unpacks the column-index/value pairs of a feature's
// property blob, normalizing every value to bool, int64, float64 or string.
func decodeProperties(data []byte, h *flattypes.Header) map[string]any {
	attrs := make(map[string]any)
	offset := 0
	for offset+2 <= len(data) {
		colIndex := int(binary.LittleEndian.Uint16(data[offset : offset+2]))
		offset += 2
		if colIndex >= h.ColumnsLength() {
			break
		}
		var col flattypes.Column
		if !h.Columns(&col, colIndex) {
			break
		}
		value, n := decodeValue(data[offset:], col.Type())
		if n == 0 {
			break
		}
		offset += n
		attrs[string(col.Name())] = value
	}
	return attrs
}

func decodeValue(data []byte, ct flattypes.ColumnType) (any, int) {
	switch ct {
	case flattypes.ColumnTypeBool:
		if len(data) < 1 {
			return nil, 0
		}
		return data[0] != 0, 1
	case flattypes.ColumnTypeByte:
		if len(data) < 1 {
			return nil, 0
		}
		return int64(int8(data[0])), 1
	case flattypes.ColumnTypeUByte:
		if len(data) < 1 {
			return nil, 0
		}
		return int64(data[0]), 1
	case flattypes.ColumnTypeShort:
		if len(data) < 2 {
			return nil, 0
		}
		return int64(int16(binary.LittleEndian.Uint16(data))), 2
	case flattypes.ColumnTypeUShort:
		if len(data) < 2 {
			return nil, 0
		}
		return int64(binary.LittleEndian.Uint16(data)), 2
	case flattypes.ColumnTypeInt:
		if len(data) < 4 {
			return nil, 0
		}
		return int64(int32(binary.LittleEndian.Uint32(data))), 4
	case flattypes.ColumnTypeUInt:
		if len(data) < 4 {
			return nil, 0
		}
		return int64(binary.LittleEndian.Uint32(data)), 4
	case flattypes.ColumnTypeLong, flattypes.ColumnTypeULong:
		if len(data) < 8 {
			return nil, 0
		}
		return int64(binary.LittleEndian.Uint64(data)), 8
	case flattypes.ColumnTypeFloat:
		if len(data) < 4 {
			return nil, 0
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data))), 4
	case flattypes.ColumnTypeDouble:
		if len(data) < 8 {
			return nil, 0
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(data)), 8
	case flattypes.ColumnTypeBinary:
		if len(data) < 4 {
			return nil, 0
		}
		n := int(binary.LittleEndian.Uint32(data))
		if len(data) < 4+n {
			return nil, 0
		}
		return string(data[4 : 4+n]), 4 + n
	default:
		// String, DateTime and Json are null-terminated text.
		i := bytes.IndexByte(data, 0)
		if i < 0 {
			return string(data), len(data)
		}
		return string(data[:i]), i + 1
	}
}
