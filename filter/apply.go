package filter

import (
	"log/slog"
	"strings"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
)

// Normalize parses expr, remaps field names against the schema (one
// case-insensitive attempt per unknown field) and renders the expression
// with normalized quoting. ok is false when the expression is unparsable or
// references a field the schema does not carry; callers then continue
// unfiltered.
func Normalize(expr string, schema geom.Schema, logger *slog.Logger) (string, bool) {
	clauses, err := Parse(expr)
	if err != nil {
		logger.Warn("skipping unparsable field filter", "filter", expr, "error", err)
		return "", false
	}
	for i := range clauses {
		name := clauses[i].Field
		if schema.Has(name) {
			continue
		}
		remapped, ok := remapField(name, schema)
		if !ok {
			logger.Warn("field filter references unknown field",
				"filter", expr,
				"field", name,
			)
			return "", false
		}
		logger.Debug("remapped filter field", "from", name, "to", remapped)
		clauses[i].Field = remapped
	}
	return Render(clauses), true
}

func remapField(name string, schema geom.Schema) (string, bool) {
	for _, f := range schema {
		if strings.EqualFold(f.Name, name) {
			return f.Name, true
		}
	}
	return "", false
}

// Handle is a scoped pushdown filter application. Release always resets the
// layer's attribute filter, including when the apply step failed, so an
// evaluator can defer it unconditionally.
type Handle struct {
	layer    geom.Layer
	released bool
}

// Apply normalizes expr against the layer schema and attempts to push it
// down. Driver rejection is logged and left behind: the layer stays
// unfiltered and callers that need IN/NOT IN semantics rely on the
// in-memory predicate instead.
func Apply(layer geom.Layer, expr string, logger *slog.Logger) *Handle {
	h := &Handle{layer: layer}
	if layer == nil || strings.TrimSpace(expr) == "" {
		return h
	}
	normalized, ok := Normalize(expr, layer.Schema(), logger)
	if !ok {
		return h
	}
	if err := layer.SetAttributeFilter(normalized); err != nil {
		logger.Warn("attribute filter pushdown rejected; continuing unfiltered",
			"layer", layer.Name(),
			"filter", normalized,
			"error", err,
		)
	}
	return h
}

// Release clears the layer's attribute filter. Safe to call more than once.
func (h *Handle) Release() {
	if h.released || h.layer == nil {
		return
	}
	h.released = true
	// Reset must happen even when the original apply failed; a driver may
	// have partially applied the expression.
	_ = h.layer.SetAttributeFilter("")
	h.layer.ResetReading()
}
