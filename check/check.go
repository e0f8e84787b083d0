// Package check implements the relation evaluator library: the uniform
// evaluator contract, the case-type registry, and the ~25 topological and
// attribute checks built on the engine's spatial primitives.
package check

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/filter"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/internal/geocache"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
)

// ProgressFunc receives rate-limited evaluator progress. It is called
// synchronously on the evaluating goroutine and must not block.
type ProgressFunc func(model.ProgressEvent)

// SurfaceConfig names the polygon layers used to classify point surfaces
// and the per-surface minimum spacing for the density checks.
type SurfaceConfig struct {
	SidewalkLayer   string
	RoadwayLayer    string
	SidewalkSpacing float64
	RoadwaySpacing  float64
	FlatlandSpacing float64
}

// Config carries the tunable heuristics shared by the evaluators.
type Config struct {
	// IntersectionThreshold is the number of segments meeting at one point
	// from which a junction counts as a legitimate intersection and is
	// exempt from consistency checks.
	IntersectionThreshold int
	// AngleThresholdDeg exempts a junction when the direction change
	// between two connected segments exceeds it.
	AngleThresholdDeg float64
	// PercentTolerance is the residual-area/-length fraction under which a
	// feature still counts as contained. A heuristic, not a law; tune per
	// dataset.
	PercentTolerance float64
	// Surface configures the density family.
	Surface SurfaceConfig
	// HoleLayers are the polygon layers scanned by the hole-duplicate
	// check. Empty means the rule's main and related layers.
	HoleLayers []string
}

// DefaultConfig returns the stock heuristics.
func DefaultConfig() Config {
	return Config{
		IntersectionThreshold: 3,
		AngleThresholdDeg:     30,
		PercentTolerance:      0.01,
		Surface: SurfaceConfig{
			SidewalkSpacing: 10,
			RoadwaySpacing:  10,
			FlatlandSpacing: 20,
		},
	}
}

// Context is the uniform evaluator input: dataset access, the rule under
// evaluation, shared caches and the result sink. One Context serves exactly
// one evaluator invocation.
type Context struct {
	Dataset geom.Dataset
	// Layer resolves a layer by name; nil when the dataset has no such
	// layer.
	Layer func(name string) geom.Layer

	Result      *model.ValidationResult
	Rule        model.RelationRule
	Tolerance   float64
	FieldFilter string

	Caches   *geocache.Cache
	Logger   *slog.Logger
	Progress ProgressFunc
	Config   Config
}

// Evaluator is one relation-check algorithm. Evaluators append findings to
// ec.Result, report progress through ec.Progress and honor ctx cancellation
// at the top of every per-feature loop. A missing layer or field is logged
// and yields zero errors; it is never fatal.
type Evaluator interface {
	Evaluate(ctx context.Context, ec *Context) error
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, ec *Context) error

// Evaluate implements Evaluator.
func (f EvaluatorFunc) Evaluate(ctx context.Context, ec *Context) error {
	return f(ctx, ec)
}

// Registry maps case types to evaluators. One flat table; there is no
// legacy fallback chain.
type Registry struct {
	evaluators map[model.CaseType]Evaluator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{evaluators: make(map[model.CaseType]Evaluator)}
}

// Register binds an evaluator to a case type, replacing any previous
// binding.
func (r *Registry) Register(ct model.CaseType, ev Evaluator) {
	r.evaluators[ct] = ev
}

// Lookup returns the evaluator for a case type.
func (r *Registry) Lookup(ct model.CaseType) (Evaluator, bool) {
	ev, ok := r.evaluators[ct]
	return ev, ok
}

// CaseTypes returns the registered case types, sorted.
func (r *Registry) CaseTypes() []model.CaseType {
	out := make([]model.CaseType, 0, len(r.evaluators))
	for ct := range r.evaluators {
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// defaultTolerances are the per-case fallbacks applied when a rule carries
// no tolerance of its own.
var defaultTolerances = map[model.CaseType]float64{
	model.CasePointCoverage:             0,
	model.CasePointWithinPolygon:        0,
	model.CaseLineWithinPolygon:         0.01,
	model.CasePolygonWithinPolygon:      0.01,
	model.CasePolygonContainsLine:       0.01,
	model.CaseVertexAlignment:           0.01,
	model.CasePolygonNotOverlap:         0,
	model.CasePolygonNotOverlapRelated:  0,
	model.CasePolygonNotIntersectLine:   0,
	model.CasePolygonNotContainPoint:    0,
	model.CaseLineConnectivity:          0.01,
	model.CaseLineDisconnection:         0.01,
	model.CaseLineConnectivityByField:   0.01,
	model.CaseLineDisconnectByField:     0.01,
	model.CaseConnectedFieldConsistency: 0.01,
	model.CaseCenterlineFieldMismatch:   0.01,
	model.CaseSharpBend:                 45,
	model.CaseSelfIntersection:          0,
	model.CaseLineCrossLine:             0,
	model.CaseHoleDuplicate:             0.01,
	model.CaseDuplicateGeometry:         0.01,
	model.CasePointSpacing:              20,
	model.CasePointSpacingBySurface:     0,
	model.CaseVertexSpacing:             0.01,
}

// DefaultTolerance returns the fallback tolerance for a case type.
func DefaultTolerance(ct model.CaseType) float64 {
	return defaultTolerances[ct]
}

// mainLayer resolves the rule's main layer, logging when missing.
func (ec *Context) mainLayer() geom.Layer {
	l := ec.Layer(ec.Rule.MainTableName)
	if l == nil {
		ec.Logger.Warn("main layer not found, skipping rule",
			"rule", ec.Rule.RuleID,
			"layer", ec.Rule.MainTableName,
		)
	}
	return l
}

// relatedLayer resolves the rule's related layer, logging when missing.
func (ec *Context) relatedLayer() geom.Layer {
	l := ec.Layer(ec.Rule.RelatedTableName)
	if l == nil {
		ec.Logger.Warn("related layer not found, skipping rule",
			"rule", ec.Rule.RuleID,
			"layer", ec.Rule.RelatedTableName,
		)
	}
	return l
}

// featurePred returns the authoritative in-memory predicate for the rule's
// field filter, or nil when the rule carries none. Every parsed clause is
// evaluated per feature, so results never depend on a driver's pushdown
// support; layers the evaluators scan through filter.Apply see the clauses
// twice, which is harmless.
func (ec *Context) featurePred() func(geom.Feature) bool {
	if ec.FieldFilter == "" {
		return nil
	}
	p, ok := filter.Compile(ec.FieldFilter)
	if !ok {
		return nil
	}
	return p.Match
}

// addError appends a finding located at the centroid of g (zero coordinates
// when g is nil) against the rule's main table.
func (ec *Context) addError(code, msg string, fid int64, g geom.Geometry) *model.ValidationError {
	return ec.addErrorAt(code, msg, ec.Rule.MainTableID, ec.Rule.MainTableName, fid, g)
}

// addRelatedError appends a finding against the rule's related table.
func (ec *Context) addRelatedError(code, msg string, fid int64, g geom.Geometry) *model.ValidationError {
	return ec.addErrorAt(code, msg, ec.Rule.RelatedTableID, ec.Rule.RelatedTableName, fid, g)
}

func (ec *Context) addErrorAt(code, msg, tableID, tableName string, fid int64, g geom.Geometry) *model.ValidationError {
	e := model.ValidationError{
		ErrorCode: code,
		Message:   msg,
		TableID:   tableID,
		TableName: tableName,
		FeatureID: fid,
		Severity:  model.SeverityError,
	}
	if g != nil {
		e.X, e.Y = g.Envelope().Center()
	}
	if tableID != ec.Rule.MainTableID && ec.Rule.RelatedTableID != "" {
		e.SetMeta(model.MetadataRelatedTableID, ec.Rule.RelatedTableID)
		e.SetMeta(model.MetadataRelatedTableName, ec.Rule.RelatedTableName)
	}
	ec.Result.Add(e)
	return &ec.Result.Errors[len(ec.Result.Errors)-1]
}

// cacheUnavailable handles a failed union or index build: cancellation
// surfaces to the caller, anything else is logged and the rule skipped.
func (ec *Context) cacheUnavailable(ctx context.Context, err error, what string) error {
	if ctx.Err() != nil {
		return err
	}
	ec.Logger.Warn(what+" unavailable, skipping rule", "rule", ec.Rule.RuleID, "error", err)
	return nil
}

// stringifyAttr renders an attribute value for comparison and reporting.
func stringifyAttr(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// iterate walks the layer's features with cancellation checks and the
// safety iteration cap (at least 10000, or twice the reported count) that
// guards against drivers misreporting feature counts.
func (ec *Context) iterate(ctx context.Context, layer geom.Layer, fn func(geom.Feature) error) (int, error) {
	cap := layer.FeatureCount() * 2
	if cap < 10000 {
		cap = 10000
	}
	layer.ResetReading()
	n := 0
	for f := layer.NextFeature(); f != nil; f = layer.NextFeature() {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if n >= cap {
			ec.Logger.Warn("iteration safety cap reached",
				"layer", layer.Name(),
				"cap", cap,
			)
			break
		}
		n++
		if err := fn(f); err != nil {
			return n, err
		}
	}
	layer.ResetReading()
	return n, nil
}
