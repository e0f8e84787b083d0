package spatialcheck

import (
	"context"
	"time"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/check"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/geom"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/internal/geocache"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/spatial"
)

// Engine evaluates relation rules against a vector dataset. It owns the
// geometry caches shared by the evaluators; one Engine serves one dataset.
// Engines are safe for sequential reuse across runs, not for concurrent
// Process calls.
type Engine struct {
	dataset  geom.Dataset
	caches   *geocache.Cache
	registry *check.Registry
	logger   *Logger
	metrics  MetricsCollector
	progress check.ProgressFunc
	config   check.Config
	changed  map[string]map[int64]struct{}
	closed   bool
}

// New creates an Engine over the dataset.
func New(dataset geom.Dataset, optFns ...Option) (*Engine, error) {
	if dataset == nil {
		return nil, ErrNilDataset
	}
	o := applyOptions(optFns)
	return &Engine{
		dataset: dataset,
		caches: geocache.New(func() geom.SpatialIndex {
			return spatial.NewBBoxIndex()
		}, o.cacheMaxAge, o.logger.Logger),
		registry: o.registry,
		logger:   o.logger,
		metrics:  o.metrics,
		progress: o.progress,
		config:   o.config,
		changed:  o.changed,
	}, nil
}

// Process evaluates every rule and returns the combined result. A rule
// with no registered evaluator is counted as skipped, never fatal; the
// only error Process returns is context cancellation or an evaluator's
// internal failure.
func (e *Engine) Process(ctx context.Context, rules []model.RelationRule) (*model.ValidationResult, error) {
	if e.closed {
		return nil, ErrClosed
	}
	start := time.Now()
	result := model.NewValidationResult()
	for _, rule := range rules {
		if err := e.processRule(ctx, rule, result); err != nil {
			return result, err
		}
	}
	e.metrics.RecordRun(result.CheckedRules, result.SkippedRules, time.Since(start))
	e.logger.LogRun(ctx, result.CheckedRules, result.SkippedRules, result.ErrorCount, result.WarningCount)
	return result, nil
}

// ProcessRule evaluates a single rule into a fresh result.
func (e *Engine) ProcessRule(ctx context.Context, rule model.RelationRule) (*model.ValidationResult, error) {
	if e.closed {
		return nil, ErrClosed
	}
	result := model.NewValidationResult()
	if err := e.processRule(ctx, rule, result); err != nil {
		return result, err
	}
	return result, nil
}

func (e *Engine) processRule(ctx context.Context, rule model.RelationRule, result *model.ValidationResult) error {
	ev, ok := e.registry.Lookup(rule.CaseType)
	if !ok {
		e.logger.Warn("no evaluator for case type, skipping rule",
			"rule", rule.RuleID,
			"case", string(rule.CaseType),
		)
		result.SkippedRules++
		return nil
	}

	start := time.Now()
	before := len(result.Errors)
	ec := &check.Context{
		Dataset:     e.dataset,
		Layer:       e.dataset.LayerByName,
		Result:      result,
		Rule:        rule,
		Tolerance:   rule.ToleranceOr(check.DefaultTolerance(rule.CaseType)),
		FieldFilter: rule.FieldFilter,
		Caches:      e.caches,
		Logger:      e.logger.Logger,
		Progress:    e.progress,
		Config:      e.config,
	}
	err := ev.Evaluate(ctx, ec)
	e.finishFindings(result, before, rule)
	e.metrics.RecordRule(string(rule.CaseType), len(result.Errors)-before, time.Since(start), err)
	e.logger.LogRule(ctx, rule.RuleID, len(result.Errors)-before, err)
	if err != nil {
		return err
	}
	result.CheckedRules++
	return nil
}

// finishFindings backfills the rule metadata every finding carries and
// applies the change exclusion: when a table has a registered change set,
// findings on features outside it are dropped.
func (e *Engine) finishFindings(result *model.ValidationResult, from int, rule model.RelationRule) {
	kept := result.Errors[:from]
	dropped := false
	for i := from; i < len(result.Errors); i++ {
		f := &result.Errors[i]
		if _, ok := f.Metadata[model.MetadataRelationType]; !ok {
			f.SetMeta(model.MetadataRelationType, string(rule.CaseType))
		}
		if set, ok := e.changed[f.TableID]; ok {
			if _, changed := set[f.FeatureID]; !changed {
				dropped = true
				continue
			}
		}
		kept = append(kept, *f)
	}
	if dropped || len(kept) != len(result.Errors) {
		result.Errors = kept
		result.Recount()
	}
}

// ValidateRules reports the first rule whose case type has no registered
// evaluator. Process merely skips such rules; callers wanting a hard
// failure on a miswritten catalog run this first.
func (e *Engine) ValidateRules(rules []model.RelationRule) error {
	for _, rule := range rules {
		if _, ok := e.registry.Lookup(rule.CaseType); !ok {
			return &ErrUnknownCaseType{CaseType: rule.CaseType}
		}
	}
	return nil
}

// ClearExpiredCaches drops cached unions and indexes older than the
// configured age. Long-lived engines call this between runs.
func (e *Engine) ClearExpiredCaches() {
	e.caches.ClearExpired(0)
}

// Close releases the cached geometry. The engine is unusable afterwards;
// the dataset itself stays open and belongs to the caller.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.caches.Clear()
	return nil
}
