package spatialcheck

import (
	"log/slog"
	"time"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/check"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/internal/geocache"
)

type options struct {
	logger      *Logger
	metrics     MetricsCollector
	registry    *check.Registry
	config      check.Config
	progress    check.ProgressFunc
	cacheMaxAge time.Duration
	changed     map[string]map[int64]struct{} // tableID -> changed feature IDs
}

// Option configures Engine constructor behavior.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithRegistry replaces the built-in evaluator registry. Use it to add
// custom case types or override built-in evaluators.
func WithRegistry(r *check.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithProgress configures a progress callback. Events arrive rate-limited
// on the evaluating goroutine; the callback must not block.
func WithProgress(fn check.ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithConfig replaces the whole heuristic configuration.
func WithConfig(cfg check.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithIntersectionThreshold sets the segment count from which a shared
// endpoint counts as a legitimate junction in the consistency checks.
func WithIntersectionThreshold(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.config.IntersectionThreshold = n
		}
	}
}

// WithAngleThreshold sets the direction change, in degrees, above which
// two connected segments count as crossing rather than continuing.
func WithAngleThreshold(deg float64) Option {
	return func(o *options) {
		if deg > 0 {
			o.config.AngleThresholdDeg = deg
		}
	}
}

// WithPercentTolerance sets the residual fraction under which a feature
// still counts as contained by the containment checks.
func WithPercentTolerance(frac float64) Option {
	return func(o *options) {
		if frac >= 0 {
			o.config.PercentTolerance = frac
		}
	}
}

// WithSurfaceConfig configures the surface-dependent point spacing check.
func WithSurfaceConfig(sc check.SurfaceConfig) Option {
	return func(o *options) {
		o.config.Surface = sc
	}
}

// WithHoleLayers names the polygon layers the hole-duplicate check scans.
func WithHoleLayers(layers ...string) Option {
	return func(o *options) {
		o.config.HoleLayers = layers
	}
}

// WithCacheMaxAge sets the age after which cached unions and indexes are
// rebuilt.
func WithCacheMaxAge(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cacheMaxAge = d
		}
	}
}

// WithChangeExclusion restricts findings against a table to the given
// changed feature IDs. Findings on unchanged features are dropped after
// evaluation; call once per table.
func WithChangeExclusion(tableID string, featureIDs []int64) Option {
	return func(o *options) {
		if o.changed == nil {
			o.changed = make(map[string]map[int64]struct{})
		}
		set := make(map[int64]struct{}, len(featureIDs))
		for _, id := range featureIDs {
			set[id] = struct{}{}
		}
		o.changed[tableID] = set
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:      NoopLogger(),
		metrics:     NoopMetricsCollector{},
		config:      check.DefaultConfig(),
		cacheMaxAge: geocache.DefaultMaxAge,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.registry == nil {
		o.registry = check.DefaultRegistry()
	}
	return o
}
