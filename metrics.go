package spatialcheck

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordRule is called after each rule evaluation.
	// findings is the number of findings the rule produced, duration is the
	// total time taken, err is nil if successful.
	RecordRule(caseType string, findings int, duration time.Duration, err error)

	// RecordRun is called after each full validation run.
	// checked and skipped count rules, duration is the total time taken.
	RecordRun(checked, skipped int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRule(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRun(int, int, time.Duration)            {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RuleCount      atomic.Int64
	RuleErrors     atomic.Int64
	RuleFindings   atomic.Int64
	RuleTotalNanos atomic.Int64
	RunCount       atomic.Int64
	RunTotalNanos  atomic.Int64
	RulesChecked   atomic.Int64
	RulesSkipped   atomic.Int64
}

// RecordRule implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRule(caseType string, findings int, duration time.Duration, err error) {
	b.RuleCount.Add(1)
	b.RuleFindings.Add(int64(findings))
	b.RuleTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RuleErrors.Add(1)
	}
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(checked, skipped int, duration time.Duration) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	b.RulesChecked.Add(int64(checked))
	b.RulesSkipped.Add(int64(skipped))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RuleCount:     b.RuleCount.Load(),
		RuleErrors:    b.RuleErrors.Load(),
		RuleFindings:  b.RuleFindings.Load(),
		RuleAvgNanos:  b.getAvgRuleNanos(),
		RunCount:      b.RunCount.Load(),
		RunTotalNanos: b.RunTotalNanos.Load(),
		RulesChecked:  b.RulesChecked.Load(),
		RulesSkipped:  b.RulesSkipped.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgRuleNanos() int64 {
	count := b.RuleCount.Load()
	if count == 0 {
		return 0
	}
	return b.RuleTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RuleCount     int64
	RuleErrors    int64
	RuleFindings  int64
	RuleAvgNanos  int64
	RunCount      int64
	RunTotalNanos int64
	RulesChecked  int64
	RulesSkipped  int64
}
