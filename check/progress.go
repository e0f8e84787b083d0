package check

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
)

// progressDebounce is the minimum interval between intermediate progress
// events. The final completed event always fires.
const progressDebounce = 200 * time.Millisecond

// reporter emits time-gated progress events without ever blocking the
// evaluation loop.
type reporter struct {
	fn       ProgressFunc
	caseType model.CaseType
	total    int
	limiter  *rate.Limiter
}

func newReporter(ec *Context, total int) *reporter {
	return &reporter{
		fn:       ec.Progress,
		caseType: ec.Rule.CaseType,
		total:    total,
		limiter:  rate.NewLimiter(rate.Every(progressDebounce), 1),
	}
}

// step reports intermediate progress, at most once per debounce window.
func (r *reporter) step(processed int) {
	if r.fn == nil || !r.limiter.Allow() {
		return
	}
	r.fn(model.ProgressEvent{
		CaseType:  r.caseType,
		Processed: processed,
		Total:     r.total,
	})
}

// done reports the final completed event, bypassing the debounce.
func (r *reporter) done(processed int) {
	if r.fn == nil {
		return
	}
	r.fn(model.ProgressEvent{
		CaseType:  r.caseType,
		Processed: processed,
		Total:     r.total,
		Completed: true,
	})
}
