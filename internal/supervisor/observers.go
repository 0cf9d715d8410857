package supervisor

import (
	"github.com/edsu/fedsup/internal/logging"
	"github.com/edsu/fedsup/internal/report"
)

// MetricsObserver projects iteration outcomes into counters.
type MetricsObserver struct {
	Metrics *report.Metrics
}

func (o *MetricsObserver) OnInvocationStart(seq uint64) {
	o.Metrics.IncrStarted()
}

func (o *MetricsObserver) OnResult(r *report.Result) {
	o.Metrics.RecordResult(r)
}

// LogObserver emits the per-iteration summary line.
type LogObserver struct {
	Log *logging.Logger
}

func (o *LogObserver) OnInvocationStart(seq uint64) {}

func (o *LogObserver) OnResult(r *report.Result) {
	r.LogSummary(o.Log)
}
