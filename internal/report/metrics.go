package report

import "sync/atomic"

// Metrics are boring counters only. Every counter must be explainable by
// looking at a single invocation Result.
type Metrics struct {
	// Lifecycle
	InvocationsStarted   atomic.Uint64 // incremented when a child spawn is attempted
	InvocationsCompleted atomic.Uint64 // incremented when an iteration finishes (any outcome)

	// Outcome (source of truth: Result.ExitCode / Result.StartErr)
	ExitZero      atomic.Uint64 // exit_code=0
	ExitNonZero   atomic.Uint64 // exit_code!=0, child did run
	StartFailures atomic.Uint64 // child never started
}

// RecordResult updates all counters from a single immutable Result. This is
// the only way outcomes enter the metrics.
func (m *Metrics) RecordResult(r *Result) {
	m.InvocationsCompleted.Add(1)

	if !r.Started() {
		m.StartFailures.Add(1)
		return
	}
	if r.ExitCode == 0 {
		m.ExitZero.Add(1)
	} else {
		m.ExitNonZero.Add(1)
	}
}

// IncrStarted increments the spawn-attempt counter.
func (m *Metrics) IncrStarted() {
	m.InvocationsStarted.Add(1)
}

// Snapshot returns current counter values.
func (m *Metrics) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"invocations_started":   m.InvocationsStarted.Load(),
		"invocations_completed": m.InvocationsCompleted.Load(),
		"exit_zero":             m.ExitZero.Load(),
		"exit_non_zero":         m.ExitNonZero.Load(),
		"start_failures":        m.StartFailures.Load(),
	}
}
