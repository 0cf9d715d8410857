package report

import (
	"time"

	"github.com/edsu/fedsup/internal/logging"
)

// Result is the immutable record of one child invocation. Set once when the
// child exits, never updated. All metrics and log summaries project from it.
type Result struct {
	// Identity
	Sequence  uint64 `json:"sequence"`
	SessionID string `json:"session_id"`
	PID       int    `json:"pid"`
	Mode      string `json:"mode"` // "loop" or "once"

	// Timing
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration_seconds"`

	// Outcome. ExitCode is -1 when the child never started.
	ExitCode int    `json:"exit_code"`
	StartErr string `json:"start_error,omitempty"`
}

// NewResult creates an immutable result for a finished invocation.
func NewResult(seq uint64, sessionID string, pid, exitCode int, start, end time.Time, mode string) *Result {
	return &Result{
		Sequence:  seq,
		SessionID: sessionID,
		PID:       pid,
		ExitCode:  exitCode,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Mode:      mode,
	}
}

// NewStartFailure records an invocation where the child could not be spawned
// at all (missing binary, permission error). The loop treats it like any
// other finished iteration.
func NewStartFailure(seq uint64, sessionID string, start time.Time, mode string, err error) *Result {
	r := NewResult(seq, sessionID, 0, -1, start, time.Now(), mode)
	r.StartErr = err.Error()
	return r
}

// Started reports whether the child process actually ran.
func (r *Result) Started() bool {
	return r.StartErr == ""
}

// LogSummary emits the one-line, grep-friendly record of this invocation.
func (r *Result) LogSummary(log *logging.Logger) {
	fields := map[string]interface{}{
		"seq":     r.Sequence,
		"pid":     r.PID,
		"exit":    r.ExitCode,
		"runtime": r.Duration.Round(time.Millisecond).String(),
		"mode":    r.Mode,
	}
	if r.StartErr != "" {
		fields["start_error"] = r.StartErr
		log.Error("invocation failed to start", fields)
		return
	}
	if r.ExitCode != 0 {
		// Non-zero is not an error for the loop, but ops still grep for it
		log.Warn("invocation finished", fields)
		return
	}
	log.Info("invocation finished", fields)
}
