package supervisor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edsu/fedsup/internal/logging"
	"github.com/edsu/fedsup/internal/report"
)

// fakeInvoker stands in for the child process. It records invocation order
// and detects overlapping invocations.
type fakeInvoker struct {
	mu        sync.Mutex
	seqs      []uint64
	exitCodes []int // exit code per invocation; 0 past the end
	runFor    time.Duration

	active  atomic.Int32
	overlap atomic.Bool
}

func (f *fakeInvoker) Invoke(ctx context.Context, seq uint64, mode string) *report.Result {
	if f.active.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.active.Add(-1)

	f.mu.Lock()
	f.seqs = append(f.seqs, seq)
	exit := 0
	if int(seq) <= len(f.exitCodes) {
		exit = f.exitCodes[seq-1]
	}
	f.mu.Unlock()

	if f.runFor > 0 {
		time.Sleep(f.runFor)
	}

	start := time.Now()
	return report.NewResult(seq, "test-session", 4242, exit, start, time.Now(), mode)
}

func (f *fakeInvoker) invocations() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint64, len(f.seqs))
	copy(out, f.seqs)
	return out
}

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.FATAL, false)
}

// runUntil starts the supervisor and cancels it once cond holds.
func runUntil(t *testing.T, sup *Supervisor, cond func() bool) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	require.Eventually(t, cond, 5*time.Second, time.Millisecond,
		"supervisor never reached expected progress")
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop after cancellation")
	}
}

func TestSequentialInvocations(t *testing.T) {
	inv := &fakeInvoker{runFor: 5 * time.Millisecond}
	sup := New(inv, time.Millisecond, "test-session", testLogger())

	runUntil(t, sup, func() bool { return len(inv.invocations()) >= 2 })

	seqs := inv.invocations()
	require.GreaterOrEqual(t, len(seqs), 2)
	for i, seq := range seqs {
		assert.Equal(t, uint64(i+1), seq, "invocations must be ordered and gap-free")
	}
	assert.False(t, inv.overlap.Load(), "a new child must not start before the previous one exits")
}

func TestLoopSurvivesFailingChild(t *testing.T) {
	// Second invocation fails; a third must still happen
	inv := &fakeInvoker{exitCodes: []int{0, 1, 0}}
	sup := New(inv, time.Millisecond, "test-session", testLogger())

	runUntil(t, sup, func() bool { return len(inv.invocations()) >= 3 })

	assert.GreaterOrEqual(t, len(inv.invocations()), 3,
		"loop must continue past a non-zero exit")
}

func TestObserversSeeEveryIteration(t *testing.T) {
	inv := &fakeInvoker{exitCodes: []int{0, 7, 0}}
	sup := New(inv, time.Millisecond, "test-session", testLogger())

	metrics := &report.Metrics{}
	sup.AddObserver(&MetricsObserver{Metrics: metrics})
	sup.AddObserver(&LogObserver{Log: testLogger()})

	runUntil(t, sup, func() bool { return metrics.InvocationsCompleted.Load() >= 3 })

	snap := metrics.Snapshot()
	assert.GreaterOrEqual(t, snap["invocations_started"], uint64(3))
	assert.GreaterOrEqual(t, snap["invocations_completed"], uint64(3))
	assert.GreaterOrEqual(t, snap["exit_non_zero"], uint64(1))
	assert.GreaterOrEqual(t, snap["exit_zero"], uint64(2))
}

func TestCancelDuringWaitStops(t *testing.T) {
	// A long interval: cancellation must cut the wait short, not sit it out
	inv := &fakeInvoker{}
	sup := New(inv, time.Hour, "test-session", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(inv.invocations()) >= 1 },
		5*time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor kept sleeping after cancellation")
	}

	assert.Len(t, inv.invocations(), 1)
	assert.Equal(t, StateStopped, State(sup.Status().State))
}

func TestStatusReflectsProgress(t *testing.T) {
	inv := &fakeInvoker{}
	sup := New(inv, time.Millisecond, "session-xyz", testLogger())

	assert.Equal(t, string(StateIdle), sup.Status().State)

	runUntil(t, sup, func() bool { return sup.Status().Iterations >= 2 })

	st := sup.Status()
	assert.Equal(t, "session-xyz", st.SessionID)
	assert.GreaterOrEqual(t, st.Iterations, uint64(2))
}
