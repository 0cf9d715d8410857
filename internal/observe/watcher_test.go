package observe

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/edsu/fedsup/internal/logging"
)

func TestWatchReturnsWhenProcessGone(t *testing.T) {
	// A pid far beyond pid_max never exists
	w := NewWatcher(1<<22, time.Millisecond, logging.NewLogger(logging.FATAL, false))

	done := make(chan struct{})
	go func() {
		w.Watch(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop for a nonexistent process")
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	// Watch our own pid, which definitely exists, and rely on cancellation
	w := NewWatcher(os.Getpid(), time.Millisecond, logging.NewLogger(logging.FATAL, false))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Watch(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on cancellation")
	}
}

func TestTimingDuration(t *testing.T) {
	timing := NewTiming()
	time.Sleep(10 * time.Millisecond)
	timing.Complete()

	if timing.Duration() < 10*time.Millisecond {
		t.Errorf("Duration = %v, want >= 10ms", timing.Duration())
	}
	if timing.CompletedAt.Before(timing.StartedAt) {
		t.Error("CompletedAt before StartedAt")
	}
}
