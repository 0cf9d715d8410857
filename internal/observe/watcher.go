package observe

// Observation only. The watcher never signals, renices or otherwise
// touches the child; if sampling fails it goes quiet rather than interfere.

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/edsu/fedsup/internal/logging"
)

// Watcher passively samples a running child's resource usage and logs it at
// debug level. Used in verbose mode so long feediverse runs are visible.
type Watcher struct {
	pid      int32
	interval time.Duration
	log      *logging.Logger
}

// NewWatcher creates a watcher for a PID.
func NewWatcher(pid int, interval time.Duration, log *logging.Logger) *Watcher {
	return &Watcher{
		pid:      int32(pid),
		interval: interval,
		log:      log.WithField("pid", pid),
	}
}

// Watch samples until ctx is cancelled or the process exits. Blocking;
// run it in its own goroutine alongside the child.
func (w *Watcher) Watch(ctx context.Context) {
	proc, err := process.NewProcess(w.pid)
	if err != nil {
		// Process already gone, nothing to observe
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			running, err := proc.IsRunning()
			if err != nil || !running {
				return
			}
			w.sample(proc)
		}
	}
}

func (w *Watcher) sample(proc *process.Process) {
	fields := map[string]interface{}{}

	if cpuPct, err := proc.CPUPercent(); err == nil {
		fields["cpu_percent"] = cpuPct
	}
	if memInfo, err := proc.MemoryInfo(); err == nil && memInfo != nil {
		fields["rss_bytes"] = memInfo.RSS
	}
	if len(fields) == 0 {
		return
	}

	w.log.Debug("child resource sample", fields)
}
