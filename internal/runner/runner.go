package runner

import (
	"context"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/edsu/fedsup/internal/config"
	"github.com/edsu/fedsup/internal/logging"
	"github.com/edsu/fedsup/internal/observe"
	"github.com/edsu/fedsup/internal/report"
)

// sampleInterval is how often the resource watcher polls a running child.
const sampleInterval = 5 * time.Second

// Runner performs one supervised child invocation. The child inherits the
// supervisor's stdin/stdout/stderr; nothing is captured or redirected.
type Runner struct {
	command   string
	args      []string
	grace     time.Duration
	verbose   bool
	sessionID string
	log       *logging.Logger
}

// New builds a runner from the resolved configuration.
func New(cfg *config.Config, sessionID string, log *logging.Logger) *Runner {
	return &Runner{
		command:   cfg.Command,
		args:      cfg.Args(),
		grace:     cfg.Grace(),
		verbose:   cfg.Verbose,
		sessionID: sessionID,
		log:       log,
	}
}

// Invoke spawns the child and blocks until it exits. The outcome is always a
// Result, never an error: a missing binary or a non-zero exit are recorded,
// not propagated, because the loop retries on its fixed schedule regardless.
//
// Cancelling ctx sends the child SIGTERM; after the grace period it is
// killed.
func (r *Runner) Invoke(ctx context.Context, seq uint64, mode string) *report.Result {
	timing := observe.NewTiming()

	cmd := exec.CommandContext(ctx, r.command, r.args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Polite stop: SIGTERM first, SIGKILL once WaitDelay expires
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = r.grace

	r.log.Debug("spawning child", map[string]interface{}{
		"seq":     seq,
		"command": r.command,
		"args":    r.args,
	})

	if err := cmd.Start(); err != nil {
		return report.NewStartFailure(seq, r.sessionID, timing.StartedAt, mode, err)
	}
	pid := cmd.Process.Pid

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if r.verbose {
		go observe.NewWatcher(pid, sampleInterval, r.log).Watch(watchCtx)
	}

	err := cmd.Wait()
	timing.Complete()

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	return report.NewResult(seq, r.sessionID, pid, exitCode,
		timing.StartedAt, timing.CompletedAt, mode)
}
