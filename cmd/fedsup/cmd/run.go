package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/edsu/fedsup/internal/report"
	"github.com/edsu/fedsup/internal/runner"
	"github.com/edsu/fedsup/internal/shutdown"
	"github.com/edsu/fedsup/internal/supervisor"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the invocation loop until interrupted",
	Long: `Run invokes feediverse, waits for it to exit, sleeps INTERVAL seconds
(default 900) and repeats forever. The child's exit status is recorded but
never interpreted: failures are retried on the same fixed schedule.

SIGINT or SIGTERM stops the loop; a child still running gets SIGTERM and,
after GRACE_PERIOD seconds, SIGKILL.

Example:
  CONFIG_FILE=/data/feediverse.yml STATE_FILE=/data/state.json fedsup run
  INTERVAL=60 VERBOSE=1 fedsup run
  METRICS_ADDR=:9090 fedsup run`,
	RunE: runSupervisor,
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Invoke feediverse a single time and exit with its status",
	Long: `Once performs exactly one supervised invocation and exits with the
child's exit code. Useful under cron, or for verifying flag construction
with DRY_RUN=1.`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(onceCmd)
}

func runSupervisor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	sessionID := uuid.NewString()

	metrics := &report.Metrics{}
	sup := supervisor.New(runner.New(cfg, sessionID, log), cfg.Sleep(), sessionID, log)
	sup.AddObserver(&supervisor.LogObserver{Log: log})
	sup.AddObserver(&supervisor.MetricsObserver{Metrics: metrics})

	mgr := shutdown.New(cfg.Grace()+5*time.Second, log)
	ctx := mgr.Context(context.Background())

	if cfg.MetricsAddr != "" {
		exporter := report.NewExporter(cfg.MetricsAddr, metrics, sup.Status, log)
		exporter.Start()
		mgr.Register(exporter.Shutdown)
	}

	sup.Run(ctx)
	mgr.Shutdown()
	return nil
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	sessionID := uuid.NewString()

	mgr := shutdown.New(cfg.Grace()+5*time.Second, log)
	ctx := mgr.Context(context.Background())

	res := runner.New(cfg, sessionID, log).Invoke(ctx, 1, "once")
	res.LogSummary(log)

	if !res.Started() {
		return fmt.Errorf("failed to start %s: %s", cfg.Command, res.StartErr)
	}
	if res.ExitCode != 0 {
		os.Exit(res.ExitCode)
	}
	return nil
}
