package cmd

import (
	"github.com/spf13/cobra"

	"github.com/edsu/fedsup/internal/config"
	"github.com/edsu/fedsup/internal/logging"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fedsup",
	Short: "Supervisor for the feediverse RSS-to-Mastodon poster",
	Long: `fedsup repeatedly invokes the feediverse executable with flags derived
from the environment, sleeping a fixed interval between invocations.

A failing invocation is never fatal: whatever feediverse's exit status,
fedsup waits out the interval and tries again. Configuration comes from
environment variables (VERBOSE, DRY_RUN, CONFIG_FILE, STATE_FILE, DELAY,
DEDUPE, INTERVAL) or an optional YAML config file; the environment wins.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"fedsup config file (default is $HOME/.fedsup/config.yaml or /etc/fedsup/config.yaml)")
}

// loadConfig resolves the supervisor configuration once, at command start.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger builds the process logger from the resolved config.
func newLogger(cfg *config.Config) *logging.Logger {
	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.Verbose && level > logging.DEBUG {
		level = logging.DEBUG
	}
	return logging.NewLogger(level, cfg.LogJSON)
}
