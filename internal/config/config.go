package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultIntervalSeconds matches the 15 minute cron cadence the
	// feediverse README suggests.
	DefaultIntervalSeconds = 900

	// DefaultGraceSeconds is how long a child gets between SIGTERM and
	// SIGKILL when the supervisor is stopping.
	DefaultGraceSeconds = 10

	// DefaultCommand is the executable invoked each iteration. It must be
	// resolvable via PATH.
	DefaultCommand = "feediverse"
)

// Config is the resolved supervisor configuration. It is populated once at
// startup; the loop never re-reads the environment.
type Config struct {
	// Command is the child executable name.
	Command string `json:"command" yaml:"command"`

	// Child flag inputs. A flag is passed to the child iff its source
	// value is non-empty.
	Verbose    bool   `json:"verbose" yaml:"verbose"`
	DryRun     bool   `json:"dry_run" yaml:"dry_run"`
	ConfigFile string `json:"config_file" yaml:"config_file"`
	StateFile  string `json:"state_file" yaml:"state_file"`
	Delay      string `json:"delay" yaml:"delay"`
	Dedupe     string `json:"dedupe" yaml:"dedupe"`

	// IntervalSeconds is the pause between invocations. Never passed to
	// the child.
	IntervalSeconds int `json:"interval" yaml:"interval"`

	// GraceSeconds is the SIGTERM-to-SIGKILL window on shutdown.
	GraceSeconds int `json:"grace_period" yaml:"grace_period"`

	// MetricsAddr enables the /metrics listener when non-empty
	// (e.g. ":9090"). Empty means no listener at all.
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr"`

	LogLevel string `json:"log_level" yaml:"log_level"`
	LogJSON  bool   `json:"log_json" yaml:"log_json"`
}

// Load reads configuration from an optional YAML file and the environment.
// Environment variables win over file values. cfgFile may be empty, in which
// case the default search paths are tried and a missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath("$HOME/.fedsup")
		v.AddConfigPath("/etc/fedsup")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// A missing default config file is fine; env alone is a full config
		v.ReadInConfig()
	}

	v.BindEnv("command", "COMMAND")
	v.BindEnv("config_file", "CONFIG_FILE")
	v.BindEnv("state_file", "STATE_FILE")
	v.BindEnv("delay", "DELAY")
	v.BindEnv("dedupe", "DEDUPE")
	v.BindEnv("interval", "INTERVAL")
	v.BindEnv("grace_period", "GRACE_PERIOD")
	v.BindEnv("metrics_addr", "METRICS_ADDR")
	v.BindEnv("log_level", "LOG_LEVEL")

	v.SetDefault("command", DefaultCommand)

	cfg := &Config{
		Command:     v.GetString("command"),
		Verbose:     boolSetting(v, "verbose", "VERBOSE"),
		DryRun:      boolSetting(v, "dry_run", "DRY_RUN"),
		ConfigFile:  v.GetString("config_file"),
		StateFile:   v.GetString("state_file"),
		Delay:       v.GetString("delay"),
		Dedupe:      v.GetString("dedupe"),
		MetricsAddr: v.GetString("metrics_addr"),
		LogLevel:    v.GetString("log_level"),
		LogJSON:     boolSetting(v, "log_json", "LOG_JSON"),
	}

	interval, err := parseSeconds(v.GetString("interval"), DefaultIntervalSeconds, "INTERVAL")
	if err != nil {
		return nil, err
	}
	cfg.IntervalSeconds = interval

	grace, err := parseSeconds(v.GetString("grace_period"), DefaultGraceSeconds, "GRACE_PERIOD")
	if err != nil {
		return nil, err
	}
	cfg.GraceSeconds = grace

	return cfg, nil
}

// boolSetting resolves a boolean flag. In the environment any non-empty
// value enables it (VERBOSE=0 still means verbose, same as the shell wrapper
// this replaces); in a config file it is a regular YAML boolean.
func boolSetting(v *viper.Viper, key, envName string) bool {
	if val, ok := os.LookupEnv(envName); ok && val != "" {
		return true
	}
	return v.GetBool(key)
}

func parseSeconds(raw string, def int, name string) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive number of seconds", name, raw)
	}
	return n, nil
}

// Args builds the child argument list in fixed order: verbose, dry-run,
// config, state, delay, dedupe. Flags whose source is unset are omitted
// entirely. The interval is never part of the list.
func (c *Config) Args() []string {
	args := []string{}
	if c.Verbose {
		args = append(args, "--verbose")
	}
	if c.DryRun {
		args = append(args, "--dry-run")
	}
	if c.ConfigFile != "" {
		args = append(args, "--config", c.ConfigFile)
	}
	if c.StateFile != "" {
		args = append(args, "--state", c.StateFile)
	}
	if c.Delay != "" {
		args = append(args, "--delay", c.Delay)
	}
	if c.Dedupe != "" {
		args = append(args, "--dedupe", c.Dedupe)
	}
	return args
}

// Sleep returns the pause between invocations.
func (c *Config) Sleep() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Grace returns the shutdown grace period for the child.
func (c *Config) Grace() time.Duration {
	return time.Duration(c.GraceSeconds) * time.Second
}
