package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/edsu/fedsup/internal/config"
)

var (
	configOutput string
	configForce  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and bootstrap supervisor configuration",
	Long:  `Commands for inspecting the resolved configuration and writing a starter config file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Long: `Show resolves configuration exactly like run does (config file, then
environment on top) and prints the result, including the child command line
that would be executed.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the resolved configuration to a YAML file",
	Long: `Init snapshots the currently resolved configuration (defaults plus
environment) into a YAML config file. Default path is $HOME/.fedsup/config.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configShowCmd.Flags().StringVarP(&configOutput, "output", "o", "table",
		"Output format: table, json, yaml")
	configInitCmd.Flags().BoolVar(&configForce, "force", false,
		"Overwrite an existing config file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	childCmd := strings.Join(append([]string{cfg.Command}, cfg.Args()...), " ")

	switch configOutput {
	case "json":
		out := struct {
			*config.Config
			ChildCommand string `json:"child_command"`
		}{cfg, childCmd}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Print(string(data))
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Setting", "Value")
		table.Append("Command", cfg.Command)
		table.Append("Verbose", strconv.FormatBool(cfg.Verbose))
		table.Append("Dry run", strconv.FormatBool(cfg.DryRun))
		table.Append("Config file", orUnset(cfg.ConfigFile))
		table.Append("State file", orUnset(cfg.StateFile))
		table.Append("Delay", orUnset(cfg.Delay))
		table.Append("Dedupe", orUnset(cfg.Dedupe))
		table.Append("Interval", fmt.Sprintf("%ds", cfg.IntervalSeconds))
		table.Append("Grace period", fmt.Sprintf("%ds", cfg.GraceSeconds))
		table.Append("Metrics addr", orUnset(cfg.MetricsAddr))
		table.Render()
		fmt.Printf("\nChild command: %s\n", childCmd)
	}

	return nil
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to find home directory: %w", err)
		}
		path = filepath.Join(home, ".fedsup", "config.yaml")
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}
