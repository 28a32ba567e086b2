package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/grainchain/grainbench/internal/comparator"
	"github.com/grainchain/grainbench/internal/projectconfig"
	"github.com/grainchain/grainbench/internal/regression"
	"github.com/grainchain/grainbench/internal/store"
	"github.com/spf13/cobra"
)

var version = "dev"

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	resultsDir string
	overrides  []string
}

// app is the per-invocation state built from config and flags.
type app struct {
	cfg   *projectconfig.ProjectConfig
	store *store.FileStore
	cmp   *comparator.Comparator
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "grainbench",
		Short: "grainbench - compare sandbox provider benchmark results",
		Long: `grainbench analyzes benchmark results produced by the grainchain
benchmark suite.

It compares providers, tracks metric trends over time, detects performance
regressions between time windows and recommends a provider for a use case.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to .grainbench.yaml (default: search upward from the working directory)")
	cmd.PersistentFlags().StringVar(&opts.resultsDir, "results-dir", "", "Directory containing benchmark result files")
	cmd.PersistentFlags().StringArrayVar(&opts.overrides, "set", nil, "Override a config value (key=value, e.g. analysis.baseline_days=3)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newCompareCommand(opts))
	cmd.AddCommand(newTrendsCommand(opts))
	cmd.AddCommand(newRegressionsCommand(opts))
	cmd.AddCommand(newRecommendCommand(opts))
	cmd.AddCommand(newReportCommand(opts))
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newFetchCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newInitCommand(opts))

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

// loadConfig reads the project config and applies --set and --results-dir.
func (o *globalOptions) loadConfig() (*projectconfig.ProjectConfig, error) {
	var (
		cfg *projectconfig.ProjectConfig
		err error
	)
	if o.configPath != "" {
		cfg, err = projectconfig.LoadFile(o.configPath)
	} else {
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			return nil, fmt.Errorf("getting working directory: %w", wdErr)
		}
		cfg, err = projectconfig.Load(wd)
	}
	if err != nil {
		return nil, err
	}

	overrides, err := parseOverrides(o.overrides)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(overrides); err != nil {
		return nil, err
	}
	if o.resultsDir != "" {
		cfg.Paths.Results = o.resultsDir
	}
	return cfg, nil
}

// open loads config and wires the store and comparator.
func (o *globalOptions) open() (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	fs := store.NewFileStore(cfg.Paths.Results)
	cmp := comparator.New(fs, comparator.WithThresholds(regression.Thresholds(cfg.Analysis.RegressionThresholds)))
	slog.Debug("opened results", "dir", cfg.Paths.Results)
	return &app{cfg: cfg, store: fs, cmp: cmp}, nil
}

func parseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", p)
		}
		out[strings.TrimSpace(key)] = value
	}
	return out, nil
}

// intFlag returns the flag value if it was set, otherwise fallback.
func intFlag(cmd *cobra.Command, name string, fallback int) int {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return fallback
}

// floatFlag returns the flag value if it was set, otherwise fallback.
func floatFlag(cmd *cobra.Command, name string, fallback float64) float64 {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetFloat64(name)
		return v
	}
	return fallback
}
