package main

import (
	"fmt"
	"io"
	"time"

	"github.com/grainchain/grainbench/internal/metrics"
	"github.com/grainchain/grainbench/internal/models"
	"github.com/grainchain/grainbench/internal/projectconfig"
	"github.com/grainchain/grainbench/internal/regression"
	"github.com/grainchain/grainbench/internal/reporting"
	"github.com/spf13/cobra"
)

func newRegressionsCommand(opts *globalOptions) *cobra.Command {
	var (
		format, output   string
		failOnRegression bool
	)

	cmd := &cobra.Command{
		Use:   "regressions",
		Short: "Detect performance regressions between two time windows",
		Long: `Compare the most recent window of runs against the window before it and
report every provider whose metrics worsened by more than the threshold.

Thresholds are absolute: percentage points for success rate, seconds for
times. Per-metric thresholds from analysis.regression_thresholds take
precedence over --threshold.

Use --fail-on-regression to exit with code 1 when a regression is found,
and --format junit to publish the result to a CI system.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format, "table", "json", "markdown", "junit"); err != nil {
				return err
			}
			a, err := opts.open()
			if err != nil {
				return err
			}
			baselineDays := intFlag(cmd, "baseline-days", a.cfg.Analysis.BaselineDays)
			comparisonDays := intFlag(cmd, "comparison-days", a.cfg.Analysis.ComparisonDays)
			threshold := floatFlag(cmd, "threshold", a.cfg.Threshold())
			if baselineDays < 1 || comparisonDays < 1 {
				return fmt.Errorf("--baseline-days and --comparison-days must be at least 1")
			}
			if threshold < 0 {
				return fmt.Errorf("--threshold must not be negative")
			}

			now := time.Now()
			results, err := a.cmp.DetectPerformanceRegressions(baselineDays, comparisonDays, threshold)
			if err != nil {
				return err
			}

			w, closeOut, err := openOutput(cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}
			switch format {
			case "json":
				err = writeJSONTo(w, results)
			case "markdown":
				_, err = io.WriteString(w, reporting.MarkdownRegressions(results))
			case "junit":
				var providers []string
				providers, err = windowProviders(a, now, baselineDays, comparisonDays)
				if err == nil {
					err = reporting.WriteJUnit(w, results, providers, now)
				}
			default:
				printRegressionTable(w, a.cfg, baselineDays, comparisonDays, results)
			}
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			if failOnRegression && len(results) > 0 {
				return &TestFailureError{Message: fmt.Sprintf("performance regressions detected for %d provider(s)", len(results))}
			}
			return nil
		},
	}

	cmd.Flags().Int("baseline-days", 0, "Length of the baseline window in days (default from config)")
	cmd.Flags().Int("comparison-days", 0, "Length of the recent window in days (default from config)")
	cmd.Flags().Float64("threshold", 0, "Minimum worsening reported as a regression (default from config)")
	cmd.Flags().BoolVar(&failOnRegression, "fail-on-regression", false, "Exit with code 1 when a regression is detected")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json, markdown or junit")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write output to a file instead of stdout")

	return cmd
}

// windowProviders lists every provider with runs in either window.
func windowProviders(a *app, now time.Time, baselineDays, comparisonDays int) ([]string, error) {
	w := regression.WindowsAt(now, baselineDays, comparisonDays)
	runs, err := a.store.RunsInRange(w.Baseline.Start, w.Recent.End)
	if err != nil {
		return nil, err
	}
	order, _ := metrics.GroupByProvider(runs)
	return order, nil
}

func printRegressionTable(w io.Writer, cfg *projectconfig.ProjectConfig, baselineDays, comparisonDays int, results []models.ComparisonResult) {
	fmt.Fprintf(w, "Regression check: last %d days vs the %d days before\n\n", comparisonDays, baselineDays)
	if len(results) == 0 {
		fmt.Fprintln(w, "No performance regressions detected.")
		return
	}

	t := newTable("PROVIDER", "METRIC", "BASELINE", "RECENT", "CHANGE")
	for _, r := range results {
		provider, _ := r.DetailedAnalysis["provider"].(string)
		before, _ := r.DetailedAnalysis["baseline_metrics"].(models.AggregatedMetrics)
		after, _ := r.DetailedAnalysis["recent_metrics"].(models.AggregatedMetrics)
		for _, m := range metrics.All() {
			drop, ok := r.Regressions[m.String()]
			if !ok {
				continue
			}
			change := fmt.Sprintf("-%.1f%%", drop)
			if m.IsTime() {
				change = fmt.Sprintf("+%.2fs", drop)
			}
			t.add(cfg.DisplayName(provider), m.Label(),
				formatValue(m, m.OfAggregate(before)), formatValue(m, m.OfAggregate(after)), change)
		}
	}
	t.write(w)
	fmt.Fprintf(w, "\n%d provider(s) regressed.\n", len(results))
}
