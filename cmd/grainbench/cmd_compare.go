package main

import (
	"fmt"
	"io"

	"github.com/grainchain/grainbench/internal/metrics"
	"github.com/grainchain/grainbench/internal/models"
	"github.com/grainchain/grainbench/internal/projectconfig"
	"github.com/grainchain/grainbench/internal/reporting"
	"github.com/grainchain/grainbench/internal/statistics"
	"github.com/spf13/cobra"
)

func newCompareCommand(opts *globalOptions) *cobra.Command {
	var (
		provider1, provider2 string
		format, output       string
	)

	cmd := &cobra.Command{
		Use:   "compare --provider1 <name> --provider2 <name>",
		Short: "Compare two providers",
		Long: `Compare two providers over a recent time window.

Improvements and regressions are reported from provider2's point of view:
a positive success rate change or a shorter time means provider2 is better.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format, "table", "json", "markdown"); err != nil {
				return err
			}
			a, err := opts.open()
			if err != nil {
				return err
			}
			days := intFlag(cmd, "days", a.cfg.Analysis.TimeRangeDays)

			result, err := a.cmp.CompareProviders(provider1, provider2, days)
			if err != nil {
				return err
			}

			w, closeOut, err := openOutput(cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}
			switch format {
			case "json":
				err = writeJSONTo(w, result)
			case "markdown":
				_, err = io.WriteString(w, reporting.MarkdownComparison(result))
			default:
				printComparisonTable(w, a.cfg, provider1, provider2, days, result)
			}
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&provider1, "provider1", "", "Baseline provider")
	cmd.Flags().StringVar(&provider2, "provider2", "", "Provider compared against the baseline")
	cmd.Flags().Int("days", 0, "Only use runs from the last N days (0 = all, default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or markdown")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write output to a file instead of stdout")
	_ = cmd.MarkFlagRequired("provider1")
	_ = cmd.MarkFlagRequired("provider2")

	return cmd
}

func printComparisonTable(w io.Writer, cfg *projectconfig.ProjectConfig, a, b string, days int, r models.ComparisonResult) {
	window := "all runs"
	if days > 0 {
		window = fmt.Sprintf("last %d days", days)
	}
	fmt.Fprintf(w, "Comparison: %s vs %s (%s)\n\n", cfg.DisplayName(a), cfg.DisplayName(b), window)

	aggA, okA := r.DetailedAnalysis["provider1_metrics"].(models.AggregatedMetrics)
	aggB, okB := r.DetailedAnalysis["provider2_metrics"].(models.AggregatedMetrics)
	if !okA || !okB {
		fmt.Fprintln(w, r.Summary)
		return
	}

	t := newTable("METRIC", cfg.DisplayName(a), cfg.DisplayName(b), "CHANGE")
	for _, m := range metrics.All() {
		va, vb := m.OfAggregate(aggA), m.OfAggregate(aggB)
		if m.IsTime() {
			t.add(m.Label(), formatSeconds(va), formatSeconds(vb), fmt.Sprintf("%+.2fs", vb-va))
		} else {
			t.add(m.Label(), formatPercent(va), formatPercent(vb), fmt.Sprintf("%+.1f%%", vb-va))
		}
	}
	t.add("Runs", fmt.Sprint(aggA.DataPoints), fmt.Sprint(aggB.DataPoints), "")
	t.write(w)
	fmt.Fprintln(w)

	if ci, ok := r.DetailedAnalysis["success_rate_interval"].(statistics.ConfidenceInterval); ok {
		verdict := "not significant"
		if statistics.IsSignificant(ci) {
			verdict = "significant"
		}
		fmt.Fprintf(w, "Success rate difference: %+.1f%% (95%% CI %+.1f%% to %+.1f%%, %s)\n\n", ci.Estimate, ci.Lower, ci.Upper, verdict)
	}
	fmt.Fprintln(w, r.Summary)
}
