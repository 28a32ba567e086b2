package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/grainchain/grainbench/internal/comparator"
	"github.com/grainchain/grainbench/internal/metrics"
	"github.com/grainchain/grainbench/internal/models"
	"github.com/grainchain/grainbench/internal/reporting"
	"github.com/spf13/cobra"
)

func newTrendsCommand(opts *globalOptions) *cobra.Command {
	var provider, metric, format, output string

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show how a metric moved over time",
		Long: `Classify a metric as improving, declining or stable over a time window.

Without --provider each run contributes the mean over the providers it tested.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format, "table", "json", "markdown"); err != nil {
				return err
			}
			m, ok := metrics.ParseMetric(metric)
			if !ok {
				return fmt.Errorf("unknown metric %q: must be one of %s", metric, strings.Join(metrics.Names(), ", "))
			}
			a, err := opts.open()
			if err != nil {
				return err
			}
			days := intFlag(cmd, "days", a.cfg.Analysis.TimeRangeDays)
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}

			analysis, err := a.cmp.AnalyzeTimeTrends(provider, days, m.String())
			if err != nil {
				return err
			}

			w, closeOut, err := openOutput(cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}
			switch format {
			case "json":
				err = writeJSONTo(w, analysis)
			case "markdown":
				_, err = io.WriteString(w, reporting.MarkdownTrend(analysis))
			default:
				printTrendTable(w, m, analysis)
			}
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Provider to analyze (default: all providers)")
	cmd.Flags().StringVarP(&metric, "metric", "m", comparator.DefaultTrendMetric, "Metric: "+strings.Join(metrics.Names(), ", "))
	cmd.Flags().Int("days", 0, "Time window in days (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or markdown")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write output to a file instead of stdout")

	return cmd
}

func printTrendTable(w io.Writer, m metrics.Metric, t models.TrendAnalysis) {
	who := "all providers"
	if t.Provider != nil {
		who = *t.Provider
	}
	fmt.Fprintf(w, "%s trend for %s (%s)\n\n", m.Label(), who, t.TimePeriod)
	fmt.Fprintln(w, reporting.InterpretTrend(t))
	if t.StatisticalSummary != nil {
		s := t.StatisticalSummary
		fmt.Fprintf(w, "Mean %s, median %s, std dev %s, range %s to %s\n",
			formatValue(m, s.Mean), formatValue(m, s.Median), formatValue(m, s.StdDev),
			formatValue(m, s.Min), formatValue(m, s.Max))
	}
	if len(t.DataPoints) == 0 {
		return
	}
	fmt.Fprintln(w)

	tbl := newTable("TIMESTAMP", "PROVIDER", strings.ToUpper(m.Label()))
	for _, p := range t.DataPoints {
		tbl.add(p.Timestamp.Format("2006-01-02 15:04"), p.Provider, formatValue(m, p.Value))
	}
	tbl.write(w)
}

func formatValue(m metrics.Metric, v float64) string {
	if m.IsTime() {
		return formatSeconds(v)
	}
	return formatPercent(v)
}
