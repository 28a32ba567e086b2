// Package reporting renders analysis results as Markdown, HTML and JUnit XML.
package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/grainchain/grainbench/internal/metrics"
	"github.com/grainchain/grainbench/internal/models"
	"github.com/grainchain/grainbench/internal/statistics"
)

func label(metric string) string {
	if m, ok := metrics.ParseMetric(metric); ok {
		return m.Label()
	}
	return metric
}

// formatDelta renders an improvement (+) or regression (-) for metric.
func formatDelta(metric string, v float64, improved bool) string {
	m, ok := metrics.ParseMetric(metric)
	switch {
	case ok && m.IsTime() && improved:
		return fmt.Sprintf("-%.2fs faster", v)
	case ok && m.IsTime():
		return fmt.Sprintf("+%.2fs slower", v)
	case improved:
		return fmt.Sprintf("+%.1f%%", v)
	default:
		return fmt.Sprintf("-%.1f%%", v)
	}
}

func writeDeltas(b *strings.Builder, title string, deltas map[string]float64, improved bool) {
	if len(deltas) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, name := range orderedMetrics(deltas) {
		fmt.Fprintf(b, "- **%s:** %s\n", label(name), formatDelta(name, deltas[name], improved))
	}
	b.WriteString("\n")
}

// orderedMetrics lists known metrics in registration order, then any others
// by name.
func orderedMetrics(deltas map[string]float64) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range metrics.All() {
		if _, ok := deltas[m.String()]; ok {
			out = append(out, m.String())
			seen[m.String()] = true
		}
	}
	var rest []string
	for name := range deltas {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func aggregateOf(detail map[string]any, key string) (models.AggregatedMetrics, bool) {
	a, ok := detail[key].(models.AggregatedMetrics)
	return a, ok
}

// MarkdownComparison renders a provider comparison.
func MarkdownComparison(r models.ComparisonResult) string {
	p1, p2 := r.Baseline.String(), r.Target.String()

	var b strings.Builder
	b.WriteString("# Provider Comparison Report\n\n")
	fmt.Fprintf(&b, "**Comparison:** %s vs %s\n", p1, p2)
	fmt.Fprintf(&b, "**Type:** %s\n\n", r.ComparisonType)
	b.WriteString("## Executive Summary\n\n")
	b.WriteString(r.Summary)
	b.WriteString("\n\n## Detailed Analysis\n\n")
	fmt.Fprintf(&b, "### Metrics Compared\n\n%s\n\n", strings.Join(r.MetricsCompared, ", "))

	writeDeltas(&b, p2+" Improvements", r.Improvements, true)
	writeDeltas(&b, p2+" Regressions", r.Regressions, false)

	m1, ok1 := aggregateOf(r.DetailedAnalysis, "provider1_metrics")
	m2, ok2 := aggregateOf(r.DetailedAnalysis, "provider2_metrics")
	if ok1 && ok2 {
		b.WriteString("### Detailed Metrics\n\n")
		fmt.Fprintf(&b, "| Metric | %s | %s | Difference |\n", p1, p2)
		b.WriteString("|--------|----|----|------------|\n")
		for _, m := range metrics.All() {
			v1, v2 := m.OfAggregate(m1), m.OfAggregate(m2)
			if m.IsTime() {
				fmt.Fprintf(&b, "| %s (s) | %.2f | %.2f | %+.2f |\n", m.Label(), v1, v2, v2-v1)
			} else {
				fmt.Fprintf(&b, "| %s (%%) | %.1f | %.1f | %+.1f |\n", m.Label(), v1, v2, v2-v1)
			}
		}
		b.WriteString("\n")
	}
	if ci, ok := r.DetailedAnalysis["success_rate_interval"].(statistics.ConfidenceInterval); ok {
		fmt.Fprintf(&b, "Success rate difference: %+.1f points (%.0f%% CI %+.1f to %+.1f)",
			ci.Estimate, ci.ConfidenceLevel*100, ci.Lower, ci.Upper)
		if !statistics.IsSignificant(ci) {
			b.WriteString(", not significant")
		}
		b.WriteString("\n\n")
	}

	b.WriteString("## Recommendations\n\n")
	imp, reg := len(r.Improvements) > 0, len(r.Regressions) > 0
	switch {
	case imp && !reg:
		fmt.Fprintf(&b, "- **%s** shows clear improvements over **%s**\n", p2, p1)
		fmt.Fprintf(&b, "- Consider migrating to **%s** for better performance\n", p2)
	case reg && !imp:
		fmt.Fprintf(&b, "- **%s** performs better than **%s**\n", p1, p2)
		fmt.Fprintf(&b, "- Stick with **%s** for optimal performance\n", p1)
	case imp && reg:
		b.WriteString("- Both providers have trade-offs\n")
		b.WriteString("- Choose based on which metrics are most important for your use case\n")
	default:
		b.WriteString("- Performance is similar between both providers\n")
		b.WriteString("- Choice can be based on other factors (cost, features, etc.)\n")
	}
	return b.String()
}

// MarkdownTrend renders a trend analysis with its data points.
func MarkdownTrend(t models.TrendAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Trend Analysis: %s\n\n", label(t.MetricName))
	fmt.Fprintf(&b, "**Provider:** %s\n", t.ProviderLabel())
	fmt.Fprintf(&b, "**Time Period:** %s\n", t.TimePeriod)
	fmt.Fprintf(&b, "**Direction:** %s\n", t.TrendDirection)
	fmt.Fprintf(&b, "**Strength:** %.2f\n\n", t.TrendStrength)
	b.WriteString(InterpretTrend(t))
	b.WriteString("\n\n")

	if s := t.StatisticalSummary; s != nil {
		b.WriteString("## Statistics\n\n")
		b.WriteString("| Mean | Median | Std Dev | Min | Max | Data Points |\n")
		b.WriteString("|------|--------|---------|-----|-----|-------------|\n")
		fmt.Fprintf(&b, "| %.2f | %.2f | %.2f | %.2f | %.2f | %d |\n\n", s.Mean, s.Median, s.StdDev, s.Min, s.Max, s.Count)
	}

	if len(t.DataPoints) > 0 {
		b.WriteString("## Data Points\n\n")
		b.WriteString("| Timestamp | Provider | Value |\n")
		b.WriteString("|-----------|----------|-------|\n")
		for _, p := range t.DataPoints {
			fmt.Fprintf(&b, "| %s | %s | %.2f |\n", p.Timestamp.Format("2006-01-02 15:04"), p.Provider, p.Value)
		}
	}
	return b.String()
}

// MarkdownRegressions renders a regression sweep.
func MarkdownRegressions(results []models.ComparisonResult) string {
	var b strings.Builder
	b.WriteString("# Performance Regression Report\n\n")
	if len(results) == 0 {
		b.WriteString("No performance regressions detected.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "**Baseline Period Start:** %s\n", results[0].Baseline)
	fmt.Fprintf(&b, "**Recent Period Start:** %s\n", results[0].Target)
	fmt.Fprintf(&b, "**Providers Regressed:** %d\n\n", len(results))

	for _, r := range results {
		provider, _ := r.DetailedAnalysis["provider"].(string)
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", provider, r.Summary)
		for _, name := range orderedMetrics(r.Regressions) {
			fmt.Fprintf(&b, "- **%s:** %s\n", label(name), formatDelta(name, r.Regressions[name], false))
		}
		before, ok1 := aggregateOf(r.DetailedAnalysis, "baseline_metrics")
		after, ok2 := aggregateOf(r.DetailedAnalysis, "recent_metrics")
		if ok1 && ok2 {
			b.WriteString("\n| Metric | Baseline | Recent |\n")
			b.WriteString("|--------|----------|--------|\n")
			for _, m := range metrics.All() {
				fmt.Fprintf(&b, "| %s | %.2f | %.2f |\n", m.Label(), m.OfAggregate(before), m.OfAggregate(after))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// MarkdownRecommendation renders a provider recommendation.
func MarkdownRecommendation(rec models.ProviderRecommendation) string {
	var b strings.Builder
	b.WriteString("# Provider Recommendation\n\n")
	fmt.Fprintf(&b, "**Recommended Provider:** %s\n", rec.RecommendedProvider)
	fmt.Fprintf(&b, "**Confidence:** %.0f%%\n\n", rec.ConfidenceScore*100)

	b.WriteString("## Reasoning\n\n")
	for _, line := range rec.Reasoning {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	b.WriteString("\n")

	if len(rec.UseCaseSpecific) > 0 {
		keys := make([]string, 0, len(rec.UseCaseSpecific))
		for k := range rec.UseCaseSpecific {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("## Use Case\n\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- **%s:** %s\n", k, rec.UseCaseSpecific[k])
		}
		b.WriteString("\n")
	}

	if len(rec.ProviderScores) > 0 {
		b.WriteString("## All Providers\n\n")
		b.WriteString("| Rank | Provider | Score | Success Rate | Execution Time | Creation Time | Runs |\n")
		b.WriteString("|------|----------|-------|--------------|----------------|---------------|------|\n")
		for _, s := range rec.ProviderScores {
			fmt.Fprintf(&b, "| %d | %s | %.1f | %.1f%% | %.2fs | %.2fs | %d |\n",
				s.Rank, s.Provider, s.Score, s.Metrics.SuccessRate, s.Metrics.AvgExecutionTime, s.Metrics.AvgCreationTime, s.Metrics.DataPoints)
		}
	}
	return b.String()
}

// MarkdownOverview renders a comprehensive report over runs, which must be in
// ascending timestamp order.
func MarkdownOverview(runs []models.BenchmarkResult, generated time.Time) string {
	var b strings.Builder
	b.WriteString("# Comprehensive Benchmark Report\n\n")
	if len(runs) == 0 {
		b.WriteString("No benchmark data available.\n")
		return b.String()
	}

	ov := Overview(runs)
	_, groups := metrics.GroupByProvider(runs)
	names := make([]string, 0, len(ov.Providers))
	for _, p := range ov.Providers {
		names = append(names, p.Provider)
	}

	fmt.Fprintf(&b, "**Generated:** %s\n", generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Analysis Period:** %s to %s\n", ov.From.Format("2006-01-02"), ov.To.Format("2006-01-02"))
	fmt.Fprintf(&b, "**Total Benchmark Runs:** %d\n", ov.TotalRuns)
	fmt.Fprintf(&b, "**Providers Analyzed:** %s\n\n", strings.Join(names, ", "))

	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(&b, "This report analyzes %d benchmark runs across %d providers over a %d day period.\n\n",
		ov.TotalRuns, len(names), int(ov.To.Sub(ov.From).Hours()/24))

	b.WriteString("## Provider Performance Summary\n\n")
	b.WriteString("| Provider | Avg Success Rate | 95% CI | Avg Execution Time | Avg Creation Time | Runs |\n")
	b.WriteString("|----------|------------------|--------|--------------------|-------------------|------|\n")
	for _, p := range ov.Providers {
		ci := "n/a"
		if rates := values(groups[p.Provider], metrics.SuccessRate); len(rates) >= 2 {
			iv := statistics.BootstrapCIWithSeed(rates, 0.95, statistics.DefaultSeed)
			ci = fmt.Sprintf("%.1f-%.1f%%", iv.Lower, iv.Upper)
		}
		fmt.Fprintf(&b, "| %s | %.1f%% | %s | %.2fs | %.2fs | %d |\n",
			p.Provider, p.Metrics.SuccessRate, ci, p.Metrics.AvgExecutionTime, p.Metrics.AvgCreationTime, p.Metrics.DataPoints)
	}

	b.WriteString("\n## Detailed Provider Analysis\n\n")
	for _, name := range names {
		list := groups[name]
		rates := values(list, metrics.SuccessRate)
		times := values(list, metrics.AvgExecutionTime)
		rMin, rMax := metrics.MinMax(rates)
		tMin, tMax := metrics.MinMax(times)

		fmt.Fprintf(&b, "### %s\n\n", strings.ToUpper(name))
		fmt.Fprintf(&b, "- **Benchmark Runs:** %d\n", len(list))
		fmt.Fprintf(&b, "- **Success Rate:** %.1f%% (min: %.1f%%, max: %.1f%%) - %s\n",
			metrics.Mean(rates), rMin, rMax, InterpretSuccessRate(metrics.Mean(rates)))
		fmt.Fprintf(&b, "- **Execution Time:** %.2fs (min: %.2fs, max: %.2fs)\n", metrics.Mean(times), tMin, tMax)

		latestRun, latest := latestFor(runs, name)
		fmt.Fprintf(&b, "\n**Latest Performance (%s):**\n", latestRun.Format("2006-01-02"))
		fmt.Fprintf(&b, "- Success Rate: %.1f%%\n", latest.OverallSuccessRate)
		fmt.Fprintf(&b, "- Execution Time: %.2fs\n", latest.AvgExecutionTime)
		fmt.Fprintf(&b, "- Creation Time: %.2fs\n\n", latest.AvgCreationTime)
	}
	return b.String()
}

// Overview summarizes runs per provider, providers sorted by name.
func Overview(runs []models.BenchmarkResult) models.RunOverview {
	ov := models.RunOverview{TotalRuns: len(runs), Providers: []models.ProviderSummary{}}
	if len(runs) == 0 {
		return ov
	}
	ov.From, ov.To = runs[0].Timestamp, runs[0].Timestamp
	for _, r := range runs {
		if r.Timestamp.Before(ov.From) {
			ov.From = r.Timestamp
		}
		if r.Timestamp.After(ov.To) {
			ov.To = r.Timestamp
		}
	}

	order, groups := metrics.GroupByProvider(runs)
	names := append([]string(nil), order...)
	sort.Strings(names)
	for _, name := range names {
		ov.Providers = append(ov.Providers, models.ProviderSummary{
			Provider: name,
			Metrics:  metrics.AggregateList(groups[name]),
		})
	}
	return ov
}

func values(list []models.ProviderMetrics, m metrics.Metric) []float64 {
	out := make([]float64, len(list))
	for i, pm := range list {
		out[i] = m.Of(pm)
	}
	return out
}

func latestFor(runs []models.BenchmarkResult, provider string) (time.Time, models.ProviderMetrics) {
	for i := len(runs) - 1; i >= 0; i-- {
		if pm, ok := runs[i].ProviderResults[provider]; ok {
			return runs[i].Timestamp, pm
		}
	}
	return time.Time{}, models.ProviderMetrics{}
}
