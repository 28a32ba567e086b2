// Package regression flags providers whose recent runs perform worse than
// an adjacent earlier window.
package regression

import (
	"fmt"
	"sort"
	"time"

	"github.com/grainchain/grainbench/internal/metrics"
	"github.com/grainchain/grainbench/internal/models"
)

const day = 24 * time.Hour

// Checked lists the metrics a sweep examines, in report order.
var Checked = []metrics.Metric{metrics.SuccessRate, metrics.AvgExecutionTime}

// Window is a closed time interval.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies in [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Windows is a baseline window immediately followed by a recent window.
type Windows struct {
	Baseline Window `json:"baseline"`
	Recent   Window `json:"recent"`
}

// WindowsAt returns the windows ending at now: the recent window covers the
// last comparisonDays and the baseline window the baselineDays before it.
func WindowsAt(now time.Time, baselineDays, comparisonDays int) Windows {
	recentStart := now.Add(-time.Duration(comparisonDays) * day)
	return Windows{
		Baseline: Window{Start: recentStart.Add(-time.Duration(baselineDays) * day), End: recentStart},
		Recent:   Window{Start: recentStart, End: now},
	}
}

// Partition splits runs between the two windows. A run stamped exactly on
// the shared boundary belongs to the recent window only, so no run is
// counted twice. Runs outside both windows are dropped.
func (w Windows) Partition(runs []models.BenchmarkResult) (baseline, recent []models.BenchmarkResult) {
	for _, r := range runs {
		switch {
		case w.Recent.Contains(r.Timestamp):
			recent = append(recent, r)
		case w.Baseline.Contains(r.Timestamp):
			baseline = append(baseline, r)
		}
	}
	return baseline, recent
}

// Thresholds overrides the global threshold for individual metrics, keyed
// by metric name. A nil map applies the global threshold everywhere.
type Thresholds map[string]float64

// For returns the threshold to apply to metric.
func (t Thresholds) For(metric string, global float64) float64 {
	if v, ok := t[metric]; ok {
		return v
	}
	return global
}

// Detect compares each provider present in both run sets and returns one
// result per provider with at least one regression, ordered by provider.
// Thresholds are literal differences in the metric's own unit.
func Detect(baselineRuns, recentRuns []models.BenchmarkResult, w Windows, threshold float64, overrides Thresholds) []models.ComparisonResult {
	_, baselineGroups := metrics.GroupByProvider(baselineRuns)
	_, recentGroups := metrics.GroupByProvider(recentRuns)

	var providers []string
	for p := range baselineGroups {
		if _, ok := recentGroups[p]; ok {
			providers = append(providers, p)
		}
	}
	sort.Strings(providers)

	results := []models.ComparisonResult{}
	for _, p := range providers {
		before := metrics.AggregateList(baselineGroups[p])
		after := metrics.AggregateList(recentGroups[p])

		result := models.NewComparisonResult(models.ComparisonRegression,
			models.PeriodSubject(w.Baseline.Start), models.PeriodSubject(w.Recent.Start))
		applied := make(map[string]float64, len(Checked))
		for _, m := range Checked {
			name := m.String()
			limit := overrides.For(name, threshold)
			applied[name] = limit
			result.MetricsCompared = append(result.MetricsCompared, name)

			if drop := worsening(m, before, after); drop > limit {
				result.Regressions[name] = drop
			}
		}
		if len(result.Regressions) == 0 {
			continue
		}

		result.Summary = fmt.Sprintf("Performance regression detected for %s", p)
		result.DetailedAnalysis = map[string]any{
			"provider":         p,
			"baseline_metrics": before,
			"recent_metrics":   after,
			"threshold":        threshold,
		}
		if len(overrides) > 0 {
			result.DetailedAnalysis["thresholds"] = applied
		}
		results = append(results, result)
	}
	return results
}

// worsening returns how much worse after is than before for m; negative
// values mean m improved.
func worsening(m metrics.Metric, before, after models.AggregatedMetrics) float64 {
	b, a := m.OfAggregate(before), m.OfAggregate(after)
	if m.HigherIsBetter() {
		return b - a
	}
	return a - b
}
