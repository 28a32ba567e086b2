package models

import (
	"sort"
	"time"
)

// ProviderStatus values written by the benchmark suite.
const (
	ProviderStatusCompleted = "completed"
	ProviderStatusFailed    = "failed"
	ProviderStatusUnknown   = "unknown"
)

// ScenarioMetrics holds the aggregated outcome of one test scenario for a provider.
type ScenarioMetrics struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	SuccessRate          float64  `json:"success_rate"`
	AvgExecutionTime     float64  `json:"avg_execution_time"`
	MinExecutionTime     float64  `json:"min_execution_time"`
	MaxExecutionTime     float64  `json:"max_execution_time"`
	TotalIterations      int      `json:"total_iterations"`
	SuccessfulIterations int      `json:"successful_iterations"`
	FailedIterations     int      `json:"failed_iterations"`
	Errors               []string `json:"errors,omitempty"`
}

// ProviderMetrics is one provider's snapshot within a single benchmark run.
// Rates are percentages (0-100), times are seconds.
type ProviderMetrics struct {
	ProviderName       string                     `json:"provider_name"`
	OverallSuccessRate float64                    `json:"overall_success_rate"`
	AvgCreationTime    float64                    `json:"avg_creation_time"`
	AvgExecutionTime   float64                    `json:"avg_execution_time"`
	TotalScenarios     int                        `json:"total_scenarios"`
	Scenarios          map[string]ScenarioMetrics `json:"scenarios,omitempty"`
	BenchmarkTimestamp *time.Time                 `json:"benchmark_timestamp,omitempty"`
	BenchmarkDuration  *float64                   `json:"benchmark_duration,omitempty"`
	Status             string                     `json:"status"`
}

// BenchmarkResult is one complete benchmark execution. Timestamp is the run
// start and is the only time used for windowing.
type BenchmarkResult struct {
	Timestamp       time.Time                  `json:"timestamp"`
	DurationSeconds float64                    `json:"duration_seconds"`
	ProvidersTested []string                   `json:"providers_tested"`
	TestScenarios   int                        `json:"test_scenarios"`
	ProviderResults map[string]ProviderMetrics `json:"provider_results"`
	FilePath        string                     `json:"file_path,omitempty"`
	RawData         map[string]any             `json:"-"`
}

// HasProvider reports whether the run carries metrics for provider.
func (r *BenchmarkResult) HasProvider(provider string) bool {
	_, ok := r.ProviderResults[provider]
	return ok
}

// Tested reports whether provider was listed in the run's providers_tested,
// regardless of whether it produced metrics.
func (r *BenchmarkResult) Tested(provider string) bool {
	for _, p := range r.ProvidersTested {
		if p == provider {
			return true
		}
	}
	return false
}

// ProviderOrder returns the providers with metrics in this run, in declared
// providers_tested order followed by any undeclared providers sorted by name.
func (r *BenchmarkResult) ProviderOrder() []string {
	order := make([]string, 0, len(r.ProviderResults))
	seen := make(map[string]bool, len(r.ProviderResults))
	for _, p := range r.ProvidersTested {
		if _, ok := r.ProviderResults[p]; ok && !seen[p] {
			seen[p] = true
			order = append(order, p)
		}
	}
	var rest []string
	for p := range r.ProviderResults {
		if !seen[p] {
			rest = append(rest, p)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// FilterRange returns the runs whose timestamp lies in [start, end].
func FilterRange(runs []BenchmarkResult, start, end time.Time) []BenchmarkResult {
	var out []BenchmarkResult
	for _, r := range runs {
		if !r.Timestamp.Before(start) && !r.Timestamp.After(end) {
			out = append(out, r)
		}
	}
	return out
}

// SortByTimestamp orders runs ascending by timestamp, keeping file order for ties.
func SortByTimestamp(runs []BenchmarkResult) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
}
