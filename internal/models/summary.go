package models

import "time"

// RunOverview summarizes a set of benchmark runs for reports and the API.
type RunOverview struct {
	From      time.Time         `json:"from"`
	To        time.Time         `json:"to"`
	TotalRuns int               `json:"total_runs"`
	Providers []ProviderSummary `json:"providers"`
}

// ProviderSummary contains aggregated metrics for a single provider.
type ProviderSummary struct {
	Provider string            `json:"provider"`
	Metrics  AggregatedMetrics `json:"metrics"`
}
