package models

import "time"

// TrendDirection classifies a metric's tendency over run order.
type TrendDirection string

const (
	TrendImproving        TrendDirection = "improving"
	TrendDeclining        TrendDirection = "declining"
	TrendStable           TrendDirection = "stable"
	TrendInsufficientData TrendDirection = "insufficient_data"
)

// AllProviders is the provider label on data points averaged across providers.
const AllProviders = "all"

// DataPoint is one value in a trend series.
type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Provider  string    `json:"provider"`
}

// StatisticalSummary describes the values of a trend series.
type StatisticalSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"data_points"`
}

// TrendAnalysis is the result of a time-windowed trend analysis.
// A nil Provider means the series was averaged across all providers and a
// nil StatisticalSummary means there were too few points to summarize.
type TrendAnalysis struct {
	MetricName         string              `json:"metric_name"`
	Provider           *string             `json:"provider"`
	TimePeriod         string              `json:"time_period"`
	TrendDirection     TrendDirection      `json:"trend_direction"`
	TrendStrength      float64             `json:"trend_strength"`
	DataPoints         []DataPoint         `json:"data_points"`
	StatisticalSummary *StatisticalSummary `json:"statistical_summary"`
}

// ProviderLabel returns the provider name or "All" for aggregated trends.
func (t TrendAnalysis) ProviderLabel() string {
	if t.Provider == nil {
		return "All"
	}
	return *t.Provider
}
