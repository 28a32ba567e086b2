package models

import (
	"encoding/json"
	"time"
)

// ComparisonType identifies what a ComparisonResult compares.
type ComparisonType string

const (
	ComparisonProvider   ComparisonType = "provider"
	ComparisonRegression ComparisonType = "regression"
)

// AggregatedMetrics is the mean of each metric over a set of runs for one
// provider. A zero value with DataPoints == 0 means "no data", not a
// measured zero.
type AggregatedMetrics struct {
	SuccessRate      float64 `json:"success_rate"`
	AvgExecutionTime float64 `json:"avg_execution_time"`
	AvgCreationTime  float64 `json:"avg_creation_time"`
	DataPoints       int     `json:"data_points"`
}

// HasData reports whether at least one run contributed to the aggregate.
func (a AggregatedMetrics) HasData() bool {
	return a.DataPoints > 0
}

// Subject is the baseline or target of a comparison: a provider name for
// provider comparisons, a window start time for regression sweeps.
type Subject struct {
	Provider string
	Period   time.Time
}

// ProviderSubject returns a Subject naming a provider.
func ProviderSubject(name string) Subject {
	return Subject{Provider: name}
}

// PeriodSubject returns a Subject naming a time window by its start.
func PeriodSubject(start time.Time) Subject {
	return Subject{Period: start}
}

// IsPeriod reports whether the subject is a time window.
func (s Subject) IsPeriod() bool {
	return s.Provider == "" && !s.Period.IsZero()
}

func (s Subject) String() string {
	if s.IsPeriod() {
		return s.Period.Format(time.RFC3339)
	}
	return s.Provider
}

// MarshalJSON encodes the subject as a plain string.
func (s Subject) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes an RFC 3339 timestamp as a period and anything
// else as a provider name.
func (s *Subject) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		*s = PeriodSubject(t)
		return nil
	}
	*s = ProviderSubject(raw)
	return nil
}

// ComparisonResult is the outcome of a provider comparison or of one
// provider's regression check. A metric key appears in at most one of
// Improvements and Regressions; values are positive magnitudes.
type ComparisonResult struct {
	ComparisonType   ComparisonType     `json:"comparison_type"`
	Baseline         Subject            `json:"baseline"`
	Target           Subject            `json:"target"`
	MetricsCompared  []string           `json:"metrics_compared"`
	Improvements     map[string]float64 `json:"improvements"`
	Regressions      map[string]float64 `json:"regressions"`
	Summary          string             `json:"summary"`
	DetailedAnalysis map[string]any     `json:"detailed_analysis,omitempty"`
}

// NewComparisonResult returns a result with non-nil metric maps.
func NewComparisonResult(kind ComparisonType, baseline, target Subject) ComparisonResult {
	return ComparisonResult{
		ComparisonType:  kind,
		Baseline:        baseline,
		Target:          target,
		MetricsCompared: []string{},
		Improvements:    map[string]float64{},
		Regressions:     map[string]float64{},
	}
}
