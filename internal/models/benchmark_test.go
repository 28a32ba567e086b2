package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderOrder_DeclaredFirstThenSorted(t *testing.T) {
	run := BenchmarkResult{
		ProvidersTested: []string{"modal", "local", "e2b"},
		ProviderResults: map[string]ProviderMetrics{
			"local":   {ProviderName: "local"},
			"modal":   {ProviderName: "modal"},
			"zeta":    {ProviderName: "zeta"},
			"daytona": {ProviderName: "daytona"},
		},
	}

	// e2b was tested but produced no metrics, so it is skipped.
	assert.Equal(t, []string{"modal", "local", "daytona", "zeta"}, run.ProviderOrder())
}

func TestHasProviderAndTested(t *testing.T) {
	run := BenchmarkResult{
		ProvidersTested: []string{"local", "e2b"},
		ProviderResults: map[string]ProviderMetrics{"local": {}},
	}

	assert.True(t, run.HasProvider("local"))
	assert.False(t, run.HasProvider("e2b"))
	assert.True(t, run.Tested("e2b"))
	assert.False(t, run.Tested("modal"))
}

func TestFilterRange_Inclusive(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	runs := []BenchmarkResult{
		{Timestamp: base.Add(-time.Hour)},
		{Timestamp: base},
		{Timestamp: base.Add(12 * time.Hour)},
		{Timestamp: base.Add(24 * time.Hour)},
		{Timestamp: base.Add(25 * time.Hour)},
	}

	got := FilterRange(runs, base, base.Add(24*time.Hour))
	require.Len(t, got, 3)
	assert.Equal(t, base, got[0].Timestamp)
	assert.Equal(t, base.Add(24*time.Hour), got[2].Timestamp)
}

func TestSortByTimestamp_StableForTies(t *testing.T) {
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	runs := []BenchmarkResult{
		{Timestamp: ts.Add(time.Hour), FilePath: "c"},
		{Timestamp: ts, FilePath: "a"},
		{Timestamp: ts, FilePath: "b"},
	}
	SortByTimestamp(runs)
	assert.Equal(t, "a", runs[0].FilePath)
	assert.Equal(t, "b", runs[1].FilePath)
	assert.Equal(t, "c", runs[2].FilePath)
}

func TestSubject_JSON(t *testing.T) {
	start := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		subject Subject
		want    string
	}{
		{"provider", ProviderSubject("e2b"), `"e2b"`},
		{"period", PeriodSubject(start), `"2026-02-10T08:30:00Z"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.subject)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back Subject
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.subject.IsPeriod(), back.IsPeriod())
			assert.Equal(t, tt.subject.String(), back.String())
		})
	}
}

func TestAggregatedMetrics_HasData(t *testing.T) {
	assert.False(t, AggregatedMetrics{}.HasData())
	assert.True(t, AggregatedMetrics{DataPoints: 1}.HasData())
}

func TestNewComparisonResult_NonNilMaps(t *testing.T) {
	r := NewComparisonResult(ComparisonProvider, ProviderSubject("a"), ProviderSubject("b"))
	assert.NotNil(t, r.Improvements)
	assert.NotNil(t, r.Regressions)
	assert.Empty(t, r.MetricsCompared)
}

func TestParseUseCase(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want UseCase
		ok   bool
	}{
		{"", UseCaseGeneral, true},
		{"speed", UseCaseSpeed, true},
		{"reliability", UseCaseReliability, true},
		{"cost", "", false},
	} {
		got, ok := ParseUseCase(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
