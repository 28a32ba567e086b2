package reporting

import (
	"testing"

	"github.com/grainchain/grainbench/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestInterpretSuccessRate(t *testing.T) {
	tests := []struct {
		name string
		pct  float64
		want string
	}{
		{"excellent", 95, "Excellent (>90%)"},
		{"good boundary", 90, "Good (75-90%)"},
		{"good", 80, "Good (75-90%)"},
		{"needs work boundary", 75, "Needs Work (50-75%)"},
		{"needs work low", 50, "Needs Work (50-75%)"},
		{"poor", 49.9, "Poor (<50%)"},
		{"zero", 0, "Poor (<50%)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretSuccessRate(tt.pct))
		})
	}
}

func TestInterpretTrend(t *testing.T) {
	points := func(n int) []models.DataPoint { return make([]models.DataPoint, n) }

	tests := []struct {
		name  string
		trend models.TrendAnalysis
		want  string
	}{
		{
			"insufficient",
			models.TrendAnalysis{MetricName: "success_rate", TrendDirection: models.TrendInsufficientData, DataPoints: points(1)},
			"Not enough data to identify a trend (1 data points, at least 2 needed).",
		},
		{
			"improving strong",
			models.TrendAnalysis{MetricName: "success_rate", TrendDirection: models.TrendImproving, TrendStrength: 0.95, DataPoints: points(5)},
			"Success Rate is improving across 5 runs (strong correlation).",
		},
		{
			"declining moderate",
			models.TrendAnalysis{MetricName: "avg_execution_time", TrendDirection: models.TrendDeclining, TrendStrength: 0.6, DataPoints: points(4)},
			"Avg Execution Time is declining across 4 runs (moderate correlation).",
		},
		{
			"stable",
			models.TrendAnalysis{MetricName: "throughput", TrendDirection: models.TrendStable, TrendStrength: 0.1, DataPoints: points(3)},
			"throughput is stable across 3 runs.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretTrend(tt.trend))
		})
	}
}
