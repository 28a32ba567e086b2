package reporting

import (
	"fmt"

	"github.com/grainchain/grainbench/internal/models"
)

// InterpretSuccessRate returns a plain-language label for a success rate
// given as a percentage.
func InterpretSuccessRate(pct float64) string {
	switch {
	case pct > 90:
		return "Excellent (>90%)"
	case pct > 75:
		return "Good (75-90%)"
	case pct >= 50:
		return "Needs Work (50-75%)"
	default:
		return "Poor (<50%)"
	}
}

// InterpretTrend explains a trend analysis in one sentence.
func InterpretTrend(t models.TrendAnalysis) string {
	n := len(t.DataPoints)
	switch t.TrendDirection {
	case models.TrendInsufficientData:
		return fmt.Sprintf("Not enough data to identify a trend (%d data points, at least 2 needed).", n)
	case models.TrendImproving:
		return fmt.Sprintf("%s is improving across %d runs (%s correlation).", label(t.MetricName), n, strength(t.TrendStrength))
	case models.TrendDeclining:
		return fmt.Sprintf("%s is declining across %d runs (%s correlation).", label(t.MetricName), n, strength(t.TrendStrength))
	default:
		return fmt.Sprintf("%s is stable across %d runs.", label(t.MetricName), n)
	}
}

func strength(r float64) string {
	switch {
	case r >= 0.7:
		return "strong"
	case r >= 0.5:
		return "moderate"
	default:
		return "weak"
	}
}
