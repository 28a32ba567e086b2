// Package trend classifies how a metric moves across an ordered run series.
package trend

import (
	"errors"
	"fmt"
	"math"

	"github.com/grainchain/grainbench/internal/metrics"
	"github.com/grainchain/grainbench/internal/models"
)

// Threshold is the absolute correlation above which a series is considered
// to be improving or declining.
const Threshold = 0.3

// Estimate classifies values by their Pearson correlation with run order.
// Strength is always |r|. A degenerate series is stable with strength 0.
func Estimate(values []float64) (models.TrendDirection, float64) {
	if len(values) < 2 {
		return models.TrendInsufficientData, 0
	}

	r, err := metrics.Pearson(metrics.Index(len(values)), values)
	if errors.Is(err, metrics.ErrDegenerate) {
		return models.TrendStable, 0
	}

	strength := math.Abs(r)
	switch {
	case r > Threshold:
		return models.TrendImproving, strength
	case r < -Threshold:
		return models.TrendDeclining, strength
	default:
		return models.TrendStable, strength
	}
}

// Summarize describes values, or returns nil when fewer than 2 are given.
func Summarize(values []float64) *models.StatisticalSummary {
	if len(values) < 2 {
		return nil
	}
	mn, mx := metrics.MinMax(values)
	return &models.StatisticalSummary{
		Mean:   metrics.Mean(values),
		Median: metrics.Median(values),
		StdDev: metrics.SampleStdDev(values),
		Min:    mn,
		Max:    mx,
		Count:  len(values),
	}
}

// Series builds one data point per run. With a provider, runs lacking it
// are skipped; without one, each point is the mean over the providers
// present in that run. An unknown metric yields no points.
func Series(runs []models.BenchmarkResult, provider *string, metric string) []models.DataPoint {
	m, ok := metrics.ParseMetric(metric)
	if !ok {
		return nil
	}

	var points []models.DataPoint
	for _, run := range runs {
		if provider != nil {
			pm, ok := run.ProviderResults[*provider]
			if !ok {
				continue
			}
			points = append(points, models.DataPoint{
				Timestamp: run.Timestamp,
				Value:     m.Of(pm),
				Provider:  *provider,
			})
			continue
		}

		if len(run.ProviderResults) == 0 {
			continue
		}
		values := make([]float64, 0, len(run.ProviderResults))
		for _, p := range run.ProviderOrder() {
			values = append(values, m.Of(run.ProviderResults[p]))
		}
		points = append(points, models.DataPoint{
			Timestamp: run.Timestamp,
			Value:     metrics.Mean(values),
			Provider:  models.AllProviders,
		})
	}
	return points
}

// Analyze runs the estimator over runs that the caller has already
// restricted to the analysis window. Data points are kept even when there
// are too few of them to classify.
func Analyze(runs []models.BenchmarkResult, provider *string, metric string, days int) models.TrendAnalysis {
	points := Series(runs, provider, metric)
	analysis := models.TrendAnalysis{
		MetricName:     metric,
		Provider:       provider,
		TimePeriod:     fmt.Sprintf("%d days", days),
		TrendDirection: models.TrendInsufficientData,
		DataPoints:     points,
	}
	if analysis.DataPoints == nil {
		analysis.DataPoints = []models.DataPoint{}
	}
	if len(points) < 2 {
		return analysis
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	analysis.TrendDirection, analysis.TrendStrength = Estimate(values)
	analysis.StatisticalSummary = Summarize(values)
	return analysis
}
