package metrics

import "github.com/grainchain/grainbench/internal/models"

// Aggregate averages provider's metrics over the runs that contain it.
// Runs without the provider are ignored; no qualifying runs yields the
// zero aggregate with DataPoints 0.
func Aggregate(runs []models.BenchmarkResult, provider string) models.AggregatedMetrics {
	var list []models.ProviderMetrics
	for _, r := range runs {
		if pm, ok := r.ProviderResults[provider]; ok {
			list = append(list, pm)
		}
	}
	return AggregateList(list)
}

// AggregateList averages metrics that have already been grouped by provider.
func AggregateList(list []models.ProviderMetrics) models.AggregatedMetrics {
	if len(list) == 0 {
		return models.AggregatedMetrics{}
	}

	successRates := make([]float64, len(list))
	execTimes := make([]float64, len(list))
	creationTimes := make([]float64, len(list))
	for i, pm := range list {
		successRates[i] = pm.OverallSuccessRate
		execTimes[i] = pm.AvgExecutionTime
		creationTimes[i] = pm.AvgCreationTime
	}

	return models.AggregatedMetrics{
		SuccessRate:      Mean(successRates),
		AvgExecutionTime: Mean(execTimes),
		AvgCreationTime:  Mean(creationTimes),
		DataPoints:       len(list),
	}
}

// GroupByProvider collects each provider's snapshots across runs.
// The returned order lists providers as first seen while walking runs in
// order, using each run's ProviderOrder.
func GroupByProvider(runs []models.BenchmarkResult) ([]string, map[string][]models.ProviderMetrics) {
	var order []string
	groups := make(map[string][]models.ProviderMetrics)
	for _, r := range runs {
		for _, p := range r.ProviderOrder() {
			if _, seen := groups[p]; !seen {
				order = append(order, p)
			}
			groups[p] = append(groups[p], r.ProviderResults[p])
		}
	}
	return order, groups
}
