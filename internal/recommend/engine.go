package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/grainchain/grainbench/internal/metrics"
	"github.com/grainchain/grainbench/internal/models"
)

// Weights are the constants of the provider scoring formula.
type Weights struct {
	SuccessRate       float64 // multiplier on success rate (0-100)
	ExecutionBonusMax float64 // bonus at zero execution time
	ExecutionPenalty  float64 // bonus lost per second of execution time
	CreationBonusMax  float64 // bonus at zero creation time
	CreationPenalty   float64 // bonus lost per second of creation time
	SpeedBlend        float64 // share of the composite kept for the speed use case
	ReliabilityBlend  float64 // share of raw success rate for the reliability use case
}

// DefaultWeights returns the standard scoring constants.
func DefaultWeights() Weights {
	return Weights{
		SuccessRate:       0.5,
		ExecutionBonusMax: 30,
		ExecutionPenalty:  10,
		CreationBonusMax:  20,
		CreationPenalty:   5,
		SpeedBlend:        0.7,
		ReliabilityBlend:  0.7,
	}
}

// Engine scores providers and picks one for a use case.
type Engine struct {
	weights Weights
}

// NewEngine creates a recommendation engine with default weights.
func NewEngine() *Engine {
	return &Engine{weights: DefaultWeights()}
}

// Score rates agg for useCase with the default weights.
func Score(agg models.AggregatedMetrics, useCase models.UseCase) float64 {
	return NewEngine().Score(agg, useCase)
}

// Score rates agg for useCase. A zero timing is treated as missing data and
// earns no bonus. The result is not bounded above by 100 after the use-case
// adjustment.
func (e *Engine) Score(agg models.AggregatedMetrics, useCase models.UseCase) float64 {
	c := e.components(agg)
	return e.adjust(c, agg, useCase)
}

type components struct {
	base           float64
	executionBonus float64
	creationBonus  float64
}

func (c components) total() float64 {
	return c.base + c.executionBonus + c.creationBonus
}

func (e *Engine) components(agg models.AggregatedMetrics) components {
	w := e.weights
	c := components{base: agg.SuccessRate * w.SuccessRate}
	if agg.AvgExecutionTime > 0 {
		c.executionBonus = math.Max(0, w.ExecutionBonusMax-agg.AvgExecutionTime*w.ExecutionPenalty)
	}
	if agg.AvgCreationTime > 0 {
		c.creationBonus = math.Max(0, w.CreationBonusMax-agg.AvgCreationTime*w.CreationPenalty)
	}
	return c
}

func (e *Engine) adjust(c components, agg models.AggregatedMetrics, useCase models.UseCase) float64 {
	score := c.total()
	switch useCase {
	case models.UseCaseSpeed:
		return score*e.weights.SpeedBlend + c.executionBonus*(1-e.weights.SpeedBlend)
	case models.UseCaseReliability:
		return agg.SuccessRate*e.weights.ReliabilityBlend + score*(1-e.weights.ReliabilityBlend)
	default:
		return score
	}
}

// Recommend picks the best provider for useCase over runs, which the caller
// has already restricted to the time window of interest. Equal scores are
// ordered by provider name.
func (e *Engine) Recommend(runs []models.BenchmarkResult, useCase models.UseCase) models.ProviderRecommendation {
	if len(runs) == 0 {
		return unknown(useCase, "No recent benchmark data available")
	}

	order, groups := metrics.GroupByProvider(runs)
	if len(order) == 0 {
		return unknown(useCase, "No provider data available")
	}

	scores := e.scoreProviders(order, groups, useCase)
	best := scores[0]

	summary := best.Metrics
	return models.ProviderRecommendation{
		RecommendedProvider: best.Provider,
		ConfidenceScore:     math.Min(best.Score/100, 1),
		Reasoning:           reasoning(best, scores[1:]),
		UseCaseSpecific: map[string]string{
			string(useCase): fmt.Sprintf("Best choice for %s workloads", useCase),
		},
		PerformanceSummary: &summary,
		ProviderScores:     scores,
	}
}

func (e *Engine) scoreProviders(order []string, groups map[string][]models.ProviderMetrics, useCase models.UseCase) []models.ProviderScore {
	scores := make([]models.ProviderScore, 0, len(order))
	for _, p := range order {
		agg := metrics.AggregateList(groups[p])
		c := e.components(agg)
		scores = append(scores, models.ProviderScore{
			Provider: p,
			Score:    e.adjust(c, agg, useCase),
			Metrics:  agg,
			Scores: map[string]float64{
				"base":            c.base,
				"execution_bonus": c.executionBonus,
				"creation_bonus":  c.creationBonus,
			},
		})
	}

	sort.SliceStable(scores, func(a, b int) bool {
		if scores[a].Score != scores[b].Score {
			return scores[a].Score > scores[b].Score
		}
		return scores[a].Provider < scores[b].Provider
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}
	return scores
}

func reasoning(best models.ProviderScore, others []models.ProviderScore) []string {
	lines := []string{fmt.Sprintf("Based on %d recent benchmark runs", best.Metrics.DataPoints)}

	sr := best.Metrics.SuccessRate
	switch {
	case sr > 90:
		lines = append(lines, fmt.Sprintf("Excellent reliability with %.1f%% success rate", sr))
	case sr > 75:
		lines = append(lines, fmt.Sprintf("Good reliability with %.1f%% success rate", sr))
	default:
		lines = append(lines, fmt.Sprintf("Moderate reliability with %.1f%% success rate", sr))
	}

	exec := best.Metrics.AvgExecutionTime
	switch {
	case exec < 1.0:
		lines = append(lines, fmt.Sprintf("Fast execution time (%.2fs average)", exec))
	case exec < 5.0:
		lines = append(lines, fmt.Sprintf("Reasonable execution time (%.2fs average)", exec))
	}

	if len(others) == 0 {
		return lines
	}
	otherScores := make([]float64, len(others))
	for i, o := range others {
		otherScores[i] = o.Score
	}
	avg := metrics.Mean(otherScores)
	switch {
	case best.Score > avg*1.2:
		lines = append(lines, "Significantly outperforms other providers")
	case best.Score > avg*1.1:
		lines = append(lines, "Performs better than other providers")
	}
	return lines
}

func unknown(useCase models.UseCase, reason string) models.ProviderRecommendation {
	return models.ProviderRecommendation{
		RecommendedProvider: models.UnknownProvider,
		ConfidenceScore:     0,
		Reasoning:           []string{reason},
		UseCaseSpecific:     map[string]string{string(useCase): "No data available"},
	}
}
