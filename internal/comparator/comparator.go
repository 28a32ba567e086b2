// Package comparator answers provider comparison, trend, regression and
// recommendation questions over benchmark history.
package comparator

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/grainchain/grainbench/internal/metrics"
	"github.com/grainchain/grainbench/internal/models"
	"github.com/grainchain/grainbench/internal/recommend"
	"github.com/grainchain/grainbench/internal/regression"
	"github.com/grainchain/grainbench/internal/statistics"
	"github.com/grainchain/grainbench/internal/trend"
)

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -source=comparator.go -destination=mock_runsource_test.go -package=comparator

// RunSource supplies benchmark runs in ascending timestamp order.
type RunSource interface {
	RunsForProvider(provider string) ([]models.BenchmarkResult, error)
	RunsInRange(start, end time.Time) ([]models.BenchmarkResult, error)
}

// Defaults applied by callers that do not pass their own values.
const (
	DefaultTimeRangeDays  = 30
	DefaultBaselineDays   = 7
	DefaultComparisonDays = 7
	DefaultThreshold      = 0.1
	DefaultTrendMetric    = "success_rate"
)

const day = 24 * time.Hour

// Comparator composes the analysis packages over a RunSource. It holds no
// mutable state and is safe for concurrent use if its RunSource is.
type Comparator struct {
	src        RunSource
	now        func() time.Time
	logger     *slog.Logger
	engine     *recommend.Engine
	thresholds regression.Thresholds
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithClock sets the reference instant used to anchor every time window.
func WithClock(now func() time.Time) Option {
	return func(c *Comparator) { c.now = now }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Comparator) { c.logger = l }
}

// WithThresholds sets per-metric regression thresholds that take precedence
// over the threshold passed to DetectPerformanceRegressions.
func WithThresholds(t regression.Thresholds) Option {
	return func(c *Comparator) { c.thresholds = t }
}

// New creates a Comparator reading from src.
func New(src RunSource, opts ...Option) *Comparator {
	c := &Comparator{
		src:    src,
		now:    time.Now,
		logger: slog.Default(),
		engine: recommend.NewEngine(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Comparator) since(days int) (time.Time, time.Time) {
	now := c.now()
	return now.Add(-time.Duration(days) * day), now
}

// CompareProviders compares b against a. Improvements and regressions are
// from b's point of view. timeRangeDays <= 0 disables time filtering.
func (c *Comparator) CompareProviders(a, b string, timeRangeDays int) (models.ComparisonResult, error) {
	runsA, err := c.src.RunsForProvider(a)
	if err != nil {
		return models.ComparisonResult{}, fmt.Errorf("loading runs for %s: %w", a, err)
	}
	runsB, err := c.src.RunsForProvider(b)
	if err != nil {
		return models.ComparisonResult{}, fmt.Errorf("loading runs for %s: %w", b, err)
	}
	if timeRangeDays > 0 {
		start, end := c.since(timeRangeDays)
		runsA = models.FilterRange(runsA, start, end)
		runsB = models.FilterRange(runsB, start, end)
	}

	result := models.NewComparisonResult(models.ComparisonProvider, models.ProviderSubject(a), models.ProviderSubject(b))
	if len(runsA) == 0 || len(runsB) == 0 {
		c.logger.Debug("insufficient data for comparison", "provider1", a, "runs1", len(runsA), "provider2", b, "runs2", len(runsB))
		result.Summary = fmt.Sprintf("Insufficient data for comparison. %s: %d results, %s: %d results", a, len(runsA), b, len(runsB))
		return result, nil
	}

	aggA := metrics.Aggregate(runsA, a)
	aggB := metrics.Aggregate(runsB, b)
	for _, m := range metrics.All() {
		result.MetricsCompared = append(result.MetricsCompared, m.String())
		va, vb := m.OfAggregate(aggA), m.OfAggregate(aggB)
		gain := vb - va
		if !m.HigherIsBetter() {
			gain = va - vb
		}
		switch {
		case gain > 0:
			result.Improvements[m.String()] = gain
		case gain < 0:
			result.Regressions[m.String()] = -gain
		}
	}

	result.Summary = comparisonSummary(a, b, result)
	result.DetailedAnalysis = map[string]any{
		"provider1_metrics": aggA,
		"provider2_metrics": aggB,
		"data_points": map[string]int{
			"provider1": aggA.DataPoints,
			"provider2": aggB.DataPoints,
		},
	}
	if len(runsA) >= 2 && len(runsB) >= 2 {
		result.DetailedAnalysis["success_rate_interval"] = statistics.BootstrapDiffCIWithSeed(
			successRates(runsA, a), successRates(runsB, b), 0.95, statistics.DefaultSeed)
	}
	return result, nil
}

func successRates(runs []models.BenchmarkResult, provider string) []float64 {
	var out []float64
	for _, r := range runs {
		if pm, ok := r.ProviderResults[provider]; ok {
			out = append(out, pm.OverallSuccessRate)
		}
	}
	return out
}

func comparisonSummary(a, b string, result models.ComparisonResult) string {
	lines := []string{fmt.Sprintf("Comparison between %s and %s:", a, b)}
	section := func(title string, deltas map[string]float64, improved bool) {
		if len(deltas) == 0 {
			return
		}
		lines = append(lines, fmt.Sprintf("%s %s:", b, title))
		for _, m := range metrics.All() {
			v, ok := deltas[m.String()]
			if !ok {
				continue
			}
			lines = append(lines, deltaLine(m, v, improved))
		}
	}
	section("improvements", result.Improvements, true)
	section("regressions", result.Regressions, false)

	if len(result.Improvements) == 0 && len(result.Regressions) == 0 {
		lines = append(lines, "Performance is similar between both providers.")
	}
	return strings.Join(lines, "\n")
}

func deltaLine(m metrics.Metric, v float64, improved bool) string {
	if m.IsTime() {
		if improved {
			return fmt.Sprintf("  • %s: -%.2fs faster", m.Label(), v)
		}
		return fmt.Sprintf("  • %s: +%.2fs slower", m.Label(), v)
	}
	if improved {
		return fmt.Sprintf("  • Success rate: +%.1f%%", v)
	}
	return fmt.Sprintf("  • Success rate: -%.1f%%", v)
}

// AnalyzeTimeTrends classifies metric over the last days. An empty provider
// averages each run across all of its providers.
func (c *Comparator) AnalyzeTimeTrends(provider string, days int, metric string) (models.TrendAnalysis, error) {
	start, end := c.since(days)
	runs, err := c.src.RunsInRange(start, end)
	if err != nil {
		return models.TrendAnalysis{}, fmt.Errorf("loading runs for trend analysis: %w", err)
	}

	var p *string
	if provider != "" {
		p = &provider
	}
	if _, ok := metrics.ParseMetric(metric); !ok {
		c.logger.Warn("unknown trend metric", "metric", metric, "known", metrics.Names())
	}
	return trend.Analyze(runs, p, metric, days), nil
}

// DetectPerformanceRegressions compares the last comparisonDays against the
// baselineDays before them and returns one result per regressed provider.
func (c *Comparator) DetectPerformanceRegressions(baselineDays, comparisonDays int, threshold float64) ([]models.ComparisonResult, error) {
	w := regression.WindowsAt(c.now(), baselineDays, comparisonDays)
	runs, err := c.src.RunsInRange(w.Baseline.Start, w.Recent.End)
	if err != nil {
		return nil, fmt.Errorf("loading runs for regression detection: %w", err)
	}

	baseline, recent := w.Partition(runs)
	c.logger.Debug("regression windows",
		"baseline_start", w.Baseline.Start, "recent_start", w.Recent.Start,
		"baseline_runs", len(baseline), "recent_runs", len(recent))
	return regression.Detect(baseline, recent, w, threshold, c.thresholds), nil
}

// RecommendProvider picks a provider for useCase from the last
// timeRangeDays of runs.
func (c *Comparator) RecommendProvider(useCase models.UseCase, timeRangeDays int) (models.ProviderRecommendation, error) {
	start, end := c.since(timeRangeDays)
	runs, err := c.src.RunsInRange(start, end)
	if err != nil {
		return models.ProviderRecommendation{}, fmt.Errorf("loading runs for recommendation: %w", err)
	}
	return c.engine.Recommend(runs, useCase), nil
}
