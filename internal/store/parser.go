package store

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/grainchain/grainbench/internal/models"
	"github.com/grainchain/grainbench/internal/validation"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// InvalidResultError reports a result document that does not match the
// benchmark result schema.
type InvalidResultError struct {
	Path     string
	Problems []string
}

func (e *InvalidResultError) Error() string {
	return fmt.Sprintf("%s does not match the benchmark result schema: %s", e.Path, strings.Join(e.Problems, "; "))
}

// Parser turns result files into BenchmarkResults.
type Parser struct {
	now    func() time.Time
	loc    *time.Location
	logger *slog.Logger
}

// NewParser returns a parser that reads zone-less timestamps in loc and
// falls back to now() for unparseable ones.
func NewParser(now func() time.Time, loc *time.Location, logger *slog.Logger) *Parser {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{now: now, loc: loc, logger: logger}
}

var defaultParser = NewParser(nil, nil, nil)

// ParseJSON parses a JSON result document with the default parser.
func ParseJSON(data []byte, path string) (models.BenchmarkResult, error) {
	return defaultParser.ParseJSON(data, path)
}

// ParseMarkdown parses a Markdown result report with the default parser.
func ParseMarkdown(data []byte, path string) (models.BenchmarkResult, error) {
	return defaultParser.ParseMarkdown(data, path)
}

type rawDocument struct {
	BenchmarkInfo struct {
		StartTime       string   `mapstructure:"start_time"`
		DurationSeconds float64  `mapstructure:"duration_seconds"`
		Providers       []string `mapstructure:"providers"`
		TestScenarios   int      `mapstructure:"test_scenarios"`
	} `mapstructure:"benchmark_info"`
	ProviderResults map[string]rawProvider `mapstructure:"provider_results"`
}

type rawProvider struct {
	Status         string                 `mapstructure:"status"`
	OverallMetrics rawOverall             `mapstructure:"overall_metrics"`
	Scenarios      map[string]rawScenario `mapstructure:"scenarios"`
}

// rawOverall accepts both the analysis keys and the keys written by the
// benchmark suite itself.
type rawOverall struct {
	OverallSuccessRate     float64  `mapstructure:"overall_success_rate"`
	AvgExecutionTime       *float64 `mapstructure:"avg_execution_time"`
	AvgCreationTime        *float64 `mapstructure:"avg_creation_time"`
	AvgScenarioTime        *float64 `mapstructure:"avg_scenario_time"`
	AvgSandboxCreationTime *float64 `mapstructure:"avg_sandbox_creation_time"`
}

type rawScenario struct {
	Description string `mapstructure:"description"`
	Aggregated  struct {
		SuccessRate          float64  `mapstructure:"success_rate"`
		AvgExecutionTime     *float64 `mapstructure:"avg_execution_time"`
		AvgTotalTime         *float64 `mapstructure:"avg_total_time"`
		MinExecutionTime     *float64 `mapstructure:"min_execution_time"`
		MaxExecutionTime     *float64 `mapstructure:"max_execution_time"`
		MinTotalTime         float64  `mapstructure:"min_total_time"`
		MaxTotalTime         float64  `mapstructure:"max_total_time"`
		TotalIterations      *int     `mapstructure:"total_iterations"`
		SuccessfulIterations *int     `mapstructure:"successful_iterations"`
		FailedIterations     *int     `mapstructure:"failed_iterations"`
		IterationsTotal      int      `mapstructure:"iterations_total"`
		IterationsCompleted  int      `mapstructure:"iterations_completed"`
		Errors               []string `mapstructure:"errors"`
	} `mapstructure:"aggregated"`
}

// ParseJSON validates data against the result schema and decodes it.
func (p *Parser) ParseJSON(data []byte, path string) (models.BenchmarkResult, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return models.BenchmarkResult{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if problems := validation.ValidateResult(doc); len(problems) > 0 {
		return models.BenchmarkResult{}, &InvalidResultError{Path: path, Problems: problems}
	}

	rawData, _ := doc.(map[string]any)
	var raw rawDocument
	if err := mapstructure.Decode(rawData, &raw); err != nil {
		return models.BenchmarkResult{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	info := raw.BenchmarkInfo
	result := models.BenchmarkResult{
		Timestamp:       p.timestamp(info.StartTime, path),
		DurationSeconds: info.DurationSeconds,
		ProvidersTested: info.Providers,
		TestScenarios:   info.TestScenarios,
		ProviderResults: make(map[string]models.ProviderMetrics, len(raw.ProviderResults)),
		FilePath:        path,
		RawData:         rawData,
	}
	if result.ProvidersTested == nil {
		result.ProvidersTested = []string{}
	}
	for name, rp := range raw.ProviderResults {
		pm := rp.metrics(name)
		ts, dur := result.Timestamp, result.DurationSeconds
		pm.BenchmarkTimestamp = &ts
		pm.BenchmarkDuration = &dur
		result.ProviderResults[name] = pm
	}
	return result, nil
}

func (p *Parser) timestamp(s, path string) time.Time {
	if t, ok := parseTimestamp(s, p.loc); ok {
		return t
	}
	p.logger.Warn("could not parse timestamp, using current time", "timestamp", s, "file", path)
	return p.now()
}

func (rp rawProvider) metrics(name string) models.ProviderMetrics {
	o := rp.OverallMetrics
	pm := models.ProviderMetrics{
		ProviderName:       name,
		OverallSuccessRate: o.OverallSuccessRate,
		Status:             rp.Status,
		Scenarios:          make(map[string]models.ScenarioMetrics, len(rp.Scenarios)),
	}
	if pm.Status == "" {
		pm.Status = models.ProviderStatusUnknown
	}

	switch {
	case o.AvgExecutionTime != nil || o.AvgCreationTime != nil:
		pm.AvgExecutionTime = deref(o.AvgExecutionTime)
		pm.AvgCreationTime = deref(o.AvgCreationTime)
	case o.AvgScenarioTime != nil || o.AvgSandboxCreationTime != nil:
		// The benchmark suite writes success rates as fractions.
		pm.OverallSuccessRate *= 100
		pm.AvgExecutionTime = deref(o.AvgScenarioTime)
		pm.AvgCreationTime = deref(o.AvgSandboxCreationTime)
	}

	for key, rs := range rp.Scenarios {
		pm.Scenarios[key] = rs.metrics(key)
	}
	pm.TotalScenarios = len(pm.Scenarios)
	return pm
}

func (rs rawScenario) metrics(name string) models.ScenarioMetrics {
	a := rs.Aggregated
	sm := models.ScenarioMetrics{
		Name:        name,
		Description: rs.Description,
		SuccessRate: a.SuccessRate,
		Errors:      a.Errors,
	}

	if a.AvgExecutionTime != nil {
		sm.AvgExecutionTime = *a.AvgExecutionTime
		sm.MinExecutionTime = deref(a.MinExecutionTime)
		sm.MaxExecutionTime = deref(a.MaxExecutionTime)
		sm.TotalIterations = derefInt(a.TotalIterations)
		sm.SuccessfulIterations = derefInt(a.SuccessfulIterations)
		sm.FailedIterations = derefInt(a.FailedIterations)
		return sm
	}

	if a.AvgTotalTime != nil {
		sm.SuccessRate *= 100
		sm.AvgExecutionTime = *a.AvgTotalTime
	}
	sm.MinExecutionTime = a.MinTotalTime
	sm.MaxExecutionTime = a.MaxTotalTime
	sm.TotalIterations = a.IterationsTotal
	sm.SuccessfulIterations = a.IterationsCompleted
	sm.FailedIterations = a.IterationsTotal - a.IterationsCompleted
	return sm
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
