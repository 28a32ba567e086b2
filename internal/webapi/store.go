package webapi

import (
	"path/filepath"

	"github.com/grainchain/grainbench/internal/comparator"
	"github.com/grainchain/grainbench/internal/models"
)

// RunStore provides access to benchmark runs. store.FileStore and
// store.MemoryStore both satisfy it.
type RunStore interface {
	comparator.RunSource
	// All returns every run in ascending timestamp order.
	All() ([]models.BenchmarkResult, error)
}

// summarize converts runs to API summaries, newest first.
func summarize(runs []models.BenchmarkResult) []RunSummary {
	out := make([]RunSummary, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		rates := make(map[string]float64, len(r.ProviderResults))
		for name, pm := range r.ProviderResults {
			rates[name] = pm.OverallSuccessRate
		}
		s := RunSummary{
			Timestamp:       r.Timestamp,
			DurationSeconds: r.DurationSeconds,
			Providers:       r.ProviderOrder(),
			TestScenarios:   r.TestScenarios,
			SuccessRates:    rates,
		}
		if r.FilePath != "" {
			s.File = filepath.Base(r.FilePath)
		}
		out = append(out, s)
	}
	return out
}
