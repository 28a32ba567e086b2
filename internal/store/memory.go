package store

import (
	"time"

	"github.com/grainchain/grainbench/internal/models"
)

// MemoryStore serves a fixed set of runs held in memory.
type MemoryStore struct {
	runs []models.BenchmarkResult
}

// NewMemoryStore returns a store over a sorted copy of runs.
func NewMemoryStore(runs ...models.BenchmarkResult) *MemoryStore {
	cp := append([]models.BenchmarkResult(nil), runs...)
	models.SortByTimestamp(cp)
	return &MemoryStore{runs: cp}
}

// All returns every run in ascending timestamp order.
func (m *MemoryStore) All() ([]models.BenchmarkResult, error) {
	return append([]models.BenchmarkResult(nil), m.runs...), nil
}

// RunsForProvider returns the runs that list provider among the providers
// tested.
func (m *MemoryStore) RunsForProvider(provider string) ([]models.BenchmarkResult, error) {
	return forProvider(m.runs, provider), nil
}

// RunsInRange returns the runs with a timestamp in [start, end].
func (m *MemoryStore) RunsInRange(start, end time.Time) ([]models.BenchmarkResult, error) {
	return models.FilterRange(m.runs, start, end), nil
}

// Latest returns the newest run.
func (m *MemoryStore) Latest() (models.BenchmarkResult, error) {
	return latest(m.runs)
}
