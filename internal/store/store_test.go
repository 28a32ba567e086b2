package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grainchain/grainbench/internal/models"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultJSON(start string, rates map[string]float64) string {
	providers := ""
	results := ""
	for _, p := range []string{"local", "e2b", "modal"} {
		rate, ok := rates[p]
		if !ok {
			continue
		}
		if providers != "" {
			providers += ", "
			results += ", "
		}
		providers += fmt.Sprintf("%q", p)
		results += fmt.Sprintf(`%q: {"status": "completed", "overall_metrics": {"overall_success_rate": %g, "avg_execution_time": 1.5, "avg_creation_time": 0.5}}`, p, rate)
	}
	return fmt.Sprintf(`{"benchmark_info": {"start_time": %q, "duration_seconds": 30, "providers": [%s], "test_scenarios": 1}, "provider_results": {%s}}`,
		start, providers, results)
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func gzipped(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func zstded(t *testing.T, data string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll([]byte(data), nil)
}

func newTestStore(dir string) *FileStore {
	return NewFileStore(dir, WithLocation(time.UTC), WithLogger(quietLogger()))
}

func TestFileStore_LoadsJSONResults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "grainchain_benchmark_20260703_100000.json",
		[]byte(resultJSON("2026-07-03T10:00:00", map[string]float64{"local": 90, "e2b": 70})))
	writeFile(t, dir, "grainchain_benchmark_20260701_100000.json.gz",
		gzipped(t, resultJSON("2026-07-01T10:00:00", map[string]float64{"local": 80})))
	writeFile(t, dir, "grainchain_benchmark_20260702_100000.json.zst",
		zstded(t, resultJSON("2026-07-02T10:00:00", map[string]float64{"e2b": 60, "modal": 50})))
	// Ignored: wrong prefix, schema-invalid, Markdown while JSON exists, directory.
	writeFile(t, dir, "latest_grainchain.json", []byte(resultJSON("2026-07-04T10:00:00", map[string]float64{"local": 1})))
	writeFile(t, dir, "grainchain_benchmark_20260705_100000.json", []byte(`{"provider_results": "nope"}`))
	writeFile(t, dir, "grainchain_benchmark_20260706_100000.md", []byte(suiteMarkdown))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "grainchain_benchmark_dir.json"), 0o755))

	fs := newTestStore(dir)
	assert.Equal(t, dir, fs.Dir())

	runs, err := fs.All()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC), runs[0].Timestamp)
	assert.Equal(t, time.Date(2026, 7, 2, 10, 0, 0, 0, time.UTC), runs[1].Timestamp)
	assert.Equal(t, time.Date(2026, 7, 3, 10, 0, 0, 0, time.UTC), runs[2].Timestamp)
	assert.Equal(t, 80.0, runs[0].ProviderResults["local"].OverallSuccessRate)

	local, err := fs.RunsForProvider("local")
	require.NoError(t, err)
	require.Len(t, local, 2)
	assert.True(t, local[0].Timestamp.Before(local[1].Timestamp))

	none, err := fs.RunsForProvider("daytona")
	require.NoError(t, err)
	assert.Empty(t, none)

	inRange, err := fs.RunsInRange(
		time.Date(2026, 7, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 3, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, inRange, 2, "range bounds are inclusive")

	latest, err := fs.Latest()
	require.NoError(t, err)
	assert.Equal(t, runs[2].Timestamp, latest.Timestamp)
}

func TestFileStore_MarkdownFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "grainchain_benchmark_20260703_091500.md", []byte(suiteMarkdown))
	writeFile(t, dir, "grainchain_benchmark_20260701_080000.md",
		[]byte("### LOCAL Provider\n\n- **Overall Success Rate:** 70.0%\n"))

	runs, err := newTestStore(dir).All()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC), runs[0].Timestamp)
	assert.Equal(t, 70.0, runs[0].ProviderResults["local"].OverallSuccessRate)
	assert.Equal(t, 95.0, runs[1].ProviderResults["local"].OverallSuccessRate)
}

func TestFileStore_Reload(t *testing.T) {
	dir := t.TempDir()
	fs := newTestStore(dir)

	runs, err := fs.All()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = fs.Latest()
	assert.True(t, errors.Is(err, ErrNoResults))

	writeFile(t, dir, "grainchain_benchmark_20260701_100000.json",
		[]byte(resultJSON("2026-07-01T10:00:00", map[string]float64{"local": 80})))

	runs, err = fs.All()
	require.NoError(t, err)
	assert.Empty(t, runs, "results are cached until Reload")

	require.NoError(t, fs.Reload())
	runs, err = fs.All()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestFileStore_MissingDir(t *testing.T) {
	fs := newTestStore(filepath.Join(t.TempDir(), "missing"))
	_, err := fs.All()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "results directory not found")

	_, err = fs.RunsInRange(time.Time{}, time.Now())
	require.Error(t, err)
}

func TestFileStore_ReturnsCopies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "grainchain_benchmark_20260701_100000.json",
		[]byte(resultJSON("2026-07-01T10:00:00", map[string]float64{"local": 80})))
	fs := newTestStore(dir)

	runs, err := fs.All()
	require.NoError(t, err)
	runs[0] = models.BenchmarkResult{}

	again, err := fs.All()
	require.NoError(t, err)
	assert.False(t, again[0].Timestamp.IsZero())
}

func TestMemoryStore(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 7, d, 0, 0, 0, 0, time.UTC) }
	run := func(d int, providers ...string) models.BenchmarkResult {
		r := models.BenchmarkResult{Timestamp: day(d), ProvidersTested: providers, ProviderResults: map[string]models.ProviderMetrics{}}
		for _, p := range providers {
			r.ProviderResults[p] = models.ProviderMetrics{ProviderName: p}
		}
		return r
	}

	m := NewMemoryStore(run(3, "local"), run(1, "local", "e2b"), run(2, "e2b"))

	all, err := m.All()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, day(1), all[0].Timestamp)
	assert.Equal(t, day(3), all[2].Timestamp)

	e2b, err := m.RunsForProvider("e2b")
	require.NoError(t, err)
	assert.Len(t, e2b, 2)

	mid, err := m.RunsInRange(day(2), day(2))
	require.NoError(t, err)
	require.Len(t, mid, 1)
	assert.Equal(t, day(2), mid[0].Timestamp)

	latest, err := m.Latest()
	require.NoError(t, err)
	assert.Equal(t, day(3), latest.Timestamp)

	_, err = NewMemoryStore().Latest()
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestResultFileNames(t *testing.T) {
	assert.True(t, IsJSONResult("grainchain_benchmark_20260701_100000.json"))
	assert.True(t, IsJSONResult("grainchain_benchmark_20260701_100000.json.gz"))
	assert.True(t, IsJSONResult("grainchain_benchmark_20260701_100000.json.zst"))
	assert.False(t, IsJSONResult("latest_grainchain.json"))
	assert.False(t, IsJSONResult("grainchain_benchmark_20260701_100000.md"))
	assert.True(t, IsMarkdownResult("grainchain_benchmark_20260701_100000.md"))
	assert.False(t, IsResultFile("notes.txt"))
}
