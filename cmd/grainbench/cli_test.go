package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerFixture struct {
	rate, exec, create float64
}

func writeResult(t *testing.T, dir string, ts time.Time, providers map[string]providerFixture) {
	t.Helper()
	names := make([]string, 0, len(providers))
	results := make(map[string]any, len(providers))
	for _, name := range []string{"local", "e2b"} {
		p, ok := providers[name]
		if !ok {
			continue
		}
		names = append(names, name)
		results[name] = map[string]any{
			"status": "completed",
			"overall_metrics": map[string]any{
				"overall_success_rate": p.rate,
				"avg_execution_time":   p.exec,
				"avg_creation_time":    p.create,
			},
		}
	}
	doc := map[string]any{
		"benchmark_info": map[string]any{
			"start_time":       ts.Format("2006-01-02T15:04:05"),
			"duration_seconds": 30,
			"providers":        names,
			"test_scenarios":   1,
		},
		"provider_results": results,
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	name := fmt.Sprintf("grainchain_benchmark_%s.json", ts.Format("20060102_150405"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

// setupProject writes four runs: local regresses from 100% to 40% success
// between the baseline and recent windows while e2b stays perfect.
func setupProject(t *testing.T) (configPath, resultsDir string) {
	t.Helper()
	root := t.TempDir()
	resultsDir = filepath.Join(root, "results")
	require.NoError(t, os.MkdirAll(resultsDir, 0o755))

	now := time.Now().Truncate(time.Second)
	day := 24 * time.Hour
	for _, d := range []time.Duration{10, 9} {
		writeResult(t, resultsDir, now.Add(-d*day), map[string]providerFixture{
			"local": {100, 3.0, 1.0},
			"e2b":   {100, 1.0, 0.2},
		})
	}
	for _, d := range []time.Duration{2, 1} {
		writeResult(t, resultsDir, now.Add(-d*day), map[string]providerFixture{
			"local": {40, 3.0, 1.0},
			"e2b":   {100, 1.0, 0.2},
		})
	}

	configPath = filepath.Join(root, ".grainbench.yaml")
	cfg := fmt.Sprintf("paths:\n  results: %q\n  reports: %q\nproviders:\n  display_names:\n    e2b: E2B\n",
		resultsDir, filepath.Join(root, "reports"))
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))
	return configPath, resultsDir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompare_Table(t *testing.T) {
	cfg, _ := setupProject(t)

	out, err := runCLI(t, "--config", cfg, "compare", "--provider1", "local", "--provider2", "e2b")
	require.NoError(t, err)

	assert.Contains(t, out, "Comparison: local vs E2B (last 30 days)")
	assert.Contains(t, out, "Success Rate")
	assert.Contains(t, out, "70.0%")
	assert.Contains(t, out, "+30.0%")
	assert.Contains(t, out, "Comparison between local and e2b:")
}

func TestCompare_JSONAndRequiredFlags(t *testing.T) {
	cfg, _ := setupProject(t)

	out, err := runCLI(t, "--config", cfg, "compare", "--provider1", "local", "--provider2", "e2b", "--format", "json")
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "provider", body["comparison_type"])

	_, err = runCLI(t, "--config", cfg, "compare", "--provider1", "local")
	require.Error(t, err)

	_, err = runCLI(t, "--config", cfg, "compare", "--provider1", "local", "--provider2", "e2b", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestTrends(t *testing.T) {
	cfg, _ := setupProject(t)

	out, err := runCLI(t, "--config", cfg, "trends", "--provider", "local")
	require.NoError(t, err)
	assert.Contains(t, out, "Success Rate trend for local")
	assert.Contains(t, out, "declining")
	assert.Contains(t, out, "TIMESTAMP")

	_, err = runCLI(t, "--config", cfg, "trends", "--metric", "latency")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown metric")
}

func TestRegressions_TableAndFailFlag(t *testing.T) {
	cfg, _ := setupProject(t)

	out, err := runCLI(t, "--config", cfg, "regressions")
	require.NoError(t, err)
	assert.Contains(t, out, "PROVIDER")
	assert.Contains(t, out, "-60.0%")
	assert.Contains(t, out, "1 provider(s) regressed.")

	_, err = runCLI(t, "--config", cfg, "regressions", "--fail-on-regression")
	var failure *TestFailureError
	require.True(t, errors.As(err, &failure), "expected TestFailureError, got %v", err)

	_, err = runCLI(t, "--config", cfg, "regressions", "--fail-on-regression", "--threshold", "90")
	require.NoError(t, err)
}

func TestRegressions_PerMetricOverride(t *testing.T) {
	cfg, _ := setupProject(t)

	out, err := runCLI(t, "--config", cfg, "--set", "analysis.regression_thresholds.success_rate=75", "regressions")
	require.NoError(t, err)
	assert.Contains(t, out, "No performance regressions detected.")
}

func TestRegressions_JUnit(t *testing.T) {
	cfg, _ := setupProject(t)

	out, err := runCLI(t, "--config", cfg, "regressions", "--format", "junit")
	require.NoError(t, err)
	assert.Contains(t, out, "<testsuites")
	assert.Contains(t, out, `name="local"`)
	assert.Contains(t, out, `name="e2b"`)
	assert.Contains(t, out, "[REGRESSION]")
}

func TestRecommend(t *testing.T) {
	cfg, _ := setupProject(t)

	out, err := runCLI(t, "--config", cfg, "recommend", "--use-case", "reliability")
	require.NoError(t, err)
	assert.Contains(t, out, "Recommended for reliability: E2B")
	assert.Contains(t, out, "RANK")

	_, err = runCLI(t, "--config", cfg, "recommend", "--use-case", "cost")
	require.Error(t, err)
}

func TestReport_WritesMarkdownAndHTML(t *testing.T) {
	cfg, _ := setupProject(t)
	dir := t.TempDir()

	mdPath := filepath.Join(dir, "report.md")
	_, err := runCLI(t, "--config", cfg, "report", "--output", mdPath)
	require.NoError(t, err)
	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Comprehensive Benchmark Report")

	htmlPath := filepath.Join(dir, "report.html")
	_, err = runCLI(t, "--config", cfg, "report", "--format", "html", "--output", htmlPath)
	require.NoError(t, err)
	page, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<table>")
	assert.Contains(t, string(page), "<title>Benchmark Report</title>")
}

func TestReport_DefaultsToReportsDir(t *testing.T) {
	cfg, _ := setupProject(t)

	_, err := runCLI(t, "--config", cfg, "report")
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(cfg), "reports", "benchmark_report_*.md"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestValidate(t *testing.T) {
	cfg, resultsDir := setupProject(t)
	entries, err := os.ReadDir(resultsDir)
	require.NoError(t, err)
	good := filepath.Join(resultsDir, entries[0].Name())

	out, err := runCLI(t, "validate", good, cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+good)

	bad := filepath.Join(t.TempDir(), "grainchain_benchmark_bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"provider_results": "nope"}`), 0o644))

	out, err = runCLI(t, "validate", good, bad)
	var failure *TestFailureError
	require.True(t, errors.As(err, &failure), "expected TestFailureError, got %v", err)
	assert.Contains(t, out, "✗ "+bad)
	assert.Equal(t, "1 of 2 file(s) invalid", failure.Message)
}

func TestMissingResultsDir(t *testing.T) {
	_, err := runCLI(t, "--results-dir", filepath.Join(t.TempDir(), "missing"),
		"--config", writeEmptyConfig(t), "compare", "--provider1", "a", "--provider2", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "results directory not found")

	var failure *TestFailureError
	assert.False(t, errors.As(err, &failure))
}

func TestInvalidSet(t *testing.T) {
	cfg := writeEmptyConfig(t)

	_, err := runCLI(t, "--config", cfg, "--set", "novalue", "regressions")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected key=value")

	_, err = runCLI(t, "--config", cfg, "--set", "analysis.unknown=1", "regressions")
	require.Error(t, err)
}

func TestFetch_RequiresContainer(t *testing.T) {
	_, err := runCLI(t, "--config", writeEmptyConfig(t), "fetch", "--account-url", "https://example.blob.core.windows.net")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "container are required")
}

func TestInit_NonInteractive(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "--set", "server.port=9999", "init", dir)
	require.NoError(t, err)
	path := filepath.Join(dir, ".grainbench.yaml")
	assert.Contains(t, out, "Created "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "port: 9999")
	assert.Contains(t, string(data), "results: benchmarks/results")

	_, err = runCLI(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runCLI(t, "init", "--force", dir)
	require.NoError(t, err)
}

func TestParseOverrides(t *testing.T) {
	got, err := parseOverrides([]string{"a.b=1", "c= x=y "})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.b": "1", "c": " x=y "}, got)

	_, err = parseOverrides([]string{"=1"})
	assert.Error(t, err)
}

func TestTable_AlignsWideRunes(t *testing.T) {
	tbl := newTable("NAME", "VALUE")
	tbl.add("日本", "1")
	tbl.add("abcdef", "2")

	var buf bytes.Buffer
	tbl.write(&buf)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "  NAME    VALUE", lines[0])
	assert.Equal(t, "  -------------", lines[1])
	assert.Equal(t, "  日本    1", lines[2])
	assert.Equal(t, "  abcdef  2", lines[3])
}

func writeEmptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".grainbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  time_range_days: 30\n"), 0o644))
	return path
}
