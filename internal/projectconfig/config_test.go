package projectconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_ReturnsAllDefaults(t *testing.T) {
	cfg := New()

	// Paths
	assertEqual(t, "Paths.Results", "benchmarks/results", cfg.Paths.Results)
	assertEqual(t, "Paths.Reports", "benchmarks/reports", cfg.Paths.Reports)

	// Analysis
	assertEqualInt(t, "Analysis.TimeRangeDays", 30, cfg.Analysis.TimeRangeDays)
	assertEqualFloat(t, "Analysis.ComparisonThreshold", 0.1, cfg.Threshold())
	assertEqualInt(t, "Analysis.BaselineDays", 7, cfg.Analysis.BaselineDays)
	assertEqualInt(t, "Analysis.ComparisonDays", 7, cfg.Analysis.ComparisonDays)
	if cfg.Analysis.RegressionThresholds != nil {
		t.Error("Analysis.RegressionThresholds should be nil by default")
	}

	// Server
	assertEqualInt(t, "Server.Port", 8787, cfg.Server.Port)
	assertBoolPtr(t, "Server.AllowRemote", false, cfg.Server.AllowRemote)

	// Remote
	assertEqual(t, "Remote.AccountURL", "", cfg.Remote.AccountURL)
	assertEqual(t, "Remote.Container", "", cfg.Remote.Container)
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
paths:
  results: "out/results"
  reports: "out/reports"
analysis:
  time_range_days: 14
  comparison_threshold: 0.25
  baseline_days: 3
  comparison_days: 2
  regression_thresholds:
    success_rate: 0.05
server:
  port: 9090
  allow_remote: true
remote:
  account_url: "https://bench.blob.core.windows.net"
  container: "results"
  prefix: "nightly/"
providers:
  display_names:
    e2b: "E2B"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqual(t, "Paths.Results", "out/results", cfg.Paths.Results)
	assertEqual(t, "Paths.Reports", "out/reports", cfg.Paths.Reports)
	assertEqualInt(t, "Analysis.TimeRangeDays", 14, cfg.Analysis.TimeRangeDays)
	assertEqualFloat(t, "Analysis.ComparisonThreshold", 0.25, cfg.Threshold())
	assertEqualInt(t, "Analysis.BaselineDays", 3, cfg.Analysis.BaselineDays)
	assertEqualInt(t, "Analysis.ComparisonDays", 2, cfg.Analysis.ComparisonDays)
	assertEqualFloat(t, "Analysis.RegressionThresholds[success_rate]", 0.05, cfg.Analysis.RegressionThresholds["success_rate"])
	assertEqualInt(t, "Server.Port", 9090, cfg.Server.Port)
	assertBoolPtr(t, "Server.AllowRemote", true, cfg.Server.AllowRemote)
	assertEqual(t, "Remote.AccountURL", "https://bench.blob.core.windows.net", cfg.Remote.AccountURL)
	assertEqual(t, "Remote.Container", "results", cfg.Remote.Container)
	assertEqual(t, "Remote.Prefix", "nightly/", cfg.Remote.Prefix)
	assertEqual(t, "DisplayName(e2b)", "E2B", cfg.DisplayName("e2b"))
	assertEqual(t, "DisplayName(local)", "local", cfg.DisplayName("local"))
}

func TestLoad_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
analysis:
  time_range_days: 60
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	assertEqualInt(t, "Analysis.TimeRangeDays", 60, cfg.Analysis.TimeRangeDays)
	assertEqualInt(t, "Analysis.BaselineDays", 7, cfg.Analysis.BaselineDays)
	assertEqual(t, "Paths.Results", "benchmarks/results", cfg.Paths.Results)
	assertEqualInt(t, "Server.Port", 8787, cfg.Server.Port)
}

func TestLoad_ZeroThresholdIsKept(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
analysis:
  comparison_threshold: 0
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	assertEqualFloat(t, "Analysis.ComparisonThreshold", 0, cfg.Threshold())
}

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	assertEqual(t, "Paths.Results", "benchmarks/results", cfg.Paths.Results)
	assertEqualInt(t, "Server.Port", 8787, cfg.Server.Port)
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "analysis: [unclosed\n")

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_SchemaViolation_ReturnsError(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown section", "extras:\n  foo: bar\n"},
		{"port out of range", "server:\n  port: 70000\n"},
		{"negative window", "analysis:\n  baseline_days: 0\n"},
		{"unknown threshold metric", "analysis:\n  regression_thresholds:\n    latency: 0.2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, FileName, tt.content)

			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected schema error")
			}
			if !strings.Contains(err.Error(), "invalid") {
				t.Errorf("error = %v, want it to mention invalid config", err)
			}
		})
	}
}

func TestLoad_WalksUpDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, "server:\n  port: 4000\n")

	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nested)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	assertEqualInt(t, "Server.Port", 4000, cfg.Server.Port)
}

func TestApply_DottedKeys(t *testing.T) {
	cfg := New()
	err := cfg.Apply(map[string]string{
		"analysis.time_range_days":                    "45",
		"analysis.comparison_threshold":               "0.2",
		"analysis.regression_thresholds.success_rate": "0.03",
		"server.allow_remote":                         "true",
		"providers.display_names.docker":              "Docker",
		"paths.results":                               "elsewhere",
	})
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	assertEqualInt(t, "Analysis.TimeRangeDays", 45, cfg.Analysis.TimeRangeDays)
	assertEqualFloat(t, "Analysis.ComparisonThreshold", 0.2, cfg.Threshold())
	assertEqualFloat(t, "Analysis.RegressionThresholds[success_rate]", 0.03, cfg.Analysis.RegressionThresholds["success_rate"])
	assertBoolPtr(t, "Server.AllowRemote", true, cfg.Server.AllowRemote)
	assertEqual(t, "DisplayName(docker)", "Docker", cfg.DisplayName("docker"))
	assertEqual(t, "Paths.Results", "elsewhere", cfg.Paths.Results)

	// Untouched fields keep their defaults.
	assertEqualInt(t, "Analysis.BaselineDays", 7, cfg.Analysis.BaselineDays)
	assertEqual(t, "Paths.Reports", "benchmarks/reports", cfg.Paths.Reports)
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
	}{
		{"unknown key", map[string]string{"analysis.window": "3"}},
		{"empty segment", map[string]string{"analysis..time_range_days": "3"}},
		{"not a number", map[string]string{"server.port": "eighty"}},
		{"out of range", map[string]string{"server.port": "70000"}},
		{"zero port", map[string]string{"server.port": "0"}},
		{"zero time range", map[string]string{"analysis.time_range_days": "0"}},
		{"zero baseline", map[string]string{"analysis.baseline_days": "0"}},
		{"negative comparison window", map[string]string{"analysis.comparison_days": "-2"}},
		{"leaf and section", map[string]string{"paths": "x", "paths.results": "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := New().Apply(tt.overrides); err == nil {
				t.Errorf("Apply(%v) expected error", tt.overrides)
			}
		})
	}
}

func TestSave_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := New()
	cfg.Remote.Container = "bench"
	cfg.Server.Port = 9999

	if err := cfg.Save(filepath.Join(dir, FileName)); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	assertEqual(t, "Remote.Container", "bench", loaded.Remote.Container)
	assertEqualInt(t, "Server.Port", 9999, loaded.Server.Port)
	assertEqualFloat(t, "Analysis.ComparisonThreshold", 0.1, loaded.Threshold())
}

// --- test helpers ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertEqual(t *testing.T, field, want, got string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", field, got, want)
	}
}

func assertEqualInt(t *testing.T, field string, want, got int) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %d, want %d", field, got, want)
	}
}

func assertEqualFloat(t *testing.T, field string, want, got float64) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

func assertBoolPtr(t *testing.T, field string, want bool, got *bool) {
	t.Helper()
	if got == nil {
		t.Errorf("%s is nil, want *%v", field, want)
		return
	}
	if *got != want {
		t.Errorf("%s = %v, want %v", field, *got, want)
	}
}

func TestClone_IsDeep(t *testing.T) {
	cfg := New()
	cfg.Providers.DisplayNames = map[string]string{"e2b": "E2B"}
	clone := cfg.Clone()

	if err := clone.Apply(map[string]string{
		"analysis.comparison_threshold": "0.5",
		"server.allow_remote":           "true",
		"providers.display_names.e2b":   "Other",
	}); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	assertEqualFloat(t, "original threshold", 0.1, cfg.Threshold())
	assertBoolPtr(t, "original AllowRemote", false, cfg.Server.AllowRemote)
	assertEqual(t, "original DisplayName(e2b)", "E2B", cfg.DisplayName("e2b"))
	assertEqualFloat(t, "clone threshold", 0.5, clone.Threshold())
}
