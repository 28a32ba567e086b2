// Package projectconfig provides the ProjectConfig struct and loader for
// .grainbench.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/grainchain/grainbench/internal/validation"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".grainbench.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultResultsDir = "benchmarks/results"
	DefaultReportsDir = "benchmarks/reports"

	DefaultTimeRangeDays       = 30
	DefaultComparisonThreshold = 0.1
	DefaultBaselineDays        = 7
	DefaultComparisonDays      = 7

	DefaultServerPort = 8787
)

// PathsConfig holds the results and reports directories.
type PathsConfig struct {
	Results string `yaml:"results,omitempty"`
	Reports string `yaml:"reports,omitempty"`
}

// AnalysisConfig holds default analysis windows and thresholds.
type AnalysisConfig struct {
	TimeRangeDays        int                `yaml:"time_range_days,omitempty"`
	ComparisonThreshold  *float64           `yaml:"comparison_threshold,omitempty"`
	BaselineDays         int                `yaml:"baseline_days,omitempty"`
	ComparisonDays       int                `yaml:"comparison_days,omitempty"`
	RegressionThresholds map[string]float64 `yaml:"regression_thresholds,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port        int   `yaml:"port,omitempty"`
	AllowRemote *bool `yaml:"allow_remote,omitempty"`
}

// RemoteConfig points at an Azure Blob Storage container holding results.
type RemoteConfig struct {
	AccountURL string `yaml:"account_url,omitempty"`
	Container  string `yaml:"container,omitempty"`
	Prefix     string `yaml:"prefix,omitempty"`
}

// ProvidersConfig holds provider presentation settings.
type ProvidersConfig struct {
	DisplayNames map[string]string `yaml:"display_names,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .grainbench.yaml.
type ProjectConfig struct {
	Paths     PathsConfig     `yaml:"paths,omitempty"`
	Analysis  AnalysisConfig  `yaml:"analysis,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	Remote    RemoteConfig    `yaml:"remote,omitempty"`
	Providers ProvidersConfig `yaml:"providers,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Results: DefaultResultsDir,
			Reports: DefaultReportsDir,
		},
		Analysis: AnalysisConfig{
			TimeRangeDays:       DefaultTimeRangeDays,
			ComparisonThreshold: float64Ptr(DefaultComparisonThreshold),
			BaselineDays:        DefaultBaselineDays,
			ComparisonDays:      DefaultComparisonDays,
		},
		Server: ServerConfig{
			Port:        DefaultServerPort,
			AllowRemote: boolPtr(false),
		},
	}
}

// Threshold returns the configured comparison threshold.
func (c *ProjectConfig) Threshold() float64 {
	if c.Analysis.ComparisonThreshold == nil {
		return DefaultComparisonThreshold
	}
	return *c.Analysis.ComparisonThreshold
}

// RemoteAllowed reports whether the server may bind to non-loopback addresses.
func (c *ProjectConfig) RemoteAllowed() bool {
	return c.Server.AllowRemote != nil && *c.Server.AllowRemote
}

// DisplayName returns the configured display name for provider, or the
// provider name itself.
func (c *ProjectConfig) DisplayName(provider string) string {
	if name, ok := c.Providers.DisplayNames[provider]; ok && name != "" {
		return name
	}
	return provider
}

// Load finds .grainbench.yaml by walking up from startDir (max 10 levels),
// validates and unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
func Load(startDir string) (*ProjectConfig, error) {
	path, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}
	return LoadFile(path)
}

// LoadFile reads the config at path and merges it onto the defaults.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return parse(data, path)
}

func parse(data []byte, path string) (*ProjectConfig, error) {
	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if errs := validation.ValidateConfigBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid %s:\n  %s", path, strings.Join(errs, "\n  "))
	}

	cfg := New()
	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .grainbench.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		_, err := os.Stat(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}
	if src.Paths.Reports != "" {
		dst.Paths.Reports = src.Paths.Reports
	}

	// Analysis
	if src.Analysis.TimeRangeDays != 0 {
		dst.Analysis.TimeRangeDays = src.Analysis.TimeRangeDays
	}
	if src.Analysis.ComparisonThreshold != nil {
		dst.Analysis.ComparisonThreshold = src.Analysis.ComparisonThreshold
	}
	if src.Analysis.BaselineDays != 0 {
		dst.Analysis.BaselineDays = src.Analysis.BaselineDays
	}
	if src.Analysis.ComparisonDays != 0 {
		dst.Analysis.ComparisonDays = src.Analysis.ComparisonDays
	}
	if len(src.Analysis.RegressionThresholds) > 0 {
		dst.Analysis.RegressionThresholds = src.Analysis.RegressionThresholds
	}

	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Server.AllowRemote != nil {
		dst.Server.AllowRemote = src.Server.AllowRemote
	}

	// Remote
	if src.Remote.AccountURL != "" {
		dst.Remote.AccountURL = src.Remote.AccountURL
	}
	if src.Remote.Container != "" {
		dst.Remote.Container = src.Remote.Container
	}
	if src.Remote.Prefix != "" {
		dst.Remote.Prefix = src.Remote.Prefix
	}

	// Providers
	if len(src.Providers.DisplayNames) > 0 {
		dst.Providers.DisplayNames = src.Providers.DisplayNames
	}
}

// Apply sets values from dotted keys such as "analysis.time_range_days".
// Values are strings and converted to the field's type.
func (c *ProjectConfig) Apply(overrides map[string]string) error {
	if len(overrides) == 0 {
		return nil
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tree := map[string]any{}
	for _, key := range keys {
		parts := strings.Split(key, ".")
		node := tree
		for i, part := range parts {
			if part == "" {
				return fmt.Errorf("invalid config key %q", key)
			}
			if i == len(parts)-1 {
				if _, isMap := node[part].(map[string]any); isMap {
					return fmt.Errorf("config key %q names a section", key)
				}
				node[part] = overrides[key]
				break
			}
			next, ok := node[part].(map[string]any)
			if !ok {
				if _, isLeaf := node[part]; isLeaf {
					return fmt.Errorf("config key %q conflicts with %q", key, strings.Join(parts[:i+1], "."))
				}
				next = map[string]any{}
				node[part] = next
			}
			node = next
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           c,
	})
	if err != nil {
		return fmt.Errorf("creating config decoder: %w", err)
	}
	if err := dec.Decode(tree); err != nil {
		return fmt.Errorf("applying config overrides: %w", err)
	}
	return c.Validate()
}

// Validate checks the config against the config schema. Zero-valued
// integers are dropped by omitempty when marshaling, so the window and port
// bounds are checked on the struct first.
func (c *ProjectConfig) Validate() error {
	var problems []string
	for _, f := range []struct {
		key   string
		value int
	}{
		{"analysis.time_range_days", c.Analysis.TimeRangeDays},
		{"analysis.baseline_days", c.Analysis.BaselineDays},
		{"analysis.comparison_days", c.Analysis.ComparisonDays},
	} {
		if f.value < 1 {
			problems = append(problems, fmt.Sprintf("%s: must be at least 1, got %d", f.key, f.value))
		}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config:\n  %s", strings.Join(problems, "\n  "))
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if errs := validation.ValidateConfigBytes(data); len(errs) > 0 {
		return fmt.Errorf("invalid config:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *ProjectConfig) Clone() *ProjectConfig {
	out := *c
	if c.Analysis.ComparisonThreshold != nil {
		out.Analysis.ComparisonThreshold = float64Ptr(*c.Analysis.ComparisonThreshold)
	}
	if c.Server.AllowRemote != nil {
		out.Server.AllowRemote = boolPtr(*c.Server.AllowRemote)
	}
	if c.Analysis.RegressionThresholds != nil {
		out.Analysis.RegressionThresholds = make(map[string]float64, len(c.Analysis.RegressionThresholds))
		for k, v := range c.Analysis.RegressionThresholds {
			out.Analysis.RegressionThresholds[k] = v
		}
	}
	if c.Providers.DisplayNames != nil {
		out.Providers.DisplayNames = make(map[string]string, len(c.Providers.DisplayNames))
		for k, v := range c.Providers.DisplayNames {
			out.Providers.DisplayNames[k] = v
		}
	}
	return &out
}

// Save writes the config as YAML to path.
func (c *ProjectConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}

func float64Ptr(f float64) *float64 {
	return &f
}
