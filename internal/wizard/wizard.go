// Package wizard collects .grainbench.yaml settings interactively.
package wizard

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/grainchain/grainbench/internal/projectconfig"
	"golang.org/x/term"
)

// Answers holds the raw values collected by the wizard.
type Answers struct {
	ResultsDir          string
	ReportsDir          string
	TimeRangeDays       string
	ComparisonThreshold string
	BaselineDays        string
	ComparisonDays      string
	Port                string
	// DisplayNames is a comma-separated list of provider=Name pairs.
	DisplayNames string
}

// AnswersFrom pre-populates answers with the values in cfg.
func AnswersFrom(cfg *projectconfig.ProjectConfig) Answers {
	return Answers{
		ResultsDir:          cfg.Paths.Results,
		ReportsDir:          cfg.Paths.Reports,
		TimeRangeDays:       strconv.Itoa(cfg.Analysis.TimeRangeDays),
		ComparisonThreshold: strconv.FormatFloat(cfg.Threshold(), 'f', -1, 64),
		BaselineDays:        strconv.Itoa(cfg.Analysis.BaselineDays),
		ComparisonDays:      strconv.Itoa(cfg.Analysis.ComparisonDays),
		Port:                strconv.Itoa(cfg.Server.Port),
		DisplayNames:        formatDisplayNames(cfg.Providers.DisplayNames),
	}
}

// Overrides converts the answers into dotted config keys. Blank answers are
// left out so the existing value is kept.
func (a Answers) Overrides() (map[string]string, error) {
	out := map[string]string{}
	set := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			out[key] = v
		}
	}
	set("paths.results", a.ResultsDir)
	set("paths.reports", a.ReportsDir)
	set("analysis.time_range_days", a.TimeRangeDays)
	set("analysis.comparison_threshold", a.ComparisonThreshold)
	set("analysis.baseline_days", a.BaselineDays)
	set("analysis.comparison_days", a.ComparisonDays)
	set("server.port", a.Port)

	names, err := ParseDisplayNames(a.DisplayNames)
	if err != nil {
		return nil, err
	}
	for provider, name := range names {
		out["providers.display_names."+provider] = name
	}
	return out, nil
}

// ApplyTo returns a copy of base with the answers applied.
func (a Answers) ApplyTo(base *projectconfig.ProjectConfig) (*projectconfig.ProjectConfig, error) {
	overrides, err := a.Overrides()
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := cfg.Apply(overrides); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunConfigWizard runs an interactive huh form seeded from base and returns
// the resulting configuration.
func RunConfigWizard(in io.Reader, out io.Writer, base *projectconfig.ProjectConfig) (*projectconfig.ProjectConfig, error) {
	a := AnswersFrom(base)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Results directory").
				Description("Where benchmark result files are written").
				Value(&a.ResultsDir),
			huh.NewInput().
				Title("Reports directory").
				Description("Where generated reports are saved").
				Value(&a.ReportsDir),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Analysis window (days)").
				Value(&a.TimeRangeDays).
				Validate(positiveInt),
			huh.NewInput().
				Title("Comparison threshold").
				Description("Minimum change reported as a regression").
				Value(&a.ComparisonThreshold).
				Validate(nonNegativeFloat),
			huh.NewInput().
				Title("Baseline window (days)").
				Value(&a.BaselineDays).
				Validate(positiveInt),
			huh.NewInput().
				Title("Recent window (days)").
				Value(&a.ComparisonDays).
				Validate(positiveInt),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("API server port").
				Value(&a.Port).
				Validate(positiveInt),
			huh.NewInput().
				Title("Provider display names").
				Description("Comma-separated provider=Name pairs").
				Placeholder("e2b=E2B, local=Local").
				Value(&a.DisplayNames).
				Validate(func(s string) error {
					_, err := ParseDisplayNames(s)
					return err
				}),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}
	return a.ApplyTo(base)
}

// ParseDisplayNames parses "provider=Name" pairs separated by commas.
func ParseDisplayNames(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range splitAndTrim(s) {
		provider, name, ok := strings.Cut(pair, "=")
		provider, name = strings.TrimSpace(provider), strings.TrimSpace(name)
		if !ok || provider == "" || name == "" {
			return nil, fmt.Errorf("invalid display name %q (want provider=Name)", pair)
		}
		if strings.Contains(provider, ".") {
			return nil, fmt.Errorf("provider %q must not contain '.'", provider)
		}
		out[provider] = name
	}
	return out, nil
}

func formatDisplayNames(names map[string]string) string {
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + names[k]
	}
	return strings.Join(pairs, ", ")
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number of at least 1")
	}
	return nil
}

func nonNegativeFloat(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return fmt.Errorf("enter a number of at least 0")
	}
	return nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
