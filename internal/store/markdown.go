package store

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/grainchain/grainbench/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var fileTimestamp = regexp.MustCompile(`(\d{8}_\d{6})`)

// field is a "**Key:** value" pair from a paragraph line or list item.
type field struct {
	key   string
	value string
}

type mdScenario struct {
	title  string
	fields []field
}

type mdProvider struct {
	name      string
	fields    []field
	scenarios []*mdScenario
}

// ParseMarkdown reads a Markdown report written by the benchmark suite.
// Only the header fields and the per-provider detail sections are used.
func (p *Parser) ParseMarkdown(data []byte, path string) (models.BenchmarkResult, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(data))

	var (
		header    []field
		providers []*mdProvider
		provider  *mdProvider
		scenario  *mdScenario
	)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Heading:
			title := strings.TrimSpace(plainText(n, data))
			switch {
			case n.Level == 3 && strings.HasSuffix(title, " Provider"):
				provider = &mdProvider{name: strings.ToLower(strings.TrimSpace(strings.TrimSuffix(title, " Provider")))}
				providers = append(providers, provider)
				scenario = nil
			case n.Level == 4 && provider != nil:
				scenario = &mdScenario{title: title}
				provider.scenarios = append(provider.scenarios, scenario)
			default:
				provider, scenario = nil, nil
			}
		case *ast.Paragraph, *ast.List:
			fs := fields(n, data)
			switch {
			case scenario != nil:
				scenario.fields = append(scenario.fields, fs...)
			case provider != nil:
				provider.fields = append(provider.fields, fs...)
			default:
				header = append(header, fs...)
			}
		}
	}

	if len(header) == 0 && len(providers) == 0 {
		return models.BenchmarkResult{}, fmt.Errorf("%s: no benchmark report content", path)
	}

	result := models.BenchmarkResult{
		Timestamp:       p.markdownTimestamp(path, lookup(header, "Generated")),
		DurationSeconds: number(lookup(header, "Duration"), " seconds"),
		ProvidersTested: []string{},
		ProviderResults: make(map[string]models.ProviderMetrics, len(providers)),
		FilePath:        path,
	}
	if v := lookup(header, "Providers Tested"); v != "" {
		for _, name := range strings.Split(v, ",") {
			result.ProvidersTested = append(result.ProvidersTested, strings.TrimSpace(name))
		}
	}
	if v, err := strconv.Atoi(lookup(header, "Test Scenarios")); err == nil {
		result.TestScenarios = v
	}

	for _, mp := range providers {
		pm := mp.metrics()
		ts, dur := result.Timestamp, result.DurationSeconds
		pm.BenchmarkTimestamp = &ts
		pm.BenchmarkDuration = &dur
		result.ProviderResults[mp.name] = pm
	}
	return result, nil
}

func (p *Parser) markdownTimestamp(path, generated string) time.Time {
	if m := fileTimestamp.FindString(filepath.Base(path)); m != "" {
		if t, err := time.ParseInLocation("20060102_150405", m, p.loc); err == nil {
			return t
		}
	}
	return p.timestamp(generated, path)
}

func (mp *mdProvider) metrics() models.ProviderMetrics {
	pm := models.ProviderMetrics{
		ProviderName:       mp.name,
		OverallSuccessRate: number(lookup(mp.fields, "Overall Success Rate"), "%"),
		AvgExecutionTime:   number(lookup(mp.fields, "Average Scenario Time"), "s"),
		AvgCreationTime:    number(lookup(mp.fields, "Average Creation Time"), "s"),
		Scenarios:          make(map[string]models.ScenarioMetrics, len(mp.scenarios)),
		Status:             models.ProviderStatusCompleted,
	}
	if status := lookup(mp.fields, "Status"); status != "" {
		pm.Status = status
	}

	for _, ms := range mp.scenarios {
		key := strings.ReplaceAll(strings.ToLower(ms.title), " ", "_")
		sr := number(lookup(ms.fields, "Success Rate"), "%")
		avg := number(lookup(ms.fields, "Average Time"), "s")
		sm := models.ScenarioMetrics{
			Name:             key,
			Description:      ms.title,
			SuccessRate:      sr,
			AvgExecutionTime: avg,
			MinExecutionTime: avg,
			MaxExecutionTime: avg,
		}
		if done, total, ok := iterations(lookup(ms.fields, "Iterations")); ok {
			sm.TotalIterations = total
			sm.SuccessfulIterations = done
			sm.FailedIterations = total - done
		} else {
			// A report without an iteration count is read as a single run.
			sm.TotalIterations = 1
			if sr > 0 {
				sm.SuccessfulIterations = 1
			} else {
				sm.FailedIterations = 1
			}
		}
		pm.Scenarios[key] = sm
	}
	pm.TotalScenarios = len(pm.Scenarios)
	return pm
}

// fields collects the "**Key:** value" pairs of a block. A value runs until
// the next line break or strong emphasis.
func fields(block ast.Node, src []byte) []field {
	var out []field
	cur := -1
	_ = ast.Walk(block, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.ListItem:
			cur = -1
		case *ast.Emphasis:
			if n.Level == 2 {
				key := strings.TrimSuffix(strings.TrimSpace(plainText(n, src)), ":")
				out = append(out, field{key: key})
				cur = len(out) - 1
				return ast.WalkSkipChildren, nil
			}
		case *ast.Text:
			if cur >= 0 {
				out[cur].value += string(n.Segment.Value(src))
			}
			if n.SoftLineBreak() || n.HardLineBreak() {
				cur = -1
			}
		case *ast.String:
			if cur >= 0 {
				out[cur].value += string(n.Value)
			}
		}
		return ast.WalkContinue, nil
	})
	for i := range out {
		out[i].value = strings.TrimSpace(out[i].value)
	}
	return out
}

func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(src))
		case *ast.String:
			b.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// lookup returns the first value stored under key.
func lookup(fs []field, key string) string {
	for _, f := range fs {
		if f.key == key {
			return f.value
		}
	}
	return ""
}

// number parses a value such as "95.0%" or "1.23s", returning 0 when absent,
// negative or not finite.
func number(s, unit string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), unit))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func iterations(s string) (done, total int, ok bool) {
	a, b, found := strings.Cut(s, "/")
	if !found {
		return 0, 0, false
	}
	done, err1 := strconv.Atoi(strings.TrimSpace(a))
	total, err2 := strconv.Atoi(strings.TrimSpace(b))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return done, total, true
}
