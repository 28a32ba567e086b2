package metrics

import (
	"strings"

	"github.com/grainchain/grainbench/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Metric is one of the provider-level metrics the analyses understand.
type Metric int

const (
	SuccessRate Metric = iota + 1
	AvgExecutionTime
	AvgCreationTime
)

type definition struct {
	name           string
	higherIsBetter bool
	fromProvider   func(models.ProviderMetrics) float64
	fromAggregate  func(models.AggregatedMetrics) float64
}

// definitions is the single registration point for metrics. Order matters:
// All() and every report iterate in this order.
var definitions = []struct {
	metric Metric
	def    definition
}{
	{SuccessRate, definition{
		name:           "success_rate",
		higherIsBetter: true,
		fromProvider:   func(p models.ProviderMetrics) float64 { return p.OverallSuccessRate },
		fromAggregate:  func(a models.AggregatedMetrics) float64 { return a.SuccessRate },
	}},
	{AvgExecutionTime, definition{
		name:          "avg_execution_time",
		fromProvider:  func(p models.ProviderMetrics) float64 { return p.AvgExecutionTime },
		fromAggregate: func(a models.AggregatedMetrics) float64 { return a.AvgExecutionTime },
	}},
	{AvgCreationTime, definition{
		name:          "avg_creation_time",
		fromProvider:  func(p models.ProviderMetrics) float64 { return p.AvgCreationTime },
		fromAggregate: func(a models.AggregatedMetrics) float64 { return a.AvgCreationTime },
	}},
}

func (m Metric) def() (definition, bool) {
	for _, d := range definitions {
		if d.metric == m {
			return d.def, true
		}
	}
	return definition{}, false
}

// All returns every registered metric in display order.
func All() []Metric {
	out := make([]Metric, len(definitions))
	for i, d := range definitions {
		out[i] = d.metric
	}
	return out
}

// Names returns the wire names of every registered metric.
func Names() []string {
	out := make([]string, len(definitions))
	for i, d := range definitions {
		out[i] = d.def.name
	}
	return out
}

// ParseMetric resolves a wire name such as "success_rate".
func ParseMetric(name string) (Metric, bool) {
	for _, d := range definitions {
		if d.def.name == name {
			return d.metric, true
		}
	}
	return 0, false
}

// String returns the wire name, or "unknown" for an unregistered value.
func (m Metric) String() string {
	if d, ok := m.def(); ok {
		return d.name
	}
	return "unknown"
}

// Label returns a display name, e.g. "Avg Execution Time".
func (m Metric) Label() string {
	// A Caser is stateful, so each call gets its own.
	return cases.Title(language.English).String(strings.ReplaceAll(m.String(), "_", " "))
}

// HigherIsBetter reports the improvement direction of the metric.
func (m Metric) HigherIsBetter() bool {
	d, _ := m.def()
	return d.higherIsBetter
}

// IsTime reports whether the metric is measured in seconds.
func (m Metric) IsTime() bool {
	return m == AvgExecutionTime || m == AvgCreationTime
}

// Of returns the metric's value in a provider snapshot.
func (m Metric) Of(p models.ProviderMetrics) float64 {
	d, ok := m.def()
	if !ok {
		return 0
	}
	return d.fromProvider(p)
}

// OfAggregate returns the metric's value in an aggregate.
func (m Metric) OfAggregate(a models.AggregatedMetrics) float64 {
	d, ok := m.def()
	if !ok {
		return 0
	}
	return d.fromAggregate(a)
}

// Extract returns the named metric from a provider snapshot. The boolean is
// false for unknown metric names; callers skip such values rather than
// treating them as zero.
func Extract(p models.ProviderMetrics, name string) (float64, bool) {
	m, ok := ParseMetric(name)
	if !ok {
		return 0, false
	}
	return m.Of(p), true
}
