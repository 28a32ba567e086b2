package reporting

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/grainchain/grainbench/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one regression sweep.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one provider.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

// JUnitFailure represents a regressed metric set.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertRegressions builds a JUnit suite with one test case per provider.
// Providers with a regression result fail; the rest pass.
func ConvertRegressions(results []models.ComparisonResult, providers []string, generated time.Time) *JUnitTestSuites {
	byProvider := make(map[string]models.ComparisonResult, len(results))
	for _, r := range results {
		p, _ := r.DetailedAnalysis["provider"].(string)
		byProvider[p] = r
	}

	suite := JUnitTestSuite{
		Name:      "performance-regressions",
		Timestamp: generated.Format(time.RFC3339),
	}
	if len(results) > 0 {
		suite.Properties = []JUnitProperty{
			{Name: "baseline_start", Value: results[0].Baseline.String()},
			{Name: "recent_start", Value: results[0].Target.String()},
		}
	}

	add := func(provider string) {
		tc := JUnitTestCase{Name: provider, Classname: "grainbench.regression"}
		if r, ok := byProvider[provider]; ok {
			tc.Failure = buildFailure(r)
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, tc)
		suite.Tests++
	}
	seen := make(map[string]bool, len(providers))
	for _, p := range providers {
		if !seen[p] {
			seen[p] = true
			add(p)
		}
	}
	// A regressed provider is always reported, even if the caller did not list it.
	for _, r := range results {
		p, _ := r.DetailedAnalysis["provider"].(string)
		if !seen[p] {
			seen[p] = true
			add(p)
		}
	}

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func buildFailure(r models.ComparisonResult) *JUnitFailure {
	var body string
	for _, name := range orderedMetrics(r.Regressions) {
		body += fmt.Sprintf("[REGRESSION] %s: %s\n", label(name), formatDelta(name, r.Regressions[name], false))
	}
	return &JUnitFailure{
		Message: r.Summary,
		Type:    "PerformanceRegression",
		Body:    body,
	}
}

// WriteJUnit writes a regression sweep as JUnit XML.
func WriteJUnit(w io.Writer, results []models.ComparisonResult, providers []string, generated time.Time) error {
	data, err := xml.MarshalIndent(ConvertRegressions(results, providers, generated), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}
