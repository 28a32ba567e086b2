package webapi

import (
	"time"

	"github.com/grainchain/grainbench/internal/models"
)

// RunSummary is the API response for a single run in the list.
type RunSummary struct {
	Timestamp       time.Time          `json:"timestamp"`
	DurationSeconds float64            `json:"durationSeconds"`
	Providers       []string           `json:"providers"`
	TestScenarios   int                `json:"testScenarios"`
	SuccessRates    map[string]float64 `json:"successRates"`
	File            string             `json:"file,omitempty"`
}

// RegressionsResponse is the response for a regression sweep.
type RegressionsResponse struct {
	BaselineDays   int                       `json:"baselineDays"`
	ComparisonDays int                       `json:"comparisonDays"`
	Threshold      float64                   `json:"threshold"`
	Regressions    []models.ComparisonResult `json:"regressions"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
