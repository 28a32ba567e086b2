package models

// UseCase is a named weighting profile applied when scoring providers.
type UseCase string

const (
	UseCaseGeneral     UseCase = "general"
	UseCaseSpeed       UseCase = "speed"
	UseCaseReliability UseCase = "reliability"
)

// UseCases lists the profiles the CLI and API accept.
var UseCases = []UseCase{UseCaseGeneral, UseCaseSpeed, UseCaseReliability}

// ParseUseCase returns the UseCase named s. An empty string means general.
func ParseUseCase(s string) (UseCase, bool) {
	if s == "" {
		return UseCaseGeneral, true
	}
	for _, u := range UseCases {
		if string(u) == s {
			return u, true
		}
	}
	return "", false
}

// UnknownProvider is recommended when there is no data to choose from.
const UnknownProvider = "unknown"

// ProviderRecommendation is the recommended provider for a use case.
type ProviderRecommendation struct {
	RecommendedProvider string             `json:"recommended_provider"`
	ConfidenceScore     float64            `json:"confidence_score"`
	Reasoning           []string           `json:"reasoning"`
	UseCaseSpecific     map[string]string  `json:"use_case_specific"`
	PerformanceSummary  *AggregatedMetrics `json:"performance_summary,omitempty"`
	ProviderScores      []ProviderScore    `json:"all_providers,omitempty"`
}

// ProviderScore holds the composite score and rank for a single provider.
type ProviderScore struct {
	Provider string             `json:"provider"`
	Score    float64            `json:"score"`
	Rank     int                `json:"rank"`
	Metrics  AggregatedMetrics  `json:"metrics"`
	Scores   map[string]float64 `json:"component_scores,omitempty"`
}
