// Package webapi exposes benchmark comparisons over a JSON HTTP API.
package webapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/grainchain/grainbench/internal/comparator"
	"github.com/grainchain/grainbench/internal/metrics"
	"github.com/grainchain/grainbench/internal/models"
	"github.com/grainchain/grainbench/internal/reporting"
	"github.com/grainchain/grainbench/internal/store"
)

// Version is set at build time or defaults to dev.
var Version = "dev"

// Defaults are applied when a query parameter is omitted.
type Defaults struct {
	TimeRangeDays  int
	BaselineDays   int
	ComparisonDays int
	Threshold      float64
}

// DefaultDefaults mirrors the comparator defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		TimeRangeDays:  comparator.DefaultTimeRangeDays,
		BaselineDays:   comparator.DefaultBaselineDays,
		ComparisonDays: comparator.DefaultComparisonDays,
		Threshold:      comparator.DefaultThreshold,
	}
}

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	store    RunStore
	cmp      *comparator.Comparator
	defaults Defaults
}

// NewHandlers creates a new Handlers over store. A nil cmp gets a
// Comparator with default options.
func NewHandlers(store RunStore, cmp *comparator.Comparator, defaults Defaults) *Handlers {
	if cmp == nil {
		cmp = comparator.New(store)
	}
	return &Handlers{store: store, cmp: cmp, defaults: defaults}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleRuns returns all runs, newest first.
func (h *Handlers) HandleRuns(w http.ResponseWriter, _ *http.Request) {
	runs, err := h.store.All()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(runs))
}

// HandleOverview returns per-provider aggregates over the last days.
func (h *Handlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", h.defaults.TimeRangeDays, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	runs, err := h.store.All()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if days > 0 && len(runs) > 0 {
		end := runs[len(runs)-1].Timestamp
		runs = models.FilterRange(runs, end.AddDate(0, 0, -days), end)
	}
	writeJSON(w, http.StatusOK, reporting.Overview(runs))
}

// HandleCompare compares provider b against provider a.
func (h *Handlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, b := strings.TrimSpace(q.Get("a")), strings.TrimSpace(q.Get("b"))
	if a == "" || b == "" {
		writeError(w, http.StatusBadRequest, "query parameters a and b are required")
		return
	}
	days, err := intParam(r, "days", h.defaults.TimeRangeDays, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.cmp.CompareProviders(a, b, days)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleTrends classifies a metric over time.
func (h *Handlers) HandleTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, err := intParam(r, "days", h.defaults.TimeRangeDays, 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metric := q.Get("metric")
	if metric == "" {
		metric = comparator.DefaultTrendMetric
	}
	if _, ok := metrics.ParseMetric(metric); !ok {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("unknown metric %q (want one of %s)", metric, strings.Join(metrics.Names(), ", ")))
		return
	}

	analysis, err := h.cmp.AnalyzeTimeTrends(q.Get("provider"), days, metric)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// HandleRegressions runs a regression sweep.
func (h *Handlers) HandleRegressions(w http.ResponseWriter, r *http.Request) {
	baselineDays, err := intParam(r, "baseline_days", h.defaults.BaselineDays, 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	comparisonDays, err := intParam(r, "comparison_days", h.defaults.ComparisonDays, 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	threshold, err := floatParam(r, "threshold", h.defaults.Threshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.cmp.DetectPerformanceRegressions(baselineDays, comparisonDays, threshold)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if results == nil {
		results = []models.ComparisonResult{}
	}
	writeJSON(w, http.StatusOK, RegressionsResponse{
		BaselineDays:   baselineDays,
		ComparisonDays: comparisonDays,
		Threshold:      threshold,
		Regressions:    results,
	})
}

// HandleRecommend recommends a provider for a use case.
func (h *Handlers) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	useCase, ok := models.ParseUseCase(r.URL.Query().Get("use_case"))
	if !ok {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("unknown use_case %q (want general, speed or reliability)", r.URL.Query().Get("use_case")))
		return
	}
	days, err := intParam(r, "days", h.defaults.TimeRangeDays, 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.cmp.RecommendProvider(useCase, days)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// RegisterRoutes registers all web API routes on the given mux. A nil
// metrics leaves handlers uninstrumented.
func RegisterRoutes(mux *http.ServeMux, h *Handlers, m *Metrics) {
	handle := func(pattern, route string, fn http.HandlerFunc) {
		if m != nil {
			mux.Handle(pattern, m.Instrument(route, fn))
			return
		}
		mux.HandleFunc(pattern, fn)
	}
	handle("GET /api/health", "/api/health", h.HandleHealth)
	handle("GET /api/runs", "/api/runs", h.HandleRuns)
	handle("GET /api/overview", "/api/overview", h.HandleOverview)
	handle("GET /api/compare", "/api/compare", h.HandleCompare)
	handle("GET /api/trends", "/api/trends", h.HandleTrends)
	handle("GET /api/regressions", "/api/regressions", h.HandleRegressions)
	handle("GET /api/recommend", "/api/recommend", h.HandleRecommend)
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func intParam(r *http.Request, name string, def, minimum int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	if v < minimum {
		return 0, fmt.Errorf("%s must be at least %d, got %d", name, minimum, v)
	}
	return v, nil
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %g", name, v)
	}
	return v, nil
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNoResults) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
