package webserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/grainchain/grainbench/internal/webapi"
)

// registerRoutes sets up API and metrics routes on the given mux.
func registerRoutes(mux *http.ServeMux, cfg Config, m *webapi.Metrics) {
	h := webapi.NewHandlers(cfg.Store, cfg.Comparator, cfg.Defaults)
	webapi.RegisterRoutes(mux, h, m)
	mux.HandleFunc("/", handleNotFound)
}

// handleNotFound returns a JSON 404 for unknown paths.
func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":"not found","code":404}` + "\n"))
}

// requestLogger logs each request at debug level.
func requestLogger(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
