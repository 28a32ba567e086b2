package webserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/grainchain/grainbench/internal/models"
	"github.com/grainchain/grainbench/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRun() models.BenchmarkResult {
	return models.BenchmarkResult{
		Timestamp:       time.Now().Add(-time.Hour),
		ProvidersTested: []string{"local"},
		ProviderResults: map[string]models.ProviderMetrics{
			"local": {ProviderName: "local", OverallSuccessRate: 100, AvgExecutionTime: 1},
		},
	}
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore(testRun())
	}
	srv, err := New(cfg)
	require.NoError(t, err)
	return srv
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestBindsLoopbackByDefault(t *testing.T) {
	srv := newTestServer(t, Config{})
	assert.Equal(t, "127.0.0.1:8787", srv.Addr())

	remote := newTestServer(t, Config{Port: 9000, AllowRemote: true})
	assert.Equal(t, ":9000", remote.Addr())
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestServer(t, Config{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "ok", body["status"])
}

func TestRunsEndpoint(t *testing.T) {
	handler := newTestServer(t, Config{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, []any{"local"}, body[0]["providers"])
}

func TestUnknownPathReturnsJSON404(t *testing.T) {
	handler := newTestServer(t, Config{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not found"`)
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestServer(t, Config{}).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "grainbench_api_requests_total")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := newTestServer(t, Config{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	url := fmt.Sprintf("http://%s/api/health", ln.Addr().String())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
