package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fieldvault/fieldvault/internal/config"
	recordsHTTP "github.com/fieldvault/fieldvault/internal/records/http"
)

// TestMain sets Gin to test mode and verifies no goroutines leak.
// The rate limiter cleanup goroutine is process-lifetime by design.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/fieldvault/fieldvault/internal/http.(*rateLimiterStore).cleanupStale"),
	)
}

func testConfig() *config.Config {
	return &config.Config{
		ServerHost:       "localhost",
		ServerPort:       8080,
		LogLevel:         "info",
		MetricsNamespace: "fieldvault",
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testHandler() *recordsHTTP.RecordHandler {
	return recordsHTTP.NewRecordHandler(nil, nil, testLogger())
}

func TestServer_Health(t *testing.T) {
	server := NewServer(testConfig(), testHandler(), nil, testLogger())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	server.GetHandler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestServer_RequestID(t *testing.T) {
	server := NewServer(testConfig(), testHandler(), nil, testLogger())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestServer_RateLimiting(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitEnabled = true
	cfg.RateLimitRequestsPerSec = 1
	cfg.RateLimitBurst = 2
	server := NewServer(cfg, testHandler(), nil, testLogger())

	statuses := make([]int, 0, 5)
	for range 5 {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		server.GetHandler().ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	// Burst allows the first requests, then the limiter kicks in.
	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Contains(t, statuses, http.StatusTooManyRequests)

	w := httptest.NewRecorder()
	last := statuses[len(statuses)-1]
	if last == http.StatusTooManyRequests {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		server.GetHandler().ServeHTTP(w, req)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	}
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t, []string{"https://a.example.com"}, parseOrigins("https://a.example.com"))
	assert.Equal(t,
		[]string{"https://a.example.com", "https://b.example.com"},
		parseOrigins(" https://a.example.com , https://b.example.com ,, "),
	)
}

func TestCreateCORSMiddleware(t *testing.T) {
	logger := testLogger()

	assert.Nil(t, createCORSMiddleware(false, "https://a.example.com", logger))
	assert.Nil(t, createCORSMiddleware(true, "", logger))
	assert.NotNil(t, createCORSMiddleware(true, "https://a.example.com", logger))
}
