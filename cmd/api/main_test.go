package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appaudit "github.com/bryanwahyu/automaton-a11y/internal/application/audit"
	"github.com/bryanwahyu/automaton-a11y/internal/config"
)

func testHandler(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	return newHandler(testContext(t), cfg, appaudit.NewService(nil, false, io.Discard), nil, nil)
}

func TestHandler_ProbesArePublic(t *testing.T) {
	h := testHandler(t, func(c *config.Config) {
		c.Server.APIKeys = map[string]string{"ci": "k"}
	})
	for _, p := range []string{"/health", "/livez", "/readyz", "/metrics"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusOK, rec.Code, p)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Contains(t, rec.Body.String(), `"mode":"mock"`)
}

func TestHandler_AuthAndAnalyze(t *testing.T) {
	h := testHandler(t, func(c *config.Config) {
		c.Server.APIKeys = map[string]string{"ci": "k"}
	})
	body := `{"file":"a.html","content":"<button>"}`

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/audits", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/audits", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer k")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"mock"`)
}

func TestHandler_CORSPreflight(t *testing.T) {
	h := testHandler(t, func(c *config.Config) {
		c.Server.CORSOrigins = []string{"https://dash.example.com"}
	})
	req := httptest.NewRequest(http.MethodOptions, "/v1/audits", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://dash.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandler_RateLimited(t *testing.T) {
	h := testHandler(t, func(c *config.Config) {
		c.Server.RateLimit.Capacity = 1
		c.Server.RateLimit.RefillRate = 0
	})
	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/audits", nil))
		codes = append(codes, rec.Code)
	}
	// no repository: the first call reaches the router, the second is throttled
	assert.Equal(t, []int{http.StatusServiceUnavailable, http.StatusTooManyRequests}, codes)
}

// testContext mirrors testing.T.Context (Go 1.24) for older toolchains.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
