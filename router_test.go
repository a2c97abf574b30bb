package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/listings-api/internal/cache"
	"github.com/yourorg/listings-api/internal/catalog"
	"github.com/yourorg/listings-api/internal/contact"
	"github.com/yourorg/listings-api/internal/events"
	"github.com/yourorg/listings-api/internal/pages"
	"github.com/yourorg/listings-api/internal/seo"
)

func testRouter(t *testing.T, perMin int) http.Handler {
	t.Helper()
	lib, err := pages.Default()
	require.NoError(t, err)
	c := cache.New(nil, cache.Options{}, zap.NewNop())
	t.Cleanup(c.Close)
	return BuildRouter(RouterDeps{
		Catalog:        catalog.New(nil, nil, c, nil, zap.NewNop()),
		Pages:          lib,
		Enquiries:      contact.NewService(nil, nil, zap.NewNop()),
		Events:         events.NewInMemory(1),
		Site:           seo.Site{Name: "Nashik Properties", URL: "https://example.com"},
		AllowedOrigins: []string{"https://example.com"},
		RequestsPerMin: perMin,
		Log:            zap.NewNop(),
	})
}

func TestRouterServesJSON(t *testing.T) {
	h := testRouter(t, 100)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pages/about", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterCORSPreflight(t *testing.T) {
	h := testRouter(t, 100)
	req := httptest.NewRequest(http.MethodOptions, "/contact", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterRateLimit(t *testing.T) {
	h := testRouter(t, 2)
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
