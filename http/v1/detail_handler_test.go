package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/listings-api/internal/cache"
	"github.com/yourorg/listings-api/internal/seo"
	"github.com/yourorg/listings-api/internal/upstream"
	"github.com/yourorg/listings-api/woocommerce"
	"github.com/yourorg/listings-api/wordpress"
)

type fakeCatalog struct {
	props      map[int64]wordpress.Property
	projects   map[int64]woocommerce.Project
	relatedErr error
	relatedFor int64
}

func (f *fakeCatalog) Property(_ context.Context, id int64) (*wordpress.Property, cache.Result, error) {
	p, ok := f.props[id]
	if !ok {
		return nil, cache.Result{}, upstream.ErrNotFound
	}
	return &p, cache.Result{Source: cache.SourceCache}, nil
}

func (f *fakeCatalog) RelatedProperties(_ context.Context, p wordpress.Property, limit int) ([]wordpress.Property, cache.Result, error) {
	f.relatedFor = p.ID
	if f.relatedErr != nil {
		return nil, cache.Result{}, f.relatedErr
	}
	var out []wordpress.Property
	for id, rp := range f.props {
		if id != p.ID && len(out) < limit {
			out = append(out, rp)
		}
	}
	return out, cache.Result{}, nil
}

func (f *fakeCatalog) Project(_ context.Context, id int64) (*woocommerce.Project, cache.Result, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, cache.Result{}, upstream.ErrNotFound
	}
	return &p, cache.Result{Source: cache.SourceFresh}, nil
}

func newRouter(fc *fakeCatalog) http.Handler {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	r := chi.NewRouter()
	RegisterDetail(r, DetailDeps{
		Catalog: fc,
		Site:    seo.Site{Name: "Nashik Properties", URL: "https://example.com"},
		Now:     func() time.Time { return now },
	})
	return r
}

func get(t *testing.T, h http.Handler, target string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		props: map[int64]wordpress.Property{
			1: {ID: 1, Title: "Riverside Villa", Price: 9500000, Date: "2026-10-14T09:00:00", Images: []string{"https://cdn.example.com/a.jpg"}},
			2: {ID: 2, Title: "College Road Flat", Price: 4200000},
			3: {ID: 3, Title: "Gangapur Plot", Date: "2026-10-17T17:00:00", DateGMT: "2026-10-17T11:30:00"},
		},
		projects: map[int64]woocommerce.Project{
			11: {ID: 11, Name: "Skyline Heights", PriceRange: woocommerce.PriceRange{Min: 4500000, Max: 12000000}},
		},
	}
}

func TestPropertyDetail(t *testing.T) {
	fc := testCatalog()
	code, out := get(t, newRouter(fc), "/v1/properties/1")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "/property/1/riverside-villa", out["url"])
	assert.Contains(t, out["posted"], "ago")
	assert.Len(t, out["gallery"], 1)
	assert.Len(t, out["related"], 2)
	assert.Equal(t, int64(1), fc.relatedFor)

	meta := out["seo"].(map[string]any)
	assert.Contains(t, meta["title"], "Riverside Villa")
	assert.Equal(t, "https://example.com/property/1/riverside-villa", meta["canonical"])
	assert.Equal(t, "cache", out["cache"].(map[string]any)["source"])
}

func TestPropertyDetailRelatedIsBestEffort(t *testing.T) {
	fc := testCatalog()
	fc.relatedErr = errors.New("wp timeout")
	code, out := get(t, newRouter(fc), "/v1/properties/2")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, out["related"])
}

func TestDetailErrors(t *testing.T) {
	h := newRouter(testCatalog())
	cases := []struct {
		target string
		code   int
		key    string
	}{
		{"/v1/properties/abc", http.StatusBadRequest, "invalid_id"},
		{"/v1/properties/-4", http.StatusBadRequest, "invalid_id"},
		{"/v1/properties/99", http.StatusNotFound, "not_found"},
		{"/v1/projects/0", http.StatusBadRequest, "invalid_id"},
		{"/v1/projects/12", http.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			code, out := get(t, h, tc.target)
			assert.Equal(t, tc.code, code)
			assert.Equal(t, tc.key, out["error"])
		})
	}
}

func TestProjectDetail(t *testing.T) {
	code, out := get(t, newRouter(testCatalog()), "/v1/projects/11")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "/projects/11", out["url"])
	assert.Contains(t, out["price_summary"], "Cr")
	assert.Equal(t, "Skyline Heights", out["project"].(map[string]any)["name"])
}

func TestPropertyDetailPostedUsesGMT(t *testing.T) {
	code, out := get(t, newRouter(testCatalog()), "/v1/properties/3")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "30 minutes ago", out["posted"])
}
