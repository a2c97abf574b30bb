package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yourorg/listings-api/internal/cache"
	"github.com/yourorg/listings-api/internal/events"
	"github.com/yourorg/listings-api/internal/hydrator"
	"github.com/yourorg/listings-api/internal/store"
	"github.com/yourorg/listings-api/internal/upstream"
	"github.com/yourorg/listings-api/woocommerce"
	"github.com/yourorg/listings-api/wordpress"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

var errDown = errors.New("upstream down")

type fakeWP struct {
	props    []wordpress.Property
	down     atomic.Bool
	lists    atomic.Int32
	terms    atomic.Int32
	featured atomic.Int32
	notFound bool
}

func (f *fakeWP) ListProperties(_ context.Context, q wordpress.PropertyQuery) ([]wordpress.Property, wordpress.Pagination, []byte, error) {
	f.lists.Add(1)
	if f.down.Load() {
		return nil, wordpress.Pagination{}, nil, errDown
	}
	n := q.Normalized()
	return f.props, wordpress.Pagination{TotalItems: len(f.props), TotalPages: 1, CurrentPage: n.Page, PerPage: n.PerPage}, []byte(`[]`), nil
}

func (f *fakeWP) GetProperty(_ context.Context, id int64) (*wordpress.Property, []byte, error) {
	if f.notFound {
		return nil, nil, fmt.Errorf("fetch property %d: %w", id, upstream.ErrNotFound)
	}
	if f.down.Load() {
		return nil, nil, errDown
	}
	for _, p := range f.props {
		if p.ID == id {
			p := p
			return &p, []byte(`{}`), nil
		}
	}
	return nil, nil, upstream.ErrNotFound
}

func (f *fakeWP) FeaturedProperties(context.Context, int) ([]wordpress.Property, error) {
	f.featured.Add(1)
	if f.down.Load() {
		return nil, errDown
	}
	return f.props[:1], nil
}

func (f *fakeWP) RelatedProperties(_ context.Context, p wordpress.Property, limit int) ([]wordpress.Property, error) {
	return nil, nil
}

func (f *fakeWP) Amenities(context.Context) ([]wordpress.Term, error) {
	f.terms.Add(1)
	return []wordpress.Term{{ID: 1, Name: "Pool"}}, nil
}

func (f *fakeWP) PropertyTypes(context.Context) ([]wordpress.Term, error) {
	f.terms.Add(1)
	return []wordpress.Term{{ID: 2, Name: "Villa"}}, nil
}

func (f *fakeWP) Locations(context.Context) ([]wordpress.Term, error) {
	f.terms.Add(1)
	if f.down.Load() {
		return nil, errDown
	}
	return []wordpress.Term{{ID: 3, Name: "Nashik"}}, nil
}

type fakeWC struct {
	projects []woocommerce.Project
	down     atomic.Bool
	category atomic.Int64
}

func (f *fakeWC) ListProducts(_ context.Context, q woocommerce.ProductQuery) ([]woocommerce.Project, woocommerce.Pagination, []byte, error) {
	if f.down.Load() {
		return nil, woocommerce.Pagination{}, nil, errDown
	}
	n := q.Normalized()
	return f.projects, woocommerce.Pagination{TotalItems: len(f.projects), TotalPages: 3, CurrentPage: n.Page, PerPage: n.PerPage}, []byte(`[]`), nil
}

func (f *fakeWC) ProductsByCategory(_ context.Context, categoryID int64, q woocommerce.ProductQuery) ([]woocommerce.Project, woocommerce.Pagination, error) {
	if f.down.Load() {
		return nil, woocommerce.Pagination{}, errDown
	}
	f.category.Store(categoryID)
	var out []woocommerce.Project
	for _, p := range f.projects {
		if p.InCategory(categoryID) {
			out = append(out, p)
		}
	}
	return out, woocommerce.Pagination{TotalItems: len(out), TotalPages: 1, CurrentPage: q.Normalized().Page}, nil
}

func (f *fakeWC) GetProduct(_ context.Context, id int64) (*woocommerce.Project, []byte, error) {
	if f.down.Load() {
		return nil, nil, errDown
	}
	for _, p := range f.projects {
		if p.ID == id {
			p := p
			return &p, []byte(`{}`), nil
		}
	}
	return nil, nil, upstream.ErrNotFound
}

func (f *fakeWC) FeaturedProducts(context.Context, int) ([]woocommerce.Project, error) {
	return f.projects, nil
}

func (f *fakeWC) Categories(context.Context) ([]woocommerce.Category, error) {
	return []woocommerce.Category{{ID: 5, Name: "Residential"}}, nil
}

func (f *fakeWC) Brands(context.Context) ([]woocommerce.Category, error) {
	return []woocommerce.Category{}, nil
}

// mapStore is an in-memory cache.Store.
type mapStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *mapStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *mapStore) Set(_ context.Context, key, val string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = val
	return nil
}

func (m *mapStore) SetNX(_ context.Context, key, val string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = val
	return true, nil
}

func (m *mapStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *mapStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *mapStore) DeleteByPrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func sampleProps() []wordpress.Property {
	return []wordpress.Property{
		{ID: 1, Title: "Sunrise", Price: 4500000, Images: []string{}},
		{ID: 2, Title: "Green Villa", Price: 9000000, Images: []string{}},
	}
}

func newArchive(t *testing.T) *hydrator.Hydrator {
	t.Helper()
	s, err := store.Open("sqlite:" + filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return &hydrator.Hydrator{Store: s}
}

func newCache(t *testing.T) *cache.Cache {
	t.Helper()
	c := cache.New(&mapStore{data: map[string]string{}}, cache.Options{Workers: 1}, nil)
	t.Cleanup(c.Close)
	return c
}

func TestPropertiesServedFromCache(t *testing.T) {
	wp := &fakeWP{props: sampleProps()}
	svc := New(wp, &fakeWC{}, newCache(t), nil, nil)
	ctx := context.Background()

	page, res, err := svc.Properties(ctx, wordpress.PropertyQuery{})
	require.NoError(t, err)
	assert.Equal(t, cache.SourceFresh, res.Source)
	assert.Len(t, page.Items, 2)

	page, res, err = svc.Properties(ctx, wordpress.PropertyQuery{})
	require.NoError(t, err)
	assert.Equal(t, cache.SourceCache, res.Source)
	assert.Equal(t, "Green Villa", page.Items[1].Title)
	assert.Equal(t, int32(1), wp.lists.Load())
}

func TestPropertiesFallBackToArchive(t *testing.T) {
	wp := &fakeWP{props: sampleProps()}
	svc := New(wp, &fakeWC{}, cache.New(nil, cache.Options{}, nil), newArchive(t), nil)
	t.Cleanup(svc.Wait)
	ctx := context.Background()

	_, _, err := svc.Properties(ctx, wordpress.PropertyQuery{PerPage: 10})
	require.NoError(t, err)
	svc.Wait()

	wp.down.Store(true)
	page, res, err := svc.Properties(ctx, wordpress.PropertyQuery{PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, cache.SourceArchive, res.Source)
	assert.True(t, res.Stale)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(1), page.Items[0].ID)
	assert.Equal(t, 2, page.Pagination.TotalItems)

	_, _, err = svc.Properties(ctx, wordpress.PropertyQuery{PerPage: 10, Search: "villa"})
	assert.ErrorIs(t, err, errDown, "filtered queries are not served from the archive")
}

func TestPropertyFallbackAndNotFound(t *testing.T) {
	wp := &fakeWP{props: sampleProps()}
	svc := New(wp, &fakeWC{}, nil, newArchive(t), nil)
	t.Cleanup(svc.Wait)
	ctx := context.Background()

	p, _, err := svc.Property(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Green Villa", p.Title)
	svc.Wait()

	wp.down.Store(true)
	p, res, err := svc.Property(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, cache.SourceArchive, res.Source)
	assert.Equal(t, "Green Villa", p.Title)

	_, _, err = svc.Property(ctx, 99)
	assert.ErrorIs(t, err, errDown)

	wp.notFound = true
	_, _, err = svc.Property(ctx, 2)
	assert.ErrorIs(t, err, upstream.ErrNotFound)
}

func TestTaxonomies(t *testing.T) {
	wp := &fakeWP{}
	svc := New(wp, &fakeWC{}, nil, nil, nil)

	tax, _, err := svc.Taxonomies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Pool", tax.Amenities[0].Name)
	assert.Equal(t, "Villa", tax.PropertyTypes[0].Name)
	assert.Equal(t, "Nashik", tax.Locations[0].Name)
	assert.Equal(t, int32(3), wp.terms.Load())

	wp.down.Store(true)
	_, _, err = svc.Taxonomies(context.Background())
	assert.ErrorIs(t, err, errDown)
}

func TestProjectsFallBackToArchive(t *testing.T) {
	wc := &fakeWC{projects: []woocommerce.Project{{ID: 7, Name: "Skyline"}, {ID: 8, Name: "Riverside"}}}
	svc := New(&fakeWP{}, wc, nil, newArchive(t), nil)
	t.Cleanup(svc.Wait)
	ctx := context.Background()

	page, _, err := svc.Projects(ctx, woocommerce.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	svc.Wait()

	wc.down.Store(true)
	page, res, err := svc.Projects(ctx, woocommerce.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, cache.SourceArchive, res.Source)
	assert.Len(t, page.Items, 2)

	p, res, err := svc.Project(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, cache.SourceArchive, res.Source)
	assert.Equal(t, "Riverside", p.Name)
}

func TestProjectsScopedByCategory(t *testing.T) {
	wc := &fakeWC{projects: []woocommerce.Project{
		{ID: 7, Name: "Skyline", Categories: []woocommerce.Category{{ID: 5, Name: "Residential"}}},
		{ID: 8, Name: "Riverside"},
	}}
	svc := New(&fakeWP{}, wc, nil, newArchive(t), nil)
	t.Cleanup(svc.Wait)
	ctx := context.Background()

	page, _, err := svc.Projects(ctx, woocommerce.ProductQuery{Category: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 5, wc.category.Load())
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Skyline", page.Items[0].Name)

	// scoped queries never fall back to the archive
	wc.down.Store(true)
	_, _, err = svc.Projects(ctx, woocommerce.ProductQuery{Category: 5})
	assert.ErrorIs(t, err, errDown)
}

func TestWarmPutsPagesInCache(t *testing.T) {
	wp := &fakeWP{props: sampleProps()}
	wc := &fakeWC{projects: []woocommerce.Project{{ID: 7, Name: "Skyline"}}}
	svc := New(wp, wc, newCache(t), newArchive(t), nil)
	t.Cleanup(svc.Wait)
	ctx := context.Background()

	n, pages, err := svc.WarmProperties(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, pages)

	_, res, err := svc.Properties(ctx, wordpress.PropertyQuery{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, cache.SourceCache, res.Source)
	assert.Equal(t, int32(1), wp.lists.Load())

	n, pages, err = svc.WarmProjects(ctx, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, pages)

	var _ hydrator.Warmer = svc
}

// blockingArchive holds every snapshot write until release is closed.
type blockingArchive struct {
	release chan struct{}
	writes  atomic.Int32
}

func (b *blockingArchive) WriteSnapshotAndUpsert(ctx context.Context, in store.SnapshotInput) (store.UpsertResult, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
		return store.UpsertResult{}, ctx.Err()
	}
	b.writes.Add(1)
	return store.UpsertResult{}, nil
}

func (b *blockingArchive) ArchivedItems(context.Context, string, string, int, int) ([]json.RawMessage, int, error) {
	return nil, 0, nil
}

func (b *blockingArchive) ArchivedItem(context.Context, string, string, int64) (json.RawMessage, error) {
	return nil, store.ErrNotFound
}

func (b *blockingArchive) DeleteItem(context.Context, string, string, int64) error { return nil }

func TestArchiveWriteDoesNotBlockRequest(t *testing.T) {
	arch := &blockingArchive{release: make(chan struct{})}
	svc := New(&fakeWP{props: sampleProps()}, &fakeWC{}, nil, &hydrator.Hydrator{Store: arch}, nil)

	done := make(chan error, 1)
	go func() {
		_, _, err := svc.Properties(context.Background(), wordpress.PropertyQuery{})
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		close(arch.release)
		t.Fatal("request waited on the archive write")
	}

	assert.Equal(t, int32(0), arch.writes.Load())
	close(arch.release)
	svc.Wait()
	assert.Equal(t, int32(1), arch.writes.Load())
}

func TestFeaturedPropertiesOutageIsNotCached(t *testing.T) {
	wp := &fakeWP{props: sampleProps()}
	svc := New(wp, &fakeWC{}, newCache(t), nil, nil)
	ctx := context.Background()

	wp.down.Store(true)
	props, res, err := svc.FeaturedProperties(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, props)
	assert.True(t, res.Stale)

	wp.down.Store(false)
	props, res, err = svc.FeaturedProperties(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, cache.SourceFresh, res.Source)
	require.Len(t, props, 1)
	assert.Equal(t, "Sunrise", props[0].Title)

	_, res, err = svc.FeaturedProperties(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, cache.SourceCache, res.Source)
	assert.Equal(t, int32(2), wp.featured.Load())
}

func TestPrefixesFor(t *testing.T) {
	cases := []struct {
		evt  events.CatalogChanged
		want []string
	}{
		{events.CatalogChanged{Source: events.SourceWordPress, Resource: "post", ID: 12},
			[]string{"wp:posts:", "wp:featured:", "wp:related:", "wp:post:12:"}},
		{events.CatalogChanged{Source: events.SourceWordPress, Resource: "location", ID: 3}, []string{"wp:"}},
		{events.CatalogChanged{Source: events.SourceWordPress, Resource: "post"}, []string{"wp:"}},
		{events.CatalogChanged{Source: events.SourceWooCommerce, Resource: "Product", ID: 8},
			[]string{"wc:products:", "wc:featured:", "wc:product:8:"}},
		{events.CatalogChanged{Source: events.SourceWooCommerce, Resource: "product_cat", ID: 5}, []string{"wc:"}},
		{events.CatalogChanged{Source: "shopify", ID: 1}, nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PrefixesFor(tc.evt), "%+v", tc.evt)
	}
}
