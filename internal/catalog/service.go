// Package catalog serves properties and projects through the response cache,
// archives fresh upstream results and falls back to the archive when an
// upstream is down.
package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/listings-api/internal/cache"
	"github.com/yourorg/listings-api/internal/hydrator"
	"github.com/yourorg/listings-api/internal/upstream"
	"github.com/yourorg/listings-api/woocommerce"
	"github.com/yourorg/listings-api/wordpress"
)

// PropertySource is the WordPress client surface the service uses.
type PropertySource interface {
	ListProperties(ctx context.Context, q wordpress.PropertyQuery) ([]wordpress.Property, wordpress.Pagination, []byte, error)
	GetProperty(ctx context.Context, id int64) (*wordpress.Property, []byte, error)
	FeaturedProperties(ctx context.Context, count int) ([]wordpress.Property, error)
	RelatedProperties(ctx context.Context, p wordpress.Property, limit int) ([]wordpress.Property, error)
	Amenities(ctx context.Context) ([]wordpress.Term, error)
	PropertyTypes(ctx context.Context) ([]wordpress.Term, error)
	Locations(ctx context.Context) ([]wordpress.Term, error)
}

// ProjectSource is the WooCommerce client surface the service uses.
type ProjectSource interface {
	ListProducts(ctx context.Context, q woocommerce.ProductQuery) ([]woocommerce.Project, woocommerce.Pagination, []byte, error)
	ProductsByCategory(ctx context.Context, categoryID int64, q woocommerce.ProductQuery) ([]woocommerce.Project, woocommerce.Pagination, error)
	GetProduct(ctx context.Context, id int64) (*woocommerce.Project, []byte, error)
	FeaturedProducts(ctx context.Context, limit int) ([]woocommerce.Project, error)
	Categories(ctx context.Context) ([]woocommerce.Category, error)
	Brands(ctx context.Context) ([]woocommerce.Category, error)
}

// Page is one page of items with upstream pagination.
type Page[T any] struct {
	Items      []T                 `json:"items"`
	Pagination upstream.Pagination `json:"pagination"`
}

type Service struct {
	WP      PropertySource
	WC      ProjectSource
	Cache   *cache.Cache
	Archive *hydrator.Hydrator
	Log     *zap.Logger

	writes sync.WaitGroup
}

func New(wp PropertySource, wc ProjectSource, c *cache.Cache, archive *hydrator.Hydrator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{WP: wp, WC: wc, Cache: c, Archive: archive, Log: log.Named("catalog")}
}

// archiveResult marks a value read back from the archive.
func archiveResult() cache.Result {
	return cache.Result{Source: cache.SourceArchive, Stale: true}
}

// shouldFallBack reports whether err is an upstream failure the archive can
// paper over. Not-found and cancellation are passed through.
func shouldFallBack(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, upstream.ErrNotFound) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, cache.ErrInProgress)
}

// archiveWrite stores fresh results in the background so a slow database
// never holds up the request. Wait drains pending writes.
func (s *Service) archiveWrite(ctx context.Context, what string, write func(ctx context.Context) error) {
	if !s.Archive.Enabled() {
		return
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		defer cancel()
		if err := write(wctx); err != nil {
			s.Log.Warn("archive write failed", zap.String("what", what), zap.Error(err))
		}
	}()
}

// Wait blocks until every background archive write has finished.
func (s *Service) Wait() {
	if s != nil {
		s.writes.Wait()
	}
}

func archivePagination(total, page, perPage int) upstream.Pagination {
	pages := 1
	if perPage > 0 && total > perPage {
		pages = (total + perPage - 1) / perPage
	}
	return upstream.Pagination{TotalItems: total, TotalPages: pages, CurrentPage: page, PerPage: perPage}
}
