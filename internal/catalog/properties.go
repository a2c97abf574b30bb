package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourorg/listings-api/internal/cache"
	"github.com/yourorg/listings-api/wordpress"
)

// Properties returns one page of properties. Plain pages (no upstream
// filters) fall back to the archive when WordPress is unavailable.
func (s *Service) Properties(ctx context.Context, q wordpress.PropertyQuery) (Page[wordpress.Property], cache.Result, error) {
	page, res, err := cache.Get(ctx, s.Cache, postsKey(q), func(ctx context.Context) (Page[wordpress.Property], error) {
		return s.fetchProperties(ctx, q)
	})
	if err == nil || !shouldFallBack(ctx, err) || !plainPropertyQuery(q) {
		return page, res, err
	}

	n := q.Normalized()
	items, total, aerr := s.Archive.ArchivedProperties(ctx, (n.Page-1)*n.PerPage, n.PerPage)
	if aerr != nil {
		return page, res, err
	}
	s.Log.Warn("serving archived properties", zap.Error(err))
	return Page[wordpress.Property]{Items: items, Pagination: archivePagination(total, n.Page, n.PerPage)}, archiveResult(), nil
}

func (s *Service) fetchProperties(ctx context.Context, q wordpress.PropertyQuery) (Page[wordpress.Property], error) {
	props, pg, raw, err := s.WP.ListProperties(ctx, q)
	if err != nil {
		return Page[wordpress.Property]{}, err
	}
	if plainPropertyQuery(q) {
		n := q.Normalized()
		s.archiveWrite(ctx, "properties", func(ctx context.Context) error {
			return s.Archive.WriteProperties(ctx, "/wp/v2/posts?"+q.CacheKey(), raw, props, (n.Page-1)*n.PerPage)
		})
	}
	return Page[wordpress.Property]{Items: props, Pagination: pg}, nil
}

func plainPropertyQuery(q wordpress.PropertyQuery) bool {
	return q.Search == "" && q.PropertyType == 0 && q.Location == 0 && q.Amenity == 0 &&
		q.MinPrice == 0 && q.MaxPrice == 0 && !q.Featured && q.OrderBy == "" && q.Order == "" &&
		len(q.Exclude) == 0
}

// Property returns a single property, from the archive when WordPress is
// unavailable.
func (s *Service) Property(ctx context.Context, id int64) (*wordpress.Property, cache.Result, error) {
	p, res, err := cache.Get(ctx, s.Cache, postKey(id), func(ctx context.Context) (*wordpress.Property, error) {
		return s.fetchProperty(ctx, id)
	})
	if err == nil || !shouldFallBack(ctx, err) {
		return p, res, err
	}
	archived, aerr := s.Archive.ArchivedProperty(ctx, id)
	if aerr != nil {
		return nil, res, err
	}
	s.Log.Warn("serving archived property", zap.Int64("id", id), zap.Error(err))
	return archived, archiveResult(), nil
}

func (s *Service) fetchProperty(ctx context.Context, id int64) (*wordpress.Property, error) {
	p, raw, err := s.WP.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	s.archiveWrite(ctx, "property", func(ctx context.Context) error {
		return s.Archive.WriteProperty(ctx, fmt.Sprintf("/wp/v2/posts/%d", id), raw, *p)
	})
	return p, nil
}

// FeaturedProperties degrades to an empty, uncached list when WordPress
// fails, so the outage is not remembered past the next request.
func (s *Service) FeaturedProperties(ctx context.Context, count int) ([]wordpress.Property, cache.Result, error) {
	if count <= 0 {
		count = wordpress.DefaultFeaturedCount
	}
	props, res, err := cache.Get(ctx, s.Cache, featuredKey(count), func(ctx context.Context) ([]wordpress.Property, error) {
		return s.WP.FeaturedProperties(ctx, count)
	})
	if err == nil || ctx.Err() != nil || errors.Is(err, cache.ErrInProgress) {
		return props, res, err
	}
	s.Log.Warn("featured properties unavailable", zap.Error(err))
	return []wordpress.Property{}, cache.Result{Source: cache.SourceFresh, Stale: true}, nil
}

func (s *Service) RelatedProperties(ctx context.Context, p wordpress.Property, limit int) ([]wordpress.Property, cache.Result, error) {
	if limit <= 0 {
		limit = wordpress.DefaultRelatedLimit
	}
	return cache.Get(ctx, s.Cache, relatedKey(p.ID, limit), func(ctx context.Context) ([]wordpress.Property, error) {
		return s.WP.RelatedProperties(ctx, p, limit)
	})
}

// Taxonomies fetches the three term lists concurrently.
func (s *Service) Taxonomies(ctx context.Context) (wordpress.Taxonomies, cache.Result, error) {
	return cache.Get(ctx, s.Cache, keyTerms, func(ctx context.Context) (wordpress.Taxonomies, error) {
		var tax wordpress.Taxonomies
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			tax.Amenities, err = s.WP.Amenities(gctx)
			return err
		})
		g.Go(func() (err error) {
			tax.PropertyTypes, err = s.WP.PropertyTypes(gctx)
			return err
		})
		g.Go(func() (err error) {
			tax.Locations, err = s.WP.Locations(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return wordpress.Taxonomies{}, fmt.Errorf("fetch taxonomies: %w", err)
		}
		return tax, nil
	})
}

// WarmProperties fetches a page straight from WordPress, archives it and
// replaces the cached entry. It reports the number of items and the total
// page count.
func (s *Service) WarmProperties(ctx context.Context, page, perPage int) (int, int, error) {
	q := wordpress.PropertyQuery{Page: page, PerPage: perPage}
	pg, err := s.fetchProperties(ctx, q)
	if err != nil {
		return 0, 0, err
	}
	if err := cache.Put(ctx, s.Cache, postsKey(q), pg); err != nil {
		s.Log.Warn("warm cache write failed", zap.Int("page", page), zap.Error(err))
	}
	return len(pg.Items), pg.Pagination.TotalPages, nil
}
