package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourorg/listings-api/internal/cache"
	"github.com/yourorg/listings-api/woocommerce"
)

// Projects returns one page of projects. Plain pages fall back to the
// archive when WooCommerce is unavailable.
func (s *Service) Projects(ctx context.Context, q woocommerce.ProductQuery) (Page[woocommerce.Project], cache.Result, error) {
	page, res, err := cache.Get(ctx, s.Cache, productsKey(q), func(ctx context.Context) (Page[woocommerce.Project], error) {
		return s.fetchProjects(ctx, q)
	})
	if err == nil || !shouldFallBack(ctx, err) || !plainProductQuery(q) {
		return page, res, err
	}

	n := q.Normalized()
	items, total, aerr := s.Archive.ArchivedProjects(ctx, (n.Page-1)*n.PerPage, n.PerPage)
	if aerr != nil {
		return page, res, err
	}
	s.Log.Warn("serving archived projects", zap.Error(err))
	return Page[woocommerce.Project]{Items: items, Pagination: archivePagination(total, n.Page, n.PerPage)}, archiveResult(), nil
}

func (s *Service) fetchProjects(ctx context.Context, q woocommerce.ProductQuery) (Page[woocommerce.Project], error) {
	if q.Category > 0 {
		projects, pg, err := s.WC.ProductsByCategory(ctx, q.Category, q)
		if err != nil {
			return Page[woocommerce.Project]{}, err
		}
		return Page[woocommerce.Project]{Items: projects, Pagination: pg}, nil
	}
	projects, pg, raw, err := s.WC.ListProducts(ctx, q)
	if err != nil {
		return Page[woocommerce.Project]{}, err
	}
	if plainProductQuery(q) {
		n := q.Normalized()
		s.archiveWrite(ctx, "projects", func(ctx context.Context) error {
			return s.Archive.WriteProjects(ctx, "/products?"+q.CacheKey(), raw, projects, (n.Page-1)*n.PerPage)
		})
	}
	return Page[woocommerce.Project]{Items: projects, Pagination: pg}, nil
}

func plainProductQuery(q woocommerce.ProductQuery) bool {
	return q.Search == "" && q.Category == 0 && q.Brand == 0 && !q.Featured && q.OrderBy == "" && q.Order == ""
}

func (s *Service) Project(ctx context.Context, id int64) (*woocommerce.Project, cache.Result, error) {
	p, res, err := cache.Get(ctx, s.Cache, productKey(id), func(ctx context.Context) (*woocommerce.Project, error) {
		p, raw, err := s.WC.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		s.archiveWrite(ctx, "project", func(ctx context.Context) error {
			return s.Archive.WriteProject(ctx, fmt.Sprintf("/products/%d", id), raw, *p)
		})
		return p, nil
	})
	if err == nil || !shouldFallBack(ctx, err) {
		return p, res, err
	}
	archived, aerr := s.Archive.ArchivedProject(ctx, id)
	if aerr != nil {
		return nil, res, err
	}
	s.Log.Warn("serving archived project", zap.Int64("id", id), zap.Error(err))
	return archived, archiveResult(), nil
}

func (s *Service) FeaturedProjects(ctx context.Context, limit int) ([]woocommerce.Project, cache.Result, error) {
	if limit <= 0 {
		limit = woocommerce.DefaultFeaturedLimit
	}
	return cache.Get(ctx, s.Cache, featuredProjectsKey(limit), func(ctx context.Context) ([]woocommerce.Project, error) {
		return s.WC.FeaturedProducts(ctx, limit)
	})
}

func (s *Service) Categories(ctx context.Context) ([]woocommerce.Category, cache.Result, error) {
	return cache.Get(ctx, s.Cache, keyCategories, s.WC.Categories)
}

func (s *Service) Brands(ctx context.Context) ([]woocommerce.Category, cache.Result, error) {
	return cache.Get(ctx, s.Cache, keyBrands, s.WC.Brands)
}

func (s *Service) WarmProjects(ctx context.Context, page, perPage int) (int, int, error) {
	q := woocommerce.ProductQuery{Page: page, PerPage: perPage}
	pg, err := s.fetchProjects(ctx, q)
	if err != nil {
		return 0, 0, err
	}
	if err := cache.Put(ctx, s.Cache, productsKey(q), pg); err != nil {
		s.Log.Warn("warm cache write failed", zap.Int("page", page), zap.Error(err))
	}
	return len(pg.Items), pg.Pagination.TotalPages, nil
}
