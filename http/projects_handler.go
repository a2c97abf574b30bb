package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/yourorg/listings-api/internal/cache"
	"github.com/yourorg/listings-api/internal/catalog"
	"github.com/yourorg/listings-api/internal/filter"
	"github.com/yourorg/listings-api/internal/seo"
	"github.com/yourorg/listings-api/woocommerce"
)

type ProjectCatalog interface {
	Projects(ctx context.Context, q woocommerce.ProductQuery) (catalog.Page[woocommerce.Project], cache.Result, error)
	FeaturedProjects(ctx context.Context, limit int) ([]woocommerce.Project, cache.Result, error)
	Categories(ctx context.Context) ([]woocommerce.Category, cache.Result, error)
	Brands(ctx context.Context) ([]woocommerce.Category, cache.Result, error)
}

type ProjectsDeps struct {
	Catalog       ProjectCatalog
	Site          seo.Site
	LocalityWords []string
	Log           *zap.Logger
}

func RegisterProjects(r chi.Router, d ProjectsDeps) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if len(d.LocalityWords) == 0 {
		d.LocalityWords = filter.DefaultLocalityWords
	}

	r.Get("/projects", func(w http.ResponseWriter, req *http.Request) {
		f := filter.ParseProjectFilter(req.URL.Query())
		q := woocommerce.ProductQuery{
			Page:     QueryInt(req, "page", 1),
			PerPage:  QueryInt(req, "per_page", 0),
			Category: f.Category,
		}
		page, res, err := d.Catalog.Projects(req.Context(), q)
		if err != nil {
			WriteFetchError(w, req, err)
			return
		}
		cats, _, err := d.Catalog.Categories(req.Context())
		if err != nil {
			d.Log.Warn("project categories unavailable", zap.Error(err))
			cats = categoriesOf(page.Items)
		}
		matched := f.Apply(page.Items)
		state := f.Values()
		render.JSON(w, req, map[string]any{
			"ok":         true,
			"count":      len(matched),
			"total":      len(page.Items),
			"projects":   matched,
			"categories": filter.SplitCategories(cats, d.LocalityWords),
			"pagination": page.Pagination,
			"filters":    f,
			"query":      state.Encode(),
			"seo":        d.Site.ProjectsMeta(len(matched), state),
			"cache":      res,
		})
	})

	r.Get("/projects/featured", func(w http.ResponseWriter, req *http.Request) {
		projects, res, err := d.Catalog.FeaturedProjects(req.Context(), QueryInt(req, "limit", woocommerce.DefaultFeaturedLimit))
		if err != nil {
			WriteFetchError(w, req, err)
			return
		}
		render.JSON(w, req, map[string]any{"ok": true, "count": len(projects), "projects": projects, "cache": res})
	})

	r.Get("/projects/categories", func(w http.ResponseWriter, req *http.Request) {
		cats, res, err := d.Catalog.Categories(req.Context())
		if err != nil {
			WriteFetchError(w, req, err)
			return
		}
		render.JSON(w, req, map[string]any{
			"ok":         true,
			"count":      len(cats),
			"categories": cats,
			"groups":     filter.SplitCategories(cats, d.LocalityWords),
			"cache":      res,
		})
	})

	r.Get("/projects/brands", func(w http.ResponseWriter, req *http.Request) {
		brands, res, err := d.Catalog.Brands(req.Context())
		if err != nil {
			WriteFetchError(w, req, err)
			return
		}
		render.JSON(w, req, map[string]any{"ok": true, "count": len(brands), "brands": brands, "cache": res})
	})
}

// categoriesOf collects the distinct categories attached to projects.
func categoriesOf(projects []woocommerce.Project) []woocommerce.Category {
	seen := map[int64]bool{}
	out := []woocommerce.Category{}
	for _, p := range projects {
		for _, c := range p.Categories {
			if !seen[c.ID] {
				seen[c.ID] = true
				out = append(out, c)
			}
		}
	}
	return out
}
