package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/listings-api/internal/cache"
	"github.com/yourorg/listings-api/internal/catalog"
	"github.com/yourorg/listings-api/internal/filter"
	"github.com/yourorg/listings-api/internal/seo"
	"github.com/yourorg/listings-api/wordpress"
)

type PropertyCatalog interface {
	Properties(ctx context.Context, q wordpress.PropertyQuery) (catalog.Page[wordpress.Property], cache.Result, error)
	FeaturedProperties(ctx context.Context, count int) ([]wordpress.Property, cache.Result, error)
	Taxonomies(ctx context.Context) (wordpress.Taxonomies, cache.Result, error)
}

type PropertiesDeps struct {
	Catalog PropertyCatalog
	Site    seo.Site
}

func RegisterProperties(r chi.Router, d PropertiesDeps) {
	r.Get("/properties", func(w http.ResponseWriter, req *http.Request) {
		f := filter.ParsePropertyFilter(req.URL.Query())
		q := wordpress.PropertyQuery{
			Page:    QueryInt(req, "page", 1),
			PerPage: QueryInt(req, "per_page", 0),
		}
		page, res, err := d.Catalog.Properties(req.Context(), q)
		if err != nil {
			WriteFetchError(w, req, err)
			return
		}
		matched := f.Apply(page.Items)
		state := f.Values()
		render.JSON(w, req, map[string]any{
			"ok":         true,
			"count":      len(matched),
			"total":      len(page.Items),
			"properties": matched,
			"facets":     filter.CollectTaxonomies(page.Items),
			"pagination": page.Pagination,
			"filters":    f,
			"query":      state.Encode(),
			"seo":        d.Site.PropertiesMeta(len(matched), state),
			"cache":      res,
		})
	})

	r.Get("/properties/featured", func(w http.ResponseWriter, req *http.Request) {
		props, res, err := d.Catalog.FeaturedProperties(req.Context(), QueryInt(req, "count", wordpress.DefaultFeaturedCount))
		if err != nil {
			WriteFetchError(w, req, err)
			return
		}
		render.JSON(w, req, map[string]any{
			"ok":         true,
			"count":      len(props),
			"properties": props,
			"cache":      res,
		})
	})

	r.Get("/taxonomies", func(w http.ResponseWriter, req *http.Request) {
		tax, res, err := d.Catalog.Taxonomies(req.Context())
		if err != nil {
			WriteFetchError(w, req, err)
			return
		}
		render.JSON(w, req, map[string]any{
			"ok":            true,
			"amenities":     tax.Amenities,
			"locations":     tax.Locations,
			"propertyTypes": tax.PropertyTypes,
			"cache":         res,
		})
	})
}
