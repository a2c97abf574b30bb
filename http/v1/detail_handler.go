package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	httpapi "github.com/yourorg/listings-api/http"
	"github.com/yourorg/listings-api/internal/cache"
	"github.com/yourorg/listings-api/internal/format"
	"github.com/yourorg/listings-api/internal/seo"
	"github.com/yourorg/listings-api/woocommerce"
	"github.com/yourorg/listings-api/wordpress"
)

type Catalog interface {
	Property(ctx context.Context, id int64) (*wordpress.Property, cache.Result, error)
	RelatedProperties(ctx context.Context, p wordpress.Property, limit int) ([]wordpress.Property, cache.Result, error)
	Project(ctx context.Context, id int64) (*woocommerce.Project, cache.Result, error)
}

type DetailDeps struct {
	Catalog Catalog
	Site    seo.Site
	Log     *zap.Logger
	Now     func() time.Time
}

// RegisterDetail serves single properties and projects with their SEO
// bundle. Related properties are best effort.
func RegisterDetail(r chi.Router, d DetailDeps) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	r.Route("/v1", func(r chi.Router) {
		r.Get("/properties/{id}", func(w http.ResponseWriter, req *http.Request) {
			id, ok := httpapi.PathID(chi.URLParam(req, "id"))
			if !ok {
				httpapi.WriteError(w, req, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
				return
			}
			p, res, err := d.Catalog.Property(req.Context(), id)
			if err != nil {
				httpapi.WriteFetchError(w, req, err)
				return
			}
			related, _, err := d.Catalog.RelatedProperties(req.Context(), *p, httpapi.QueryInt(req, "related", wordpress.DefaultRelatedLimit))
			if err != nil {
				d.Log.Warn("related properties", zap.Int64("id", id), zap.Error(err))
				related = []wordpress.Property{}
			}
			gallery := make([]wordpress.ImageSizes, 0, len(p.Images))
			for _, img := range p.Images {
				gallery = append(gallery, wordpress.SizesFor(img))
			}
			render.JSON(w, req, map[string]any{
				"ok":       true,
				"property": p,
				"gallery":  gallery,
				"related":  related,
				"posted":   format.RelativeTime(p.PostedAt(), d.Now()),
				"url":      seo.PropertyPath(p),
				"seo":      d.Site.PropertyMeta(p, d.Now()),
				"cache":    res,
			})
		})

		r.Get("/projects/{id}", func(w http.ResponseWriter, req *http.Request) {
			id, ok := httpapi.PathID(chi.URLParam(req, "id"))
			if !ok {
				httpapi.WriteError(w, req, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
				return
			}
			p, res, err := d.Catalog.Project(req.Context(), id)
			if err != nil {
				httpapi.WriteFetchError(w, req, err)
				return
			}
			render.JSON(w, req, map[string]any{
				"ok":            true,
				"project":       p,
				"price_summary": format.PriceRange(p.PriceRange.Min, p.PriceRange.Max, true),
				"url":           seo.ProjectPath(p.ID),
				"seo":           d.Site.ProjectMeta(p),
				"cache":         res,
			})
		})
	})
}
