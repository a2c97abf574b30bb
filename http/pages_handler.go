package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/listings-api/internal/pages"
	"github.com/yourorg/listings-api/internal/seo"
)

type PagesDeps struct {
	Pages *pages.Library
	Site  seo.Site
}

func RegisterPages(r chi.Router, d PagesDeps) {
	r.Get("/pages", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]any{"ok": true, "pages": d.Pages.Slugs()})
	})

	r.Get("/pages/{slug}", func(w http.ResponseWriter, req *http.Request) {
		p, err := d.Pages.Get(chi.URLParam(req, "slug"))
		if errors.Is(err, pages.ErrNotFound) {
			WriteError(w, req, http.StatusNotFound, "not_found", "no page named "+chi.URLParam(req, "slug"))
			return
		}
		render.JSON(w, req, map[string]any{
			"ok":   true,
			"page": p,
			"seo":  d.Site.PageMeta(p.Title, p.Description, p.Keywords, p.Path),
		})
	})
}
