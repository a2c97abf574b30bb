package httpapi

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

type HealthDeps struct {
	Checks map[string]Check
}

// RegisterHealth serves /health. Any failing check turns the response into
// a 503 with ok=false.
func RegisterHealth(r chi.Router, d HealthDeps) {
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		names := make([]string, 0, len(d.Checks))
		for name := range d.Checks {
			names = append(names, name)
		}
		sort.Strings(names)

		ok := true
		checks := map[string]string{}
		for _, name := range names {
			if err := d.Checks[name](ctx); err != nil {
				ok = false
				checks[name] = err.Error()
				continue
			}
			checks[name] = "ok"
		}
		if !ok {
			render.Status(req, http.StatusServiceUnavailable)
		}
		render.JSON(w, req, map[string]any{"ok": ok, "checks": checks})
	})
}
