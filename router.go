package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	httpapi "github.com/yourorg/listings-api/http"
	httpv1 "github.com/yourorg/listings-api/http/v1"
	"github.com/yourorg/listings-api/internal/catalog"
	"github.com/yourorg/listings-api/internal/contact"
	"github.com/yourorg/listings-api/internal/events"
	"github.com/yourorg/listings-api/internal/logger"
	"github.com/yourorg/listings-api/internal/pages"
	"github.com/yourorg/listings-api/internal/seo"
)

type RouterDeps struct {
	Catalog        *catalog.Service
	Pages          *pages.Library
	Enquiries      *contact.Service
	Events         events.Publisher
	Site           seo.Site
	LocalityWords  []string
	Checks         map[string]httpapi.Check
	AllowedOrigins []string
	RequestsPerMin int
	WPToken        string
	WCSecret       string
	Log            *zap.Logger
}

func BuildRouter(d RouterDeps) http.Handler {
	if d.RequestsPerMin <= 0 {
		d.RequestsPerMin = 120
	}
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logger.Middleware(d.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", httpapi.HeaderWordPressToken, httpapi.HeaderWCSignature, httpapi.HeaderWCTopic},
		MaxAge:         300,
	}))
	r.Use(httprate.LimitByIP(d.RequestsPerMin, time.Minute)) // protect upstream quota
	r.Use(render.SetContentType(render.ContentTypeJSON))

	httpapi.RegisterHealth(r, httpapi.HealthDeps{Checks: d.Checks})
	httpapi.RegisterProperties(r, httpapi.PropertiesDeps{Catalog: d.Catalog, Site: d.Site})
	httpapi.RegisterProjects(r, httpapi.ProjectsDeps{Catalog: d.Catalog, Site: d.Site, LocalityWords: d.LocalityWords, Log: d.Log})
	httpapi.RegisterPages(r, httpapi.PagesDeps{Pages: d.Pages, Site: d.Site})
	httpapi.RegisterContact(r, httpapi.ContactDeps{Enquiries: d.Enquiries})
	httpapi.RegisterWebhooks(r, httpapi.WebhooksDeps{
		Events:            d.Events,
		WordPressToken:    d.WPToken,
		WooCommerceSecret: d.WCSecret,
		Log:               d.Log,
	})

	// single-item endpoints with SEO bundles
	httpv1.RegisterDetail(r, httpv1.DetailDeps{Catalog: d.Catalog, Site: d.Site, Log: d.Log})

	return r
}
