package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/yourorg/listings-api/http"
	"github.com/yourorg/listings-api/internal/app"
	"github.com/yourorg/listings-api/internal/config"
	"github.com/yourorg/listings-api/internal/env"
	"github.com/yourorg/listings-api/internal/events"
	"github.com/yourorg/listings-api/internal/invalidate"
	"github.com/yourorg/listings-api/internal/logger"
	"github.com/yourorg/listings-api/internal/pages"
	"github.com/yourorg/listings-api/internal/seo"
)

func main() {
	env.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := app.Open(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer b.Close()

	lib, err := pages.Load(cfg.PagesFile)
	if err != nil {
		return err
	}

	pub := events.NewInMemory(256)
	inv := &invalidate.Invalidator{Pub: pub, Cache: b.Cache, Log: zl.Named("invalidate")}
	if b.Archive != nil {
		inv.Archive = b.Archive
	}
	go inv.Run(ctx)

	checks := map[string]httpapi.Check{}
	if b.Redis != nil {
		checks["redis"] = b.Redis.Ping
	}
	if b.Store != nil {
		checks["archive"] = b.Store.Ping
	}

	router := BuildRouter(RouterDeps{
		Catalog:        b.Catalog,
		Pages:          lib,
		Enquiries:      b.Enquiries(),
		Events:         pub,
		Site:           siteFrom(cfg.Site),
		LocalityWords:  cfg.Site.LocationKeywords,
		Checks:         checks,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestsPerMin: cfg.Server.RequestsPerMin,
		WPToken:        cfg.Webhooks.WordPressToken,
		WCSecret:       cfg.Webhooks.WooCommerceSecret,
		Log:            zl,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("listings-api listening",
			zap.Int("port", cfg.Server.Port),
			zap.Bool("cache", b.Cache.Enabled()),
			zap.Bool("archive", b.Archive.Enabled()),
			zap.Bool("queue", b.AMQP != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func siteFrom(c config.SiteConfig) seo.Site {
	return seo.Site{
		Name:         c.Name,
		URL:          c.URL,
		Description:  c.Description,
		DefaultImage: c.DefaultImage,
		Phone:        c.Phone,
		SameAs:       c.SameAs,
	}
}
