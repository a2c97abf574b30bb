package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourorg/listings-api/internal/app"
	"github.com/yourorg/listings-api/internal/config"
	"github.com/yourorg/listings-api/internal/env"
	"github.com/yourorg/listings-api/internal/hydrator"
	"github.com/yourorg/listings-api/internal/logger"
)

type options struct {
	once           bool
	interval       time.Duration
	pages          int
	propertiesPer  int
	projectsPer    int
	pause          time.Duration
	requestTimeout time.Duration
	skipProperties bool
	skipProjects   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "warmer",
		Short: "Pre-fill the listings cache and archive from WordPress and WooCommerce",
		Long: `warmer walks the property and project listings page by page, writing
each page into the Redis cache and the archive database so the API can
serve them without waiting on the CMS.

Configuration comes from the same environment variables as the API server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.once, "once", env.GetBool("WARMER_RUN_ONCE", false), "run a single pass and exit")
	f.DurationVar(&opts.interval, "interval", env.GetDuration("WARMER_INTERVAL", 30*time.Minute), "time between passes")
	f.IntVar(&opts.pages, "pages", env.GetInt("WARMER_MAX_PAGES", 5), "maximum pages per listing")
	f.IntVar(&opts.propertiesPer, "per-page", env.GetInt("WARMER_PER_PAGE", 10), "properties per page")
	f.IntVar(&opts.projectsPer, "projects-per-page", env.GetInt("WARMER_PROJECTS_PER_PAGE", 12), "projects per page")
	f.DurationVar(&opts.pause, "pause", env.GetDuration("WARMER_PAUSE", time.Second), "pause between upstream pages")
	f.DurationVar(&opts.requestTimeout, "request-timeout", env.GetDuration("WARMER_REQUEST_TIMEOUT", 30*time.Second), "timeout per page")
	f.BoolVar(&opts.skipProperties, "skip-properties", false, "do not warm WordPress properties")
	f.BoolVar(&opts.skipProjects, "skip-projects", false, "do not warm WooCommerce projects")
	return cmd
}

func run(parent context.Context, opts options) error {
	env.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer zl.Sync() //nolint:errcheck

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := app.Open(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer b.Close()
	if !b.Cache.Enabled() && !b.Archive.Enabled() {
		zl.Warn("neither redis nor the archive is configured; warming only exercises the upstream")
	}

	interval := opts.interval
	if opts.once {
		interval = 0
	}
	job := &hydrator.WarmJob{
		Target: b.Catalog,
		Logger: zl.Named("warmer"),
		Config: hydrator.WarmConfig{
			PropertiesPerPage:    opts.propertiesPer,
			ProjectsPerPage:      opts.projectsPer,
			MaxPages:             opts.pages,
			Interval:             interval,
			PauseBetweenRequests: opts.pause,
			RequestTimeout:       opts.requestTimeout,
			SkipProperties:       opts.skipProperties,
			SkipProjects:         opts.skipProjects,
		},
	}
	if err := job.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("warm: %w", err)
	}
	return nil
}
