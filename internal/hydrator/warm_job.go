package hydrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Warmer refreshes one upstream page into the cache and archive, reporting
// how many items it held and how many pages exist.
type Warmer interface {
	WarmProperties(ctx context.Context, page, perPage int) (items, totalPages int, err error)
	WarmProjects(ctx context.Context, page, perPage int) (items, totalPages int, err error)
}

type WarmConfig struct {
	PropertiesPerPage    int
	ProjectsPerPage      int
	MaxPages             int
	Interval             time.Duration
	PauseBetweenRequests time.Duration
	RequestTimeout       time.Duration
	SkipProperties       bool
	SkipProjects         bool
}

type WarmJob struct {
	Target Warmer
	Logger *zap.Logger
	Config WarmConfig
}

func (j *WarmJob) log() *zap.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return zap.NewNop()
}

func (j *WarmJob) validate() error {
	if j == nil {
		return errors.New("nil warm job")
	}
	if j.Target == nil {
		return errors.New("warm job missing target")
	}
	if j.Config.SkipProperties && j.Config.SkipProjects {
		return errors.New("warm job has nothing to do")
	}
	return nil
}

// Run warms once, then again on every interval tick until ctx ends. A zero
// interval runs once.
func (j *WarmJob) Run(ctx context.Context) error {
	if err := j.validate(); err != nil {
		return err
	}
	interval := j.Config.Interval
	if interval <= 0 {
		return j.RunOnce(ctx)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	j.log().Info("warm job starting", zap.Duration("interval", interval))
	if err := j.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		j.log().Warn("warm job initial run", zap.Error(err))
	}
	for {
		select {
		case <-ctx.Done():
			j.log().Info("warm job stopping", zap.Error(ctx.Err()))
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if err := j.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				j.log().Warn("warm job iteration", zap.Error(err))
			}
		}
	}
}

func (j *WarmJob) RunOnce(ctx context.Context) error {
	if err := j.validate(); err != nil {
		return err
	}
	var joined error
	if !j.Config.SkipProperties {
		if err := j.walk(ctx, "properties", j.Config.PropertiesPerPage, 10, j.Target.WarmProperties); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			joined = errors.Join(joined, err)
		}
	}
	if !j.Config.SkipProjects {
		if err := j.walk(ctx, "projects", j.Config.ProjectsPerPage, 12, j.Target.WarmProjects); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			joined = errors.Join(joined, err)
		}
	}
	return joined
}

func (j *WarmJob) walk(ctx context.Context, name string, perPage, defPerPage int, warm func(context.Context, int, int) (int, int, error)) error {
	if perPage <= 0 {
		perPage = defPerPage
	}
	maxPages := j.Config.MaxPages
	if maxPages <= 0 {
		maxPages = 5
	}
	timeout := j.Config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	pause := j.Config.PauseBetweenRequests
	warmed := 0
	for page := 1; page <= maxPages; page++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		n, totalPages, err := warm(reqCtx, page, perPage)
		cancel()
		if err != nil {
			return fmt.Errorf("%s page %d: %w", name, page, err)
		}
		warmed += n
		if n == 0 || page >= totalPages {
			break
		}
		if pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pause):
			}
		}
	}
	j.log().Info("warm job pass", zap.String("kind", name), zap.Int("items", warmed))
	return nil
}
