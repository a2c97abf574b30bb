// Package invalidate consumes catalog-change events and drops the cache
// entries and archived documents they make stale.
package invalidate

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/listings-api/internal/catalog"
	"github.com/yourorg/listings-api/internal/events"
	"github.com/yourorg/listings-api/internal/hydrator"
)

// Purger drops cache entries by key prefix.
type Purger interface {
	Invalidate(ctx context.Context, prefixes ...string) (int, error)
}

// Forgetter removes archived documents.
type Forgetter interface {
	Forget(ctx context.Context, source, kind string, id int64) error
}

type Invalidator struct {
	Pub     events.Publisher
	Cache   Purger
	Archive Forgetter
	Log     *zap.Logger
	Timeout time.Duration
}

// Run handles events until ctx is done.
func (i *Invalidator) Run(ctx context.Context) {
	sub := i.Pub.SubscribeCatalogChanged()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-sub:
			i.Handle(ctx, evt)
		}
	}
}

// Handle applies one event. Failures are logged; the cache TTL bounds how
// long a missed invalidation can linger.
func (i *Invalidator) Handle(ctx context.Context, evt events.CatalogChanged) {
	log := i.logger().With(
		zap.String("source", evt.Source),
		zap.String("resource", evt.Resource),
		zap.Int64("id", evt.ID),
		zap.String("action", evt.Action),
	)
	timeout := i.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if i.Cache != nil {
		prefixes := catalog.PrefixesFor(evt)
		n, err := i.Cache.Invalidate(ctx, prefixes...)
		if err != nil {
			log.Warn("cache invalidation failed", zap.Strings("prefixes", prefixes), zap.Error(err))
		} else {
			log.Info("cache invalidated", zap.Strings("prefixes", prefixes), zap.Int("keys", n))
		}
	}

	if i.Archive == nil || !isDelete(evt.Action) || evt.ID <= 0 {
		return
	}
	source, kind, ok := archiveKind(evt)
	if !ok {
		return
	}
	if err := i.Archive.Forget(ctx, source, kind, evt.ID); err != nil {
		log.Warn("archive delete failed", zap.Error(err))
	}
}

func (i *Invalidator) logger() *zap.Logger {
	if i.Log != nil {
		return i.Log
	}
	return zap.NewNop()
}

func isDelete(action string) bool {
	switch strings.ToLower(action) {
	case "delete", "deleted", "trash", "trashed":
		return true
	}
	return false
}

func archiveKind(evt events.CatalogChanged) (source, kind string, ok bool) {
	r := strings.ToLower(evt.Resource)
	switch {
	case evt.Source == events.SourceWordPress && (r == "post" || r == "property"):
		return hydrator.SourceWordPress, hydrator.KindProperty, true
	case evt.Source == events.SourceWooCommerce && r == "product":
		return hydrator.SourceWooCommerce, hydrator.KindProject, true
	}
	return "", "", false
}
