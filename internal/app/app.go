// Package app wires configuration into the clients, cache, archive and
// queues shared by the API server and the warmer.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/listings-api/internal/cache"
	"github.com/yourorg/listings-api/internal/catalog"
	"github.com/yourorg/listings-api/internal/config"
	"github.com/yourorg/listings-api/internal/contact"
	"github.com/yourorg/listings-api/internal/events"
	"github.com/yourorg/listings-api/internal/hydrator"
	"github.com/yourorg/listings-api/internal/redisx"
	"github.com/yourorg/listings-api/internal/store"
	"github.com/yourorg/listings-api/woocommerce"
	"github.com/yourorg/listings-api/wordpress"
)

const dialTimeout = 10 * time.Second

// Backends holds everything built from Config. Redis, Store and AMQP are nil
// when not configured.
type Backends struct {
	WordPress   *wordpress.Client
	WooCommerce *woocommerce.Client
	Redis       *redisx.Client
	Cache       *cache.Cache
	Store       *store.Store
	Archive     *hydrator.Hydrator
	AMQP        *events.AMQPSink
	Catalog     *catalog.Service

	log *zap.Logger
}

// Open connects every configured backend. Optional backends that fail to
// connect are logged and left disabled; the upstream clients are required.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Backends, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	b := &Backends{log: log}

	b.WordPress = wordpress.NewClient(cfg.WordPress.BaseURL, log)
	b.WooCommerce = woocommerce.NewClient(cfg.WooCommerce.BaseURL, cfg.WooCommerce.ConsumerKey, cfg.WooCommerce.ConsumerSecret, log)
	b.WooCommerce.SetVariationPause(cfg.WooCommerce.VariationPause)

	var cacheStore cache.Store
	if cfg.Redis.Addr != "" {
		rc := redisx.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pctx, cancel := context.WithTimeout(ctx, dialTimeout)
		err := rc.Ping(pctx)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, caching disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = rc.Close()
		} else {
			b.Redis = rc
			cacheStore = rc
		}
	}
	b.Cache = cache.New(cacheStore, cache.Options{
		TTL:         cfg.Cache.TTL,
		StaleAfter:  cfg.Cache.StaleAfter,
		NegativeTTL: cfg.Cache.NegativeTTL,
		Workers:     cfg.Cache.Workers,
	}, log)

	if cfg.Postgres.DSN != "" {
		st, err := openStore(ctx, cfg.Postgres.DSN)
		if err != nil {
			log.Warn("archive unavailable", zap.Error(err))
		} else {
			b.Store = st
			b.Archive = &hydrator.Hydrator{Store: st}
		}
	}

	if cfg.AMQP.URL != "" {
		sink, err := events.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			log.Warn("amqp unavailable, enquiries will not be queued", zap.Error(err))
		} else {
			b.AMQP = sink
		}
	}

	b.Catalog = catalog.New(b.WordPress, b.WooCommerce, b.Cache, b.Archive, log)
	return b, nil
}

func openStore(ctx context.Context, dsn string) (*store.Store, error) {
	st, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("store open: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := st.Ping(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("store ping: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("store migrate: %w", err)
	}
	return st, nil
}

// Enquiries builds the contact service over whichever of the store and the
// queue are connected.
func (b *Backends) Enquiries() *contact.Service {
	var (
		rec contact.Recorder
		q   contact.Queue
	)
	if b.Store != nil {
		rec = b.Store
	}
	if b.AMQP != nil {
		q = b.AMQP
	}
	return contact.NewService(rec, q, b.log)
}

// Close releases the connections in reverse order of Open.
func (b *Backends) Close() {
	if b == nil {
		return
	}
	// pending archive writes need the store
	b.Catalog.Wait()
	if b.AMQP != nil {
		if err := b.AMQP.Close(); err != nil {
			b.log.Warn("amqp close", zap.Error(err))
		}
	}
	if b.Store != nil {
		if err := b.Store.Close(); err != nil {
			b.log.Warn("store close", zap.Error(err))
		}
	}
	b.Cache.Close()
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			b.log.Warn("redis close", zap.Error(err))
		}
	}
}
