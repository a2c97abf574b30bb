// Package cache is a stale-while-revalidate response cache. Entries are JSON
// envelopes carrying fetch metadata; stale entries are served while a worker
// refreshes them, misses take a short lock, and upstream 404s leave a
// negative-cache marker.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/listings-api/internal/refresh"
	"github.com/yourorg/listings-api/internal/upstream"
)

const (
	SourceCache   = "cache"
	SourceFresh   = "fresh"
	SourceArchive = "archive"

	keyPrefix  = "listings:"
	missPrefix = "listings:miss:"
	lockPrefix = "listings:lock:"
)

var (
	// ErrNotFound is returned while a negative-cache marker is live, and when
	// the fetch itself reports upstream.ErrNotFound.
	ErrNotFound = upstream.ErrNotFound
	// ErrInProgress means another request holds the fill lock and nothing
	// was cached before the wait ran out.
	ErrInProgress = errors.New("cache fill in progress")
)

// Store is the subset of redisx.Client the cache needs. Get returns "" for a
// missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, val string, ttl time.Duration) error
	SetNX(ctx context.Context, key, val string, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

type Meta struct {
	LastFetch  time.Time `json:"last_fetch_at"`
	StaleAfter time.Time `json:"stale_after"`
	TTLSeconds int       `json:"ttl_seconds"`
	Source     string    `json:"source"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta Meta            `json:"meta"`
}

// Result describes where a value came from.
type Result struct {
	Source    string    `json:"source"`
	Stale     bool      `json:"stale"`
	FetchedAt time.Time `json:"fetched_at"`
}

type Options struct {
	TTL         time.Duration
	StaleAfter  time.Duration
	NegativeTTL time.Duration
	LockTTL     time.Duration
	LockWait    time.Duration
	Workers     int
}

type Cache struct {
	store   Store
	opts    Options
	refresh *refresh.Refresher
	log     *zap.Logger
	now     func() time.Time
}

func maxDur(a, b time.Duration) time.Duration {
	if a > 0 {
		return a
	}
	return b
}

// New returns a cache over store. A nil store gives a pass-through cache that
// always fetches.
func New(store Store, opts Options, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	opts.TTL = maxDur(opts.TTL, time.Hour)
	opts.StaleAfter = maxDur(opts.StaleAfter, 5*time.Minute)
	opts.NegativeTTL = maxDur(opts.NegativeTTL, time.Minute)
	opts.LockTTL = maxDur(opts.LockTTL, 8*time.Second)
	if opts.LockWait == 0 {
		opts.LockWait = 2 * time.Second
	}
	c := &Cache{store: store, opts: opts, log: log.Named("cache"), now: time.Now}
	if store != nil {
		c.refresh = refresh.New(256, opts.Workers, c.runRefresh)
	}
	return c
}

func (c *Cache) Enabled() bool { return c != nil && c.store != nil }

// Close stops the refresh workers.
func (c *Cache) Close() {
	if c != nil && c.refresh != nil {
		c.refresh.Close()
	}
}

func (c *Cache) runRefresh(ctx context.Context, j refresh.Job) {
	if err := j.Run(ctx); err != nil {
		c.log.Warn("background refresh failed", zap.String("key", j.Key), zap.Error(err))
	}
}

// Get resolves key through the cache, calling fetch on a miss. Stale hits are
// returned immediately and refreshed in the background.
func Get[T any](ctx context.Context, c *Cache, key string, fetch func(ctx context.Context) (T, error)) (T, Result, error) {
	var zero T
	if !c.Enabled() {
		v, err := fetch(ctx)
		if err != nil {
			return zero, Result{}, err
		}
		return v, Result{Source: SourceFresh, FetchedAt: time.Now()}, nil
	}

	if ok, _ := c.store.Exists(ctx, missPrefix+key); ok {
		return zero, Result{}, fmt.Errorf("%s: %w", key, ErrNotFound)
	}

	if v, res, ok := lookup[T](ctx, c, key); ok {
		if res.Stale {
			c.refresh.Enqueue(refresh.Job{Key: key, Run: func(ctx context.Context) error {
				_, err := fill(ctx, c, key, fetch)
				return err
			}})
		}
		return v, res, nil
	}

	// miss: take a short lock so one request fills the entry
	lockKey := lockPrefix + key
	if ok, err := c.store.SetNX(ctx, lockKey, "1", c.opts.LockTTL); err == nil && !ok {
		if v, res, ok := waitFor[T](ctx, c, key); ok {
			return v, res, nil
		}
		return zero, Result{}, ErrInProgress
	} else if err == nil {
		defer func() { _ = c.store.Del(context.WithoutCancel(ctx), lockKey) }()
	}

	v, err := fill(ctx, c, key, fetch)
	if err != nil {
		return zero, Result{}, err
	}
	return v, Result{Source: SourceFresh, FetchedAt: c.now()}, nil
}

func lookup[T any](ctx context.Context, c *Cache, key string) (T, Result, bool) {
	var zero T
	val, err := c.store.Get(ctx, keyPrefix+key)
	if err != nil || val == "" {
		return zero, Result{}, false
	}
	var env envelope
	if err := json.Unmarshal([]byte(val), &env); err != nil {
		return zero, Result{}, false
	}
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return zero, Result{}, false
	}
	return v, Result{
		Source:    SourceCache,
		Stale:     c.now().After(env.Meta.StaleAfter),
		FetchedAt: env.Meta.LastFetch,
	}, true
}

func waitFor[T any](ctx context.Context, c *Cache, key string) (T, Result, bool) {
	var zero T
	deadline := time.After(c.opts.LockWait)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return zero, Result{}, false
		case <-deadline:
			return zero, Result{}, false
		case <-tick.C:
			if v, res, ok := lookup[T](ctx, c, key); ok {
				return v, res, true
			}
		}
	}
}

func fill[T any](ctx context.Context, c *Cache, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := fetch(ctx)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			_ = c.store.Set(ctx, missPrefix+key, "1", c.opts.NegativeTTL)
		}
		var zero T
		return zero, err
	}
	if err := put(ctx, c, key, v); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// Put stores v under key as freshly fetched, replacing any entry and
// clearing a negative marker.
func Put[T any](ctx context.Context, c *Cache, key string, v T) error {
	if !c.Enabled() {
		return nil
	}
	if err := put(ctx, c, key, v); err != nil {
		return err
	}
	return c.store.Del(ctx, missPrefix+key)
}

func put[T any](ctx context.Context, c *Cache, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	now := c.now()
	env := envelope{Data: data, Meta: Meta{
		LastFetch:  now,
		StaleAfter: now.Add(c.opts.StaleAfter),
		TTLSeconds: int(c.opts.TTL.Seconds()),
		Source:     SourceFresh,
	}}
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.store.Set(ctx, keyPrefix+key, string(b), c.opts.TTL)
}

// Invalidate drops cached entries and negative markers under each prefix.
func (c *Cache) Invalidate(ctx context.Context, prefixes ...string) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	var (
		total int
		errs  []error
	)
	for _, p := range prefixes {
		for _, full := range []string{keyPrefix + p, missPrefix + p} {
			n, err := c.store.DeleteByPrefix(ctx, full)
			total += n
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	return total, errors.Join(errs...)
}
