package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yourorg/listings-api/internal/env"
)

// Config is assembled from environment variables at start-up.
type Config struct {
	Server      ServerConfig
	WordPress   WordPressConfig
	WooCommerce WooCommerceConfig
	Redis       RedisConfig
	Postgres    PostgresConfig
	AMQP        AMQPConfig
	Site        SiteConfig
	Cache       CacheConfig
	Webhooks    WebhookConfig
	PagesFile   string
	LogLevel    string
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestsPerMin  int
	AllowedOrigins  []string
}

type WordPressConfig struct {
	BaseURL string // e.g. https://cms.example.com/wp-json
}

type WooCommerceConfig struct {
	BaseURL        string // e.g. https://cms.example.com/wp-json/wc/v3
	ConsumerKey    string
	ConsumerSecret string
	VariationPause time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	DSN string
}

type AMQPConfig struct {
	URL   string
	Queue string
}

// SiteConfig feeds SEO metadata and structured data.
type SiteConfig struct {
	Name             string
	URL              string
	Description      string
	DefaultImage     string
	Phone            string
	SameAs           []string
	LocationKeywords []string
}

type CacheConfig struct {
	TTL         time.Duration
	StaleAfter  time.Duration
	NegativeTTL time.Duration
	Workers     int
}

type WebhookConfig struct {
	WordPressToken    string
	WooCommerceSecret string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            env.GetInt("PORT", 4002),
			ReadTimeout:     env.GetDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    env.GetDuration("WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT", 20*time.Second),
			RequestsPerMin:  env.GetInt("RATE_LIMIT_PER_MIN", 120),
			AllowedOrigins:  defaultList(env.List("CORS_ALLOWED_ORIGINS"), []string{"*"}),
		},
		WordPress: WordPressConfig{
			BaseURL: strings.TrimRight(env.Get("WP_API_BASE_URL", ""), "/"),
		},
		WooCommerce: WooCommerceConfig{
			BaseURL:        strings.TrimRight(env.Get("WC_API_BASE_URL", ""), "/"),
			ConsumerKey:    env.Get("WC_CONSUMER_KEY", ""),
			ConsumerSecret: env.Get("WC_CONSUMER_SECRET", ""),
			VariationPause: env.GetDuration("WC_VARIATION_PAUSE", 100*time.Millisecond),
		},
		Redis: RedisConfig{
			Addr:     env.Get("REDIS_ADDR", ""),
			Password: env.Get("REDIS_PASSWORD", ""),
			DB:       env.GetInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{DSN: env.Get("PG_DSN", "")},
		AMQP: AMQPConfig{
			URL:   env.Get("AMQP_SERVER_URL", ""),
			Queue: env.Get("AMQP_ENQUIRY_QUEUE", "enquiries"),
		},
		Site: SiteConfig{
			Name:             env.Get("SITE_NAME", "Nashik Properties"),
			URL:              strings.TrimRight(env.Get("SITE_URL", "http://localhost:3000"), "/"),
			Description:      env.Get("SITE_DESCRIPTION", "Premium real estate listings in Nashik"),
			DefaultImage:     env.Get("SITE_DEFAULT_IMAGE", "/default-property.jpg"),
			Phone:            env.Get("SITE_PHONE", ""),
			SameAs:           env.List("SITE_SAME_AS"),
			LocationKeywords: defaultList(env.List("LOCATION_KEYWORDS"), []string{"nashik", "panchavati"}),
		},
		Cache: CacheConfig{
			TTL:         env.GetDuration("CACHE_TTL", time.Hour),
			StaleAfter:  env.GetDuration("CACHE_STALE_AFTER", 5*time.Minute),
			NegativeTTL: env.GetDuration("CACHE_NEGATIVE_TTL", time.Minute),
			Workers:     env.GetInt("CACHE_REFRESH_WORKERS", 2),
		},
		Webhooks: WebhookConfig{
			WordPressToken:    env.Get("WP_WEBHOOK_TOKEN", ""),
			WooCommerceSecret: env.Get("WC_WEBHOOK_SECRET", ""),
		},
		PagesFile: env.Get("PAGES_FILE", ""),
		LogLevel:  env.Get("LOG_LEVEL", "info"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, errors.New("PORT must be positive"))
	}
	if err := validURL("WP_API_BASE_URL", c.WordPress.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if err := validURL("WC_API_BASE_URL", c.WooCommerce.BaseURL); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel))
	}
	if c.Cache.StaleAfter > c.Cache.TTL {
		errs = append(errs, errors.New("CACHE_STALE_AFTER must not exceed CACHE_TTL"))
	}
	return errors.Join(errs...)
}

func validURL(name, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(v)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", name)
	}
	return nil
}

func defaultList(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
