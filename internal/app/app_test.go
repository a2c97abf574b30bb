package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/listings-api/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		WordPress:   config.WordPressConfig{BaseURL: "http://127.0.0.1:1/wp-json"},
		WooCommerce: config.WooCommerceConfig{BaseURL: "http://127.0.0.1:1/wp-json/wc/v3", VariationPause: 10 * time.Millisecond},
		Cache:       config.CacheConfig{TTL: time.Hour, StaleAfter: time.Minute, Workers: 1},
	}
}

func TestOpenWithoutOptionalBackends(t *testing.T) {
	b, err := Open(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	assert.NotNil(t, b.Catalog)
	assert.False(t, b.Cache.Enabled())
	assert.False(t, b.Archive.Enabled())
	assert.Nil(t, b.Redis)
	assert.Nil(t, b.AMQP)

	svc := b.Enquiries()
	assert.Nil(t, svc.Store)
	assert.Nil(t, svc.Queue)
}

func TestOpenWithSQLiteArchive(t *testing.T) {
	cfg := testConfig()
	cfg.Postgres.DSN = "sqlite:" + filepath.Join(t.TempDir(), "archive.db")

	b, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	require.NotNil(t, b.Store)
	assert.True(t, b.Archive.Enabled())
	assert.NotNil(t, b.Enquiries().Store)
}

func TestCloseNil(t *testing.T) {
	var b *Backends
	assert.NotPanics(t, b.Close)
}
