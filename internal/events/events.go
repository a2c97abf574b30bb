// Package events carries catalog-change notifications from the webhook
// handlers to the cache invalidator.
package events

import (
	"context"
	"time"
)

const (
	SourceWordPress   = "wordpress"
	SourceWooCommerce = "woocommerce"
)

// CatalogChanged says an upstream resource was created, updated or deleted.
// ID is 0 when the webhook did not name one.
type CatalogChanged struct {
	Source   string    `json:"source"`
	Resource string    `json:"resource"`
	ID       int64     `json:"id"`
	Action   string    `json:"action"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	PublishCatalogChanged(ctx context.Context, evt CatalogChanged) bool
	SubscribeCatalogChanged() <-chan CatalogChanged
}

type inMemory struct{ ch chan CatalogChanged }

func NewInMemory(buffer int) Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &inMemory{ch: make(chan CatalogChanged, buffer)}
}

// PublishCatalogChanged drops the event when the buffer is full and reports
// whether it was queued.
func (m *inMemory) PublishCatalogChanged(_ context.Context, evt CatalogChanged) bool {
	select {
	case m.ch <- evt:
		return true
	default:
		return false
	}
}

func (m *inMemory) SubscribeCatalogChanged() <-chan CatalogChanged { return m.ch }
