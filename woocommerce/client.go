// Package woocommerce reads projects from the WooCommerce REST API
// (/wp-json/wc/v3). Products are normalized into Project values with their
// variations and derived price ranges.
package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/yourorg/listings-api/internal/upstream"
)

var ErrNotFound = upstream.ErrNotFound

const (
	DefaultVariationPause = 100 * time.Millisecond
	DefaultFeaturedLimit  = 6
)

type Client struct {
	api  *upstream.Client
	log  *zap.Logger
	pace *rate.Limiter
}

// NewClient sends the consumer credentials as query parameters on every
// request.
func NewClient(baseURL, consumerKey, consumerSecret string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	params := url.Values{}
	if consumerKey != "" {
		params.Set("consumer_key", consumerKey)
	}
	if consumerSecret != "" {
		params.Set("consumer_secret", consumerSecret)
	}
	c := &Client{
		api: upstream.New("woocommerce", baseURL, params, log),
		log: log.Named("woocommerce"),
	}
	c.SetVariationPause(DefaultVariationPause)
	return c
}

// SetVariationPause spaces consecutive variation fetches by d. Zero disables
// pacing.
func (c *Client) SetVariationPause(d time.Duration) {
	if d <= 0 {
		c.pace = rate.NewLimiter(rate.Inf, 1)
		return
	}
	c.pace = rate.NewLimiter(rate.Every(d), 1)
}

func (c *Client) SetRetryMax(n int) { c.api.SetRetryMax(n) }

// ListProducts returns a page of projects. Variable products have their
// variations fetched one at a time; a failed fetch leaves that project
// without variations.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]Project, Pagination, []byte, error) {
	q = q.Normalized()
	resp, err := c.api.Get(ctx, "/products", q.Values())
	if err != nil {
		return nil, Pagination{}, nil, fmt.Errorf("fetch products: %w", err)
	}
	var products []rawProduct
	if err := json.Unmarshal(resp.Body, &products); err != nil {
		return nil, Pagination{}, resp.Body, fmt.Errorf("decode products: %w", err)
	}

	out := make([]Project, 0, len(products))
	for _, p := range products {
		var variations []Variation
		if p.variable() {
			if err := c.pace.Wait(ctx); err != nil {
				return nil, Pagination{}, resp.Body, err
			}
			variations, err = c.Variations(ctx, p.ID)
			if err != nil {
				c.log.Warn("variations", zap.Int64("product_id", p.ID), zap.Error(err))
				variations = nil
			}
		}
		out = append(out, p.format(variations))
	}
	return out, upstream.ParsePagination(resp.Header, q.Page, q.PerPage), resp.Body, nil
}

// GetProduct returns a project with its variations and the raw product body.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Project, []byte, error) {
	if id <= 0 {
		return nil, nil, fmt.Errorf("fetch product %d: %w", id, ErrNotFound)
	}
	resp, err := c.api.Get(ctx, fmt.Sprintf("/products/%d", id), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch product %d: %w", id, err)
	}
	var p rawProduct
	if err := json.Unmarshal(resp.Body, &p); err != nil {
		return nil, resp.Body, fmt.Errorf("decode product %d: %w", id, err)
	}
	var variations []Variation
	if p.variable() {
		variations, err = c.Variations(ctx, id)
		if err != nil {
			c.log.Warn("variations", zap.Int64("product_id", id), zap.Error(err))
			variations = nil
		}
	}
	out := p.format(variations)
	return &out, resp.Body, nil
}

func (c *Client) Variations(ctx context.Context, productID int64) ([]Variation, error) {
	resp, err := c.api.Get(ctx, fmt.Sprintf("/products/%d/variations", productID), url.Values{"per_page": {"100"}})
	if err != nil {
		return nil, fmt.Errorf("fetch variations for %d: %w", productID, err)
	}
	return FormatVariations(resp.Body)
}

func (c *Client) FeaturedProducts(ctx context.Context, limit int) ([]Project, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	out, _, _, err := c.ListProducts(ctx, ProductQuery{PerPage: limit, Featured: true})
	return out, err
}

// ProductsByCategory lists the projects in one category.
func (c *Client) ProductsByCategory(ctx context.Context, categoryID int64, q ProductQuery) ([]Project, Pagination, error) {
	q.Category = categoryID
	out, page, _, err := c.ListProducts(ctx, q)
	return out, page, err
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	return c.categories(ctx, "/products/categories")
}

func (c *Client) Brands(ctx context.Context) ([]Category, error) {
	return c.categories(ctx, "/products/brands")
}

func (c *Client) categories(ctx context.Context, path string) ([]Category, error) {
	resp, err := c.api.Get(ctx, path, url.Values{"per_page": {"100"}})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	return FormatCategories(resp.Body)
}
