// Package wordpress reads property listings from the WordPress REST API
// (/wp-json/wp/v2) and normalizes them into flat Property values.
package wordpress

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/yourorg/listings-api/internal/upstream"
)

var ErrNotFound = upstream.ErrNotFound

const (
	DefaultFeaturedCount = 6
	DefaultRelatedLimit  = 4
)

type Client struct {
	api *upstream.Client
	log *zap.Logger
}

// NewClient takes the REST root, e.g. https://cms.example.com/wp-json.
func NewClient(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		api: upstream.New("wordpress", baseURL, nil, log),
		log: log.Named("wordpress"),
	}
}

func (c *Client) BaseURL() string { return c.api.BaseURL() }

// SetRetryMax overrides the retry budget.
func (c *Client) SetRetryMax(n int) { c.api.SetRetryMax(n) }

// ListProperties returns one page of normalized properties, the pagination
// headers and the raw upstream body for archiving.
func (c *Client) ListProperties(ctx context.Context, q PropertyQuery) ([]Property, Pagination, []byte, error) {
	q = q.Normalized()
	resp, err := c.api.Get(ctx, "/wp/v2/posts", q.Values())
	if err != nil {
		return nil, Pagination{}, nil, fmt.Errorf("fetch properties: %w", err)
	}
	props, err := FormatProperties(resp.Body, c.api.BaseURL())
	if err != nil {
		return nil, Pagination{}, resp.Body, err
	}
	return props, upstream.ParsePagination(resp.Header, q.Page, q.PerPage), resp.Body, nil
}

// GetProperty returns the normalized post and its raw body.
func (c *Client) GetProperty(ctx context.Context, id int64) (*Property, []byte, error) {
	if id <= 0 {
		return nil, nil, fmt.Errorf("fetch property %d: %w", id, ErrNotFound)
	}
	resp, err := c.api.Get(ctx, fmt.Sprintf("/wp/v2/posts/%d", id), url.Values{"_embed": {"wp:term"}})
	if err != nil {
		return nil, nil, fmt.Errorf("fetch property %d: %w", id, err)
	}
	p, err := FormatProperty(resp.Body, c.api.BaseURL())
	if err != nil {
		return nil, resp.Body, err
	}
	if p == nil {
		return nil, resp.Body, fmt.Errorf("fetch property %d: %w", id, ErrNotFound)
	}
	return p, resp.Body, nil
}

// FeaturedProperties asks for featured posts and keeps those flagged
// featured. With none, it falls back to the most recent posts.
func (c *Client) FeaturedProperties(ctx context.Context, count int) ([]Property, error) {
	if count <= 0 {
		count = DefaultFeaturedCount
	}
	props, _, _, err := c.ListProperties(ctx, PropertyQuery{PerPage: count, Featured: true})
	if err != nil {
		return nil, fmt.Errorf("featured properties: %w", err)
	}
	featured := make([]Property, 0, len(props))
	for _, p := range props {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	if len(featured) > 0 {
		return featured, nil
	}

	c.log.Debug("no featured properties, falling back to recent")
	recent, _, _, err := c.ListProperties(ctx, PropertyQuery{PerPage: count, OrderBy: "date", Order: "desc"})
	if err != nil {
		return nil, fmt.Errorf("recent properties: %w", err)
	}
	return recent, nil
}

// RelatedProperties shares p's first property type, or its first location
// when it has no type. p itself is never returned.
func (c *Client) RelatedProperties(ctx context.Context, p Property, limit int) ([]Property, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	q := PropertyQuery{PerPage: limit + 1, Exclude: []int64{p.ID}}
	switch {
	case len(p.PropertyTypes) > 0:
		q.PropertyType = p.PropertyTypes[0].ID
	case len(p.Locations) > 0:
		q.Location = p.Locations[0].ID
	}
	props, _, _, err := c.ListProperties(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("related properties for %d: %w", p.ID, err)
	}
	out := make([]Property, 0, limit)
	for _, r := range props {
		if r.ID == p.ID {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (c *Client) Amenities(ctx context.Context) ([]Term, error) {
	return c.terms(ctx, "/wp/v2/amenity")
}

func (c *Client) PropertyTypes(ctx context.Context) ([]Term, error) {
	return c.terms(ctx, "/wp/v2/propertytype")
}

func (c *Client) Locations(ctx context.Context) ([]Term, error) {
	return c.terms(ctx, "/wp/v2/location")
}

func (c *Client) terms(ctx context.Context, path string) ([]Term, error) {
	resp, err := c.api.Get(ctx, path, url.Values{"per_page": {"100"}})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	return FormatTerms(resp.Body)
}
