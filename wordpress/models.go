package wordpress

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/yourorg/listings-api/internal/upstream"
)

// Term is an embedded taxonomy term (amenity, location, property type).
type Term struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Taxonomy    string `json:"taxonomy,omitempty"`
	Description string `json:"description,omitempty"`
	Parent      int64  `json:"parent,omitempty"`
	Count       int    `json:"count,omitempty"`
	Link        string `json:"link,omitempty"`
}

type Taxonomies struct {
	Amenities     []Term `json:"amenities"`
	Locations     []Term `json:"locations"`
	PropertyTypes []Term `json:"propertyTypes"`
}

// Property is the flat shape every listing page renders.
type Property struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Price        float64        `json:"price"`
	DisplayPrice string         `json:"displayPrice"`
	Address      string         `json:"address"`
	Area         float64        `json:"area"`
	Images       []string       `json:"images"`
	Content      string         `json:"content"`
	Excerpt      string         `json:"excerpt"`
	Date         string         `json:"date"`
	DateGMT      string         `json:"dateGmt,omitempty"`
	Modified     string         `json:"modified"`
	Slug         string         `json:"slug"`
	Link         string         `json:"link"`
	Featured     bool           `json:"featured"`
	ACF          map[string]any `json:"acf,omitempty"`

	Amenities     []Term `json:"amenities"`
	Locations     []Term `json:"locations"`
	PropertyTypes []Term `json:"propertyTypes"`
}

// PostedAt is the publish time in UTC. WordPress "date" is site-local, so
// date_gmt wins when present.
func (p Property) PostedAt() string {
	if p.DateGMT != "" {
		return p.DateGMT
	}
	return p.Date
}

// HasTerm reports whether id is among terms.
func HasTerm(terms []Term, id int64) bool {
	for _, t := range terms {
		if t.ID == id {
			return true
		}
	}
	return false
}

type Pagination = upstream.Pagination

// PropertyQuery maps onto /wp/v2/posts query parameters. Zero values are
// omitted from the request.
type PropertyQuery struct {
	Page         int
	PerPage      int
	Search       string
	PropertyType int64
	Location     int64
	Amenity      int64
	MinPrice     float64
	MaxPrice     float64
	Featured     bool
	OrderBy      string
	Order        string
	Exclude      []int64
}

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// Normalized fills in the default page and page size and caps the size.
func (q PropertyQuery) Normalized() PropertyQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}
	return q
}

// Values encodes the query; page and per_page are always present.
func (q PropertyQuery) Values() url.Values {
	q = q.Normalized()
	v := url.Values{}
	v.Set("_embed", "wp:term")
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("per_page", strconv.Itoa(q.PerPage))
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.PropertyType > 0 {
		v.Set("propertytype", upstream.Itoa(q.PropertyType))
	}
	if q.Location > 0 {
		v.Set("location", upstream.Itoa(q.Location))
	}
	if q.Amenity > 0 {
		v.Set("amenity", upstream.Itoa(q.Amenity))
	}
	if q.MinPrice > 0 {
		v.Set("min_price", strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice > 0 {
		v.Set("max_price", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	if q.Featured {
		v.Set("featured", "true")
	}
	if q.OrderBy != "" {
		v.Set("orderby", q.OrderBy)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if len(q.Exclude) > 0 {
		ids := make([]string, 0, len(q.Exclude))
		for _, id := range q.Exclude {
			ids = append(ids, upstream.Itoa(id))
		}
		v.Set("exclude", strings.Join(ids, ","))
	}
	return v
}

// CacheKey is a stable identifier for the query, used for cache keys.
func (q PropertyQuery) CacheKey() string {
	return q.Values().Encode()
}
