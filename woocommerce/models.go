package woocommerce

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/yourorg/listings-api/internal/upstream"
)

type Image struct {
	ID   int64  `json:"id"`
	Src  string `json:"src"`
	Name string `json:"name,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

// Attribute is a product attribute (Options) or a variation's chosen value
// (Option).
type Attribute struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Option    string   `json:"option,omitempty"`
	Options   []string `json:"options,omitempty"`
	Visible   bool     `json:"visible,omitempty"`
	Variation bool     `json:"variation,omitempty"`
}

// Category is used for product categories, brands and tags.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Parent      int64  `json:"parent"`
	Description string `json:"description,omitempty"`
	Count       int    `json:"count,omitempty"`
	Image       *Image `json:"image,omitempty"`
}

type MetaData struct {
	ID    int64  `json:"id"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type Variation struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	SKU            string      `json:"sku"`
	Price          float64     `json:"price"`
	RegularPrice   float64     `json:"regular_price"`
	SalePrice      float64     `json:"sale_price"`
	OnSale         bool        `json:"on_sale"`
	Image          *Image      `json:"image"`
	Attributes     []Attribute `json:"attributes"`
	MetaData       []MetaData  `json:"meta_data"`
	StockStatus    string      `json:"stock_status"`
	Purchasable    bool        `json:"purchasable"`
	DateCreated    string      `json:"date_created"`
	DateModified   string      `json:"date_modified"`
	FormattedPrice string      `json:"formatted_price"`
}

type PriceRange struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Formatted string  `json:"formatted"`
}

// Project is a WooCommerce product with its variations and the derived
// pricing fields the project pages render.
type Project struct {
	ID               int64       `json:"id"`
	Name             string      `json:"name"`
	Slug             string      `json:"slug"`
	Permalink        string      `json:"permalink"`
	Type             string      `json:"type"`
	Status           string      `json:"status"`
	Featured         bool        `json:"featured"`
	Description      string      `json:"description"`
	ShortDescription string      `json:"short_description"`
	Price            float64     `json:"price"`
	RegularPrice     float64     `json:"regular_price"`
	SalePrice        float64     `json:"sale_price"`
	OnSale           bool        `json:"on_sale"`
	Images           []Image     `json:"images"`
	Attributes       []Attribute `json:"attributes"`
	Variations       []Variation `json:"variations"`
	Categories       []Category  `json:"categories"`
	Brands           []Category  `json:"brands"`
	Tags             []Category  `json:"tags"`
	MetaData         []MetaData  `json:"meta_data"`
	DateCreated      string      `json:"date_created"`
	DateModified     string      `json:"date_modified"`
	StockStatus      string      `json:"stock_status"`
	Purchasable      bool        `json:"purchasable"`

	PriceRange           PriceRange `json:"price_range"`
	HasPriceRange        bool       `json:"has_price_range"`
	DisplayPrice         string     `json:"display_price"`
	ConfigurationOptions []string   `json:"configuration_options"`
	VariationCount       int        `json:"variation_count"`
	HasVariations        bool       `json:"has_variations"`
}

// InCategory reports whether any of the project's categories has id.
func (p Project) InCategory(id int64) bool {
	for _, c := range p.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

type Pagination = upstream.Pagination

type ProductQuery struct {
	Page     int
	PerPage  int
	Search   string
	Category int64
	Brand    int64
	Featured bool
	OrderBy  string
	Order    string
}

const (
	defaultPerPage = 12
	maxPerPage     = 100
)

func (q ProductQuery) Normalized() ProductQuery {
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

func (q ProductQuery) Values() url.Values {
	q = q.Normalized()
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("per_page", strconv.Itoa(q.PerPage))
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.Category > 0 {
		v.Set("category", upstream.Itoa(q.Category))
	}
	if q.Brand > 0 {
		v.Set("brand", upstream.Itoa(q.Brand))
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
	return v
}

func (q ProductQuery) CacheKey() string { return q.Values().Encode() }
