package woocommerce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/yourorg/listings-api/internal/canon"
	"github.com/yourorg/listings-api/internal/format"
	"github.com/yourorg/listings-api/internal/upstream"
)

const defaultStockStatus = "instock"

// explicitFalse is set only when the field is the JSON literal false, so a
// missing purchasable flag still reads as purchasable.
type explicitFalse bool

func (f *explicitFalse) UnmarshalJSON(b []byte) error {
	*f = explicitFalse(bytes.Equal(bytes.TrimSpace(b), []byte("false")))
	return nil
}

type rawVariation struct {
	ID           int64           `json:"id"`
	Name         upstream.String `json:"name"`
	Description  upstream.String `json:"description"`
	SKU          upstream.String `json:"sku"`
	Price        upstream.Number `json:"price"`
	RegularPrice upstream.Number `json:"regular_price"`
	SalePrice    upstream.Number `json:"sale_price"`
	OnSale       upstream.Bool   `json:"on_sale"`
	Image        json.RawMessage `json:"image"`
	Attributes   []Attribute     `json:"attributes"`
	MetaData     []MetaData      `json:"meta_data"`
	StockStatus  upstream.String `json:"stock_status"`
	NotForSale   explicitFalse   `json:"purchasable"`
	DateCreated  upstream.String `json:"date_created"`
	DateModified upstream.String `json:"date_modified"`
}

type rawProduct struct {
	ID               int64           `json:"id"`
	Name             upstream.String `json:"name"`
	Slug             upstream.String `json:"slug"`
	Permalink        upstream.String `json:"permalink"`
	Type             upstream.String `json:"type"`
	Status           upstream.String `json:"status"`
	Featured         upstream.Bool   `json:"featured"`
	Description      upstream.String `json:"description"`
	ShortDescription upstream.String `json:"short_description"`
	Price            upstream.Number `json:"price"`
	RegularPrice     upstream.Number `json:"regular_price"`
	SalePrice        upstream.Number `json:"sale_price"`
	OnSale           upstream.Bool   `json:"on_sale"`
	Images           []Image         `json:"images"`
	Attributes       []Attribute     `json:"attributes"`
	Categories       []Category      `json:"categories"`
	Brands           []Category      `json:"brands"`
	Tags             []Category      `json:"tags"`
	MetaData         []MetaData      `json:"meta_data"`
	DateCreated      upstream.String `json:"date_created"`
	DateModified     upstream.String `json:"date_modified"`
	StockStatus      upstream.String `json:"stock_status"`
	NotForSale       explicitFalse   `json:"purchasable"`
}

func (p rawProduct) variable() bool { return string(p.Type) == "variable" }

func decodeImage(raw json.RawMessage) *Image {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var img Image
	if err := json.Unmarshal(raw, &img); err != nil {
		return nil
	}
	return &img
}

func orDefault(s upstream.String, def string) string {
	if v := strings.TrimSpace(string(s)); v != "" {
		return v
	}
	return def
}

// FormatVariation normalizes one /products/{id}/variations entry.
func FormatVariation(raw []byte) (*Variation, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var v rawVariation
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode variation: %w", err)
	}
	out := v.format()
	return &out, nil
}

// FormatVariations normalizes a variations collection.
func FormatVariations(raw []byte) ([]Variation, error) {
	var vs []json.RawMessage
	if err := json.Unmarshal(raw, &vs); err != nil {
		return nil, fmt.Errorf("decode variations: %w", err)
	}
	out := make([]Variation, 0, len(vs))
	for _, item := range vs {
		v, err := FormatVariation(item)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (v rawVariation) format() Variation {
	price := float64(v.Price)
	formatted := format.PriceOnRequest
	if price > 0 {
		formatted = format.Rupees(price)
	}
	return Variation{
		ID:             v.ID,
		Name:           string(v.Name),
		Description:    string(v.Description),
		SKU:            string(v.SKU),
		Price:          price,
		RegularPrice:   float64(v.RegularPrice),
		SalePrice:      float64(v.SalePrice),
		OnSale:         bool(v.OnSale),
		Image:          decodeImage(v.Image),
		Attributes:     nonNil(v.Attributes),
		MetaData:       nonNil(v.MetaData),
		StockStatus:    orDefault(v.StockStatus, defaultStockStatus),
		Purchasable:    !bool(v.NotForSale),
		DateCreated:    string(v.DateCreated),
		DateModified:   string(v.DateModified),
		FormattedPrice: formatted,
	}
}

// FormatProduct normalizes a product and attaches already-formatted
// variations.
func FormatProduct(raw []byte, variations []Variation) (*Project, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var p rawProduct
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	out := p.format(variations)
	return &out, nil
}

func (p rawProduct) format(variations []Variation) Project {
	variations = nonNil(variations)
	pr := CalculatePriceRange(variations)
	return Project{
		ID:               p.ID,
		Name:             string(p.Name),
		Slug:             string(p.Slug),
		Permalink:        string(p.Permalink),
		Type:             string(p.Type),
		Status:           string(p.Status),
		Featured:         bool(p.Featured),
		Description:      canon.SanitizeHTML(string(p.Description)),
		ShortDescription: canon.SanitizeHTML(string(p.ShortDescription)),
		Price:            float64(p.Price),
		RegularPrice:     float64(p.RegularPrice),
		SalePrice:        float64(p.SalePrice),
		OnSale:           bool(p.OnSale),
		Images:           nonNil(p.Images),
		Attributes:       nonNil(p.Attributes),
		Variations:       variations,
		Categories:       nonNil(p.Categories),
		Brands:           nonNil(p.Brands),
		Tags:             nonNil(p.Tags),
		MetaData:         nonNil(p.MetaData),
		DateCreated:      string(p.DateCreated),
		DateModified:     string(p.DateModified),
		StockStatus:      orDefault(p.StockStatus, defaultStockStatus),
		Purchasable:      !bool(p.NotForSale),

		PriceRange:           pr,
		HasPriceRange:        pr.Min > 0 && pr.Max > 0 && pr.Min != pr.Max,
		DisplayPrice:         pr.Formatted,
		ConfigurationOptions: ExtractConfigurationOptions(p.Attributes),
		VariationCount:       len(variations),
		HasVariations:        len(variations) > 0,
	}
}

func positivePrices(vs []Variation) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if v.Price > 0 && !math.IsNaN(v.Price) {
			out = append(out, v.Price)
		}
	}
	return out
}

// CalculatePriceRange spans the positive variation prices.
func CalculatePriceRange(vs []Variation) PriceRange {
	min, max := LowestPrice(vs), HighestPrice(vs)
	return PriceRange{Min: min, Max: max, Formatted: formattedRange(min, max)}
}

func LowestPrice(vs []Variation) float64 {
	prices := positivePrices(vs)
	if len(prices) == 0 {
		return 0
	}
	low := prices[0]
	for _, p := range prices[1:] {
		low = math.Min(low, p)
	}
	return low
}

func HighestPrice(vs []Variation) float64 {
	prices := positivePrices(vs)
	if len(prices) == 0 {
		return 0
	}
	high := prices[0]
	for _, p := range prices[1:] {
		high = math.Max(high, p)
	}
	return high
}

func FormattedPriceRange(vs []Variation) string {
	return formattedRange(LowestPrice(vs), HighestPrice(vs))
}

func formattedRange(min, max float64) string {
	switch {
	case min == 0 && max == 0:
		return format.PriceOnRequest
	case min == max:
		return format.Rupees(min)
	default:
		return format.Rupees(min) + " - " + format.Rupees(max)
	}
}

// ExtractConfigurationOptions returns the options of the first attribute that
// describes the flat configuration (names containing flat, type or bhk).
func ExtractConfigurationOptions(attrs []Attribute) []string {
	for _, a := range attrs {
		name := strings.ToLower(a.Name)
		if strings.Contains(name, "flat") || strings.Contains(name, "type") || strings.Contains(name, "bhk") {
			return nonNil(a.Options)
		}
	}
	return []string{}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// FormatCategories decodes /products/categories and /products/brands.
func FormatCategories(raw []byte) ([]Category, error) {
	var cs []Category
	if err := json.Unmarshal(raw, &cs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return nonNil(cs), nil
}
