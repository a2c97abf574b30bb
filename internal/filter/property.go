// Package filter narrows already-fetched listings the way the listing pages
// do, and round-trips the filter state through URL query strings.
package filter

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/yourorg/listings-api/internal/canon"
	"github.com/yourorg/listings-api/wordpress"
)

// PropertyFilter is the property search state. Zero fields do not filter.
type PropertyFilter struct {
	Search       string  `json:"search,omitempty"`
	PropertyType int64   `json:"type,omitempty"`
	Location     int64   `json:"location,omitempty"`
	Amenities    []int64 `json:"amenities,omitempty"`
	MinPrice     float64 `json:"minPrice,omitempty"`
	MaxPrice     float64 `json:"maxPrice,omitempty"`
	MinArea      float64 `json:"minArea,omitempty"`
	MaxArea      float64 `json:"maxArea,omitempty"`
}

// ParsePropertyFilter reads search, type, location, amenities, minPrice,
// maxPrice, minArea and maxArea. Values that do not parse are ignored.
func ParsePropertyFilter(q url.Values) PropertyFilter {
	return PropertyFilter{
		Search:       strings.TrimSpace(q.Get("search")),
		PropertyType: parseID(q.Get("type")),
		Location:     parseID(q.Get("location")),
		Amenities:    parseIDList(q["amenities"]),
		MinPrice:     parseAmount(q.Get("minPrice")),
		MaxPrice:     parseAmount(q.Get("maxPrice")),
		MinArea:      parseAmount(q.Get("minArea")),
		MaxArea:      parseAmount(q.Get("maxArea")),
	}
}

func (f PropertyFilter) IsActive() bool {
	return f.Search != "" || f.PropertyType > 0 || f.Location > 0 || len(f.Amenities) > 0 ||
		f.MinPrice > 0 || f.MaxPrice > 0 || f.MinArea > 0 || f.MaxArea > 0
}

// Values encodes the filter with the same keys ParsePropertyFilter reads.
func (f PropertyFilter) Values() url.Values {
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	setID(v, "type", f.PropertyType)
	setID(v, "location", f.Location)
	if len(f.Amenities) > 0 {
		ids := make([]string, 0, len(f.Amenities))
		for _, id := range f.Amenities {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		v.Set("amenities", strings.Join(ids, ","))
	}
	setAmount(v, "minPrice", f.MinPrice)
	setAmount(v, "maxPrice", f.MaxPrice)
	setAmount(v, "minArea", f.MinArea)
	setAmount(v, "maxArea", f.MaxArea)
	return v
}

// Match applies every active criterion. Search is a case-insensitive
// substring match on title, description or address with markup removed.
func (f PropertyFilter) Match(p wordpress.Property) bool {
	if f.Search != "" {
		if !canon.Contains(p.Title, f.Search) &&
			!canon.Contains(canon.StripHTML(p.Description), f.Search) &&
			!canon.Contains(p.Address, f.Search) {
			return false
		}
	}
	if f.PropertyType > 0 && !wordpress.HasTerm(p.PropertyTypes, f.PropertyType) {
		return false
	}
	if f.Location > 0 && !wordpress.HasTerm(p.Locations, f.Location) {
		return false
	}
	if f.MinPrice > 0 && p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	if f.MinArea > 0 && p.Area < f.MinArea {
		return false
	}
	if f.MaxArea > 0 && p.Area > f.MaxArea {
		return false
	}
	for _, id := range f.Amenities {
		if !wordpress.HasTerm(p.Amenities, id) {
			return false
		}
	}
	return true
}

// Apply returns the matching properties in their original order.
func (f PropertyFilter) Apply(props []wordpress.Property) []wordpress.Property {
	out := make([]wordpress.Property, 0, len(props))
	for _, p := range props {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// CollectTaxonomies gathers the distinct terms present on props, in the
// order they first appear.
func CollectTaxonomies(props []wordpress.Property) wordpress.Taxonomies {
	tax := wordpress.Taxonomies{
		Amenities:     []wordpress.Term{},
		Locations:     []wordpress.Term{},
		PropertyTypes: []wordpress.Term{},
	}
	seenA, seenL, seenT := map[int64]bool{}, map[int64]bool{}, map[int64]bool{}
	for _, p := range props {
		tax.Amenities = collect(tax.Amenities, p.Amenities, seenA)
		tax.Locations = collect(tax.Locations, p.Locations, seenL)
		tax.PropertyTypes = collect(tax.PropertyTypes, p.PropertyTypes, seenT)
	}
	return tax
}

func collect(dst, terms []wordpress.Term, seen map[int64]bool) []wordpress.Term {
	for _, t := range terms {
		if !seen[t.ID] {
			seen[t.ID] = true
			dst = append(dst, t)
		}
	}
	return dst
}
