package seo

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/listings-api/woocommerce"
	"github.com/yourorg/listings-api/wordpress"
)

var site = Site{
	Name:         "Nashik Properties",
	URL:          "https://example.com/",
	Description:  "Premium real estate listings in Nashik",
	DefaultImage: "/default-property.jpg",
	Phone:        "+91-9800000000",
}

func TestPageTitleAndDescription(t *testing.T) {
	assert.Equal(t, "About | Nashik Properties", site.PageTitle("About"))
	assert.Equal(t, "Nashik Properties", site.PageTitle("  "))

	assert.Equal(t, site.Description, site.MetaDescription("<p></p>", 160))
	assert.Equal(t, "Bright flat", site.MetaDescription("<p>Bright <b>flat</b></p>", 160))

	long := strings.Repeat("a", 200)
	got := site.MetaDescription(long, 160)
	assert.Len(t, got, 160)
	assert.True(t, strings.HasSuffix(got, "..."))

	exact := strings.Repeat("b", 160)
	assert.Equal(t, exact, site.MetaDescription(exact, 160))
}

func TestURLs(t *testing.T) {
	assert.Equal(t, "https://example.com/about", site.CanonicalURL("/about"))
	assert.Equal(t, "https://example.com/about", site.CanonicalURL("about"))
	assert.Equal(t, "https://cdn.example.com/x.jpg", site.CanonicalURL("https://cdn.example.com/x.jpg"))

	assert.Equal(t, "/property/12/sunrise-heights-2bhk", PropertyPath(&wordpress.Property{ID: 12, Title: "Sunrise Heights 2BHK!"}))
	assert.Equal(t, "/property/12/property", PropertyPath(&wordpress.Property{ID: 12}))
	assert.Equal(t, "/properties", PropertyPath(nil))
	assert.Equal(t, "/properties?location=4&search=villa", SearchPath(url.Values{"search": {"villa"}, "location": {"4"}}))
	assert.Equal(t, "/properties", SearchPath(nil))
}

func TestPropertyImage(t *testing.T) {
	p := &wordpress.Property{Images: []string{"", "https://cms.example.com/wp-content/uploads/a-300x200.jpg"}}
	assert.Equal(t, "https://cms.example.com/wp-content/uploads/a.jpg", site.PropertyImage(p))
	assert.Equal(t, "https://example.com/default-property.jpg", site.PropertyImage(&wordpress.Property{}))
}

func TestKeywords(t *testing.T) {
	got := Keywords("real estate, Property",
		[]wordpress.Term{{Name: "Villa"}},
		[]wordpress.Term{{Name: "Nashik"}, {Name: "villa"}})
	assert.Equal(t, "real estate, property, villa, nashik", got)
}

func TestPropertyMeta(t *testing.T) {
	p := &wordpress.Property{
		ID: 7, Title: "Green Villa", Description: "Garden home", Price: 4500000, Area: 1200,
		Address: "Gangapur Road", Date: "2024-02-01T10:00:00",
		Locations: []wordpress.Term{{ID: 1, Name: "Nashik"}},
	}
	m := site.PropertyMeta(p, time.Now())

	assert.Equal(t, "Green Villa - ₹45,00,000 | Nashik Properties", m.Title)
	assert.Equal(t, "https://example.com/property/7/green-villa", m.Canonical)
	assert.Equal(t, "article", m.Type)
	assert.Contains(t, m.Keywords, "nashik")
	require.Len(t, m.StructuredData, 2)

	listing := m.StructuredData[0]
	assert.Equal(t, "RealEstateListing", listing["@type"])
	assert.Equal(t, "2024-02-01T10:00:00", listing["datePosted"])

	raw, err := json.Marshal(m.StructuredData[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"@context": "https://schema.org",
		"@type": "BreadcrumbList",
		"itemListElement": [
			{"@type": "ListItem", "position": 1, "name": "Home", "item": "https://example.com/"},
			{"@type": "ListItem", "position": 2, "name": "Properties", "item": "https://example.com/properties"},
			{"@type": "ListItem", "position": 3, "name": "Green Villa", "item": "https://example.com/property/7/green-villa"}
		]
	}`, string(raw))
}

func TestProjectSchema(t *testing.T) {
	p := &woocommerce.Project{
		ID: 3, Name: "Skyline", ShortDescription: "<p>2 &amp; 3 BHK</p>",
		Images:         []woocommerce.Image{{Src: "https://cdn/x.jpg"}},
		PriceRange:     woocommerce.PriceRange{Min: 3000000, Max: 5000000},
		VariationCount: 2,
	}
	s := site.ProjectSchema(p)
	assert.Equal(t, "Product", s["@type"])
	assert.Equal(t, "2 & 3 BHK", s["description"])
	offers, ok := s["offers"].(Schema)
	require.True(t, ok)
	assert.Equal(t, "AggregateOffer", offers["@type"])
	assert.Equal(t, 3000000.0, offers["lowPrice"])

	plain := site.ProjectSchema(&woocommerce.Project{ID: 4, Name: "Plot", Price: 900000, StockStatus: "outofstock"})
	offers = plain["offers"].(Schema)
	assert.Equal(t, "Offer", offers["@type"])
	assert.Equal(t, "https://schema.org/OutOfStock", offers["availability"])

	assert.Nil(t, site.ProjectSchema(nil))
	assert.Nil(t, site.BreadcrumbSchema(nil))
}

func TestListingMeta(t *testing.T) {
	m := site.PropertiesMeta(3, url.Values{"search": {"villa"}})
	assert.Equal(t, "Properties - Villa | Nashik Properties", m.Title)
	assert.True(t, strings.HasPrefix(m.Description, "Browse 3 premium properties."))
	assert.Equal(t, "https://example.com/properties?search=villa", m.Canonical)

	home := site.PageMeta("Home", "", "", "/")
	require.Len(t, home.StructuredData, 2)
	assert.Equal(t, "WebSite", home.StructuredData[1]["@type"])
	assert.Equal(t, site.Description, home.Description)
}
