package seo

import (
	"time"

	"github.com/yourorg/listings-api/internal/canon"
	"github.com/yourorg/listings-api/woocommerce"
	"github.com/yourorg/listings-api/wordpress"
)

const schemaContext = "https://schema.org"

// Schema is one JSON-LD object.
type Schema map[string]any

type Crumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func (s Site) OrganizationSchema() Schema {
	org := Schema{
		"@context":    schemaContext,
		"@type":       "RealEstateAgent",
		"name":        s.Name,
		"description": s.Description,
		"url":         s.URL,
		"logo":        s.CanonicalURL("/logo.png"),
	}
	if s.Phone != "" {
		org["contactPoint"] = Schema{
			"@type":       "ContactPoint",
			"telephone":   s.Phone,
			"contactType": "Customer Service",
		}
	}
	if len(s.SameAs) > 0 {
		org["sameAs"] = s.SameAs
	}
	return org
}

// WebSiteSchema advertises the property search as a SearchAction.
func (s Site) WebSiteSchema() Schema {
	return Schema{
		"@context":    schemaContext,
		"@type":       "WebSite",
		"name":        s.Name,
		"url":         s.URL,
		"description": s.Description,
		"publisher": Schema{
			"@type": "RealEstateAgent",
			"name":  s.Name,
		},
		"potentialAction": Schema{
			"@type": "SearchAction",
			"target": Schema{
				"@type":       "EntryPoint",
				"urlTemplate": s.CanonicalURL("/properties?search={search_term_string}"),
			},
			"query-input": "required name=search_term_string",
		},
	}
}

func (s Site) PropertySchema(p *wordpress.Property, now time.Time) Schema {
	if p == nil {
		return nil
	}
	posted := p.Date
	if posted == "" {
		posted = now.UTC().Format(time.RFC3339)
	}
	image := ""
	if len(p.Images) > 0 {
		image = wordpress.FullSizeURL(p.Images[0])
	}
	return Schema{
		"@context":    schemaContext,
		"@type":       "RealEstateListing",
		"name":        p.Title,
		"description": canon.StripHTML(p.Description),
		"url":         s.CanonicalURL(PropertyPath(p)),
		"image":       image,
		"offers": Schema{
			"@type":         "Offer",
			"price":         p.Price,
			"priceCurrency": "INR",
			"availability":  "https://schema.org/InStock",
		},
		"address": Schema{
			"@type":          "PostalAddress",
			"streetAddress":  p.Address,
			"addressCountry": "IN",
		},
		"floorSize": Schema{
			"@type":    "QuantitativeValue",
			"value":    p.Area,
			"unitText": "SQFT",
		},
		"datePosted": posted,
	}
}

// ProjectSchema describes a project as a Product. Projects with variation
// prices get an AggregateOffer spanning them.
func (s Site) ProjectSchema(p *woocommerce.Project) Schema {
	if p == nil {
		return nil
	}
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img.Src != "" {
			images = append(images, img.Src)
		}
	}
	out := Schema{
		"@context":    schemaContext,
		"@type":       "Product",
		"name":        p.Name,
		"description": canon.StripHTML(firstNonEmpty(p.ShortDescription, p.Description)),
		"url":         s.CanonicalURL(ProjectPath(p.ID)),
		"image":       images,
		"brand": Schema{
			"@type": "Organization",
			"name":  s.Name,
		},
	}
	if len(p.Brands) > 0 {
		out["brand"] = Schema{"@type": "Brand", "name": p.Brands[0].Name}
	}
	availability := "https://schema.org/InStock"
	if p.StockStatus != "" && p.StockStatus != "instock" {
		availability = "https://schema.org/OutOfStock"
	}
	switch {
	case p.PriceRange.Min > 0:
		out["offers"] = Schema{
			"@type":         "AggregateOffer",
			"lowPrice":      p.PriceRange.Min,
			"highPrice":     p.PriceRange.Max,
			"offerCount":    p.VariationCount,
			"priceCurrency": "INR",
			"availability":  availability,
		}
	case p.Price > 0:
		out["offers"] = Schema{
			"@type":         "Offer",
			"price":         p.Price,
			"priceCurrency": "INR",
			"availability":  availability,
		}
	}
	return out
}

// BreadcrumbSchema numbers crumbs from 1. No crumbs, no schema.
func (s Site) BreadcrumbSchema(crumbs []Crumb) Schema {
	if len(crumbs) == 0 {
		return nil
	}
	items := make([]Schema, 0, len(crumbs))
	for i, c := range crumbs {
		items = append(items, Schema{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     c.Name,
			"item":     s.CanonicalURL(c.Path),
		})
	}
	return Schema{
		"@context":        schemaContext,
		"@type":           "BreadcrumbList",
		"itemListElement": items,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
