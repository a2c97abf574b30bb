// Package seo builds page metadata and schema.org structured data as JSON
// for the front-end to inject.
package seo

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yourorg/listings-api/internal/canon"
	"github.com/yourorg/listings-api/wordpress"
)

const (
	DescriptionMax = 160
	Locale         = "en_IN"

	KeywordsProperties = "real estate, properties, homes for sale, property listings"
	KeywordsProperty   = "real estate, property, home for sale, property details"
	KeywordsProjects   = "developer projects, residential projects, new launches, real estate"
)

// Site carries the per-deployment values every page shares.
type Site struct {
	Name         string
	URL          string
	Description  string
	DefaultImage string
	Phone        string
	SameAs       []string
}

// Meta is the bundle a page needs for its head tags.
type Meta struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Keywords       string   `json:"keywords,omitempty"`
	Canonical      string   `json:"canonical"`
	Image          string   `json:"image,omitempty"`
	Type           string   `json:"type"`
	SiteName       string   `json:"siteName"`
	Locale         string   `json:"locale"`
	Robots         string   `json:"robots"`
	StructuredData []Schema `json:"structuredData,omitempty"`
}

// PageTitle appends the site name: "About | Site". An empty title yields
// the site name alone.
func (s Site) PageTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return s.Name
	}
	return title + " | " + s.Name
}

// MetaDescription strips markup and cuts to max runes, ending in "..." when
// it had to cut. Empty input falls back to the site description.
func (s Site) MetaDescription(desc string, max int) string {
	text := canon.StripHTML(desc)
	if text == "" {
		return s.Description
	}
	if max <= 3 {
		max = DescriptionMax
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	return canon.Truncate(text, max-3, "...")
}

// CanonicalURL joins path onto the site URL. Absolute URLs pass through.
func (s Site) CanonicalURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(s.URL, "/") + path
}

// PropertyImage is the first gallery image at full size, else the default
// image.
func (s Site) PropertyImage(p *wordpress.Property) string {
	if p != nil {
		for _, img := range p.Images {
			if img = strings.TrimSpace(img); img != "" {
				return wordpress.FullSizeURL(img)
			}
		}
	}
	return s.CanonicalURL(s.DefaultImage)
}

// Keywords appends the lowercased term names to base, skipping repeats.
func Keywords(base string, groups ...[]wordpress.Term) string {
	var parts []string
	seen := map[string]bool{}
	add := func(k string) {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && !seen[k] {
			seen[k] = true
			parts = append(parts, k)
		}
	}
	for _, k := range strings.Split(base, ",") {
		add(k)
	}
	for _, g := range groups {
		for _, t := range g {
			add(t.Name)
		}
	}
	return strings.Join(parts, ", ")
}

// PropertyPath is /property/{id}/{slug}, with the slug derived from the
// title. A property without an id links to the listing page.
func PropertyPath(p *wordpress.Property) string {
	if p == nil || p.ID <= 0 {
		return "/properties"
	}
	slug := canon.Slugify(p.Title)
	if slug == "" {
		slug = "property"
	}
	return "/property/" + strconv.FormatInt(p.ID, 10) + "/" + slug
}

func ProjectPath(id int64) string {
	if id <= 0 {
		return "/projects"
	}
	return "/projects/" + strconv.FormatInt(id, 10)
}

// SearchPath is /properties with the filter query attached.
func SearchPath(q url.Values) string {
	if enc := q.Encode(); enc != "" {
		return "/properties?" + enc
	}
	return "/properties"
}
