package seo

import (
	"net/url"
	"strconv"
	"time"

	"github.com/yourorg/listings-api/internal/canon"
	"github.com/yourorg/listings-api/internal/format"
	"github.com/yourorg/listings-api/woocommerce"
	"github.com/yourorg/listings-api/wordpress"
)

func (s Site) meta(title, desc, keywords, path, kind string) Meta {
	return Meta{
		Title:       s.PageTitle(title),
		Description: s.MetaDescription(desc, DescriptionMax),
		Keywords:    keywords,
		Canonical:   s.CanonicalURL(path),
		Image:       s.CanonicalURL(s.DefaultImage),
		Type:        kind,
		SiteName:    s.Name,
		Locale:      Locale,
		Robots:      "index, follow",
	}
}

// PageMeta covers static pages.
func (s Site) PageMeta(title, desc, keywords, path string) Meta {
	m := s.meta(title, desc, keywords, path, "website")
	m.StructuredData = []Schema{s.OrganizationSchema()}
	if path == "/" {
		m.StructuredData = append(m.StructuredData, s.WebSiteSchema())
	}
	return m
}

// PropertiesMeta describes a listing page showing count results for q.
func (s Site) PropertiesMeta(count int, q url.Values) Meta {
	title := "Properties"
	if search := q.Get("search"); search != "" {
		title += " - " + canon.CapitalizeWords(search)
	}
	desc := "Browse " + strconv.Itoa(count) + " premium properties. Find your perfect home with our advanced search and filtering options."
	m := s.meta(title, desc, KeywordsProperties, SearchPath(q), "website")
	m.StructuredData = []Schema{s.OrganizationSchema()}
	return m
}

// PropertyMeta describes a property detail page. The title carries the
// formatted price when there is one.
func (s Site) PropertyMeta(p *wordpress.Property, now time.Time) Meta {
	title := p.Title
	if p.Price > 0 {
		title += " - " + format.Currency(p.Price, false)
	}
	path := PropertyPath(p)
	m := s.meta(title, p.Description, Keywords(KeywordsProperty, p.PropertyTypes, p.Locations, p.Amenities), path, "article")
	m.Image = s.PropertyImage(p)
	m.StructuredData = []Schema{
		s.PropertySchema(p, now),
		s.BreadcrumbSchema([]Crumb{
			{Name: "Home", Path: "/"},
			{Name: "Properties", Path: "/properties"},
			{Name: p.Title, Path: path},
		}),
	}
	return m
}

func (s Site) ProjectsMeta(count int, q url.Values) Meta {
	title := "Developer Projects"
	if search := q.Get("search"); search != "" {
		title += " - " + canon.CapitalizeWords(search)
	}
	desc := "Browse " + strconv.Itoa(count) + " premium residential projects by top developers. Find your dream home with various configurations and amenities."
	path := "/projects"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	m := s.meta(title, desc, KeywordsProjects, path, "website")
	m.StructuredData = []Schema{s.OrganizationSchema()}
	return m
}

func (s Site) ProjectMeta(p *woocommerce.Project) Meta {
	path := ProjectPath(p.ID)
	m := s.meta(p.Name, firstNonEmpty(p.ShortDescription, p.Description), KeywordsProjects, path, "product")
	if len(p.Images) > 0 && p.Images[0].Src != "" {
		m.Image = p.Images[0].Src
	}
	m.StructuredData = []Schema{
		s.ProjectSchema(p),
		s.BreadcrumbSchema([]Crumb{
			{Name: "Home", Path: "/"},
			{Name: "Projects", Path: "/projects"},
			{Name: p.Name, Path: path},
		}),
	}
	return m
}
