package filter

import (
	"net/url"
	"strings"

	"github.com/yourorg/listings-api/internal/canon"
	"github.com/yourorg/listings-api/woocommerce"
)

// DefaultLocalityWords mark a category as a location even when its slug
// does not say so.
var DefaultLocalityWords = []string{"nashik", "panchavati"}

type ProjectFilter struct {
	Search   string `json:"search,omitempty"`
	Category int64  `json:"category,omitempty"`
	Location int64  `json:"location,omitempty"`
	Featured bool   `json:"featured,omitempty"`
}

func ParseProjectFilter(q url.Values) ProjectFilter {
	return ProjectFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: parseID(q.Get("category")),
		Location: parseID(q.Get("location")),
		Featured: parseBool(q.Get("featured")),
	}
}

func (f ProjectFilter) IsActive() bool {
	return f.Search != "" || f.Category > 0 || f.Location > 0 || f.Featured
}

func (f ProjectFilter) Values() url.Values {
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	setID(v, "category", f.Category)
	setID(v, "location", f.Location)
	if f.Featured {
		v.Set("featured", "true")
	}
	return v
}

// Match checks search against name and both descriptions. Category and
// location are both category IDs on the project.
func (f ProjectFilter) Match(p woocommerce.Project) bool {
	if f.Search != "" {
		if !canon.Contains(p.Name, f.Search) &&
			!canon.Contains(canon.StripHTML(p.Description), f.Search) &&
			!canon.Contains(canon.StripHTML(p.ShortDescription), f.Search) {
			return false
		}
	}
	if f.Category > 0 && !p.InCategory(f.Category) {
		return false
	}
	if f.Location > 0 && !p.InCategory(f.Location) {
		return false
	}
	if f.Featured && !p.Featured {
		return false
	}
	return true
}

func (f ProjectFilter) Apply(projects []woocommerce.Project) []woocommerce.Project {
	out := make([]woocommerce.Project, 0, len(projects))
	for _, p := range projects {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// CategoryGroups splits project categories for the filter sidebar.
type CategoryGroups struct {
	Main      []woocommerce.Category `json:"main"`
	Locations []woocommerce.Category `json:"locations"`
}

// SplitCategories puts top-level categories whose slug does not mention
// "location" in Main. Locations holds categories whose slug mentions
// "location" or whose name contains one of localityWords. A category can
// land in both groups.
func SplitCategories(cats []woocommerce.Category, localityWords []string) CategoryGroups {
	g := CategoryGroups{Main: []woocommerce.Category{}, Locations: []woocommerce.Category{}}
	for _, c := range cats {
		slug := strings.ToLower(c.Slug)
		if !strings.Contains(slug, "location") && c.Parent == 0 {
			g.Main = append(g.Main, c)
		}
		if strings.Contains(slug, "location") || nameHasAny(c.Name, localityWords) {
			g.Locations = append(g.Locations, c)
		}
	}
	return g
}

func nameHasAny(name string, words []string) bool {
	for _, w := range words {
		if w != "" && canon.Contains(name, w) {
			return true
		}
	}
	return false
}
