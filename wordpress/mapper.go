package wordpress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/yourorg/listings-api/internal/canon"
	"github.com/yourorg/listings-api/internal/format"
	"github.com/yourorg/listings-api/internal/upstream"
)

const untitled = "Untitled Property"

type rawTerm struct {
	ID          int64           `json:"id"`
	Name        upstream.String `json:"name"`
	Slug        upstream.String `json:"slug"`
	Taxonomy    upstream.String `json:"taxonomy"`
	Description upstream.String `json:"description"`
	Parent      int64           `json:"parent"`
	Count       int             `json:"count"`
	Link        upstream.String `json:"link"`
}

func (t rawTerm) term() Term {
	return Term{
		ID:          t.ID,
		Name:        html.UnescapeString(string(t.Name)),
		Slug:        string(t.Slug),
		Taxonomy:    string(t.Taxonomy),
		Description: string(t.Description),
		Parent:      t.Parent,
		Count:       t.Count,
		Link:        string(t.Link),
	}
}

// rawImage is a gallery entry: an object with one of several URL keys, or a
// bare URL string.
type rawImage struct{ url string }

func (i *rawImage) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	i.url = ""
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		_ = json.Unmarshal(b, &s)
		i.url = strings.TrimSpace(s)
	case '{':
		var obj struct {
			FullImageURL upstream.String `json:"full_image_url"`
			URL          upstream.String `json:"url"`
			Src          upstream.String `json:"src"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil
		}
		for _, u := range []upstream.String{obj.FullImageURL, obj.URL, obj.Src} {
			if s := strings.TrimSpace(string(u)); s != "" {
				i.url = s
				break
			}
		}
	}
	return nil
}

// rawGallery decodes photo_gallery, whose images are a list of groups (or a
// flat list) and which ACF sends as false when empty.
type rawGallery struct{ urls []string }

func (g *rawGallery) UnmarshalJSON(b []byte) error {
	g.urls = nil
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	var obj struct {
		Images json.RawMessage `json:"images"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(obj.Images, &items); err != nil {
		return nil
	}
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '[' {
			var group []rawImage
			if err := json.Unmarshal(item, &group); err != nil {
				continue
			}
			for _, img := range group {
				if img.url != "" {
					g.urls = append(g.urls, img.url)
				}
			}
			continue
		}
		var img rawImage
		if err := json.Unmarshal(item, &img); err == nil && img.url != "" {
			g.urls = append(g.urls, img.url)
		}
	}
	return nil
}

type rawACF struct {
	Description  upstream.String `json:"description"`
	Price        upstream.Number `json:"price"`
	Address      upstream.String `json:"address"`
	Area         upstream.Number `json:"area"`
	Featured     upstream.Bool   `json:"featured"`
	PhotoGallery rawGallery      `json:"photo_gallery"`
}

type rawPost struct {
	ID            int64             `json:"id"`
	Date          upstream.String   `json:"date"`
	DateGMT       upstream.String   `json:"date_gmt"`
	Modified      upstream.String   `json:"modified"`
	Slug          upstream.String   `json:"slug"`
	Link          upstream.String   `json:"link"`
	Title         upstream.Rendered `json:"title"`
	Content       upstream.Rendered `json:"content"`
	Excerpt       upstream.Rendered `json:"excerpt"`
	FeaturedMedia int64             `json:"featured_media"`
	ACF           json.RawMessage   `json:"acf"`
	Embedded      struct {
		Terms         []json.RawMessage `json:"wp:term"`
		FeaturedMedia []struct {
			SourceURL upstream.String `json:"source_url"`
		} `json:"wp:featuredmedia"`
	} `json:"_embedded"`
}

// FormatProperty normalizes one /wp/v2/posts document. mediaBase is the REST
// root used to build a media URL when only featured_media is known.
func FormatProperty(raw []byte, mediaBase string) (*Property, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var p rawPost
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}
	prop := p.format(mediaBase)
	return &prop, nil
}

// FormatProperties normalizes a /wp/v2/posts collection.
func FormatProperties(raw []byte, mediaBase string) ([]Property, error) {
	var posts []rawPost
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	out := make([]Property, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.format(mediaBase))
	}
	return out, nil
}

func (p rawPost) format(mediaBase string) Property {
	var acf rawACF
	var fields map[string]any
	if a := bytes.TrimSpace(p.ACF); len(a) > 0 && a[0] == '{' {
		_ = json.Unmarshal(a, &acf)
		_ = json.Unmarshal(a, &fields)
	}

	title := strings.TrimSpace(html.UnescapeString(string(p.Title)))
	if title == "" {
		title = untitled
	}
	description := string(acf.Description)
	if strings.TrimSpace(description) == "" {
		description = string(p.Excerpt)
	}

	tax := extractTaxonomies(p.Embedded.Terms)
	price := float64(acf.Price)

	prop := Property{
		ID:            p.ID,
		Title:         title,
		Description:   description,
		Price:         price,
		DisplayPrice:  displayPrice(price),
		Address:       strings.TrimSpace(string(acf.Address)),
		Area:          float64(acf.Area),
		Images:        p.images(acf, mediaBase),
		Content:       canon.SanitizeHTML(string(p.Content)),
		Excerpt:       string(p.Excerpt),
		Date:          string(p.Date),
		DateGMT:       string(p.DateGMT),
		Modified:      string(p.Modified),
		Slug:          string(p.Slug),
		Link:          string(p.Link),
		Featured:      bool(acf.Featured) || hasFeaturedTerm(p.Embedded.Terms),
		ACF:           fields,
		Amenities:     tax.Amenities,
		Locations:     tax.Locations,
		PropertyTypes: tax.PropertyTypes,
	}
	return prop
}

func displayPrice(v float64) string {
	if v <= 0 {
		return format.PriceOnRequest
	}
	return format.Currency(v, false)
}

func (p rawPost) images(acf rawACF, mediaBase string) []string {
	out := make([]string, 0, len(acf.PhotoGallery.urls)+1)
	seen := map[string]bool{}
	for _, u := range acf.PhotoGallery.urls {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, m := range p.Embedded.FeaturedMedia {
		if u := strings.TrimSpace(string(m.SourceURL)); u != "" {
			return append(out, u)
		}
	}
	if p.FeaturedMedia > 0 && mediaBase != "" {
		out = append(out, fmt.Sprintf("%s/wp/v2/media/%d", strings.TrimRight(mediaBase, "/"), p.FeaturedMedia))
	}
	return out
}

// ExtractTaxonomies reads the embedded wp:term groups of a single post.
func ExtractTaxonomies(raw []byte) (Taxonomies, error) {
	var p struct {
		Embedded struct {
			Terms []json.RawMessage `json:"wp:term"`
		} `json:"_embedded"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return emptyTaxonomies(), fmt.Errorf("decode post terms: %w", err)
	}
	return extractTaxonomies(p.Embedded.Terms), nil
}

func emptyTaxonomies() Taxonomies {
	return Taxonomies{Amenities: []Term{}, Locations: []Term{}, PropertyTypes: []Term{}}
}

type taxonomyKind int

const (
	kindOther taxonomyKind = iota
	kindAmenity
	kindLocation
	kindPropertyType
)

func classify(taxonomy string) taxonomyKind {
	switch strings.ToLower(strings.TrimSpace(taxonomy)) {
	case "amenity", "amenities":
		return kindAmenity
	case "location", "locations":
		return kindLocation
	case "propertytype", "property-type", "property_type", "propertytypes":
		return kindPropertyType
	}
	return kindOther
}

// positional layout of wp:term when terms carry no taxonomy field:
// 0 categories, 1 tags, 2 amenities, 3 locations, 4 property types.
func positional(i int) taxonomyKind {
	switch i {
	case 2:
		return kindAmenity
	case 3:
		return kindLocation
	case 4:
		return kindPropertyType
	}
	return kindOther
}

func decodeGroup(raw json.RawMessage) []rawTerm {
	var terms []rawTerm
	if err := json.Unmarshal(raw, &terms); err != nil {
		return nil
	}
	return terms
}

func extractTaxonomies(groups []json.RawMessage) Taxonomies {
	tax := emptyTaxonomies()
	seen := map[taxonomyKind]map[int64]bool{
		kindAmenity: {}, kindLocation: {}, kindPropertyType: {},
	}
	for i, g := range groups {
		for _, rt := range decodeGroup(g) {
			kind := positional(i)
			if rt.Taxonomy != "" {
				kind = classify(string(rt.Taxonomy))
			}
			if kind == kindOther || seen[kind][rt.ID] {
				continue
			}
			seen[kind][rt.ID] = true
			switch kind {
			case kindAmenity:
				tax.Amenities = append(tax.Amenities, rt.term())
			case kindLocation:
				tax.Locations = append(tax.Locations, rt.term())
			case kindPropertyType:
				tax.PropertyTypes = append(tax.PropertyTypes, rt.term())
			}
		}
	}
	return tax
}

func hasFeaturedTerm(groups []json.RawMessage) bool {
	for _, g := range groups {
		for _, t := range decodeGroup(g) {
			if strings.EqualFold(string(t.Slug), "featured") {
				return true
			}
		}
	}
	return false
}

// FormatTerms normalizes a taxonomy collection (/wp/v2/amenity etc.).
func FormatTerms(raw []byte) ([]Term, error) {
	var terms []rawTerm
	if err := json.Unmarshal(raw, &terms); err != nil {
		return nil, fmt.Errorf("decode terms: %w", err)
	}
	out := make([]Term, 0, len(terms))
	for _, t := range terms {
		out = append(out, t.term())
	}
	return out, nil
}
