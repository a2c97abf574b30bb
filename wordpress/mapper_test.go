package wordpress

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return b
}

func TestFormatProperty(t *testing.T) {
	p, err := FormatProperty(loadFixture(t, "post.json"), "https://cms.example.com/wp-json")
	require.NoError(t, err)
	require.NotNil(t, p)

	want := Property{
		ID:           42,
		Title:        "3 BHK Flat – Gangapur Road",
		Description:  "Corner flat with two balconies",
		Price:        4500000,
		DisplayPrice: "₹45,00,000",
		Address:      "Gangapur Road, Nashik",
		Area:         1250,
		Images: []string{
			"https://cms.example.com/wp-content/uploads/a.jpg",
			"https://cms.example.com/wp-content/uploads/b.jpg",
			"https://cms.example.com/wp-content/uploads/c.jpg",
		},
		Content:  "<p>Spacious flat near the river.</p>",
		Excerpt:  "<p>Spacious flat.</p>",
		Date:     "2024-03-01T10:00:00",
		DateGMT:  "2024-03-01T04:30:00",
		Modified: "2024-03-05T12:30:00",
		Slug:     "3-bhk-gangapur-road",
		Link:     "https://cms.example.com/3-bhk-gangapur-road/",
		Featured: true,
		Amenities: []Term{
			{ID: 11, Name: "Gym", Slug: "gym", Taxonomy: "amenity"},
			{ID: 12, Name: "Pool", Slug: "pool", Taxonomy: "amenity"},
		},
		Locations:     []Term{{ID: 21, Name: "Gangapur", Slug: "gangapur", Taxonomy: "location"}},
		PropertyTypes: []Term{{ID: 31, Name: "Flat", Slug: "flat", Taxonomy: "propertytype"}},
	}
	if diff := cmp.Diff(want, *p, cmpopts.IgnoreFields(Property{}, "ACF")); diff != "" {
		t.Errorf("FormatProperty mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Gangapur Road, Nashik", p.ACF["address"])
}

func TestFormatPropertyFallbacks(t *testing.T) {
	raw := []byte(`{
		"id": 7,
		"title": "",
		"excerpt": {"rendered": "Short excerpt"},
		"featured_media": 15,
		"acf": []
	}`)
	p, err := FormatProperty(raw, "https://cms.example.com/wp-json/")
	require.NoError(t, err)

	assert.Equal(t, "Untitled Property", p.Title)
	assert.Equal(t, "Short excerpt", p.Description)
	assert.Zero(t, p.Price)
	assert.Equal(t, "Price on request", p.DisplayPrice)
	assert.Equal(t, []string{"https://cms.example.com/wp-json/wp/v2/media/15"}, p.Images)
	assert.False(t, p.Featured)
	assert.Empty(t, p.Amenities)
	assert.NotNil(t, p.Amenities)
}

func TestFormatPropertyEmbeddedMediaAndStringTitle(t *testing.T) {
	raw := []byte(`{
		"id": 8,
		"title": "Plain title",
		"featured_media": 15,
		"acf": {"price": false, "area": "900 sq ft", "featured": "1", "photo_gallery": false},
		"_embedded": {"wp:featuredmedia": [{"source_url": "https://cdn.example.com/x.jpg"}]}
	}`)
	p, err := FormatProperty(raw, "https://cms.example.com/wp-json")
	require.NoError(t, err)

	assert.Equal(t, "Plain title", p.Title)
	assert.Equal(t, []string{"https://cdn.example.com/x.jpg"}, p.Images)
	assert.Equal(t, 900.0, p.Area)
	assert.True(t, p.Featured)
}

func TestFormatPropertyNull(t *testing.T) {
	p, err := FormatProperty([]byte("null"), "")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestExtractTaxonomiesPositional(t *testing.T) {
	raw := []byte(`{"_embedded": {"wp:term": [
		[{"id": 1, "name": "Uncategorized"}],
		[],
		[{"id": 11, "name": "Gym"}, {"id": 11, "name": "Gym"}],
		[{"id": 21, "name": "Nashik Road"}],
		[{"id": 31, "name": "Villa"}]
	]}}`)
	tax, err := ExtractTaxonomies(raw)
	require.NoError(t, err)

	assert.Equal(t, []Term{{ID: 11, Name: "Gym"}}, tax.Amenities)
	assert.Equal(t, []Term{{ID: 21, Name: "Nashik Road"}}, tax.Locations)
	assert.Equal(t, []Term{{ID: 31, Name: "Villa"}}, tax.PropertyTypes)
}

func TestExtractTaxonomiesMissingEmbedded(t *testing.T) {
	tax, err := ExtractTaxonomies([]byte(`{"id": 1}`))
	require.NoError(t, err)
	assert.Empty(t, tax.Amenities)
	assert.Empty(t, tax.Locations)
	assert.Empty(t, tax.PropertyTypes)
}

func TestMediaHelpers(t *testing.T) {
	u := "https://cms.example.com/wp-content/uploads/2024/03/house-300x200.jpg"
	assert.Equal(t, "https://cms.example.com/wp-content/uploads/2024/03/house.jpg", FullSizeURL(u))
	assert.Equal(t, u+"?w=600&quality=80", OptimizeImageURL(u, 600, 80))
	assert.Equal(t, "https://other.example.com/a.jpg", OptimizeImageURL("https://other.example.com/a.jpg", 600, 80))

	sizes := SizesFor(u)
	assert.Equal(t, u, sizes.Original)
	assert.Equal(t, u+"?w=150&quality=85", sizes.Thumbnail)
	assert.True(t, strings.HasSuffix(sizes.SrcSet, u+"?w=1200&quality=80 1200w"), sizes.SrcSet)
	assert.Empty(t, SizesFor("").SrcSet)
	assert.Equal(t, u+"?w=300&quality=80 300w, "+u+"?w=600&quality=80 600w", SrcSet(u, 300, 600))
}
