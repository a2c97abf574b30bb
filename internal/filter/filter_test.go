package filter

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/listings-api/woocommerce"
	"github.com/yourorg/listings-api/wordpress"
)

func sampleProperties() []wordpress.Property {
	pool := wordpress.Term{ID: 1, Name: "Pool"}
	gym := wordpress.Term{ID: 2, Name: "Gym"}
	nashik := wordpress.Term{ID: 10, Name: "Nashik"}
	pune := wordpress.Term{ID: 11, Name: "Pune"}
	flat := wordpress.Term{ID: 20, Name: "Apartment"}
	villa := wordpress.Term{ID: 21, Name: "Villa"}
	return []wordpress.Property{
		{ID: 100, Title: "Sunrise Apartment", Description: "<p>Bright <b>river</b> view</p>", Address: "College Road",
			Price: 4500000, Area: 950, Amenities: []wordpress.Term{pool, gym}, Locations: []wordpress.Term{nashik}, PropertyTypes: []wordpress.Term{flat}},
		{ID: 101, Title: "Green Villa", Description: "Garden home", Address: "Baner",
			Price: 12000000, Area: 2400, Amenities: []wordpress.Term{pool}, Locations: []wordpress.Term{pune}, PropertyTypes: []wordpress.Term{villa}},
		{ID: 102, Title: "Plot", Description: "", Address: "Panchavati, Nashik",
			Locations: []wordpress.Term{nashik}},
	}
}

func ids(props []wordpress.Property) []int64 {
	out := []int64{}
	for _, p := range props {
		out = append(out, p.ID)
	}
	return out
}

func TestParsePropertyFilter(t *testing.T) {
	q, err := url.ParseQuery("search=+river+&type=20&location=x&amenities=1,2&amenities=2&minPrice=45L&maxPrice=-3&minArea=500")
	require.NoError(t, err)

	got := ParsePropertyFilter(q)
	want := PropertyFilter{Search: "river", PropertyType: 20, Amenities: []int64{1, 2}, MinPrice: 4500000, MinArea: 500}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got.IsActive())
	assert.False(t, PropertyFilter{}.IsActive())

	again := ParsePropertyFilter(got.Values())
	assert.Equal(t, got, again)
}

func TestPropertyFilterApply(t *testing.T) {
	props := sampleProperties()

	cases := []struct {
		name string
		f    PropertyFilter
		want []int64
	}{
		{"empty keeps all", PropertyFilter{}, []int64{100, 101, 102}},
		{"search strips markup", PropertyFilter{Search: "RIVER view"}, []int64{100}},
		{"search address", PropertyFilter{Search: "nashik"}, []int64{102}},
		{"location", PropertyFilter{Location: 10}, []int64{100, 102}},
		{"type", PropertyFilter{PropertyType: 21}, []int64{101}},
		{"all amenities required", PropertyFilter{Amenities: []int64{1, 2}}, []int64{100}},
		{"price bounds inclusive", PropertyFilter{MinPrice: 4500000, MaxPrice: 12000000}, []int64{100, 101}},
		{"missing price counts as zero", PropertyFilter{MaxPrice: 5000000}, []int64{100, 102}},
		{"area", PropertyFilter{MinArea: 1000}, []int64{101}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(tc.f.Apply(props)))
		})
	}
}

func TestCollectTaxonomies(t *testing.T) {
	tax := CollectTaxonomies(sampleProperties())

	names := func(ts []wordpress.Term) []string {
		out := []string{}
		for _, t := range ts {
			out = append(out, t.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Pool", "Gym"}, names(tax.Amenities))
	assert.Equal(t, []string{"Nashik", "Pune"}, names(tax.Locations))
	assert.Equal(t, []string{"Apartment", "Villa"}, names(tax.PropertyTypes))

	empty := CollectTaxonomies(nil)
	assert.NotNil(t, empty.Amenities)
	assert.Empty(t, empty.Amenities)
}

func TestProjectFilter(t *testing.T) {
	projects := []woocommerce.Project{
		{ID: 1, Name: "Skyline Towers", ShortDescription: "<p>2 &amp; 3 BHK</p>", Featured: true,
			Categories: []woocommerce.Category{{ID: 5}, {ID: 9}}},
		{ID: 2, Name: "Riverside", Description: "Quiet homes by the river",
			Categories: []woocommerce.Category{{ID: 6}}},
	}

	f := ParseProjectFilter(url.Values{"search": {"bhk"}, "featured": {"1"}})
	assert.Equal(t, ProjectFilter{Search: "bhk", Featured: true}, f)
	require.Len(t, f.Apply(projects), 1)

	assert.Len(t, ProjectFilter{Search: "river"}.Apply(projects), 1)
	assert.Len(t, ProjectFilter{Category: 5, Location: 9}.Apply(projects), 1)
	assert.Empty(t, ProjectFilter{Category: 6, Location: 9}.Apply(projects))
	assert.Len(t, ProjectFilter{}.Apply(projects), 2)
	assert.Equal(t, "featured=true&location=9", ProjectFilter{Location: 9, Featured: true}.Values().Encode())
}

func TestSplitCategories(t *testing.T) {
	cats := []woocommerce.Category{
		{ID: 1, Name: "Residential", Slug: "residential"},
		{ID: 2, Name: "Locations", Slug: "locations"},
		{ID: 3, Name: "Nashik Road", Slug: "nashik-road", Parent: 2},
		{ID: 4, Name: "Panchavati", Slug: "panchavati"},
		{ID: 5, Name: "Villas", Slug: "villas", Parent: 1},
	}
	g := SplitCategories(cats, DefaultLocalityWords)

	var main, loc []int64
	for _, c := range g.Main {
		main = append(main, c.ID)
	}
	for _, c := range g.Locations {
		loc = append(loc, c.ID)
	}
	assert.Equal(t, []int64{1, 4}, main)
	assert.Equal(t, []int64{2, 3, 4}, loc)
}
