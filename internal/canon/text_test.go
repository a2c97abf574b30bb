package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	assert.True(t, Contains("Sunrise  Heights, Gangapur Road", "heights, GANGAPUR"))
	assert.True(t, Contains("anything", "   "))
	assert.False(t, Contains("Sunrise Heights", "sunset"))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"2 BHK Flat in Nashik!":   "2-bhk-flat-in-nashik",
		"  --Villa__Row House-- ": "villa-row-house",
		"":                        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10, "..."))
	assert.Equal(t, "Hello...", Truncate("Hello world", 6, "..."))
	assert.Equal(t, "₹₹...", Truncate("₹₹₹₹", 2, "..."))
}

func TestCapitalizeWords(t *testing.T) {
	assert.Equal(t, "Row House  Nashik", CapitalizeWords("rOW house  NASHIK"))
}

func TestStripHTML(t *testing.T) {
	in := `<p>Spacious&nbsp;<strong>3 BHK</strong> near &amp; park</p><script>alert(1)</script>`
	assert.Equal(t, "Spacious 3 BHK near & park", StripHTML(in))
	assert.Equal(t, "plain text", StripHTML("  plain   text "))
	assert.Equal(t, "", StripHTML(""))
}

func TestSanitizeHTML(t *testing.T) {
	in := `<p onclick="steal()">Sea <strong>view</strong></p><script>alert(1)</script>`
	assert.Equal(t, `<p>Sea <strong>view</strong></p>`, SanitizeHTML(in))
	assert.Equal(t, "", SanitizeHTML("   "))
}
