package catalog

import (
	"strconv"
	"strings"

	"github.com/yourorg/listings-api/internal/events"
	"github.com/yourorg/listings-api/woocommerce"
	"github.com/yourorg/listings-api/wordpress"
)

// Cache keys. Per-item keys end in ':' so that an id prefix never matches a
// longer id.
const (
	prefixWordPress   = "wp:"
	prefixPosts       = "wp:posts:"
	prefixPost        = "wp:post:"
	prefixFeatured    = "wp:featured:"
	prefixRelated     = "wp:related:"
	keyTerms          = "wp:terms"
	prefixWooCommerce = "wc:"
	prefixProducts    = "wc:products:"
	prefixProduct     = "wc:product:"
	prefixFeaturedWC  = "wc:featured:"
	keyCategories     = "wc:categories"
	keyBrands         = "wc:brands"
)

func postsKey(q wordpress.PropertyQuery) string { return prefixPosts + q.CacheKey() }

func postKey(id int64) string { return prefixPost + strconv.FormatInt(id, 10) + ":" }

func featuredKey(count int) string { return prefixFeatured + strconv.Itoa(count) }

func relatedKey(id int64, limit int) string {
	return prefixRelated + strconv.FormatInt(id, 10) + ":" + strconv.Itoa(limit)
}

func productsKey(q woocommerce.ProductQuery) string { return prefixProducts + q.CacheKey() }

func productKey(id int64) string { return prefixProduct + strconv.FormatInt(id, 10) + ":" }

func featuredProjectsKey(limit int) string { return prefixFeaturedWC + strconv.Itoa(limit) }

// PrefixesFor lists the cache prefixes a catalog change makes stale. A post
// change drops every listing, featured and related entry plus the post
// itself; taxonomy changes drop everything from that source.
func PrefixesFor(evt events.CatalogChanged) []string {
	resource := strings.ToLower(evt.Resource)
	switch evt.Source {
	case events.SourceWordPress:
		if evt.ID <= 0 || !isPostResource(resource) {
			return []string{prefixWordPress}
		}
		return []string{prefixPosts, prefixFeatured, prefixRelated, postKey(evt.ID)}
	case events.SourceWooCommerce:
		if evt.ID <= 0 || resource != "product" {
			return []string{prefixWooCommerce}
		}
		return []string{prefixProducts, prefixFeaturedWC, productKey(evt.ID)}
	}
	return nil
}

func isPostResource(r string) bool {
	switch r {
	case "post", "posts", "property", "properties":
		return true
	}
	return false
}
