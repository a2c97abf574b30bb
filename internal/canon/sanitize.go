package canon

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var ugc = bluemonday.UGCPolicy()

// SanitizeHTML removes scripts, event handlers and other unsafe markup from
// CMS-authored HTML while keeping ordinary formatting. Safe for concurrent use.
func SanitizeHTML(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	return strings.TrimSpace(ugc.Sanitize(fragment))
}
