package wordpress

import (
	"regexp"
	"strconv"
	"strings"
)

// WordPress appends -{w}x{h} to resized uploads; dropping it gives the original.
var resizedSuffix = regexp.MustCompile(`-\d+x\d+(\.[A-Za-z0-9]+)$`)

// FullSizeURL strips the WordPress resize suffix from an upload URL.
func FullSizeURL(href string) string {
	if href == "" || !strings.Contains(href, "wp-content/uploads") {
		return href
	}
	path, query, hasQuery := strings.Cut(href, "?")
	path = resizedSuffix.ReplaceAllString(path, "$1")
	if hasQuery {
		return path + "?" + query
	}
	return path
}

// OptimizeImageURL asks the upload host for a resized copy. Non-WordPress URLs
// are returned unchanged.
func OptimizeImageURL(href string, width, quality int) string {
	if href == "" || !strings.Contains(href, "wp-content/uploads") {
		return href
	}
	sep := "?"
	if strings.Contains(href, "?") {
		sep = "&"
	}
	return href + sep + "w=" + strconv.Itoa(width) + "&quality=" + strconv.Itoa(quality)
}

type ImageSizes struct {
	Thumbnail string `json:"thumbnail"`
	Small     string `json:"small"`
	Medium    string `json:"medium"`
	Large     string `json:"large"`
	XLarge    string `json:"xlarge"`
	Original  string `json:"original"`
	SrcSet    string `json:"srcset"`
}

func SizesFor(href string) ImageSizes {
	if href == "" {
		return ImageSizes{}
	}
	return ImageSizes{
		Thumbnail: OptimizeImageURL(href, 150, 85),
		Small:     OptimizeImageURL(href, 300, 85),
		Medium:    OptimizeImageURL(href, 600, 80),
		Large:     OptimizeImageURL(href, 1024, 80),
		XLarge:    OptimizeImageURL(href, 1440, 75),
		Original:  href,
		SrcSet:    SrcSet(href),
	}
}

// SrcSet renders a srcset attribute for the given widths (default 300..1200).
func SrcSet(href string, widths ...int) string {
	if href == "" {
		return ""
	}
	if len(widths) == 0 {
		widths = []int{300, 600, 900, 1200}
	}
	parts := make([]string, 0, len(widths))
	for _, w := range widths {
		parts = append(parts, OptimizeImageURL(href, w, 80)+" "+strconv.Itoa(w)+"w")
	}
	return strings.Join(parts, ", ")
}
