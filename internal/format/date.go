package format

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const DateLayout = "2 January 2006"

// wpLayouts are the timestamp shapes WordPress and WooCommerce emit.
var wpLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime reads a WordPress timestamp. Zone-less values are taken as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range wpLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date renders s as "5 January 2024". Unparseable input is returned as is.
func Date(s string) string {
	t, ok := ParseTime(s)
	if !ok {
		return s
	}
	return t.Format(DateLayout)
}

// RelativeTime renders s relative to now: "Just now" under a minute,
// "3 hours ago" within a week, and the full date after that.
func RelativeTime(s string, now time.Time) string {
	t, ok := ParseTime(s)
	if !ok {
		return s
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < 7*24*time.Hour:
		return humanize.RelTime(t, now, "ago", "from now")
	}
	return t.Format(DateLayout)
}
