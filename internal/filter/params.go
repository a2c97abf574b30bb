package filter

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/yourorg/listings-api/internal/format"
)

func parseID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// parseIDList accepts repeated keys and comma-separated values, dropping
// duplicates and junk.
func parseIDList(vals []string) []int64 {
	var out []int64
	seen := map[int64]bool{}
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			if id := parseID(part); id > 0 && !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// parseAmount reads plain numbers as well as "45L" or "1.2Cr".
func parseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 {
			return 0
		}
		return f
	}
	if f := format.ParseCurrency(s); f > 0 {
		return f
	}
	return 0
}

func setID(v url.Values, key string, id int64) {
	if id > 0 {
		v.Set(key, strconv.FormatInt(id, 10))
	}
}

func setAmount(v url.Values, key string, f float64) {
	if f > 0 {
		v.Set(key, strconv.FormatFloat(f, 'f', -1, 64))
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
