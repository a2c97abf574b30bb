package canon

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reNonSlug  = regexp.MustCompile(`[^\w\s-]`)
	reSlugSeps = regexp.MustCompile(`[\s_-]+`)
)

// Fold lowercases s and collapses runs of whitespace so that substring
// matching ignores case and layout.
func Fold(s string) string {
	return collapseSpaces(strings.ToLower(s))
}

// Contains reports whether needle occurs in haystack after folding both.
// An empty needle matches everything.
func Contains(haystack, needle string) bool {
	n := Fold(needle)
	if n == "" {
		return true
	}
	return strings.Contains(Fold(haystack), n)
}

func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = reNonSlug.ReplaceAllString(s, "")
	s = reSlugSeps.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Truncate cuts s to at most max runes and appends suffix when it had to cut.
func Truncate(s string, max int, suffix string) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max])) + suffix
}

func CapitalizeWords(s string) string {
	if s == "" {
		return ""
	}
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
