// Package format renders prices the way the site displays them: Indian digit
// grouping (12,34,567), a rupee sign, and short Lakh/Crore forms.
package format

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	Rupee          = "₹"
	PriceOnRequest = "Price on request"

	crore    = 10_000_000
	lakh     = 100_000
	thousand = 1_000
)

// Number formats v with Indian grouping and at most three fraction digits.
func Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', 3, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")

	out := groupIndian(intPart)
	if frac != "" {
		out += "." + frac
	}
	if neg && out != "0" {
		out = "-" + out
	}
	return out
}

// Rupees is Number with a rupee sign.
func Rupees(v float64) string { return Rupee + Number(v) }

// Currency formats a whole-rupee amount, or two decimals when decimals is set.
// Zero renders as "0".
func Currency(v float64, decimals bool) string {
	if v == 0 || math.IsNaN(v) {
		return "0"
	}
	if !decimals {
		return Rupee + Number(math.Round(v))
	}
	s := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	sign := ""
	if v < 0 {
		sign = "-"
	}
	return sign + Rupee + groupIndian(intPart) + "." + frac
}

// Short renders 1.5Cr, 45L, 12K style amounts.
func Short(v float64) string {
	if v == 0 || math.IsNaN(v) {
		return "0"
	}
	switch {
	case v >= crore:
		return Rupee + shortUnit(v/crore) + "Cr"
	case v >= lakh:
		return Rupee + shortUnit(v/lakh) + "L"
	case v >= thousand:
		return Rupee + shortUnit(v/thousand) + "K"
	default:
		return Rupee + strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// PriceRange describes a min/max pair. Zero on either side means open-ended.
func PriceRange(min, max float64, short bool) string {
	f := func(v float64) string { return Currency(v, false) }
	if short {
		f = Short
	}
	switch {
	case min == 0 && max == 0:
		return ""
	case min == 0:
		return "Up to " + f(max)
	case max == 0:
		return "From " + f(min)
	case min == max:
		return f(min)
	default:
		return f(min) + " - " + f(max)
	}
}

var reAmount = regexp.MustCompile(`(?i)^\s*(?:₹|rs\.?|inr|\$)?\s*(-?(?:\d[\d,]*(?:\.\d+)?|\.\d+))\s*(crores?|cr|lakhs?|lacs?|l|k|thousand)?\b`)

// ParseCurrency reads "₹45,00,000", "1.2Cr", "45L", "45 Lakhs onwards" or
// "12k" back into rupees. Text after the amount and unit is ignored.
// Unparseable input yields 0.
func ParseCurrency(s string) float64 {
	m := reAmount.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0
	}
	switch unit := strings.ToLower(m[2]); {
	case strings.HasPrefix(unit, "cr"):
		return n * crore
	case strings.HasPrefix(unit, "l"):
		return n * lakh
	case unit == "k" || unit == "thousand":
		return n * thousand
	}
	return n
}

func shortUnit(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// groupIndian inserts separators after the last three digits and then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
