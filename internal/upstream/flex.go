package upstream

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/yourorg/listings-api/internal/format"
)

// ACF and WooCommerce both send numbers as strings, empty strings, false or
// null depending on the field state. These types decode all of those without
// failing the surrounding document.

// Number accepts a JSON number or a numeric string; anything else is 0.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = 0
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*n = Number(parseNumberString(s))
	case 't', 'f', 'n', '{', '[':
	default:
		var num json.Number
		if err := json.Unmarshal(b, &num); err != nil {
			return nil
		}
		if f, err := num.Float64(); err == nil {
			*n = Number(f)
		}
	}
	return nil
}

var leadingNumber = regexp.MustCompile(`^\s*-?[\d,]*\.?\d+`)

// parseNumberString handles "45,00,000", "1.2Cr" and "1250 sq ft".
func parseNumberString(s string) float64 {
	if v := format.ParseCurrency(s); v != 0 {
		return v
	}
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(m), ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}

// String accepts a JSON string or number; false, null and containers are "".
type String string

func (s *String) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*s = ""
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		*s = String(str)
	case 't', 'f', 'n', '{', '[':
	default:
		*s = String(b)
	}
	return nil
}

// Bool accepts true/false, 1/0 and "1", "true", "yes".
type Bool bool

func (v *Bool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*v = false
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case 't':
		*v = true
	case '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		switch strings.ToLower(strings.TrimSpace(str)) {
		case "1", "true", "yes", "on":
			*v = true
		}
	case 'f', 'n', '{', '[':
	default:
		if f, err := strconv.ParseFloat(string(b), 64); err == nil && f != 0 {
			*v = true
		}
	}
	return nil
}

// Rendered is a WordPress {"rendered": "..."} field that may also arrive as a
// bare string.
type Rendered string

func (r *Rendered) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*r = ""
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*r = Rendered(s)
	case '{':
		var obj struct {
			Rendered string `json:"rendered"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil
		}
		*r = Rendered(obj.Rendered)
	}
	return nil
}
