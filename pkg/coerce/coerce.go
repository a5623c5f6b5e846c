// Package coerce turns the messy numeric text that scraped pages and quote
// APIs return into plain float64 values.
package coerce

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// currency markers stripped before parsing. Thousands separators are
// stripped too, so "1,234.50" and "₹1,234.50" both parse.
var strip = strings.NewReplacer(",", "", "₹", "", "Rs.", "")

// ToFloat parses an arbitrary textual or numeric input into a float64.
// It strips currency symbols and thousands separators, takes the first
// whitespace-delimited token, and parses it as a decimal number. Any input
// that cannot be parsed yields nil. It never panics.
func ToFloat(v any) *float64 {
	if v == nil {
		return nil
	}

	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return finite(float64(n))
	case int64:
		return finite(float64(n))
	}

	s := strings.TrimSpace(strip.Replace(fmt.Sprintf("%v", v)))
	if s == "" {
		return nil
	}

	// First token only: "12.5 Cr." parses as 12.5.
	if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

// finite rejects NaN and infinities so callers never see a non-finite value.
func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Float64 returns a pointer to v. Convenience for building test fixtures
// and literal optional fields.
func Float64(v float64) *float64 {
	return &v
}
