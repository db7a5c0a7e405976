// Package phone canonicalises caller numbers into an E.164-like form.
//
// Normalisation is best effort: the result is never validated against a
// numbering plan. It only makes the same caller compare equal across calls.
package phone

import "strings"

// DefaultCountryCode is prefixed to bare 10-digit national numbers.
const DefaultCountryCode = "1"

// Normalize returns the canonical form of raw, or "" when raw carries no digits.
//
//   - 10 digits                  -> "+1" + digits
//   - 11 digits starting with 1  -> "+" + digits
//   - already starts with "+"    -> raw unchanged
//   - anything else              -> "+" + digits
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	digits := Digits(raw)
	if digits == "" {
		return ""
	}

	switch {
	case len(digits) == 10:
		return "+" + DefaultCountryCode + digits
	case len(digits) == 11 && strings.HasPrefix(digits, DefaultCountryCode):
		return "+" + digits
	case strings.HasPrefix(raw, "+"):
		return raw
	default:
		return "+" + digits
	}
}

// Digits strips every non-digit rune from s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
