package utils

import (
	"strings"
	"unicode"
)

// NormalizePlate uppercases a plate reading and strips whitespace and
// separator characters so different OCR renderings of the same plate
// compare equal.
func NormalizePlate(plate string) string {
	var b strings.Builder
	b.Grow(len(plate))
	for _, r := range plate {
		if unicode.IsSpace(r) || r == '-' || r == '.' {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// IsPlateFragment reports whether s is a valid plate search fragment:
// exactly four decimal digits. Plates are searched by the trailing
// four-digit group, so anything else matches nothing.
func IsPlateFragment(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
