// Package phone canonicalizes US phone numbers and classifies them with a
// toll-free prefix heuristic.
package phone

import "strings"

// canonicalPrefix is the country prefix of every canonical number.
const canonicalPrefix = "+1"

// TollFreeAreaCodes are the reserved US toll-free ranges. A number in one of
// these is a business hotline, never a personal line.
var TollFreeAreaCodes = map[string]struct{}{
	"800": {},
	"888": {},
	"877": {},
	"866": {},
	"855": {},
	"844": {},
	"833": {},
}

// Clean strips formatting from a raw phone string and returns it as +1
// followed by 10 digits. It returns "" for anything that is not a 10-digit
// number or an 11-digit number with a leading 1. Only US numbers are
// recognized.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 10:
		return canonicalPrefix + digits
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits
	default:
		return ""
	}
}

// AreaCode returns the three digits following the +1 prefix, or "" when the
// number is too short to carry one.
func AreaCode(canonical string) string {
	if len(canonical) < 5 {
		return ""
	}
	return canonical[2:5]
}

// IsTollFree reports whether a canonical number falls in a toll-free range.
func IsTollFree(canonical string) bool {
	_, ok := TollFreeAreaCodes[AreaCode(canonical)]
	return ok
}

// IsLikelyMobile reports whether a canonical number could be a personal line.
// Any number outside the toll-free ranges counts. That does not prove a
// mobile owner, it only rules out hotlines.
func IsLikelyMobile(canonical string) bool {
	if canonical == "" {
		return false
	}
	return !IsTollFree(canonical)
}
