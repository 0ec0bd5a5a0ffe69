// Package normalize maps scraped records onto the canonical Lead schema.
// Scraper output schemas are not stable across actor versions, so every
// canonical field resolves through an ordered list of accepted source keys
// and degrades to a default instead of failing.
package normalize

import (
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/sells-group/lead-scout/internal/model"
)

// Canonical field names used as keys for extra aliases in configuration.
const (
	FieldName    = "name"
	FieldRating  = "rating"
	FieldPhone   = "phone"
	FieldEmail   = "email"
	FieldMapLink = "map_link"
)

// Aliases lists, per canonical field, the source keys to try in order.
type Aliases struct {
	Name    []string
	Rating  []string
	Phone   []string
	Email   []string
	MapLink []string
}

// DefaultAliases covers the key names seen across scraper versions.
var DefaultAliases = Aliases{
	Name:    []string{"title", "name"},
	Rating:  []string{"totalScore", "rating"},
	Phone:   []string{"phone", "phoneNumber"},
	Email:   []string{"email", "emails"},
	MapLink: []string{"url", "link"},
}

// WithExtra returns a copy of a with extra keys appended per canonical field.
// Existing aliases keep precedence; unknown field names are ignored.
func (a Aliases) WithExtra(extra map[string][]string) Aliases {
	out := Aliases{
		Name:    appendUnique(a.Name, extra[FieldName]),
		Rating:  appendUnique(a.Rating, extra[FieldRating]),
		Phone:   appendUnique(a.Phone, extra[FieldPhone]),
		Email:   appendUnique(a.Email, extra[FieldEmail]),
		MapLink: appendUnique(a.MapLink, extra[FieldMapLink]),
	}
	return out
}

// Normalize maps raw onto a Lead using DefaultAliases.
func Normalize(raw model.RawRecord) model.Lead {
	return DefaultAliases.Normalize(raw)
}

// Normalize maps raw onto a Lead. It never fails: absent or mistyped fields
// fall back to the Lead defaults.
func (a Aliases) Normalize(raw model.RawRecord) model.Lead {
	lead := model.Lead{
		Name:   model.DefaultBusinessName,
		Rating: 0,
		Email:  model.EmailNotAvailable,
	}

	if v, ok := firstString(raw, a.Name); ok {
		lead.Name = v
	}
	if v, ok := firstPresent(raw, a.Rating); ok {
		lead.Rating = toRating(v)
	}
	if v, ok := firstString(raw, a.Phone); ok {
		lead.RawPhone = v
	}
	if v, ok := firstString(raw, a.Email); ok {
		lead.Email = v
	}
	if v, ok := firstString(raw, a.MapLink); ok {
		lead.MapLink = v
	}

	return lead
}

// Covers reports whether raw carries at least one key from any alias list.
// A batch where no record is covered points at upstream schema drift.
func (a Aliases) Covers(raw model.RawRecord) bool {
	for _, keys := range [][]string{a.Name, a.Rating, a.Phone, a.Email, a.MapLink} {
		if _, ok := firstPresent(raw, keys); ok {
			return true
		}
	}
	return false
}

// firstPresent returns the value of the first key that exists with a non-nil
// value.
func firstPresent(raw model.RawRecord, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// firstString returns the first alias whose value renders to a non-empty
// string. Values that cannot be rendered are skipped.
func firstString(raw model.RawRecord, keys []string) (string, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s := toText(v); s != "" {
			return s, true
		}
	}
	return "", false
}

// toText renders a scalar or the first usable element of a list.
func toText(v any) string {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := toText(item); s != "" {
				return s
			}
		}
		return ""
	case []string:
		for _, item := range t {
			if s := strings.TrimSpace(item); s != "" {
				return s
			}
		}
		return ""
	case bool:
		return ""
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// toRating coerces a rating value to a finite float, defaulting to 0.
func toRating(v any) float64 {
	if _, isBool := v.(bool); isBool {
		return 0
	}
	if s, isString := v.(string); isString {
		v = strings.TrimSpace(s)
	}

	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func appendUnique(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, k := range append(append([]string{}, base...), extra...) {
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
