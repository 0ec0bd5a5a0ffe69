package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-scout/internal/model"
)

func TestNormalize_PrimaryAliases(t *testing.T) {
	lead := Normalize(model.RawRecord{
		"title":      "Ace Roofing",
		"totalScore": 4.95,
		"phone":      "(214) 555-0100",
		"email":      "owner@aceroofing.com",
		"url":        "https://maps.google.com/?cid=1",
	})

	assert.Equal(t, "Ace Roofing", lead.Name)
	assert.InDelta(t, 4.95, lead.Rating, 1e-9)
	assert.Equal(t, "(214) 555-0100", lead.RawPhone)
	assert.Equal(t, "owner@aceroofing.com", lead.Email)
	assert.Equal(t, "https://maps.google.com/?cid=1", lead.MapLink)
	assert.Empty(t, lead.CleanPhone)
	assert.Empty(t, lead.Tier)
}

func TestNormalize_SecondaryAliases(t *testing.T) {
	lead := Normalize(model.RawRecord{
		"name":        "Best Roofing",
		"rating":      "4.3",
		"phoneNumber": "800-555-0100",
		"emails":      []any{"", "sales@best.com", "info@best.com"},
		"link":        "https://maps.google.com/?cid=2",
	})

	assert.Equal(t, "Best Roofing", lead.Name)
	assert.InDelta(t, 4.3, lead.Rating, 1e-9)
	assert.Equal(t, "800-555-0100", lead.RawPhone)
	assert.Equal(t, "sales@best.com", lead.Email)
	assert.Equal(t, "https://maps.google.com/?cid=2", lead.MapLink)
}

func TestNormalize_AliasPrecedence(t *testing.T) {
	lead := Normalize(model.RawRecord{
		"title":      "From Title",
		"name":       "From Name",
		"totalScore": 4.1,
		"rating":     2.0,
	})
	assert.Equal(t, "From Title", lead.Name)
	assert.InDelta(t, 4.1, lead.Rating, 1e-9)
}

func TestNormalize_NilFallsThroughToNextAlias(t *testing.T) {
	lead := Normalize(model.RawRecord{
		"title":       nil,
		"name":        "Fallback Co",
		"totalScore":  nil,
		"rating":      4.5,
		"phone":       nil,
		"phoneNumber": "214-555-0100",
	})
	assert.Equal(t, "Fallback Co", lead.Name)
	assert.InDelta(t, 4.5, lead.Rating, 1e-9)
	assert.Equal(t, "214-555-0100", lead.RawPhone)
}

func TestNormalize_Defaults(t *testing.T) {
	lead := Normalize(model.RawRecord{"categoryName": "Roofing contractor"})

	assert.Equal(t, model.DefaultBusinessName, lead.Name)
	assert.Zero(t, lead.Rating)
	assert.Empty(t, lead.RawPhone)
	assert.Equal(t, model.EmailNotAvailable, lead.Email)
	assert.Empty(t, lead.MapLink)
}

func TestNormalize_NilRecord(t *testing.T) {
	assert.NotPanics(t, func() {
		lead := Normalize(nil)
		assert.Equal(t, model.DefaultBusinessName, lead.Name)
	})
}

func TestNormalize_RatingCoercion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"float", 4.9, 4.9},
		{"int", 5, 5.0},
		{"numeric string", "4.2", 4.2},
		{"padded string", " 4.7 ", 4.7},
		{"json number", json.Number("3.5"), 3.5},
		{"garbage string", "five stars", 0},
		{"bool", true, 0},
		{"map", map[string]any{"value": 4.9}, 0},
		{"list", []any{4.9}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lead := Normalize(model.RawRecord{"totalScore": tt.value})
			assert.InDelta(t, tt.want, lead.Rating, 1e-9)
		})
	}
}

func TestNormalize_NumericPhone(t *testing.T) {
	lead := Normalize(model.RawRecord{"phone": float64(2145550134)})
	assert.Equal(t, "2145550134", lead.RawPhone)
}

func TestNormalize_BlankValuesAreAbsent(t *testing.T) {
	lead := Normalize(model.RawRecord{
		"title": "   ",
		"phone": "",
		"email": []any{},
	})
	assert.Equal(t, model.DefaultBusinessName, lead.Name)
	assert.Empty(t, lead.RawPhone)
	assert.Equal(t, model.EmailNotAvailable, lead.Email)
}

func TestNormalize_FromDecodedJSON(t *testing.T) {
	var raw model.RawRecord
	require.NoError(t, json.Unmarshal([]byte(`{
		"title": "C Roofing",
		"totalScore": 3.5,
		"phone": "214-555-0199",
		"emails": ["c@roofing.com"],
		"url": null
	}`), &raw))

	lead := Normalize(raw)
	assert.Equal(t, "C Roofing", lead.Name)
	assert.InDelta(t, 3.5, lead.Rating, 1e-9)
	assert.Equal(t, "c@roofing.com", lead.Email)
	assert.Empty(t, lead.MapLink)
}

func TestNormalize_Deterministic(t *testing.T) {
	raw := model.RawRecord{"title": "Ace", "totalScore": "4.95", "phone": "(214) 555-0100"}
	assert.Equal(t, Normalize(raw), Normalize(raw))
}

func TestAliases_WithExtra(t *testing.T) {
	a := DefaultAliases.WithExtra(map[string][]string{
		FieldName:  {"businessName", "title"},
		FieldPhone: {"phoneUnformatted"},
		"bogus":    {"ignored"},
	})

	assert.Equal(t, []string{"title", "name", "businessName"}, a.Name)
	assert.Equal(t, []string{"phone", "phoneNumber", "phoneUnformatted"}, a.Phone)
	assert.Equal(t, DefaultAliases.Rating, a.Rating)

	// Defaults are not mutated.
	assert.Equal(t, []string{"title", "name"}, DefaultAliases.Name)

	lead := a.Normalize(model.RawRecord{"businessName": "Drift Co", "phoneUnformatted": "+12145550100"})
	assert.Equal(t, "Drift Co", lead.Name)
	assert.Equal(t, "+12145550100", lead.RawPhone)
}

func TestAliases_Covers(t *testing.T) {
	assert.True(t, DefaultAliases.Covers(model.RawRecord{"phone": "1"}))
	assert.True(t, DefaultAliases.Covers(model.RawRecord{"rating": 0}))
	assert.False(t, DefaultAliases.Covers(model.RawRecord{"address": "1 Main St"}))
	assert.False(t, DefaultAliases.Covers(model.RawRecord{"title": nil}))
}
