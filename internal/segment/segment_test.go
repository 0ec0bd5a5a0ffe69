package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/lead-scout/internal/model"
)

func TestTierFor_Boundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rating float64
		want   model.Tier
	}{
		{5.0, model.TierElite},
		{4.95, model.TierElite},
		{4.9, model.TierElite},
		{4.89999, model.TierGrowth},
		{4.89, model.TierGrowth},
		{4.3, model.TierGrowth},
		{4.0, model.TierGrowth},
		{3.99, model.TierSkip},
		{0, model.TierSkip},
		{-1, model.TierSkip},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.rating), "rating %v", tt.rating)
	}
}

func TestSegment_EliteMessage(t *testing.T) {
	e := NewDefault()
	tier, msg := e.Segment(model.Lead{Name: "Ace Roofing", Rating: 4.95}, "Dallas")

	assert.Equal(t, model.TierElite, tier)
	assert.Equal(t,
		"Hey Ace Roofing, saw your perfect rating in Dallas. You clearly dominate the market. "+
			"We are rolling out a new AI Standard for elite firms to handle call overflow. Is this the owner?",
		msg)
}

func TestSegment_GrowthMessage(t *testing.T) {
	e := NewDefault()
	tier, msg := e.Segment(model.Lead{Name: "Best Roofing", Rating: 4.0}, "Austin")

	assert.Equal(t, model.TierGrowth, tier)
	assert.Equal(t,
		"Hey Best Roofing, I did a revenue audit on roofers in Austin. You're missing about $30k/mo in storm leads "+
			"compared to the 5-star guys with AI answering. I have the report. Want to see it?",
		msg)
}

func TestSegment_SkipHasNoMessage(t *testing.T) {
	e := NewDefault()
	tier, msg := e.Segment(model.Lead{Name: "C Roofing", Rating: 3.99}, "Dallas")

	assert.Equal(t, model.TierSkip, tier)
	assert.Empty(t, msg)
}

func TestSegment_StripsQuotesFromName(t *testing.T) {
	e := NewDefault()
	_, msg := e.Segment(model.Lead{Name: `Bob's "Best" Roofing`, Rating: 5}, "Dallas")

	assert.Contains(t, msg, "Hey Bobs Best Roofing,")
	assert.NotContains(t, msg, `"`)
}

func TestSegment_PlaceholdersInNameAreNotExpanded(t *testing.T) {
	e := NewDefault()
	_, msg := e.Segment(model.Lead{Name: "{city} Roofing", Rating: 5}, "Dallas")
	assert.Contains(t, msg, "Hey {city} Roofing, saw your perfect rating in Dallas.")
}

func TestApply_SetsTierAndMessage(t *testing.T) {
	e := NewDefault()

	lead := model.Lead{Name: "Ace", Rating: 4.9}
	e.Apply(&lead, "Dallas")
	assert.Equal(t, model.TierElite, lead.Tier)
	assert.NotEmpty(t, lead.OutreachMessage)

	lead.Rating = 2
	e.Apply(&lead, "Dallas")
	assert.Equal(t, model.TierSkip, lead.Tier)
	assert.Empty(t, lead.OutreachMessage)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Joes Roofing", SanitizeName("Joe's Roofing"))
	assert.Equal(t, "Plain", SanitizeName(`"Plain"`))
	// Decomposed e + combining acute composes to a single rune.
	assert.Equal(t, "Caf\u00e9 Roofing", SanitizeName("Cafe\u0301 Roofing"))
}

func TestSegment_Deterministic(t *testing.T) {
	e := NewDefault()
	lead := model.Lead{Name: "Ace", Rating: 4.5}
	t1, m1 := e.Segment(lead, "Plano")
	t2, m2 := e.Segment(lead, "Plano")
	assert.Equal(t, t1, t2)
	assert.Equal(t, m1, m2)
}
