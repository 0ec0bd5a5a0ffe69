// Package segment assigns outreach tiers from ratings and renders the
// tier's outreach message.
package segment

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/lead-scout/internal/model"
)

// Rating thresholds. Each bound is inclusive on its own tier.
const (
	EliteThreshold  = 4.9
	GrowthThreshold = 4.0
)

// TierFor maps a rating onto its tier.
func TierFor(rating float64) model.Tier {
	switch {
	case rating >= EliteThreshold:
		return model.TierElite
	case rating >= GrowthThreshold:
		return model.TierGrowth
	default:
		return model.TierSkip
	}
}

// nameStripper removes quote characters that would break CSV cells and
// message templates.
var nameStripper = strings.NewReplacer(`"`, "", "'", "")

// SanitizeName prepares a business name for interpolation into a message.
func SanitizeName(name string) string {
	return norm.NFC.String(nameStripper.Replace(name))
}

// Engine renders tier messages from a campaign.
type Engine struct {
	campaign Campaign
}

// New creates an Engine. The campaign must already be validated.
func New(c Campaign) *Engine {
	return &Engine{campaign: c}
}

// NewDefault creates an Engine with the built-in campaign.
func NewDefault() *Engine {
	return New(DefaultCampaign())
}

// Campaign returns the campaign the engine renders from.
func (e *Engine) Campaign() Campaign {
	return e.campaign
}

// Segment returns the lead's tier and, for contactable tiers, its outreach
// message. Skip leads get an empty message.
func (e *Engine) Segment(lead model.Lead, city string) (model.Tier, string) {
	tier := TierFor(lead.Rating)
	tmpl := e.campaign.Template(tier)
	if tmpl == "" {
		return tier, ""
	}
	return tier, render(tmpl, SanitizeName(lead.Name), city)
}

// Apply segments the lead in place.
func (e *Engine) Apply(lead *model.Lead, city string) {
	lead.Tier, lead.OutreachMessage = e.Segment(*lead, city)
}

// render substitutes placeholders in a single pass so that placeholder text
// inside a name or city is never expanded.
func render(tmpl, name, city string) string {
	return strings.NewReplacer(PlaceholderName, name, PlaceholderCity, city).Replace(tmpl)
}
