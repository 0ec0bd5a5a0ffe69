package model

// RawRecord is one scraped business as returned by the scraping actor.
// Field names drift across actor versions, so nothing is guaranteed present.
type RawRecord map[string]any

// DefaultBusinessName is used when a record carries no name under any alias.
const DefaultBusinessName = "Unknown Business"

// EmailNotAvailable marks a lead with no resolvable email.
const EmailNotAvailable = "N/A"

// Tier is the outreach bucket assigned from a lead's rating.
type Tier string

// Outreach tiers.
const (
	TierElite  Tier = "elite"
	TierGrowth Tier = "growth"
	TierSkip   Tier = "skip"
)

// Tiers lists the tiers in presentation order.
var Tiers = []Tier{TierElite, TierGrowth, TierSkip}

func (t Tier) String() string {
	return string(t)
}

// Label returns the display name of the tier.
func (t Tier) Label() string {
	switch t {
	case TierElite:
		return "Elite"
	case TierGrowth:
		return "Growth"
	case TierSkip:
		return "Skip"
	default:
		return "Unknown"
	}
}

// Contactable reports whether leads in this tier receive an outreach message.
func (t Tier) Contactable() bool {
	return t == TierElite || t == TierGrowth
}

// Lead is a canonical, normalized business record. Empty strings mean absent
// for RawPhone, MapLink, CleanPhone and OutreachMessage.
type Lead struct {
	Name            string  `json:"name"`
	Rating          float64 `json:"rating"`
	RawPhone        string  `json:"raw_phone,omitempty"`
	Email           string  `json:"email"`
	MapLink         string  `json:"map_link,omitempty"`
	CleanPhone      string  `json:"clean_phone,omitempty"`
	IsMobileLikely  bool    `json:"is_mobile_likely"`
	Tier            Tier    `json:"tier,omitempty"`
	OutreachMessage string  `json:"outreach_message,omitempty"`
}

// HasEmail reports whether the lead carries a real email address.
func (l Lead) HasEmail() bool {
	return l.Email != "" && l.Email != EmailNotAvailable
}

// Counters summarizes why fetched records did or did not become targets.
type Counters struct {
	Fetched             int `json:"fetched"`
	DroppedNoPhone      int `json:"dropped_no_phone"`
	DroppedInvalidPhone int `json:"dropped_invalid_phone"`
	DroppedLandline     int `json:"dropped_landline"`
	DroppedLowRating    int `json:"dropped_low_rating"`
}

// Dropped returns the total number of records filtered out.
func (c Counters) Dropped() int {
	return c.DroppedNoPhone + c.DroppedInvalidPhone + c.DroppedLandline + c.DroppedLowRating
}

// TargetList is the ordered output of one pipeline run.
type TargetList struct {
	Leads    []Lead   `json:"leads"`
	Counters Counters `json:"counters"`
}

// Len returns the number of surviving leads.
func (tl *TargetList) Len() int {
	if tl == nil {
		return 0
	}
	return len(tl.Leads)
}

// Balanced reports whether every fetched record is accounted for as either
// a target or exactly one drop reason.
func (tl *TargetList) Balanced() bool {
	if tl == nil {
		return true
	}
	return tl.Counters.Fetched == tl.Counters.Dropped()+len(tl.Leads)
}

// ByTier returns the leads of a single tier, preserving scrape order.
func (tl *TargetList) ByTier(t Tier) []Lead {
	if tl == nil {
		return nil
	}
	var out []Lead
	for _, l := range tl.Leads {
		if l.Tier == t {
			out = append(out, l)
		}
	}
	return out
}
