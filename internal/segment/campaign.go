package segment

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-scout/internal/model"
)

// Template placeholders.
const (
	PlaceholderName = "{name}"
	PlaceholderCity = "{city}"
)

// DefaultCampaignName names the built-in template set.
const DefaultCampaignName = "roofing"

const (
	defaultEliteTemplate = "Hey {name}, saw your perfect rating in {city}. You clearly dominate the market. " +
		"We are rolling out a new AI Standard for elite firms to handle call overflow. Is this the owner?"

	// The Growth copy names roofers regardless of the scanned vertical.
	// Other verticals should ship their own campaign file.
	defaultGrowthTemplate = "Hey {name}, I did a revenue audit on roofers in {city}. " +
		"You're missing about $30k/mo in storm leads compared to the 5-star guys with AI answering. " +
		"I have the report. Want to see it?"
)

var placeholderPattern = regexp.MustCompile(`\{[A-Za-z_]+\}`)

// Campaign is a named set of outreach templates, one per contactable tier.
type Campaign struct {
	Name   string `yaml:"name" json:"name"`
	Elite  string `yaml:"elite" json:"elite"`
	Growth string `yaml:"growth" json:"growth"`
}

// DefaultCampaign returns the built-in roofing campaign.
func DefaultCampaign() Campaign {
	return Campaign{
		Name:   DefaultCampaignName,
		Elite:  defaultEliteTemplate,
		Growth: defaultGrowthTemplate,
	}
}

// Template returns the message template for a tier, or "" for Skip.
func (c Campaign) Template(t model.Tier) string {
	switch t {
	case model.TierElite:
		return c.Elite
	case model.TierGrowth:
		return c.Growth
	default:
		return ""
	}
}

// Validate checks that every contactable tier has a template and that
// templates only use known placeholders.
func (c Campaign) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return eris.New("campaign: name is required")
	}
	for _, t := range []model.Tier{model.TierElite, model.TierGrowth} {
		tmpl := c.Template(t)
		if strings.TrimSpace(tmpl) == "" {
			return eris.Errorf("campaign %s: %s template is empty", c.Name, t)
		}
		for _, ph := range placeholderPattern.FindAllString(tmpl, -1) {
			if ph != PlaceholderName && ph != PlaceholderCity {
				return eris.Errorf("campaign %s: %s template has unknown placeholder %s", c.Name, t, ph)
			}
		}
	}
	return nil
}

// LoadCampaign reads and validates a campaign from a YAML file.
func LoadCampaign(path string) (Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Campaign{}, eris.Wrapf(err, "campaign: read %s", path)
	}
	return ParseCampaign(data)
}

// ParseCampaign decodes and validates a YAML campaign.
func ParseCampaign(data []byte) (Campaign, error) {
	var c Campaign
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Campaign{}, eris.Wrap(err, "campaign: parse yaml")
	}
	if err := c.Validate(); err != nil {
		return Campaign{}, err
	}
	return c, nil
}
