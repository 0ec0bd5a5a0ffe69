// Package sink publishes target leads to external CRMs.
package sink

import (
	"context"

	"github.com/sells-group/lead-scout/internal/model"
)

// PushResult tallies what a sink did with a batch of leads.
type PushResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Total returns the number of leads the result accounts for.
func (r PushResult) Total() int {
	return r.Created + r.Updated + r.Skipped + r.Failed
}

// Sink publishes leads to a destination.
type Sink interface {
	Name() string
	Push(ctx context.Context, leads []model.Lead) (PushResult, error)
}

// contactable filters out leads that carry no outreach script or phone.
func contactable(leads []model.Lead) (keep []model.Lead, skipped int) {
	for _, l := range leads {
		if !l.Tier.Contactable() || l.CleanPhone == "" {
			skipped++
			continue
		}
		keep = append(keep, l)
	}
	return keep, skipped
}
