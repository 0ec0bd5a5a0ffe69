package sink

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/pkg/salesforce"
)

// Lead field values fixed for every pushed record.
const (
	LeadLastName = "Owner"
	LeadSource   = "Scout"
)

// SalesforceSink inserts leads as Salesforce Lead records, skipping phones
// that already exist in the org.
type SalesforceSink struct {
	client salesforce.Client
}

// NewSalesforce creates a Salesforce sink.
func NewSalesforce(client salesforce.Client) *SalesforceSink {
	return &SalesforceSink{client: client}
}

// Name implements Sink.
func (s *SalesforceSink) Name() string { return "salesforce" }

// Push implements Sink.
func (s *SalesforceSink) Push(ctx context.Context, leads []model.Lead) (PushResult, error) {
	log := zap.L().With(zap.String("sink", s.Name()))
	keep, skipped := contactable(leads)
	res := PushResult{Skipped: skipped}
	if len(keep) == 0 {
		return res, nil
	}

	phones := make([]string, len(keep))
	for i, l := range keep {
		phones[i] = l.CleanPhone
	}
	existing, err := salesforce.FindLeadsByPhone(ctx, s.client, phones)
	if err != nil {
		return res, eris.Wrap(err, "sink: salesforce dedupe")
	}
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[e.Phone] = true
	}

	var (
		fresh   []model.Lead
		records []map[string]any
	)
	for _, l := range keep {
		if seen[l.CleanPhone] {
			res.Skipped++
			continue
		}
		seen[l.CleanPhone] = true
		fresh = append(fresh, l)
		records = append(records, leadRecord(l))
	}

	results, err := salesforce.BulkInsertLeads(ctx, s.client, records)
	for i, r := range results {
		if r.Success {
			res.Created++
			continue
		}
		res.Failed++
		for _, msg := range r.Errors {
			res.Errors = append(res.Errors, fresh[i].Name+": "+msg)
		}
	}
	if err != nil {
		res.Failed += len(records) - len(results)
		return res, eris.Wrap(err, "sink: salesforce push")
	}

	log.Info("sink: salesforce push complete",
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// leadRating maps a tier to the Salesforce Lead rating picklist.
func leadRating(t model.Tier) string {
	switch t {
	case model.TierElite:
		return "Hot"
	case model.TierGrowth:
		return "Warm"
	default:
		return "Cold"
	}
}

func leadRecord(l model.Lead) map[string]any {
	rec := map[string]any{
		"Company":     l.Name,
		"LastName":    LeadLastName,
		"Phone":       l.CleanPhone,
		"Rating":      leadRating(l.Tier),
		"Description": l.OutreachMessage,
		"LeadSource":  LeadSource,
	}
	if l.HasEmail() {
		rec["Email"] = l.Email
	}
	return rec
}
