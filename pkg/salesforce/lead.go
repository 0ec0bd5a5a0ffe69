package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// MaxBatchSize is the Salesforce Collections API limit per request.
const MaxBatchSize = 200

// LeadObject is the sObject name for leads.
const LeadObject = "Lead"

// Lead is the subset of a Salesforce Lead read back for dedupe.
type Lead struct {
	ID      string `json:"Id" salesforce:"Id"`
	Company string `json:"Company" salesforce:"Company"`
	Phone   string `json:"Phone" salesforce:"Phone"`
}

// BulkInsertLeads splits records into batches of MaxBatchSize and inserts
// them as Lead sObjects. Results are returned in input order. On error the
// results of the batches already sent are returned alongside it.
func BulkInsertLeads(ctx context.Context, c Client, records []map[string]any) ([]CollectionResult, error) {
	if len(records) == 0 {
		return nil, nil
	}

	var all []CollectionResult
	for start := 0; start < len(records); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(records))
		results, err := c.InsertCollection(ctx, LeadObject, records[start:end])
		if err != nil {
			return all, eris.Wrapf(err, "sf: bulk insert leads batch %d-%d", start, end)
		}
		all = append(all, results...)
	}
	return all, nil
}

// FindLeadsByPhone returns existing leads whose Phone matches any of phones.
// Phones are queried in chunks to keep the SOQL under the URI limit.
func FindLeadsByPhone(ctx context.Context, c Client, phones []string) ([]Lead, error) {
	const chunk = 100

	var found []Lead
	for start := 0; start < len(phones); start += chunk {
		end := min(start+chunk, len(phones))
		quoted := make([]string, 0, end-start)
		for _, p := range phones[start:end] {
			quoted = append(quoted, "'"+escapeSoql(p)+"'")
		}
		soql := fmt.Sprintf("SELECT Id, Company, Phone FROM Lead WHERE Phone IN (%s)", strings.Join(quoted, ", "))

		var leads []Lead
		if err := c.Query(ctx, soql, &leads); err != nil {
			return nil, eris.Wrap(err, "sf: find leads by phone")
		}
		found = append(found, leads...)
	}
	return found, nil
}

// escapeSoql escapes backslashes and single quotes in SOQL string literals.
func escapeSoql(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}
