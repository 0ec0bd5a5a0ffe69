package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// QueryAll fetches every page matching filter, following pagination cursors.
func QueryAll(ctx context.Context, c Client, dbID string, filter notionapi.Filter) ([]notionapi.Page, error) {
	var all []notionapi.Page
	req := &notionapi.DatabaseQueryRequest{Filter: filter}

	for {
		resp, err := c.QueryDatabase(ctx, dbID, req)
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all")
		}
		all = append(all, resp.Results...)
		if !resp.HasMore {
			return all, nil
		}
		req = &notionapi.DatabaseQueryRequest{Filter: filter, StartCursor: resp.NextCursor}
	}
}

// FindByPhone returns the first page whose phone property equals phone, or
// nil when there is none.
func FindByPhone(ctx context.Context, c Client, dbID, property, phone string) (*notionapi.Page, error) {
	resp, err := c.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property:    property,
			PhoneNumber: &notionapi.TextFilterCondition{Equals: phone},
		},
		PageSize: 1,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "notion: find by %s", property)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}
