package sink

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/pkg/notion"
)

// Notion lead database property names.
const (
	PropName   = "Name"
	PropRating = "Rating"
	PropPhone  = "Phone"
	PropEmail  = "Email"
	PropMap    = "Map"
	PropTier   = "Tier"
	PropScript = "Script"
)

// NotionSink writes each lead as a page in a Notion database, updating the
// existing page when one with the same phone is already there.
type NotionSink struct {
	client notion.Client
	dbID   string
}

// NewNotion creates a sink targeting the given lead database.
func NewNotion(client notion.Client, dbID string) *NotionSink {
	return &NotionSink{client: client, dbID: dbID}
}

// Name implements Sink.
func (s *NotionSink) Name() string { return "notion" }

// Push implements Sink. Per-lead API failures are counted rather than
// aborting the batch; context cancellation stops it.
func (s *NotionSink) Push(ctx context.Context, leads []model.Lead) (PushResult, error) {
	log := zap.L().With(zap.String("sink", s.Name()), zap.String("db", s.dbID))
	keep, skipped := contactable(leads)
	res := PushResult{Skipped: skipped}

	for _, l := range keep {
		if err := ctx.Err(); err != nil {
			return res, eris.Wrap(err, "sink: notion push")
		}

		existing, err := notion.FindByPhone(ctx, s.client, s.dbID, PropPhone, l.CleanPhone)
		if err != nil {
			res.fail(l, err)
			log.Warn("sink: lookup failed", zap.String("name", l.Name), zap.Error(err))
			continue
		}

		props := leadProperties(l)
		if existing != nil {
			_, err = s.client.UpdatePage(ctx, existing.ID.String(), &notionapi.PageUpdateRequest{Properties: props})
			if err == nil {
				res.Updated++
			}
		} else {
			_, err = s.client.CreatePage(ctx, &notionapi.PageCreateRequest{
				Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: notionapi.DatabaseID(s.dbID)},
				Properties: props,
			})
			if err == nil {
				res.Created++
			}
		}
		if err != nil {
			res.fail(l, err)
			log.Warn("sink: write failed", zap.String("name", l.Name), zap.Error(err))
		}
	}

	log.Info("sink: notion push complete",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func leadProperties(l model.Lead) notionapi.Properties {
	props := notionapi.Properties{
		PropName:   notion.Title(l.Name),
		PropRating: notion.Number(l.Rating),
		PropPhone:  notion.Phone(l.CleanPhone),
		PropTier:   notion.Select(l.Tier.Label()),
		PropScript: notion.Text(l.OutreachMessage),
	}
	if l.HasEmail() {
		props[PropEmail] = notion.Email(l.Email)
	}
	if l.MapLink != "" {
		props[PropMap] = notion.URL(l.MapLink)
	}
	return props
}

func (r *PushResult) fail(l model.Lead, err error) {
	r.Failed++
	r.Errors = append(r.Errors, l.Name+": "+err.Error())
}
