package sink

import (
	"context"
	"fmt"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/pkg/salesforce"
)

func sampleLeads() []model.Lead {
	return []model.Lead{
		{
			Name:            "Ace Roofing",
			Rating:          4.9,
			Email:           "ace@example.com",
			MapLink:         "https://maps.google.com/?cid=1",
			CleanPhone:      "+12145550100",
			Tier:            model.TierElite,
			OutreachMessage: "Hi Ace Roofing",
		},
		{
			Name:            "Bolt Roofing",
			Rating:          4.2,
			Email:           model.EmailNotAvailable,
			CleanPhone:      "+12145550101",
			Tier:            model.TierGrowth,
			OutreachMessage: "Hi Bolt Roofing",
		},
		{Name: "Cold Co", Rating: 3.1, CleanPhone: "+12145550102", Tier: model.TierSkip},
	}
}

type mockNotion struct {
	mock.Mock
}

func (m *mockNotion) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	args := m.Called(ctx, dbID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.DatabaseQueryResponse), args.Error(1)
}

func (m *mockNotion) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func (m *mockNotion) UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, pageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func phoneQuery(phone string) any {
	return mock.MatchedBy(func(r *notionapi.DatabaseQueryRequest) bool {
		pf, ok := r.Filter.(notionapi.PropertyFilter)
		return ok && pf.PhoneNumber != nil && pf.PhoneNumber.Equals == phone
	})
}

func TestNotionSink_CreatesAndUpdates(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()
	leads := sampleLeads()

	mc.On("QueryDatabase", ctx, "leads-db", phoneQuery("+12145550100")).
		Return(&notionapi.DatabaseQueryResponse{}, nil)
	mc.On("QueryDatabase", ctx, "leads-db", phoneQuery("+12145550101")).
		Return(&notionapi.DatabaseQueryResponse{Results: []notionapi.Page{{ID: "page-bolt"}}}, nil)

	mc.On("CreatePage", ctx, mock.MatchedBy(func(r *notionapi.PageCreateRequest) bool {
		email, hasEmail := r.Properties[PropEmail].(notionapi.EmailProperty)
		tier := r.Properties[PropTier].(notionapi.SelectProperty)
		return r.Parent.DatabaseID == "leads-db" &&
			hasEmail && email.Email == "ace@example.com" &&
			tier.Select.Name == "Elite"
	})).Return(&notionapi.Page{ID: "page-ace"}, nil).Once()

	mc.On("UpdatePage", ctx, "page-bolt", mock.MatchedBy(func(r *notionapi.PageUpdateRequest) bool {
		_, hasEmail := r.Properties[PropEmail]
		_, hasMap := r.Properties[PropMap]
		return !hasEmail && !hasMap
	})).Return(&notionapi.Page{ID: "page-bolt"}, nil).Once()

	res, err := NewNotion(mc, "leads-db").Push(ctx, leads)
	require.NoError(t, err)
	assert.Equal(t, PushResult{Created: 1, Updated: 1, Skipped: 1}, res)
	assert.Equal(t, len(leads), res.Total())
	mc.AssertExpectations(t)
}

func TestNotionSink_CountsFailures(t *testing.T) {
	mc := new(mockNotion)
	mc.On("QueryDatabase", mock.Anything, "db", mock.Anything).Return(nil, assert.AnError).Once()
	mc.On("QueryDatabase", mock.Anything, "db", mock.Anything).Return(&notionapi.DatabaseQueryResponse{}, nil)
	mc.On("CreatePage", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	res, err := NewNotion(mc, "db").Push(context.Background(), sampleLeads()[:2])
	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)
	assert.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], "Ace Roofing")
}

func TestNotionSink_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewNotion(new(mockNotion), "db").Push(ctx, sampleLeads())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeSF struct {
	existing []salesforce.Lead
	inserted []map[string]any
	results  func(records []map[string]any) []salesforce.CollectionResult
	queryErr error
}

func (f *fakeSF) Query(_ context.Context, _ string, out any) error {
	if f.queryErr != nil {
		return f.queryErr
	}
	*out.(*[]salesforce.Lead) = f.existing
	return nil
}

func (f *fakeSF) InsertCollection(_ context.Context, _ string, records []map[string]any) ([]salesforce.CollectionResult, error) {
	f.inserted = append(f.inserted, records...)
	if f.results != nil {
		return f.results(records), nil
	}
	out := make([]salesforce.CollectionResult, len(records))
	for i := range out {
		out[i] = salesforce.CollectionResult{ID: fmt.Sprintf("00Q%d", i), Success: true}
	}
	return out, nil
}

func TestSalesforceSink_InsertsLeadRecords(t *testing.T) {
	fc := &fakeSF{}
	res, err := NewSalesforce(fc).Push(context.Background(), sampleLeads())
	require.NoError(t, err)
	assert.Equal(t, PushResult{Created: 2, Skipped: 1}, res)

	require.Len(t, fc.inserted, 2)
	ace := fc.inserted[0]
	assert.Equal(t, "Ace Roofing", ace["Company"])
	assert.Equal(t, LeadLastName, ace["LastName"])
	assert.Equal(t, "+12145550100", ace["Phone"])
	assert.Equal(t, "ace@example.com", ace["Email"])
	assert.Equal(t, "Hot", ace["Rating"])
	assert.Equal(t, "Hi Ace Roofing", ace["Description"])
	assert.Equal(t, LeadSource, ace["LeadSource"])

	bolt := fc.inserted[1]
	assert.Equal(t, "Warm", bolt["Rating"])
	assert.NotContains(t, bolt, "Email")
}

func TestSalesforceSink_SkipsExistingAndDuplicates(t *testing.T) {
	leads := sampleLeads()
	dup := leads[0]
	dup.Name = "Ace Roofing LLC"
	leads = append(leads, dup)

	fc := &fakeSF{existing: []salesforce.Lead{{ID: "00Qold", Phone: "+12145550101"}}}
	res, err := NewSalesforce(fc).Push(context.Background(), leads)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 3, res.Skipped)
	require.Len(t, fc.inserted, 1)
	assert.Equal(t, "Ace Roofing", fc.inserted[0]["Company"])
}

func TestSalesforceSink_RecordFailures(t *testing.T) {
	fc := &fakeSF{results: func(records []map[string]any) []salesforce.CollectionResult {
		out := make([]salesforce.CollectionResult, len(records))
		out[0] = salesforce.CollectionResult{Success: true, ID: "00Q1"}
		out[1] = salesforce.CollectionResult{Errors: []string{"INVALID_EMAIL_ADDRESS"}}
		return out
	}}
	res, err := NewSalesforce(fc).Push(context.Background(), sampleLeads())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []string{"Bolt Roofing: INVALID_EMAIL_ADDRESS"}, res.Errors)
}

func TestSalesforceSink_DedupeError(t *testing.T) {
	fc := &fakeSF{queryErr: assert.AnError}
	_, err := NewSalesforce(fc).Push(context.Background(), sampleLeads())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink: salesforce dedupe")
	assert.Empty(t, fc.inserted)
}

func TestSalesforceSink_NothingContactable(t *testing.T) {
	fc := &fakeSF{queryErr: assert.AnError}
	res, err := NewSalesforce(fc).Push(context.Background(), sampleLeads()[2:])
	require.NoError(t, err)
	assert.Equal(t, PushResult{Skipped: 1}, res)
}

func TestLeadRating(t *testing.T) {
	assert.Equal(t, "Hot", leadRating(model.TierElite))
	assert.Equal(t, "Warm", leadRating(model.TierGrowth))
	assert.Equal(t, "Cold", leadRating(model.TierSkip))
}
