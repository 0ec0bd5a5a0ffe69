package scout

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/resilience"
	"github.com/sells-group/lead-scout/pkg/apify"
)

// DefaultActorID is the Google Maps scraping actor.
const DefaultActorID = "compass/crawler-google-places"

// Fetcher retrieves raw business records for a query.
type Fetcher interface {
	Fetch(ctx context.Context, query model.ScanQuery) ([]model.RawRecord, error)
}

// ActorInput is the input document for the Google Maps actor.
type ActorInput struct {
	SearchStringsArray   []string `json:"searchStringsArray"`
	MaxCrawlerPagination int      `json:"maxCrawlerPagination"`
	Zoom                 int      `json:"zoom"`
}

// NewActorInput builds the actor input for q.
func NewActorInput(q model.ScanQuery) ActorInput {
	return ActorInput{
		SearchStringsArray:   []string{q.SearchString()},
		MaxCrawlerPagination: q.PageLimit,
		Zoom:                 q.Zoom,
	}
}

// FetcherOption configures an ApifyFetcher.
type FetcherOption func(*ApifyFetcher)

// WithActorID overrides DefaultActorID.
func WithActorID(id string) FetcherOption {
	return func(f *ApifyFetcher) {
		if id != "" {
			f.actorID = id
		}
	}
}

// WithRetry sets the retry policy for starting runs and reading datasets.
func WithRetry(cfg resilience.RetryConfig) FetcherOption {
	return func(f *ApifyFetcher) {
		f.retry = cfg
	}
}

// WithTimeout bounds a whole fetch, including the actor run.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *ApifyFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// ApifyFetcher runs the scraping actor and reads its dataset.
type ApifyFetcher struct {
	client  apify.Client
	actorID string
	retry   resilience.RetryConfig
	timeout time.Duration
}

// NewApifyFetcher creates a Fetcher backed by client.
func NewApifyFetcher(client apify.Client, opts ...FetcherOption) *ApifyFetcher {
	f := &ApifyFetcher{
		client:  client,
		actorID: DefaultActorID,
		retry:   resilience.DefaultRetryConfig(),
		timeout: 10 * time.Minute,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch starts an actor run for query, waits for it and returns the
// dataset items in scrape order. Only the start and the dataset read are
// retried; a run that ends badly is not restarted.
func (f *ApifyFetcher) Fetch(ctx context.Context, query model.ScanQuery) ([]model.RawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	log := zap.L().With(zap.String("actor", f.actorID), zap.String("search", query.SearchString()))

	retry := f.retry
	retry.OnRetry = resilience.RetryLogger("apify", "start_run")
	run, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*apify.Run, error) {
		return f.client.StartRun(ctx, f.actorID, NewActorInput(query))
	})
	if err != nil {
		return nil, eris.Wrap(err, "scout: start actor")
	}
	log.Info("scout: actor run started", zap.String("apify_run_id", run.ID))

	run, err = f.client.WaitForRun(ctx, run.ID)
	if err != nil {
		return nil, eris.Wrap(err, "scout: wait for actor")
	}
	if run.DefaultDatasetID == "" {
		return nil, eris.Errorf("scout: run %s has no dataset", run.ID)
	}

	retry.OnRetry = resilience.RetryLogger("apify", "dataset_items")
	items, err := resilience.DoVal(ctx, retry, func(ctx context.Context) ([]map[string]any, error) {
		return f.client.DatasetItems(ctx, run.DefaultDatasetID)
	})
	if err != nil {
		return nil, eris.Wrap(err, "scout: read dataset")
	}

	records := make([]model.RawRecord, len(items))
	for i, item := range items {
		records[i] = model.RawRecord(item)
	}
	log.Info("scout: dataset fetched", zap.Int("records", len(records)))
	return records, nil
}
