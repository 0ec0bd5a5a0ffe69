package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/metrics"
	"github.com/sells-group/lead-scout/internal/normalize"
	"github.com/sells-group/lead-scout/internal/pipeline"
	"github.com/sells-group/lead-scout/internal/resilience"
	"github.com/sells-group/lead-scout/internal/scout"
	"github.com/sells-group/lead-scout/internal/segment"
	"github.com/sells-group/lead-scout/internal/store"
	"github.com/sells-group/lead-scout/pkg/apify"
)

// scoutEnv holds the initialized dependencies shared by scan, process and
// serve.
type scoutEnv struct {
	Store   store.Store
	Service *scout.Service
	Metrics *metrics.Recorder
}

// Close releases the store.
func (e *scoutEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens and migrates the configured store.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// loadCampaign returns the configured campaign. Without a templates file
// only the built-in campaign is available.
func loadCampaign() (segment.Campaign, error) {
	name := cfg.Campaign.Name
	if cfg.Campaign.TemplatesPath == "" {
		if name != "" && name != segment.DefaultCampaignName {
			return segment.Campaign{}, eris.Errorf("campaign %q needs campaign.templates_path", name)
		}
		return segment.DefaultCampaign(), nil
	}

	c, err := segment.LoadCampaign(cfg.Campaign.TemplatesPath)
	if err != nil {
		return segment.Campaign{}, err
	}
	if name != "" && name != c.Name {
		return segment.Campaign{}, eris.Errorf("campaign %q not found in %s (has %q)", name, cfg.Campaign.TemplatesPath, c.Name)
	}
	return c, nil
}

func buildPipeline() (*pipeline.Pipeline, error) {
	campaign, err := loadCampaign()
	if err != nil {
		return nil, err
	}
	return pipeline.New(segment.New(campaign),
		pipeline.WithConcurrency(cfg.Pipeline.Concurrency),
		pipeline.WithAliases(normalize.DefaultAliases.WithExtra(cfg.Normalize.ExtraAliases)),
	), nil
}

func buildFetcher() scout.Fetcher {
	client := apify.NewClient(cfg.Apify.Token,
		apify.WithBaseURL(cfg.Apify.BaseURL),
		apify.WithPollInterval(time.Duration(cfg.Apify.PollIntervalSecs)*time.Second),
	)
	return scout.NewApifyFetcher(client,
		scout.WithActorID(cfg.Apify.ActorID),
		scout.WithRetry(resilience.NewRetryConfig(cfg.Retry.MaxAttempts, cfg.Retry.InitialBackoffMs, cfg.Retry.MaxBackoffMs)),
		scout.WithTimeout(time.Duration(cfg.Apify.TimeoutSecs)*time.Second),
	)
}

// initScout wires store, pipeline and service. online adds the actor
// fetcher; offline environments can only process local datasets.
func initScout(ctx context.Context, online bool) (*scoutEnv, error) {
	p, err := buildPipeline()
	if err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	var fetcher scout.Fetcher
	if online {
		fetcher = buildFetcher()
	}

	rec := metrics.New()
	svc := scout.NewService(st, fetcher, p,
		scout.WithMetrics(rec),
		scout.WithQueryDefaults(cfg.Apify.PageLimit, cfg.Apify.Zoom),
	)
	return &scoutEnv{Store: st, Service: svc, Metrics: rec}, nil
}
