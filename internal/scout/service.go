// Package scout runs a scan end to end: fetch from the scraping provider,
// run the lead pipeline, store the result.
package scout

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/metrics"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/pipeline"
	"github.com/sells-group/lead-scout/internal/store"
)

// Query defaults sent to the actor when the caller leaves them unset.
const (
	DefaultPageLimit = 2
	DefaultZoom      = 14
)

var (
	// ErrUpstream matches any failure of the scraping provider.
	ErrUpstream = eris.New("scout: upstream provider failed")
	// ErrNoResults means the provider returned an empty dataset.
	ErrNoResults = eris.New("scout: no results")
	// ErrInvalidQuery means the search term or location is blank.
	ErrInvalidQuery = eris.New("scout: search term and location are required")
)

// UpstreamError carries the provider failure behind ErrUpstream.
type UpstreamError struct {
	Cause error
}

func (e *UpstreamError) Error() string {
	return ErrUpstream.Error() + ": " + e.Cause.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, ErrUpstream) true.
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// Option configures a Service.
type Option func(*Service)

// WithMetrics records scan and pipeline metrics on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithQueryDefaults sets the page limit and zoom used when a query has none.
func WithQueryDefaults(pageLimit, zoom int) Option {
	return func(s *Service) {
		if pageLimit > 0 {
			s.pageLimit = pageLimit
		}
		if zoom > 0 {
			s.zoom = zoom
		}
	}
}

// Service coordinates fetch, pipeline and storage for scans.
type Service struct {
	store     store.Store
	fetcher   Fetcher
	pipeline  *pipeline.Pipeline
	metrics   *metrics.Recorder
	pageLimit int
	zoom      int
}

// NewService creates a Service. fetcher may be nil for offline use, in
// which case Scan fails and Process still works.
func NewService(st store.Store, fetcher Fetcher, p *pipeline.Pipeline, opts ...Option) *Service {
	s := &Service{
		store:     st,
		fetcher:   fetcher,
		pipeline:  p,
		pageLimit: DefaultPageLimit,
		zoom:      DefaultZoom,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// PrepareQuery trims q and fills in defaults. It fails when the search
// term or location is blank.
func (s *Service) PrepareQuery(q model.ScanQuery) (model.ScanQuery, error) {
	q.SearchTerm = strings.TrimSpace(q.SearchTerm)
	q.Location = strings.TrimSpace(q.Location)
	if q.SearchTerm == "" || q.Location == "" {
		return q, ErrInvalidQuery
	}
	if q.PageLimit <= 0 {
		q.PageLimit = s.pageLimit
	}
	if q.Zoom <= 0 {
		q.Zoom = s.zoom
	}
	return q, nil
}

// Scan fetches records for query and turns them into a stored target list.
// The returned run is non-nil once it has been created, even on error.
// Provider failures are reported as *UpstreamError and leave the run
// failed; an empty dataset leaves the run empty and returns ErrNoResults.
func (s *Service) Scan(ctx context.Context, query model.ScanQuery) (*model.Run, error) {
	query, err := s.PrepareQuery(query)
	if err != nil {
		return nil, err
	}
	if s.fetcher == nil {
		return nil, eris.New("scout: no fetcher configured")
	}

	start := time.Now()
	run, err := s.startRun(ctx, query)
	if err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("run_id", run.ID), zap.String("city", query.Location))

	log.Info("scout: fetching", zap.String("phase", "fetch"), zap.String("search", query.SearchString()))
	records, err := s.fetcher.Fetch(ctx, query)
	if err != nil {
		log.Error("scout: fetch failed", zap.String("phase", "fetch"), zap.Error(err))
		return s.fail(ctx, run, &UpstreamError{Cause: err}, start)
	}

	if len(records) == 0 {
		log.Warn("scout: provider returned no records", zap.String("phase", "fetch"))
		return s.finish(ctx, run, &model.TargetList{Leads: []model.Lead{}}, start, ErrNoResults)
	}

	return s.process(ctx, run, records, start)
}

// Process runs the pipeline over already-fetched records and stores the
// result as a new run. An empty batch yields an empty run, not an error.
func (s *Service) Process(ctx context.Context, query model.ScanQuery, records []model.RawRecord) (*model.Run, error) {
	query, err := s.PrepareQuery(query)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	run, err := s.startRun(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.process(ctx, run, records, start)
}

func (s *Service) startRun(ctx context.Context, query model.ScanQuery) (*model.Run, error) {
	run, err := s.store.CreateRun(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "scout: create run")
	}
	if err := s.store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
		return run, eris.Wrap(err, "scout: mark run running")
	}
	run.Status = model.RunStatusRunning
	return run, nil
}

func (s *Service) process(ctx context.Context, run *model.Run, records []model.RawRecord, start time.Time) (*model.Run, error) {
	log := zap.L().With(zap.String("run_id", run.ID), zap.String("city", run.Query.Location))

	if cov := pipeline.SchemaCoverage(records, s.pipeline.Aliases()); cov.Drifted() {
		log.Warn("scout: no record carries a known field; the provider schema may have changed",
			zap.String("phase", "normalize"),
			zap.Int("records", cov.Records),
		)
	}

	tl := s.pipeline.Run(records, run.Query.Location)
	log.Info("scout: pipeline complete",
		zap.String("phase", "pipeline"),
		zap.Int("fetched", tl.Counters.Fetched),
		zap.Int("targets", tl.Len()),
		zap.Int("dropped_no_phone", tl.Counters.DroppedNoPhone),
		zap.Int("dropped_invalid_phone", tl.Counters.DroppedInvalidPhone),
		zap.Int("dropped_landline", tl.Counters.DroppedLandline),
		zap.Int("dropped_low_rating", tl.Counters.DroppedLowRating),
	)
	s.metrics.ObserveTargets(tl)

	return s.finish(ctx, run, tl, start, nil)
}

// finish stores tl and returns the stored run together with result.
func (s *Service) finish(ctx context.Context, run *model.Run, tl *model.TargetList, start time.Time, result error) (*model.Run, error) {
	if err := s.store.CompleteRun(ctx, run.ID, tl); err != nil {
		return run, eris.Wrapf(err, "scout: complete run %s", run.ID)
	}
	stored, err := s.store.GetRun(ctx, run.ID)
	if err != nil {
		return run, eris.Wrapf(err, "scout: reload run %s", run.ID)
	}
	s.metrics.ObserveScan(stored.Status, time.Since(start))
	return stored, result
}

func (s *Service) fail(ctx context.Context, run *model.Run, cause error, start time.Time) (*model.Run, error) {
	run.Status = model.RunStatusFailed
	run.Error = cause.Error()
	if err := s.store.FailRun(context.WithoutCancel(ctx), run.ID, run.Error); err != nil {
		zap.L().Error("scout: record run failure", zap.String("run_id", run.ID), zap.Error(err))
	}
	s.metrics.ObserveScan(model.RunStatusFailed, time.Since(start))
	return run, cause
}
