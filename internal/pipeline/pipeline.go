// Package pipeline turns a batch of scraped records into an ordered target
// list: normalize, sanitize phone, classify, segment, filter.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/normalize"
	"github.com/sells-group/lead-scout/internal/phone"
	"github.com/sells-group/lead-scout/internal/segment"
)

// Outcome is the fate of a single record.
type Outcome int

const (
	// OutcomeKept means the record became a target.
	OutcomeKept Outcome = iota
	// OutcomeNoPhone means no alias resolved to a phone value.
	OutcomeNoPhone
	// OutcomeInvalidPhone means the phone could not be canonicalized.
	OutcomeInvalidPhone
	// OutcomeLandline means the phone is in a toll-free range.
	OutcomeLandline
	// OutcomeLowRating means the rating fell into the Skip tier.
	OutcomeLowRating
)

// Outcomes lists every outcome, for metrics labels.
var Outcomes = []Outcome{OutcomeKept, OutcomeNoPhone, OutcomeInvalidPhone, OutcomeLandline, OutcomeLowRating}

func (o Outcome) String() string {
	switch o {
	case OutcomeKept:
		return "kept"
	case OutcomeNoPhone:
		return "no_phone"
	case OutcomeInvalidPhone:
		return "invalid_phone"
	case OutcomeLandline:
		return "landline"
	case OutcomeLowRating:
		return "low_rating"
	default:
		return "unknown"
	}
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConcurrency processes up to n records at once. Output order is the
// same as with n == 1.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithAliases overrides the field aliases used for normalization.
func WithAliases(a normalize.Aliases) Option {
	return func(p *Pipeline) {
		p.aliases = a
	}
}

// Pipeline holds the stateless configuration for processing batches.
// A Pipeline is safe for concurrent use.
type Pipeline struct {
	engine      *segment.Engine
	aliases     normalize.Aliases
	concurrency int
}

// New creates a Pipeline that segments with engine.
func New(engine *segment.Engine, opts ...Option) *Pipeline {
	p := &Pipeline{
		engine:      engine,
		aliases:     normalize.DefaultAliases,
		concurrency: 1,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

type result struct {
	lead    model.Lead
	outcome Outcome
}

// Run processes records for city and returns the surviving leads in input
// order plus drop counters. A record that fails for any reason is dropped
// and counted; it never aborts the batch.
func (p *Pipeline) Run(records []model.RawRecord, city string) *model.TargetList {
	results := make([]result, len(records))

	if p.concurrency <= 1 || len(records) < 2 {
		for i, raw := range records {
			results[i] = p.safeProcess(i, raw, city)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(p.concurrency)
		for i, raw := range records {
			g.Go(func() error {
				results[i] = p.safeProcess(i, raw, city)
				return nil
			})
		}
		_ = g.Wait()
	}

	tl := &model.TargetList{Leads: make([]model.Lead, 0, len(records))}
	tl.Counters.Fetched = len(records)
	for _, r := range results {
		switch r.outcome {
		case OutcomeKept:
			tl.Leads = append(tl.Leads, r.lead)
		case OutcomeNoPhone:
			tl.Counters.DroppedNoPhone++
		case OutcomeInvalidPhone:
			tl.Counters.DroppedInvalidPhone++
		case OutcomeLandline:
			tl.Counters.DroppedLandline++
		case OutcomeLowRating:
			tl.Counters.DroppedLowRating++
		}
	}

	zap.L().Debug("pipeline: batch processed",
		zap.String("city", city),
		zap.Int("fetched", tl.Counters.Fetched),
		zap.Int("targets", len(tl.Leads)),
		zap.Int("dropped", tl.Counters.Dropped()),
	)

	return tl
}

// Process derives a single lead and reports its outcome. The lead carries
// every field derived up to the step that dropped it.
func (p *Pipeline) Process(raw model.RawRecord, city string) (model.Lead, Outcome) {
	lead := p.aliases.Normalize(raw)

	if lead.RawPhone == "" {
		return lead, OutcomeNoPhone
	}

	lead.CleanPhone = phone.Clean(lead.RawPhone)
	if lead.CleanPhone == "" {
		return lead, OutcomeInvalidPhone
	}

	lead.IsMobileLikely = phone.IsLikelyMobile(lead.CleanPhone)
	if !lead.IsMobileLikely {
		return lead, OutcomeLandline
	}

	p.engine.Apply(&lead, city)
	if lead.Tier == model.TierSkip {
		return lead, OutcomeLowRating
	}

	return lead, OutcomeKept
}

// safeProcess isolates a panic to its record. A record that cannot be
// processed is counted as having no usable phone, like a record that
// normalized to defaults.
func (p *Pipeline) safeProcess(idx int, raw model.RawRecord, city string) (r result) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Warn("pipeline: record dropped after panic",
				zap.Int("index", idx),
				zap.String("panic", fmt.Sprint(rec)),
			)
			r = result{lead: p.aliases.Normalize(nil), outcome: OutcomeNoPhone}
		}
	}()

	lead, outcome := p.Process(raw, city)
	return result{lead: lead, outcome: outcome}
}
