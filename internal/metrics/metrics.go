// Package metrics exposes scan and pipeline counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/pipeline"
)

// Namespace prefixes every metric name.
const Namespace = "scout"

// Recorder holds the scout metrics on a private registry.
type Recorder struct {
	reg *prometheus.Registry

	RecordsTotal *prometheus.CounterVec
	ScansTotal   *prometheus.CounterVec
	ScanDuration prometheus.Histogram
}

// New creates a Recorder with its own registry, including Go runtime and
// process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Recorder{
		reg: reg,
		RecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "records_total",
				Help:      "Scraped records by pipeline outcome",
			},
			[]string{"outcome"},
		),
		ScansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "scans_total",
				Help:      "Scans by final run status",
			},
			[]string{"status"},
		),
		ScanDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "scan_duration_seconds",
				Help:      "Wall time of a scan from fetch to stored result",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34min
			},
		),
	}
}

// ObserveTargets adds one batch's counters to RecordsTotal. A nil Recorder
// is a no-op.
func (r *Recorder) ObserveTargets(tl *model.TargetList) {
	if r == nil || tl == nil {
		return
	}
	c := tl.Counters
	for outcome, n := range map[pipeline.Outcome]int{
		pipeline.OutcomeKept:         len(tl.Leads),
		pipeline.OutcomeNoPhone:      c.DroppedNoPhone,
		pipeline.OutcomeInvalidPhone: c.DroppedInvalidPhone,
		pipeline.OutcomeLandline:     c.DroppedLandline,
		pipeline.OutcomeLowRating:    c.DroppedLowRating,
	} {
		r.RecordsTotal.WithLabelValues(outcome.String()).Add(float64(n))
	}
}

// ObserveScan records a finished scan.
func (r *Recorder) ObserveScan(status model.RunStatus, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.ScansTotal.WithLabelValues(string(status)).Inc()
	r.ScanDuration.Observe(elapsed.Seconds())
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
