// Package metrics defines the Prometheus collectors of the scraper.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Section outcomes recorded by SectionsTotal.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeEmpty    = "empty"
	OutcomeMismatch = "mismatch"
)

// Commit results recorded by CommitsTotal.
const (
	CommitCommitted = "committed"
	CommitFailed    = "failed"
	CommitSkipped   = "skipped"
)

// Metrics holds all Prometheus collectors for the scraper.
type Metrics struct {
	SectionsTotal     *prometheus.CounterVec
	ExtractionLatency *prometheus.HistogramVec
	CommitsTotal      *prometheus.CounterVec
	CommitLatency     prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg. A nil reg uses a
// fresh registry, which keeps tests independent of the global one.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		SectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secscraper_sections_total",
				Help: "Requested sections by filing type and outcome (success, error, empty, mismatch).",
			},
			[]string{"filing_type", "outcome"},
		),
		ExtractionLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "secscraper_extraction_duration_seconds",
				Help:    "Latency of a single extraction provider call.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"filing_type"},
		),
		CommitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secscraper_session_commits_total",
				Help: "Session commits by result (committed, failed, skipped).",
			},
			[]string{"result"},
		),
		CommitLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "secscraper_session_commit_duration_seconds",
				Help:    "Latency of a session commit.",
				Buckets: prometheus.DefBuckets,
			},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.SectionsTotal, m.ExtractionLatency, m.CommitsTotal, m.CommitLatency)
	return m
}

// Handler serves the registry the collectors were registered on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveSection records one section outcome and the provider call latency.
// It is a no-op on a nil receiver.
func (m *Metrics) ObserveSection(filingType, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.SectionsTotal.WithLabelValues(filingType, outcome).Inc()
	m.ExtractionLatency.WithLabelValues(filingType).Observe(took.Seconds())
}

// ObserveCommit records one session commit attempt.
func (m *Metrics) ObserveCommit(result string, took time.Duration) {
	if m == nil {
		return
	}
	m.CommitsTotal.WithLabelValues(result).Inc()
	if result != CommitSkipped {
		m.CommitLatency.Observe(took.Seconds())
	}
}
