package analyst

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Upstream sources counted by UpstreamFailures.
const (
	SourceInfo       = "info"
	SourceStatements = "statements"
	SourceRatingLog  = "rating_log"
	SourceNarrative  = "narrative"
)

type Metrics struct {
	Analyses         *prometheus.CounterVec
	UpstreamFailures *prometheus.CounterVec
	Duration         prometheus.Histogram
}

// NewMetrics registers the analyst collectors with reg. A nil reg leaves
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyst_analyses_total",
			Help: "Completed analyses by rating.",
		}, []string{"rating"}),
		UpstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyst_upstream_failures_total",
			Help: "Failed upstream calls by source.",
		}, []string{"source"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analyst_analysis_seconds",
			Help:    "Time to fetch, compute and rate one ticker.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Analyses, m.UpstreamFailures, m.Duration)
	}
	return m
}
