package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeNoFace  = "no_face"
	OutcomeError   = "error"
)

type Metrics struct {
	analyses *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New registers the analyzer collectors on reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emotion_analyses_total",
				Help: "Total number of recognizer calls by detector backend and outcome.",
			},
			[]string{"backend", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "emotion_analysis_duration_seconds",
				Help:    "Recognizer call latency by detector backend.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"backend"},
		),
	}

	reg.MustRegister(m.analyses, m.latency)
	return m
}

// Observe records one recognizer call. Safe on a nil receiver.
func (m *Metrics) Observe(backend string, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(backend, outcome).Inc()
	m.latency.WithLabelValues(backend).Observe(elapsed.Seconds())
}
