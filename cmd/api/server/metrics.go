package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Tsinling0525/flowsmith/engine"
	"github.com/Tsinling0525/flowsmith/validate"
)

type metrics struct {
	builds      *prometheus.CounterVec
	duration    prometheus.Histogram
	score       *prometheus.HistogramVec
	fixes       prometheus.Counter
	validations *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		builds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowsmith",
			Name:      "builds_total",
			Help:      "Workflow builds by input kind and outcome.",
		}, []string{"input", "outcome"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flowsmith",
			Name:      "build_duration_seconds",
			Help:      "Time spent building one workflow.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		score: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flowsmith",
			Name:      "validation_score",
			Help:      "Validation score of built or submitted workflows.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}, []string{"stage"}),
		fixes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "flowsmith",
			Name:      "repair_fixes_total",
			Help:      "Fixes applied by the auto-repairer.",
		}),
		validations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowsmith",
			Name:      "validations_total",
			Help:      "Validate requests by result.",
		}, []string{"valid"}),
	}
}

func (m *metrics) observeBuild(res engine.Result, err error, elapsed time.Duration) {
	m.duration.Observe(elapsed.Seconds())
	input := res.Input
	if input == "" {
		input = "unknown"
	}
	if err != nil {
		m.builds.WithLabelValues(input, "rejected").Inc()
		return
	}
	m.builds.WithLabelValues(input, "built").Inc()
	m.score.WithLabelValues("initial").Observe(float64(res.Initial.Score))
	m.score.WithLabelValues("final").Observe(float64(res.Validation.Score))
	m.fixes.Add(float64(res.Fixes))
}

func (m *metrics) observeValidation(r validate.Report) {
	valid := "false"
	if r.IsValid {
		valid = "true"
	}
	m.validations.WithLabelValues(valid).Inc()
	m.score.WithLabelValues("submitted").Observe(float64(r.Score))
}
