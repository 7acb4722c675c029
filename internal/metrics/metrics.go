// Package metrics instruments the coordinator with Prometheus collectors. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/models"
)

// Recompute results
const (
	ResultComputed = "computed"
	ResultCached   = "cached"
	ResultError    = "error"
)

type Metrics struct {
	registry          *prometheus.Registry
	triggers          prometheus.Counter
	recomputes        *prometheus.CounterVec
	recomputeDuration prometheus.Histogram
	sessions          prometheus.Gauge
	overflow          prometheus.Gauge
	scheduledMinutes  prometheus.Gauge
	lastSuccess       prometheus.Gauge
	feedback          *prometheus.CounterVec
}

// New registers every collector on a private registry.
func New() *Metrics {
	ns := constants.MetricsNamespace
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		triggers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "triggers_total",
			Help:      "Recompute triggers received, before debouncing.",
		}),
		recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "recomputes_total",
			Help:      "Recomputes by result (computed, cached, error).",
		}, []string{"result"}),
		recomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "recompute_duration_seconds",
			Help:      "Time spent generating a schedule.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "scheduled_sessions",
			Help:      "Sessions in the current schedule.",
		}),
		overflow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "overflow_items",
			Help:      "Sub-sessions that could not be placed.",
		}),
		scheduledMinutes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "scheduled_minutes",
			Help:      "Total study minutes in the current schedule.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "last_recompute_timestamp_seconds",
			Help:      "Unix time of the last successful recompute.",
		}),
		feedback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "learner_feedback_total",
			Help:      "Feedback consumed by the learner, by signal.",
		}, []string{"signal"}),
	}
	m.registry.MustRegister(m.triggers, m.recomputes, m.recomputeDuration, m.sessions,
		m.overflow, m.scheduledMinutes, m.lastSuccess, m.feedback)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Trigger() {
	if m == nil {
		return
	}
	m.triggers.Inc()
}

// ObserveRecompute records one recompute. The schedule gauges only move when a
// result was produced.
func (m *Metrics) ObserveRecompute(result string, duration time.Duration, schedule *models.ScheduleResult) {
	if m == nil {
		return
	}
	m.recomputes.WithLabelValues(result).Inc()
	if result == ResultComputed {
		m.recomputeDuration.Observe(duration.Seconds())
	}
	if schedule != nil && result != ResultError {
		m.sessions.Set(float64(len(schedule.Sessions)))
		m.overflow.Set(float64(len(schedule.Overflow)))
		m.scheduledMinutes.Set(float64(schedule.ScheduledMinutes()))
		m.lastSuccess.SetToCurrentTime()
	}
}

func (m *Metrics) ObserveFeedback(positive, negative, neutral, dropped int) {
	if m == nil {
		return
	}
	m.feedback.WithLabelValues("positive").Add(float64(positive))
	m.feedback.WithLabelValues("negative").Add(float64(negative))
	m.feedback.WithLabelValues("neutral").Add(float64(neutral))
	m.feedback.WithLabelValues("dropped").Add(float64(dropped))
}

// WriteTextfile writes every collector to path in the node-exporter textfile
// format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
