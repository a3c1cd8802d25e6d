package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Record outcomes.
const (
	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Metrics exports per-record outcomes and run durations. A nil *Metrics
// records nothing.
type Metrics struct {
	records  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kindlesync",
			Subsystem: "sync",
			Name:      "records_total",
			Help:      "Library records processed, by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kindlesync",
			Subsystem: "sync",
			Name:      "run_duration_seconds",
			Help:      "Wall time of synchronization runs.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		}, []string{"op", "status"}),
	}
	if reg != nil {
		reg.MustRegister(m.records, m.duration)
	}
	return m
}

func (m *Metrics) record(op Kind, outcome string) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(string(op), outcome).Inc()
}

func (m *Metrics) observe(run *Run) {
	if m == nil || run.FinishedAt == nil {
		return
	}
	m.duration.WithLabelValues(string(run.Kind), string(run.Status)).
		Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())
}

// Records returns the counter for op and outcome.
func (m *Metrics) Records(op Kind, outcome string) prometheus.Counter {
	return m.records.WithLabelValues(string(op), outcome)
}
