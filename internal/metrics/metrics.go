package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for ingestion and attendance.
type Metrics struct {
	EventsIngested *prometheus.CounterVec
	OCRDegraded    prometheus.Counter
	SessionsOpened prometheus.Counter
	SessionsClosed prometheus.Counter
	IngestLatency  prometheus.Histogram
}

// New registers all service metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		EventsIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "parklot_events_ingested_total",
			Help: "Recognition events ingested by capture category",
		}, []string{"category"}),

		OCRDegraded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "parklot_ocr_degraded_total",
			Help: "Ingestions where OCR produced no usable plate",
		}),

		SessionsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "parklot_sessions_opened_total",
			Help: "Work sessions opened",
		}),

		SessionsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "parklot_sessions_closed_total",
			Help: "Work sessions closed and reconciled",
		}),

		IngestLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "parklot_ingest_duration_seconds",
			Help:    "Duration of full ingestion including image persistence and OCR",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncIngested records one ingested event for a category.
func (m *Metrics) IncIngested(category string) {
	if m != nil {
		m.EventsIngested.WithLabelValues(category).Inc()
	}
}

// IncDegraded records an ingestion that fell back to the unknown plate.
func (m *Metrics) IncDegraded() {
	if m != nil {
		m.OCRDegraded.Inc()
	}
}

// IncOpened records an opened work session.
func (m *Metrics) IncOpened() {
	if m != nil {
		m.SessionsOpened.Inc()
	}
}

// IncClosed records a closed work session.
func (m *Metrics) IncClosed() {
	if m != nil {
		m.SessionsClosed.Inc()
	}
}

// ObserveIngest records the duration of one ingestion call.
func (m *Metrics) ObserveIngest(d time.Duration) {
	if m != nil {
		m.IngestLatency.Observe(d.Seconds())
	}
}
