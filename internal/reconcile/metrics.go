package reconcile

import "github.com/prometheus/client_golang/prometheus"

// Skip reasons recorded on the skipped counter.
const (
	SkipMalformed  = "malformed"
	SkipIrrelevant = "irrelevant"
	SkipDuplicate  = "duplicate"
)

// Metrics counts reconciliation outcomes. All record methods are safe
// on a nil receiver so callers can run without a registry.
type Metrics struct {
	processed *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	failures  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		processed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reconciler_events_processed_total",
				Help: "Events fully applied and marked in the ledger, by event type",
			},
			[]string{"type"},
		),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reconciler_events_skipped_total",
				Help: "Events skipped without side effects, by reason",
			},
			[]string{"reason"},
		),
		failures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reconciler_batch_failures_total",
				Help: "Batches aborted and handed back to the transport for redelivery",
			},
		),
	}
	reg.MustRegister(m.processed, m.skipped, m.failures)
	return m
}

func (m *Metrics) EventProcessed(eventType string) {
	if m == nil {
		return
	}
	m.processed.WithLabelValues(eventType).Inc()
}

func (m *Metrics) EventSkipped(reason string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) BatchFailed() {
	if m == nil {
		return
	}
	m.failures.Inc()
}
