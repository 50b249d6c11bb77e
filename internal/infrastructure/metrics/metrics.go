package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PaymentMetrics covers the reconciliation engine and both fallback sweeps.
type PaymentMetrics struct {
	PaymentEventsTotal    prometheus.CounterVec
	DuplicateEventsTotal  prometheus.Counter
	PollChecksTotal       prometheus.Counter
	PollUpdatesTotal      prometheus.Counter
	PollErrorsTotal       prometheus.Counter
	TimeoutsEnforcedTotal prometheus.Counter
	TimeoutErrorsTotal    prometheus.Counter
	PublishFailuresTotal  prometheus.Counter
	ReconcileDuration     prometheus.Histogram
}

func NewPaymentMetrics() *PaymentMetrics {
	return &PaymentMetrics{
		PaymentEventsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_events_total",
				Help: "Payment status events processed, labeled by outcome bucket and source",
			},
			[]string{"outcome", "source"},
		),

		DuplicateEventsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_duplicate_events_total",
				Help: "Payment events discarded because the event id was already applied",
			},
		),

		PollChecksTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_poll_checks_total",
				Help: "Orders checked against the gateway by the status poller",
			},
		),

		PollUpdatesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_poll_updates_total",
				Help: "Orders whose status was updated by the poller",
			},
		),

		PollErrorsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_poll_errors_total",
				Help: "Per-order polling failures, batch continued",
			},
		),

		TimeoutsEnforcedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_timeouts_enforced_total",
				Help: "Orders force-failed because the payment window elapsed",
			},
		),

		TimeoutErrorsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_timeout_errors_total",
				Help: "Per-order timeout sweep failures, batch continued",
			},
		),

		PublishFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "order_event_publish_failures_total",
				Help: "Kafka publishes that failed after a committed state change",
			},
		),

		ReconcileDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "payment_reconcile_duration_seconds",
				Help:    "Duration of HandlePaymentStatus calls",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}
