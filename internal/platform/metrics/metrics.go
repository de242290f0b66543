package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service. Construct once in
// main; every method is safe on a nil receiver so tests can pass nil and
// never touch the default registry.
type Metrics struct {
	requestsTotal          *prometheus.CounterVec
	requestDuration        prometheus.Histogram
	subscribersRegistered  prometheus.Counter
	loansCreated           prometheus.Counter
	loansClosed            prometheus.Counter
	paymentsRecorded       prometheus.Counter
	notificationsPublished prometheus.Counter
	notificationsDropped   prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sikaloan_ussd_requests_total",
			Help: "USSD requests handled, by conversation step and outcome.",
		}, []string{"step", "outcome"}),
		requestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sikaloan_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}),
		subscribersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sikaloan_subscribers_registered_total",
			Help: "Subscribers registered.",
		}),
		loansCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sikaloan_loans_created_total",
			Help: "Loans created.",
		}),
		loansClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sikaloan_loans_closed_total",
			Help: "Loans fully repaid and closed.",
		}),
		paymentsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sikaloan_payments_recorded_total",
			Help: "Payments recorded.",
		}),
		notificationsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sikaloan_notifications_published_total",
			Help: "Notification events handed to the publisher.",
		}),
		notificationsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sikaloan_notifications_dropped_total",
			Help: "Notification events dropped because the dispatch buffer was full.",
		}),
	}
}

// RecordStep counts one handled conversation step.
func (m *Metrics) RecordStep(step, outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(step, outcome).Inc()
}

// ObserveRequest records HTTP latency in seconds.
func (m *Metrics) ObserveRequest(seconds float64) {
	if m == nil {
		return
	}
	m.requestDuration.Observe(seconds)
}

func (m *Metrics) SubscriberRegistered() {
	if m == nil {
		return
	}
	m.subscribersRegistered.Inc()
}

func (m *Metrics) LoanCreated() {
	if m == nil {
		return
	}
	m.loansCreated.Inc()
}

func (m *Metrics) LoanClosed() {
	if m == nil {
		return
	}
	m.loansClosed.Inc()
}

func (m *Metrics) PaymentRecorded() {
	if m == nil {
		return
	}
	m.paymentsRecorded.Inc()
}

func (m *Metrics) NotificationPublished() {
	if m == nil {
		return
	}
	m.notificationsPublished.Inc()
}

func (m *Metrics) NotificationDropped() {
	if m == nil {
		return
	}
	m.notificationsDropped.Inc()
}
