package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecollect_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// ItemsReported counts reported e-waste items.
	ItemsReported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecollect_items_reported_total",
			Help: "Total number of e-waste items reported",
		},
	)

	// PickupTransitions counts pickup lifecycle transitions by target state.
	PickupTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecollect_pickup_transitions_total",
			Help: "Total number of pickup request state transitions",
		},
		[]string{"status"},
	)

	// NotificationsDispatched counts in-app notifications created by the dispatcher.
	NotificationsDispatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecollect_notifications_dispatched_total",
			Help: "Total number of in-app notifications created",
		},
	)

	// EmailSends counts outbound email attempts by result (success|failure|skipped).
	EmailSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecollect_email_sends_total",
			Help: "Total number of outbound email delivery attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecollect_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
