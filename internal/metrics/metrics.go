// Package metrics exposes Prometheus counters for notification dispatch.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// NotificationsDispatched counts notifications handed to the dispatcher.
	NotificationsDispatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailcast_notifications_dispatched_total",
			Help: "Total number of notifications processed by the dispatcher.",
		},
	)

	// MessagesSent counts per-recipient messages accepted for delivery, by transport.
	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailcast_messages_sent_total",
			Help: "Total number of messages accepted for delivery, by transport.",
		},
		[]string{"transport"},
	)

	// MessagesFailed counts per-recipient send failures, by transport.
	MessagesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailcast_messages_failed_total",
			Help: "Total number of per-recipient send failures, by transport.",
		},
		[]string{"transport"},
	)

	// ResolutionWarnings counts recoverable directory lookup failures during
	// recipient resolution.
	ResolutionWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailcast_resolution_warnings_total",
			Help: "Total number of recoverable failures during recipient resolution.",
		},
	)
)

// Handler returns the HTTP handler for the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
