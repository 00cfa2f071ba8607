// Package metrics exposes Prometheus counters for bot activity. They are
// scraped from the notification server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpdatesProcessed counts inbound Telegram events by kind
	// (command, text, contact, photo, callback).
	UpdatesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_processed_total",
			Help: "Total number of Telegram updates processed by kind",
		},
		[]string{"kind"},
	)

	// NotificationsReceived counts backend hook deliveries by kind
	// (new, assign, cancel).
	NotificationsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_notifications_received_total",
			Help: "Total number of backend notifications received by kind",
		},
		[]string{"kind"},
	)

	// BackendErrors counts failed calls to the dispatcher backend.
	BackendErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_backend_errors_total",
			Help: "Total number of failed backend calls",
		},
	)

	// DroppedEvents counts events that arrived in a step that does not
	// expect them and were logged and dropped.
	DroppedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_dropped_events_total",
			Help: "Total number of unexpected or stale events dropped",
		},
		[]string{"reason"},
	)
)
