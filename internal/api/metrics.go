// Package api – Prometheus instrumentation for outbound backend calls.
//
// Labels are the logical operation name and the HTTP status code (or
// "transport_error" when no response was received), keeping cardinality
// bounded to the fixed operation set times a handful of statuses.
package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Logical operation names used as metric labels and in *Error.Op.
const (
	opListTickets  = "list_tickets"
	opGetTicket    = "get_ticket"
	opCreateTicket = "create_ticket"
	opDeleteTicket = "delete_ticket"
	opUpdateStatus = "update_ticket_status"
	opSendMessage  = "send_message"
	opListMessages = "list_messages"
	opListUsers    = "list_users"
	opGetUser      = "get_user"
	opSignUp       = "sign_up"
	opLogIn        = "log_in"
)

// statusTransportError is the status label for calls that never produced an
// HTTP response.
const statusTransportError = "transport_error"

var (
	// backendReqs counts outbound backend calls by operation and outcome.
	backendReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_backend_requests_total",
			Help: "Total number of calls to the remote support backend.",
		},
		[]string{"operation", "status"},
	)

	// backendLat records round-trip duration in seconds per operation. Status
	// is omitted to keep histogram cardinality low.
	backendLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "support_backend_request_duration_seconds",
			Help:    "Duration of calls to the remote support backend in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(backendReqs, backendLat)
}

// observe records one completed (or failed) round trip.
func observe(op, status string, d time.Duration) {
	backendReqs.WithLabelValues(op, status).Inc()
	backendLat.WithLabelValues(op).Observe(d.Seconds())
}
