// Package metrics exposes the Prometheus instrumentation for a single
// charge point client process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectionState reports the current RPC transport state: 0
	// disconnected, 1 connecting, 2 connected.
	ConnectionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chargepoint_connection_state",
		Help: "Current WebSocket connection state (0=disconnected, 1=connecting, 2=connected).",
	})

	// ReconnectsTotal counts every reconnect attempt made by the transport.
	ReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chargepoint_reconnects_total",
		Help: "Total number of WebSocket reconnect attempts.",
	})

	// MessagesSent counts outbound CALL/CALLRESULT/CALLERROR frames, labeled
	// by OCPP action and message type.
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chargepoint_messages_sent_total",
		Help: "Total number of OCPP messages sent to the central system.",
	}, []string{"action", "message_type"})

	// MessagesReceived counts inbound CALL/CALLRESULT/CALLERROR frames,
	// labeled by OCPP action and message type.
	MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chargepoint_messages_received_total",
		Help: "Total number of OCPP messages received from the central system.",
	}, []string{"action", "message_type"})

	// CallTimeouts counts calls that never received a CALLRESULT/CALLERROR
	// within the configured call timeout.
	CallTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chargepoint_call_timeouts_total",
		Help: "Total number of outbound calls that timed out waiting for a response.",
	}, []string{"action"})

	// CallDuration observes round-trip latency of outbound calls, labeled by
	// action.
	CallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chargepoint_call_duration_seconds",
		Help:    "Round-trip duration of outbound OCPP calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})

	// QueuedRequests reports how many requests currently sit in the offline
	// FIFO waiting to be sent.
	QueuedRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chargepoint_queued_requests",
		Help: "Number of requests pending in the offline store-and-forward queue.",
	})

	// ActiveTransactions reports the number of connectors currently in an
	// active transaction.
	ActiveTransactions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chargepoint_active_transactions",
		Help: "Number of connectors with an in-progress transaction.",
	})

	// ConnectorStatus reports the last reported status per connector, value
	// being the numeric ChargePointStatus encoding.
	ConnectorStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chargepoint_connector_status",
		Help: "Last notified status per connector, as the numeric ChargePointStatus encoding.",
	}, []string{"connector_id"})

	// AuthorizeDecisions counts authorization pipeline outcomes, labeled by
	// source (cache, local_list, online) and status.
	AuthorizeDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chargepoint_authorize_decisions_total",
		Help: "Total number of authorization decisions, labeled by source and status.",
	}, []string{"source", "status"})

	// MeterValuesSent counts MeterValues.req messages sent, labeled by
	// trigger reason.
	MeterValuesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chargepoint_metervalues_sent_total",
		Help: "Total number of MeterValues.req messages sent, labeled by trigger reason.",
	}, []string{"reason"})

	// SecurityEventsLogged counts entries appended to the security log,
	// labeled by event type.
	SecurityEventsLogged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chargepoint_security_events_total",
		Help: "Total number of security events appended to the security log.",
	}, []string{"event_type"})

	// EventsPublished counts lifecycle events handed to the event sink,
	// labeled by event type.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chargepoint_events_published_total",
		Help: "Total number of lifecycle events published to the event sink.",
	}, []string{"event_type"})

	// EventsPublishFailed counts lifecycle events the sink failed to
	// deliver, labeled by event type.
	EventsPublishFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chargepoint_events_publish_failed_total",
		Help: "Total number of lifecycle events that failed publication.",
	}, []string{"event_type"})
)
