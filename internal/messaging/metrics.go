// internal/messaging/metrics.go

package messaging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "messaging_active_connections",
		Help: "Number of currently registered websocket connections.",
	})

	eventsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messaging_events_delivered_total",
		Help: "Total realtime events delivered to connected users, by event type.",
	}, []string{"type"})

	messagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "messaging_messages_sent_total",
		Help: "Total messages persisted and broadcast.",
	})

	messagesRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "messaging_messages_read_total",
		Help: "Total messages transitioned to read.",
	})
)

func RecordConnection(n int) {
	activeConnections.Set(float64(n))
}

func RecordEventDelivered(eventType string) {
	eventsDelivered.WithLabelValues(eventType).Inc()
}

func RecordMessageSent() {
	messagesSent.Inc()
}

func RecordMessageRead() {
	messagesRead.Inc()
}
