package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Outbox relay metrics
	OutboxPublished   *prometheus.CounterVec
	OutboxFailed      *prometheus.CounterVec
	RelayTickDuration prometheus.Histogram

	// Consumer metrics
	ConsumerProcessed    *prometheus.CounterVec
	ConsumerRetries      *prometheus.CounterVec
	ConsumerDeadLettered *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics against the given registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		OutboxPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_published_total",
				Help:      "Total number of outbox records published to the broker",
			},
			[]string{"event_type"},
		),
		OutboxFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_failed_total",
				Help:      "Total number of outbox records marked FAILED",
			},
			[]string{"event_type", "reason"},
		),
		RelayTickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "relay_tick_duration_seconds",
				Help:      "Outbox relay tick duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
		),
		ConsumerProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "consumer_messages_processed_total",
				Help:      "Total number of consumed messages by topic and result",
			},
			[]string{"topic", "result"},
		),
		ConsumerRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "consumer_retries_total",
				Help:      "Total number of local handler retries",
			},
			[]string{"topic"},
		),
		ConsumerDeadLettered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "consumer_dead_lettered_total",
				Help:      "Total number of messages redirected to a dead-letter topic",
			},
			[]string{"topic"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	reg.MustRegister(
		m.OutboxPublished,
		m.OutboxFailed,
		m.RelayTickDuration,
		m.ConsumerProcessed,
		m.ConsumerRetries,
		m.ConsumerDeadLettered,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}
