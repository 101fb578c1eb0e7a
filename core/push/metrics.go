package push

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics of encryption and delivery.
type Metrics struct {
	enabled bool

	MessagesEncrypted prometheus.Counter
	RecordSize        prometheus.Histogram // bytes

	Deliveries       *prometheus.CounterVec // by response status
	DeliveryDuration prometheus.Histogram
	DeliveryErrors   *prometheus.CounterVec // by stage: build, send, rate_limit
}

// NewMetrics registers the collectors on reg. A nil reg returns disabled metrics.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		return &Metrics{enabled: false}
	}

	factory := promauto.With(reg)
	return &Metrics{
		enabled: true,

		MessagesEncrypted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_encrypted_total",
				Help:      "Total number of encrypted push messages",
			},
		),
		RecordSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "record_size_bytes",
				Help:      "Size of aes128gcm records",
				Buckets:   prometheus.ExponentialBuckets(128, 2, 8),
			},
		),
		Deliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Total number of push service responses",
			},
			[]string{"status"},
		),
		DeliveryDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "delivery_duration_seconds",
				Help:      "Push request round trip time",
				Buckets:   prometheus.DefBuckets,
			},
		),
		DeliveryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delivery_errors_total",
				Help:      "Total number of requests that got no push service response",
			},
			[]string{"stage"},
		),
	}
}

// RecordEncrypted counts one encrypted message of size bytes.
func (m *Metrics) RecordEncrypted(size int) {
	if m == nil || !m.enabled {
		return
	}
	m.MessagesEncrypted.Inc()
	m.RecordSize.Observe(float64(size))
}

// RecordDelivery records a push service response.
func (m *Metrics) RecordDelivery(status ResponseStatus, seconds float64) {
	if m == nil || !m.enabled {
		return
	}
	m.Deliveries.WithLabelValues(status.String()).Inc()
	m.DeliveryDuration.Observe(seconds)
}

// RecordDeliveryError counts a request that got no push service response.
func (m *Metrics) RecordDeliveryError(stage string) {
	if m == nil || !m.enabled {
		return
	}
	m.DeliveryErrors.WithLabelValues(stage).Inc()
}
