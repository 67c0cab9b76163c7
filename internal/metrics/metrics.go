// Package metrics exposes Prometheus counters for keyword-pager activity.
package metrics

import (
	"net/http"

	"github.com/Priya8975/keyword-pager/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kwpager"

// Metrics counts activity records and reports queue depth. Each instance owns
// its registry so tests can build as many as they like.
type Metrics struct {
	registry      *prometheus.Registry
	activity      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	storeFaults   prometheus.Counter
}

// New registers the collectors. queueDepth may be nil.
func New(queueDepth func() int) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		activity: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_total",
			Help:      "Activity records by type.",
		}, []string{"type"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification delivery attempts by outcome.",
		}, []string{"outcome"}),
		storeFaults: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_faults_total",
			Help:      "Keyword store operations that failed.",
		}),
	}

	if queueDepth != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Inbound events waiting for a worker.",
		}, func() float64 { return float64(queueDepth()) })
	}

	return m
}

// Publish records one activity.
func (m *Metrics) Publish(a domain.Activity) {
	m.activity.WithLabelValues(a.Type).Inc()

	switch a.Type {
	case domain.ActivityNotificationSent:
		m.notifications.WithLabelValues("sent").Inc()
	case domain.ActivityNotificationFailed:
		m.notifications.WithLabelValues("failed").Inc()
	case domain.ActivityStoreFault:
		m.storeFaults.Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
