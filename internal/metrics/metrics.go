// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animehub_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animehub_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "animehub_api_active_requests",
			Help: "Number of requests currently being served",
		},
	)

	// CatalogMutations counts committed anime and category writes.
	CatalogMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animehub_catalog_mutations_total",
			Help: "Total number of committed catalog mutations",
		},
		[]string{"entity", "action"},
	)

	EventSubscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "animehub_event_subscribers",
			Help: "Connected catalog event subscribers",
		},
		[]string{"transport"}, // "tcp", "ws"
	)
)

// RecordAPIRequest records one served request. route is the matched route
// pattern, not the raw path, to keep label cardinality bounded.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordMutation(entity, action string) {
	CatalogMutations.WithLabelValues(entity, action).Inc()
}

func SetSubscribers(transport string, n int) {
	EventSubscribers.WithLabelValues(transport).Set(float64(n))
}
