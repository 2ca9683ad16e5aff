package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the dashboard.
type Metrics struct {
	// Request latency by route
	RequestLatency *prometheus.HistogramVec

	// Explicit cache refreshes triggered via POST /refresh
	Refreshes prometheus.Counter
}

// New creates a Metrics instance with all dashboard metrics registered.
func New() *Metrics {
	return &Metrics{
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trainkpi_dashboard_request_duration_seconds",
			Help:    "Duration of dashboard HTTP requests by route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),

		Refreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trainkpi_dashboard_refreshes_total",
			Help: "Total explicit live-data refreshes",
		}),
	}
}

// ObserveRequest records one request's duration for a route.
func (m *Metrics) ObserveRequest(route string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(route).Observe(d.Seconds())
	}
}

// IncrementRefreshes records an explicit refresh.
func (m *Metrics) IncrementRefreshes() {
	if m != nil {
		m.Refreshes.Inc()
	}
}
