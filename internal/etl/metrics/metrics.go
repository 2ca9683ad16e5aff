package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for pipeline runs.
type Metrics struct {
	// Run outcomes by status ("ok", "error")
	RunsTotal *prometheus.CounterVec

	// End-to-end run latency
	RunDuration prometheus.Histogram

	// Report rows appended to history
	RowsAppended prometheus.Counter
}

// New creates a Metrics instance with all pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trainkpi_pipeline_runs_total",
			Help: "Total pipeline runs by outcome",
		}, []string{"status"}),

		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trainkpi_pipeline_run_duration_seconds",
			Help:    "Duration of full pipeline runs including export and persistence",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		RowsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trainkpi_history_rows_appended_total",
			Help: "Total KPI report rows appended to the history store",
		}),
	}
}

// RecordRun records one pipeline run outcome and its duration.
func (m *Metrics) RecordRun(status string, d time.Duration) {
	if m != nil {
		m.RunsTotal.WithLabelValues(status).Inc()
		m.RunDuration.Observe(d.Seconds())
	}
}

// AddRowsAppended records rows written to history.
func (m *Metrics) AddRowsAppended(n int) {
	if m != nil {
		m.RowsAppended.Add(float64(n))
	}
}
