package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for an
// archive scan run.
type Metrics struct {
	UnitsCompleted  prometheus.Counter
	UnitsFailed     prometheus.Counter
	ChannelsSkipped prometheus.Counter
	ScanRunning     prometheus.Gauge

	// Per-unit metrics.
	ChannelsScanned prometheus.Counter
	IntervalsRead   prometheus.Counter
	RowsWritten     prometheus.Counter
	UnitDuration    prometheus.Histogram

	// Data-quality signals.
	CoverageClamped prometheus.Counter
}

// NewMetrics creates and registers all scan metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UnitsCompleted,
		m.UnitsFailed,
		m.ChannelsSkipped,
		m.ScanRunning,
		m.ChannelsScanned,
		m.IntervalsRead,
		m.RowsWritten,
		m.UnitDuration,
		m.CoverageClamped,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UnitsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "availability",
			Name:      "units_completed_total",
			Help:      "Total (station, year) scan units completed and persisted.",
		}),
		UnitsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "availability",
			Name:      "units_failed_total",
			Help:      "Total (station, year) scan units that failed retrieval.",
		}),
		ChannelsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "availability",
			Name:      "channels_skipped_total",
			Help:      "Total channels skipped due to invalid record intervals.",
		}),
		ScanRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "availability",
			Name:      "scan_running",
			Help:      "1 while a scan run is active, 0 otherwise.",
		}),
		ChannelsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "availability",
			Name:      "channels_scanned_total",
			Help:      "Total concrete channels computed across all units.",
		}),
		IntervalsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "availability",
			Name:      "intervals_read_total",
			Help:      "Total record intervals retrieved from the archive.",
		}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "availability",
			Name:      "rows_written_total",
			Help:      "Total availability rows written to the product store.",
		}),
		UnitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "availability",
			Name:      "unit_duration_seconds",
			Help:      "Duration of a complete (station, year) scan unit.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		CoverageClamped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "availability",
			Name:      "coverage_clamped_total",
			Help:      "Day windows whose raw coverage fell outside [0,1] and was clamped.",
		}),
	}
}
