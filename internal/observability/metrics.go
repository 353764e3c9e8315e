package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "irl_covid"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard service.
type Metrics struct {
	// Dataset loading.
	DatasetLoads     *prometheus.CounterVec   // labels: table={county,national}, origin={remote,archive}, outcome={success,error}
	FetchDuration    *prometheus.HistogramVec // labels: table
	DatasetRows      *prometheus.GaugeVec     // labels: table
	LastLoadTime     prometheus.Gauge
	ArchiveWrites    *prometheus.CounterVec // labels: table, outcome={success,error}
	RefreshErrors    prometheus.Counter
	RefresherRunning prometheus.Gauge

	// Queries.
	ChartQueries *prometheus.CounterVec // labels: chart={map,breakdown,totals}, outcome={data,no_data,error}
	QueryCache   *prometheus.CounterVec // labels: result={hit,miss}

	SnapshotsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Table loads by table, payload origin, and outcome.",
		}, []string{"table", "origin", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Remote CSV download duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"table"}),
		DatasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows in the currently served dataset by table.",
		}, []string{"table"}),
		LastLoadTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_load_timestamp_seconds",
			Help:      "Unix time of the last successful dataset load.",
		}),
		ArchiveWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_writes_total",
			Help:      "Archive write-through attempts by table and outcome.",
		}, []string{"table", "outcome"}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Background refreshes that kept the previous dataset.",
		}),
		RefresherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresher_running",
			Help:      "1 when the background refresher is active, 0 otherwise.",
		}),
		ChartQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_queries_total",
			Help:      "Chart queries by chart and outcome.",
		}, []string{"chart", "outcome"}),
		QueryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_total",
			Help:      "Query cache lookups by result.",
		}, []string{"result"}),
		SnapshotsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Dataset snapshot events written to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetLoads,
		m.FetchDuration,
		m.DatasetRows,
		m.LastLoadTime,
		m.ArchiveWrites,
		m.RefreshErrors,
		m.RefresherRunning,
		m.ChartQueries,
		m.QueryCache,
		m.SnapshotsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
