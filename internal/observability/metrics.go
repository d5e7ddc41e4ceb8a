// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Partition statuses used as label values.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Metrics holds all Prometheus metrics for the ledger.
type Metrics struct {
	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Partition metrics
	PartitionsTotal   *prometheus.CounterVec
	PartitionDuration prometheus.Histogram
	PartitionErrors   *prometheus.CounterVec
	Warnings          *prometheus.CounterVec

	// Row metrics
	RowsWritten     *prometheus.CounterVec
	WalletsExcluded *prometheus.CounterVec
	AssetsExcluded  prometheus.Counter
	Conflicts       prometheus.Counter

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered with reg.
// A nil reg registers with the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "coin_wallet_ledger"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "total",
			Help:      "Total number of ledger runs by status",
		}, []string{"status"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Ledger run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600},
		}),

		PartitionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "partition",
			Name:      "total",
			Help:      "Total number of asset partitions by status",
		}, []string{"status"}),
		PartitionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "partition",
			Name:      "duration_seconds",
			Help:      "Per-asset partition processing duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		PartitionErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "partition",
			Name:      "errors_total",
			Help:      "Total number of partition errors by kind",
		}, []string{"kind"}),
		Warnings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "partition",
			Name:      "warnings_total",
			Help:      "Total number of non-fatal findings by kind",
		}, []string{"kind"}),

		RowsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "rows_written_total",
			Help:      "Total number of output rows written by table",
		}, []string{"table"}),
		WalletsExcluded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eligibility",
			Name:      "wallet_records_excluded_total",
			Help:      "Total number of net transfer records dropped by wallet exclusion reason",
		}, []string{"reason"}),
		AssetsExcluded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eligibility",
			Name:      "assets_excluded_total",
			Help:      "Total number of assets skipped by the exclusion set",
		}),
		Conflicts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "ownership_conflicts_total",
			Help:      "Total number of assets claimed by more than one source",
		}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Exclusion snapshot cache lookups by result",
		}, []string{"result"}),

		LastSuccessfulRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last run without failed partitions",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns a /metrics handler serving g.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordPartition records the outcome of one asset partition.
func (m *Metrics) RecordPartition(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.PartitionsTotal.WithLabelValues(status).Inc()
	m.PartitionDuration.Observe(d.Seconds())
}

// RecordFinding increments the error or warning counter for kind.
func (m *Metrics) RecordFinding(kind string, fatal bool) {
	if m == nil {
		return
	}
	if fatal {
		m.PartitionErrors.WithLabelValues(kind).Inc()
		return
	}
	m.Warnings.WithLabelValues(kind).Inc()
}

// RecordRows adds n written rows for table.
func (m *Metrics) RecordRows(table string, n int) {
	if m == nil {
		return
	}
	m.RowsWritten.WithLabelValues(table).Add(float64(n))
}

// RecordWalletExclusions adds dropped record counts keyed by reason.
func (m *Metrics) RecordWalletExclusions(dropped map[string]int) {
	if m == nil {
		return
	}
	for reason, n := range dropped {
		m.WalletsExcluded.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(failed bool, d time.Duration, finished time.Time) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
	if failed {
		m.RunsTotal.WithLabelValues(StatusFailed).Inc()
		return
	}
	m.RunsTotal.WithLabelValues(StatusOK).Inc()
	m.LastSuccessfulRun.Set(float64(finished.Unix()))
}

// RecordCacheLookup records a snapshot cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}
