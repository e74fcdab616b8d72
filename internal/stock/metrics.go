package stock

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for reconciliation passes.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	rows     prometheus.Gauge
	health   *prometheus.GaugeVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers collectors on registerer, or on the default registerer when nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "uniformdesk_reconcile_total",
		Help: "Reconciliation requests partitioned by cache outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "uniformdesk_reconcile_duration_seconds",
		Help:    "Time spent loading a snapshot and running the reconciliation engine.",
		Buckets: prometheus.DefBuckets,
	})
	rows := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "uniformdesk_reconcile_rows",
		Help: "Ledger rows produced by the latest reconciliation pass.",
	})
	health := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "uniformdesk_inventory_health_variants",
		Help: "Item variants per health bucket from the latest reconciliation pass.",
	}, []string{"bucket"})
	registerer.MustRegister(runs, duration, rows, health)
	return &Metrics{runs: runs, duration: duration, rows: rows, health: health}
}

func (m *Metrics) observeOutcome(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observePass(start time.Time, rows, total, reorder, out int) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(start).Seconds())
	m.rows.Set(float64(rows))
	m.health.WithLabelValues("total").Set(float64(total))
	m.health.WithLabelValues("reorder_point").Set(float64(reorder))
	m.health.WithLabelValues("out_of_stock").Set(float64(out))
}
