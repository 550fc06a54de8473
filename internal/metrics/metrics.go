package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	syncCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_cycles_total",
			Help: "Total number of catalog reconciliation cycles by result.",
		},
		[]string{"result"},
	)
	syncCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_sync_cycle_duration_seconds",
			Help:    "Histogram of reconciliation cycle durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)
	syncProductsKept = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_sync_products_kept",
			Help: "Size of the retention set committed by the last successful cycle.",
		},
	)
)

func init() {
	prometheus.MustRegister(syncCyclesTotal)
	prometheus.MustRegister(syncCycleDuration)
	prometheus.MustRegister(syncProductsKept)
}

// Cycle results.
const (
	ResultOK      = "ok"
	ResultEmpty   = "empty_snapshot"
	ResultFetchKO = "fetch_failed"
	ResultStoreKO = "storage_failed"
)

// RecordSyncCycle records one finished reconciliation cycle.
func RecordSyncCycle(result string, kept int, duration time.Duration) {
	syncCyclesTotal.WithLabelValues(result).Inc()
	syncCycleDuration.Observe(duration.Seconds())
	if result == ResultOK {
		syncProductsKept.Set(float64(kept))
	}
}

// Handler returns the HTTP handler exporting the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
