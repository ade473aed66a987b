// Package metrics exposes reconciliation outcomes as Prometheus metrics,
// written in the node-exporter textfile format after each run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/reconciler"
)

const namespace = "stockmap"

// Metrics holds the reconciliation metrics and their registry.
type Metrics struct {
	registry *prometheus.Registry

	SupplierRows     *prometheus.GaugeVec
	SupplierRuns     *prometheus.CounterVec
	RowsCorrected    *prometheus.CounterVec
	Warnings         prometheus.Counter
	RunDuration      prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
}

// New creates and registers the metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		SupplierRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "supplier_rows",
				Help:      "Canonical rows per supplier after the last run",
			},
			[]string{"supplier"},
		),
		SupplierRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "supplier_runs_total",
				Help:      "Supplier outcomes by status",
			},
			[]string{"supplier", "status"},
		),
		RowsCorrected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_corrected_total",
				Help:      "Rows dropped or corrected, by reason",
			},
			[]string{"reason"},
		),
		Warnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "warnings_total",
				Help:      "Data-quality warnings raised",
			},
		),
		RunDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of the last run",
			},
		),
		LastRunTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last run finished",
			},
		),
	}

	m.registry.MustRegister(
		m.SupplierRows,
		m.SupplierRuns,
		m.RowsCorrected,
		m.Warnings,
		m.RunDuration,
		m.LastRunTimestamp,
	)
	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records the outcome of one run.
func (m *Metrics) Observe(res *reconciler.Result) {
	for _, o := range res.Suppliers {
		m.SupplierRuns.WithLabelValues(string(o.Code), string(o.Status)).Inc()
	}
	for _, code := range res.Inventory.Suppliers() {
		m.SupplierRows.WithLabelValues(string(code)).Set(float64(len(res.Inventory.BySupplier(code))))
	}

	s := res.Stats
	for reason, n := range map[string]int{
		"dropped":           s.Dropped,
		"clamped":           s.Clamped,
		"thresholded":       s.Thresholded,
		"backordered":       s.Backordered,
		"suppressed":        s.Suppressed,
		"display_corrected": s.DisplayCorrected,
		"orders_corrected":  s.OrdersCorrected,
	} {
		m.RowsCorrected.WithLabelValues(reason).Add(float64(n))
	}

	m.Warnings.Add(float64(len(res.Warnings)))
	m.RunDuration.Set(res.Metadata.Duration.Seconds())
	m.LastRunTimestamp.Set(float64(res.Metadata.EndTime.Unix()))
}

// WriteTextfile writes the registry to path for the node exporter's
// textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return errors.WrapIO("write", path, prometheus.WriteToTextfile(path, m.registry))
}
