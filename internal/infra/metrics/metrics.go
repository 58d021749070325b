// Package metrics exposes export counters and histograms in the Prometheus
// exposition format.
//
// Metrics:
//   - <namespace>_exports_total: export attempts by status
//   - <namespace>_export_duration_seconds: time spent building a document
//   - <namespace>_export_rows: records per export
//   - <namespace>_export_size_bytes: size of produced documents
//   - <namespace>_deliveries_total: document deliveries by spool backend and result
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "json_to_excel"

type Collector struct {
	registry *prometheus.Registry

	exportsTotal   *prometheus.CounterVec
	exportDuration prometheus.Histogram
	exportRows     prometheus.Histogram
	exportSize     prometheus.Histogram
	deliveries     *prometheus.CounterVec
}

// NewCollector registers all metrics on a private registry.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = defaultNamespace
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		exportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Total number of export attempts",
			},
			[]string{"status"},
		),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Time spent building an export document",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		exportRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_rows",
			Help:      "Number of records per export",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10), // 1 .. 262144
		}),
		exportSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_size_bytes",
			Help:      "Size of produced export documents",
			Buckets:   prometheus.ExponentialBuckets(4096, 4, 8), // 4KB .. 64MB
		}),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Document deliveries by spool backend and result",
			},
			[]string{"backend", "result"},
		),
	}

	c.registry.MustRegister(
		c.exportsTotal,
		c.exportDuration,
		c.exportRows,
		c.exportSize,
		c.deliveries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// ObserveExport records one export attempt. Size and row histograms only
// count successful exports.
func (c *Collector) ObserveExport(status string, rows int, size int64, duration time.Duration) {
	if c == nil {
		return
	}
	c.exportsTotal.WithLabelValues(status).Inc()
	c.exportDuration.Observe(duration.Seconds())
	if size > 0 {
		c.exportRows.Observe(float64(rows))
		c.exportSize.Observe(float64(size))
	}
}

func (c *Collector) ObserveDelivery(backend string, ok bool) {
	if c == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	c.deliveries.WithLabelValues(backend, result).Inc()
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
