package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
)

// PoolStatser is implemented by pools that expose operation counters.
type PoolStatser interface {
	Stats() buffer.PoolStats
}

// PoolCollector exports a pool's counters on every scrape.
type PoolCollector struct {
	pool PoolStatser

	rents    *prometheus.Desc
	returns  *prometheus.Desc
	misses   *prometheus.Desc
	discards *prometheus.Desc
	leased   *prometheus.Desc
}

var _ prometheus.Collector = (*PoolCollector)(nil)

// NewPoolCollector returns a collector for pool. name is attached as the
// "pool" label so several pools can share a registry.
func NewPoolCollector(pool PoolStatser, name string) *PoolCollector {
	labels := prometheus.Labels{"pool": name}
	return &PoolCollector{
		pool: pool,
		rents: prometheus.NewDesc(
			"viewbuffer_pool_rents_total",
			"Total number of segment arrays rented from the shared pool",
			nil, labels,
		),
		returns: prometheus.NewDesc(
			"viewbuffer_pool_returns_total",
			"Total number of segment arrays returned to the shared pool",
			nil, labels,
		),
		misses: prometheus.NewDesc(
			"viewbuffer_pool_misses_total",
			"Total number of rents that allocated a new array",
			nil, labels,
		),
		discards: prometheus.NewDesc(
			"viewbuffer_pool_discards_total",
			"Total number of returned arrays dropped instead of pooled",
			nil, labels,
		),
		leased: prometheus.NewDesc(
			"viewbuffer_pool_outstanding",
			"Segment arrays rented and not yet returned",
			nil, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.rents
	ch <- c.returns
	ch <- c.misses
	ch <- c.discards
	ch <- c.leased
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.pool.Stats()
	ch <- prometheus.MustNewConstMetric(c.rents, prometheus.CounterValue, float64(stats.Rents))
	ch <- prometheus.MustNewConstMetric(c.returns, prometheus.CounterValue, float64(stats.Returns))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(c.discards, prometheus.CounterValue, float64(stats.Discards))

	outstanding := float64(0)
	if stats.Rents > stats.Returns {
		outstanding = float64(stats.Rents - stats.Returns)
	}
	ch <- prometheus.MustNewConstMetric(c.leased, prometheus.GaugeValue, outstanding)
}

// RenderMetrics records per-render outcomes.
type RenderMetrics struct {
	Renders        *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec
}

// NewRenderMetrics creates and registers render metrics on registry.
func NewRenderMetrics(registry prometheus.Registerer) *RenderMetrics {
	m := &RenderMetrics{
		Renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewbuffer_renders_total",
				Help: "Total number of template renders",
			},
			[]string{"template", "status"},
		),
		RenderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "viewbuffer_render_duration_seconds",
				Help:    "Template render duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"template"},
		),
	}
	registry.MustRegister(m.Renders, m.RenderDuration)
	return m
}
