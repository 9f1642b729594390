package observability_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
	"github.com/goliatone/go-viewbuffer/pkg/observability"
)

type fixedStats buffer.PoolStats

func (f fixedStats) Stats() buffer.PoolStats { return buffer.PoolStats(f) }

func gather(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				values[mf.GetName()] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return values
}

func TestPoolCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	stats := fixedStats{Rents: 10, Returns: 7, Misses: 3, Discards: 1}
	reg.MustRegister(observability.NewPoolCollector(stats, "default"))

	want := map[string]float64{
		"viewbuffer_pool_rents_total":    10,
		"viewbuffer_pool_returns_total":  7,
		"viewbuffer_pool_misses_total":   3,
		"viewbuffer_pool_discards_total": 1,
		"viewbuffer_pool_outstanding":    3,
	}
	if diff := cmp.Diff(want, gather(t, reg)); diff != "" {
		t.Fatalf("metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestPoolCollector_LivePool(t *testing.T) {
	pool := buffer.NewPool()
	reg := prometheus.NewRegistry()
	reg.MustRegister(observability.NewPoolCollector(pool, "live"))

	items, err := pool.Rent(8)
	if err != nil {
		t.Fatalf("rent: %v", err)
	}
	if got := gather(t, reg)["viewbuffer_pool_outstanding"]; got != 1 {
		t.Fatalf("outstanding mismatch\nwant: 1\n got: %v", got)
	}
	pool.Return(items, true)
	if got := gather(t, reg)["viewbuffer_pool_outstanding"]; got != 0 {
		t.Fatalf("outstanding mismatch\nwant: 0\n got: %v", got)
	}
}

func TestRenderMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewRenderMetrics(reg)

	m.Renders.WithLabelValues("page", "ok").Inc()
	m.Renders.WithLabelValues("page", "error").Inc()
	m.RenderDuration.WithLabelValues("page").Observe(0.02)

	got := gather(t, reg)
	if got["viewbuffer_renders_total"] != 2 {
		t.Fatalf("renders mismatch: %v", got["viewbuffer_renders_total"])
	}
	if got["viewbuffer_render_duration_seconds"] != 1 {
		t.Fatalf("duration samples mismatch: %v", got["viewbuffer_render_duration_seconds"])
	}
}
