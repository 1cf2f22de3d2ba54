// Package metrics records tool-call counts and latencies for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bpowers/algorand-mcp/tool"
)

const namespace = "algorand_mcp"

// Metrics owns a private registry so multiple servers can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool calls by routed category and outcome.",
		}, []string{"category", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Tool call latency by routed category.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"category"}),
	}
	m.registry.MustRegister(
		m.calls,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one dispatched call. Its signature matches router.Observer.
func (m *Metrics) Observe(category string, elapsed time.Duration, err error) {
	m.calls.WithLabelValues(category, Outcome(err)).Inc()
	m.duration.WithLabelValues(category).Observe(elapsed.Seconds())
}

// Outcome labels an error by its tool error kind.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := tool.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "error"
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
