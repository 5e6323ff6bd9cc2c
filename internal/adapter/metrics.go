package adapter

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	m "mockshift.dev/pkg/mockshift/internal/model"
)

// MetricsSink records per-file outcomes of a run.
type MetricsSink interface {
	Observe(result m.FileResult)
	// Write exports the collected metrics in the Prometheus text format.
	Write(path m.Path) error
}

// PrometheusMetrics collects run metrics in a private registry so repeated
// runs in one process never collide.
type PrometheusMetrics struct {
	registry    *prometheus.Registry
	files       *prometheus.CounterVec
	rewrites    *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
}

// NewPrometheusMetrics registers the mockshift collectors in a fresh registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	metrics := &PrometheusMetrics{
		registry: registry,
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mockshift",
			Name:      "files_total",
			Help:      "Files processed by outcome",
		}, []string{"status"}),
		rewrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mockshift",
			Name:      "rewrites_total",
			Help:      "Rewrites applied by pass",
		}, []string{"pass"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mockshift",
			Name:      "pass_failures_total",
			Help:      "Pass failures by pass",
		}, []string{"pass"}),
	}

	registry.MustRegister(metrics.files, metrics.rewrites, metrics.diagnostics)

	return metrics
}

// Observe adds one file result to the counters.
func (p *PrometheusMetrics) Observe(result m.FileResult) {
	p.files.WithLabelValues(result.Status.String()).Inc()

	for pass, n := range result.Passes {
		p.rewrites.WithLabelValues(pass).Add(float64(n))
	}

	for _, d := range result.Diagnostics {
		p.diagnostics.WithLabelValues(d.Pass).Inc()
	}
}

// Write stores the registry as a node_exporter textfile at path.
func (p *PrometheusMetrics) Write(path m.Path) error {
	if err := prometheus.WriteToTextfile(string(path), p.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}

	return nil
}

// Registry exposes the underlying registry.
func (p *PrometheusMetrics) Registry() *prometheus.Registry {
	return p.registry
}
