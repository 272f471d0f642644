// Package prometheus records compliance runs as Prometheus metrics.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.Metrics = (*Metrics)(nil)

const namespace = "clausecheck"

// Metrics owns a private registry so tests and servers never collide on
// the global one.
type Metrics struct {
	registry    *prometheus.Registry
	ruleResults *prometheus.CounterVec
	ruleSeconds *prometheus.HistogramVec
	runs        prometheus.Counter
	runSeconds  prometheus.Histogram
	compliant   prometheus.Gauge
}

// New creates the collectors and registers them, plus the Go and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ruleResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_results_total",
			Help:      "Rule evaluations by rule, severity and method.",
		}, []string{"rule", "severity", "method"}),
		ruleSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rule_duration_seconds",
			Help:      "Time to settle one rule, by method.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"method"}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed compliance runs.",
		}),
		runSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "End-to-end duration of a compliance run.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		compliant: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_compliant_ratio",
			Help:      "Share of compliant rules in the most recent run.",
		}),
	}
	m.registry.MustRegister(
		m.ruleResults, m.ruleSeconds, m.runs, m.runSeconds, m.compliant,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRule records how one rule was settled.
func (m *Metrics) ObserveRule(rule domain.ComplianceRule, method domain.Method, elapsed time.Duration) {
	m.ruleResults.WithLabelValues(rule.ID, rule.Severity.String(), string(method)).Inc()
	m.ruleSeconds.WithLabelValues(string(method)).Observe(elapsed.Seconds())
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(report *domain.Report, elapsed time.Duration) {
	m.runs.Inc()
	m.runSeconds.Observe(elapsed.Seconds())
	if report != nil && len(report.Results) > 0 {
		m.compliant.Set(float64(report.Compliant()) / float64(len(report.Results)))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
