// Package metrics exposes the service's Prometheus collectors on a private registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector the service records into.
type Metrics struct {
	registry *prometheus.Registry

	generations        *prometheus.CounterVec
	generationFailures *prometheus.CounterVec
	creditDenials      prometheus.Counter
	resultsStored      prometheus.Counter
	storeFailures      prometheus.Counter
	generationDuration prometheus.Histogram
}

// New registers the collectors on a fresh registry, so tests can build as many as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "genius_generations_total",
			Help: "Total number of successful generations by flow.",
		}, []string{"flow"}),
		generationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "genius_generation_failures_total",
			Help: "Total number of failed generation requests by reason.",
		}, []string{"reason"}),
		creditDenials: factory.NewCounter(prometheus.CounterOpts{
			Name: "genius_credit_denials_total",
			Help: "Total number of requests rejected for lack of credits.",
		}),
		resultsStored: factory.NewCounter(prometheus.CounterOpts{
			Name: "genius_results_stored_total",
			Help: "Total number of results written to the result store.",
		}),
		storeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "genius_result_store_failures_total",
			Help: "Total number of result store writes that failed.",
		}),
		generationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "genius_generation_duration_seconds",
			Help:    "Time spent producing variations and suggestions.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) GenerationSucceeded(flow string, took time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(flow).Inc()
	m.generationDuration.Observe(took.Seconds())
}

func (m *Metrics) GenerationFailed(reason string) {
	if m == nil {
		return
	}
	m.generationFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) CreditDenied() {
	if m == nil {
		return
	}
	m.creditDenials.Inc()
}

func (m *Metrics) ResultStored() {
	if m == nil {
		return
	}
	m.resultsStored.Inc()
}

func (m *Metrics) ResultStoreFailed() {
	if m == nil {
		return
	}
	m.storeFailures.Inc()
}
