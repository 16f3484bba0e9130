// Package metrics exposes Prometheus collectors for the chatbot pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	stepLatency    *prometheus.HistogramVec
	upstreamErrors *prometheus.CounterVec
	fallbacks      *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voicechat_requests_total",
			Help: "Chatbot requests by input mode and response status.",
		}, []string{"mode", "status"}),
		stepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voicechat_step_duration_seconds",
			Help:    "Latency of each pipeline step.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step", "provider"}),
		upstreamErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voicechat_upstream_errors_total",
			Help: "Non-success provider responses by provider and status.",
		}, []string{"provider", "status"}),
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voicechat_fallbacks_total",
			Help: "Canned replies substituted for empty provider output.",
		}, []string{"reason"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest counts one finished chatbot request.
func (m *Metrics) ObserveRequest(mode string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(mode, strconv.Itoa(status)).Inc()
}

// ObserveStep records the duration of one pipeline step.
func (m *Metrics) ObserveStep(step, provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.stepLatency.WithLabelValues(step, provider).Observe(d.Seconds())
}

// UpstreamError counts one non-success provider response.
func (m *Metrics) UpstreamError(provider string, status int) {
	if m == nil {
		return
	}
	m.upstreamErrors.WithLabelValues(provider, strconv.Itoa(status)).Inc()
}

// Fallback counts one canned reply substitution.
func (m *Metrics) Fallback(reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(reason).Inc()
}
