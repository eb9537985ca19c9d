// Package metrics exposes Prometheus collectors for oracle calls, demo
// rate limiting, board store degradation and dependency health.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	oracleCalls      *prometheus.CounterVec
	oracleLatency    *prometheus.HistogramVec
	personaFallbacks prometheus.Counter
	demoRateLimited  prometheus.Counter
	storeDegraded    *prometheus.CounterVec
	dependencyUp     *prometheus.GaugeVec
}

// MustNew registers the collectors with reg and panics on duplicate registration.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		oracleCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scatterbrain",
			Subsystem: "oracle",
			Name:      "calls_total",
			Help:      "Oracle completion calls by provider, purpose and outcome.",
		}, []string{"provider", "purpose", "outcome"}),
		oracleLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scatterbrain",
			Subsystem: "oracle",
			Name:      "call_duration_seconds",
			Help:      "Oracle completion latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		}, []string{"provider", "purpose"}),
		personaFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scatterbrain",
			Subsystem: "synthesis",
			Name:      "persona_fallbacks_total",
			Help:      "Persona insights replaced by the deterministic fallback.",
		}),
		demoRateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scatterbrain",
			Subsystem: "demo",
			Name:      "rate_limited_total",
			Help:      "Demo requests rejected by the per-client ceiling.",
		}),
		storeDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scatterbrain",
			Subsystem: "board",
			Name:      "store_degraded_total",
			Help:      "Board operations that fell back after a durable store error.",
		}, []string{"operation"}),
		dependencyUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "scatterbrain",
			Name:      "dependency_up",
			Help:      "1 when the named dependency's last health probe succeeded.",
		}, []string{"dependency"}),
	}
	reg.MustRegister(m.oracleCalls, m.oracleLatency, m.personaFallbacks, m.demoRateLimited, m.storeDegraded, m.dependencyUp)
	return m
}

// Outcome labels for ObserveOracle.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// ObserveOracle records one completion call that started at start.
func (m *Metrics) ObserveOracle(provider, purpose, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.oracleCalls.WithLabelValues(provider, purpose, outcome).Inc()
	m.oracleLatency.WithLabelValues(provider, purpose).Observe(time.Since(start).Seconds())
}

func (m *Metrics) PersonaFallback() {
	if m == nil {
		return
	}
	m.personaFallbacks.Inc()
}

func (m *Metrics) DemoRateLimited() {
	if m == nil {
		return
	}
	m.demoRateLimited.Inc()
}

func (m *Metrics) StoreDegraded(operation string) {
	if m == nil {
		return
	}
	m.storeDegraded.WithLabelValues(operation).Inc()
}

// DependencyUp records the latest health of a dependency.
func (m *Metrics) DependencyUp(dependency string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.dependencyUp.WithLabelValues(dependency).Set(v)
}
