package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveOracle("openai", "persona", OutcomeOK, time.Now())
	m.PersonaFallback()
	m.DemoRateLimited()
	m.StoreDegraded("load")
	m.DependencyUp("store", true)
}

func TestObserveOracleOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNew(reg)

	start := time.Now()
	m.ObserveOracle("openai", "persona", OutcomeOK, start)
	m.ObserveOracle("openai", "persona", OutcomeError, start)
	m.ObserveOracle("openai", "combined", OutcomeTimeout, start)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.oracleCalls.WithLabelValues("openai", "persona", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.oracleCalls.WithLabelValues("openai", "persona", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.oracleCalls.WithLabelValues("openai", "combined", "timeout")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.oracleLatency))
}

func TestCounters(t *testing.T) {
	m := MustNew(prometheus.NewRegistry())
	m.PersonaFallback()
	m.PersonaFallback()
	m.DemoRateLimited()
	m.StoreDegraded("save")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.personaFallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.demoRateLimited))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeDegraded.WithLabelValues("save")))
}

func TestDependencyUp(t *testing.T) {
	m := MustNew(prometheus.NewRegistry())
	m.DependencyUp("store", true)
	m.DependencyUp("oracle", false)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dependencyUp.WithLabelValues("store")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.dependencyUp.WithLabelValues("oracle")))

	m.DependencyUp("oracle", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dependencyUp.WithLabelValues("oracle")))
}

func TestMustNewPanicsOnDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustNew(reg)
	assert.Panics(t, func() { MustNew(reg) })
}
