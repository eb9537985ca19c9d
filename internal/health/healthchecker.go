package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthChecker is implemented by component-level checkers (store, oracle).
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker aggregates component checkers into a single service health flag.
// Required checkers decide service health; optional ones are reported but never take it down.
type ServiceHealthChecker struct {
	healthy  atomic.Int32
	required []HealthChecker
	optional []HealthChecker
	observe  func(name string, healthy bool)
	log      zerolog.Logger
}

func NewServiceHealthChecker(log zerolog.Logger, required ...HealthChecker) *ServiceHealthChecker {
	h := &ServiceHealthChecker{required: required, log: log}
	h.healthy.Store(0)
	return h
}

// WithOptional registers informational checkers. Call before Start.
func (h *ServiceHealthChecker) WithOptional(checkers ...HealthChecker) *ServiceHealthChecker {
	h.optional = append(h.optional, checkers...)
	return h
}

// WithObserver receives every checker's state on each evaluation. Call before Start.
func (h *ServiceHealthChecker) WithObserver(fn func(name string, healthy bool)) *ServiceHealthChecker {
	h.observe = fn
	return h
}

// IsHealthy returns cached service health.
func (h *ServiceHealthChecker) IsHealthy() bool { return h.healthy.Load() == 1 }

// Components reports the current health of every registered checker by name.
func (h *ServiceHealthChecker) Components() map[string]bool {
	out := make(map[string]bool, len(h.required)+len(h.optional))
	for _, c := range h.required {
		out[c.Name()] = c.IsHealthy()
	}
	for _, c := range h.optional {
		out[c.Name()] = c.IsHealthy()
	}
	return out
}

// Start periodically evaluates dependency health and updates the service flag.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := int32(-1)
	degraded := map[string]bool{}
	eval := func() {
		all := true
		for _, c := range h.required {
			ok := c.IsHealthy()
			if !ok {
				all = false
			}
			h.report(c.Name(), ok)
		}
		if all {
			h.healthy.Store(1)
		} else {
			h.healthy.Store(0)
		}
		cur := h.healthy.Load()
		if cur != prev {
			if cur == 1 {
				h.log.Info().Msg("service health: UP")
			} else {
				h.log.Error().Stack().Msg("service health: DOWN")
			}
			prev = cur
		}
		for _, c := range h.optional {
			ok := c.IsHealthy()
			h.report(c.Name(), ok)
			if !ok && !degraded[c.Name()] {
				h.log.Warn().Str("checker", c.Name()).Msg("optional dependency degraded")
			}
			degraded[c.Name()] = !ok
		}
	}

	eval()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eval()
		}
	}
}

func (h *ServiceHealthChecker) report(name string, healthy bool) {
	if h.observe != nil {
		h.observe(name, healthy)
	}
}
