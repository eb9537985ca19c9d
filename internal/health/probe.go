package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthPinger can be implemented by components to expose a cheap health
// probe. HealthPing must return nil when the component is healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}

// ProbeFunc reports a dependency's health; nil means healthy.
type ProbeFunc func(ctx context.Context) error

// ProbeChecker runs a ProbeFunc on an interval and caches the outcome.
// Failures are logged on the healthy->unhealthy edge only.
type ProbeChecker struct {
	name         string
	probe        ProbeFunc
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewProbeChecker starts unhealthy until the first successful probe.
func NewProbeChecker(name string, probe ProbeFunc, log zerolog.Logger, probeTimeout time.Duration) *ProbeChecker {
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	return &ProbeChecker{name: name, probe: probe, log: log, probeTimeout: probeTimeout}
}

func (c *ProbeChecker) Name() string    { return c.name }
func (c *ProbeChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

// Start probes immediately, then once per interval until ctx is done.
func (c *ProbeChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	first := true
	run := func() {
		checkCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
		defer cancel()
		err := c.probe(checkCtx)
		if err != nil {
			if c.healthy.Swap(0) == 1 || first {
				c.log.Error().Stack().Str("checker", c.name).Err(err).Msg("health probe failed")
			}
		} else if c.healthy.Swap(1) == 0 && !first {
			c.log.Info().Str("checker", c.name).Msg("health probe recovered")
		}
		first = false
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
