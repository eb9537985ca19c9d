package ratelimit

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ronnydonkey/scatterbrain-ai/internal/health"
)

// NewHealthChecker pings the shared Redis limiter. A down Redis only degrades
// the demo ceiling, since admission fails open, so callers register it as optional.
func NewHealthChecker(l *Redis, log zerolog.Logger, probeTimeout time.Duration) *health.ProbeChecker {
	return health.NewProbeChecker("rate_limiter", l.HealthPing, log, probeTimeout)
}
