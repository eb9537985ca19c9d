package oracle

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ronnydonkey/scatterbrain-ai/internal/health"
)

// NewHealthChecker probes o through HealthPing when the provider has one.
// Providers without a cheap probe are reported healthy; completions are never spent on health.
func NewHealthChecker(o Oracle, log zerolog.Logger, probeTimeout time.Duration) *health.ProbeChecker {
	log = log.With().Str("provider", o.Name()).Logger()
	return health.NewProbeChecker("oracle", func(ctx context.Context) error {
		if p, ok := o.(health.HealthPinger); ok {
			return p.HealthPing(ctx)
		}
		return nil
	}, log, probeTimeout)
}
