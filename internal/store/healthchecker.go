package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/ronnydonkey/scatterbrain-ai/internal/health"
	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
)

// healthProbeUser never owns a board; reading it exercises the connection only.
const healthProbeUser = "__health_check__"

// NewStoreHealthChecker probes s through HealthPing when it implements one,
// otherwise through a board read that is expected to find nothing.
func NewStoreHealthChecker(s Store, log zerolog.Logger, probeTimeout time.Duration) *health.ProbeChecker {
	return health.NewProbeChecker("store", func(ctx context.Context) error {
		return Probe(ctx, s)
	}, log, probeTimeout)
}

// Probe reports whether s can serve reads.
func Probe(ctx context.Context, s Store) error {
	if p, ok := s.(health.HealthPinger); ok {
		return p.HealthPing(ctx)
	}
	if _, err := s.Boards().Get(ctx, healthProbeUser); err != nil && !errors.Is(err, model.ErrNotFound) {
		return err
	}
	return nil
}
