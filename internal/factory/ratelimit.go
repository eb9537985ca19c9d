package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ronnydonkey/scatterbrain-ai/internal/config"
	"github.com/ronnydonkey/scatterbrain-ai/internal/ratelimit"
)

// NewRateLimiter returns the demo limiter selected by cfg.RateLimitBackend.
func NewRateLimiter(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ratelimit.Limiter, error) {
	switch cfg.RateLimitBackend {
	case "", "memory":
		return ratelimit.NewMemory(cfg.DemoRateLimit, cfg.DemoRateWindow()), nil
	case "redis":
		l, err := ratelimit.NewRedis(ctx, cfg.RedisURL, cfg.DemoRateLimit, cfg.DemoRateWindow())
		if err != nil {
			return nil, fmt.Errorf("redis rate limiter: %w", err)
		}
		log.Info().Msg("demo rate limit shared through redis")
		return l, nil
	default:
		return nil, fmt.Errorf("unsupported RATE_LIMIT_BACKEND: %s", cfg.RateLimitBackend)
	}
}
