// Package ratelimit implements the fixed-window request ceiling used by the demo endpoint.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter admits or rejects a request for key. The window starts at the
// first request for key and lasts a fixed duration.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
