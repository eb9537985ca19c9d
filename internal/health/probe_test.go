package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeChecker_FollowsProbe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var down atomic.Bool
	var calls atomic.Int32
	c := NewProbeChecker("store", func(context.Context) error {
		calls.Add(1)
		if down.Load() {
			return errors.New("connection refused")
		}
		return nil
	}, zerolog.Nop(), 0)
	assert.False(t, c.IsHealthy(), "unhealthy before the first probe")
	assert.Equal(t, "store", c.Name())

	go c.Start(ctx, 10*time.Millisecond)
	require.Eventually(t, c.IsHealthy, time.Second, 5*time.Millisecond)

	down.Store(true)
	require.Eventually(t, func() bool { return !c.IsHealthy() }, time.Second, 5*time.Millisecond)

	down.Store(false)
	require.Eventually(t, c.IsHealthy, time.Second, 5*time.Millisecond)
	assert.Greater(t, calls.Load(), int32(2))
}

func TestProbeChecker_ProbeGetsDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewProbeChecker("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, zerolog.Nop(), 20*time.Millisecond)

	done := make(chan struct{})
	go func() {
		c.Start(ctx, time.Hour)
		close(done)
	}()
	time.Sleep(60 * time.Millisecond)
	assert.False(t, c.IsHealthy())
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
