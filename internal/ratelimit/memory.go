package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepThreshold bounds map growth from one-off clients.
const sweepThreshold = 10000

type window struct {
	count   int
	resetAt time.Time
}

// Memory is a process-local Limiter.
type Memory struct {
	mu      sync.Mutex
	limit   int
	length  time.Duration
	now     func() time.Time
	windows map[string]*window
}

type MemoryOption func(*Memory)

// WithClock injects the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(limit int, length time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{
		limit:   limit,
		length:  length,
		now:     time.Now,
		windows: make(map[string]*window),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Allow(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) {
		if len(m.windows) >= sweepThreshold {
			m.sweep(now)
		}
		w = &window{resetAt: now.Add(m.length)}
		m.windows[key] = w
	}

	if w.count >= m.limit {
		return Decision{Allowed: false, Remaining: 0, ResetAt: w.resetAt}, nil
	}
	w.count++
	return Decision{Allowed: true, Remaining: m.limit - w.count, ResetAt: w.resetAt}, nil
}

func (m *Memory) sweep(now time.Time) {
	for k, w := range m.windows {
		if now.After(w.resetAt) {
			delete(m.windows, k)
		}
	}
}

// Len reports the number of tracked clients.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}
