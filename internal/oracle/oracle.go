// Package oracle wraps hosted text-completion APIs behind one interface.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNotConfigured means no provider in the priority list has a credential.
	ErrNotConfigured = errors.New("oracle: no provider configured")
	// ErrUpstream classifies transport failures and non-2xx responses.
	ErrUpstream = errors.New("oracle: upstream error")
	// ErrMalformedResponse means the provider answered but the content is unusable.
	ErrMalformedResponse = errors.New("oracle: malformed response")
)

// Request is one completion call.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Oracle produces a completion for a prompt.
type Oracle interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to Oracle.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Name() string { return "func" }

func (f Func) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// StatusError is a non-2xx provider response.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error: %d", e.Provider, e.StatusCode)
}

func (e *StatusError) Is(target error) bool { return target == ErrUpstream }

// TransportError is a failure to reach the provider at all.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport error: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrUpstream }

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func malformed(provider, what string) error {
	return fmt.Errorf("%w: %s %s", ErrMalformedResponse, provider, what)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
