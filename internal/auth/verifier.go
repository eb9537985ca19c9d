package auth

import "context"

// Identity is the authenticated caller behind a bearer token.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Verifier validates a bearer token and resolves it to an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// DisabledVerifier rejects every token; requests stay anonymous.
type DisabledVerifier struct{}

func (DisabledVerifier) Verify(context.Context, string) (*Identity, error) {
	return nil, ErrAuthDisabled
}
