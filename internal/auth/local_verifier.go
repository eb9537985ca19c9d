package auth

import "context"

const (
	// LocalDevToken is the hardcoded bearer token for local development only
	LocalDevToken = "sk_local_scatterbrain_dev"
	// LocalDevUserID is the identity LocalDevToken resolves to
	LocalDevUserID = "local-dev-user"
)

// LocalVerifier accepts LocalDevToken and defers every other token to next.
type LocalVerifier struct {
	next Verifier
}

func NewLocalVerifier(next Verifier) *LocalVerifier {
	if next == nil {
		next = DisabledVerifier{}
	}
	return &LocalVerifier{next: next}
}

func (l *LocalVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == LocalDevToken {
		return &Identity{UserID: LocalDevUserID, Role: "authenticated"}, nil
	}
	return l.next.Verify(ctx, token)
}
