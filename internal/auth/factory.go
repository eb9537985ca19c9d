package auth

import (
	"github.com/ronnydonkey/scatterbrain-ai/internal/config"
)

// VerifierFactory creates the appropriate Verifier based on configuration
type VerifierFactory struct {
	config *config.Config
}

func NewVerifierFactory(cfg *config.Config) *VerifierFactory {
	return &VerifierFactory{config: cfg}
}

// CreateVerifier verifies JWTs when a secret is configured and, for the local
// build target, also accepts LocalDevToken.
func (f *VerifierFactory) CreateVerifier() Verifier {
	var v Verifier = DisabledVerifier{}
	if f.config.JWTSecret != "" {
		v = NewJWTVerifier(f.config.JWTSecret, "authenticated")
	}
	if f.config.IsLocal() && !f.config.IsProduction() {
		v = NewLocalVerifier(v)
	}
	return v
}
