package auth

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// OptionalUser attaches the caller identity when a valid bearer token is present.
// Missing or invalid tokens leave the request anonymous; they never fail it.
func OptionalUser(v Verifier, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				if !errors.Is(err, ErrMissingToken) {
					log.Debug().Err(err).Str("path", r.URL.Path).Msg("ignoring malformed Authorization header")
				}
				next.ServeHTTP(w, r)
				return
			}
			id, err := v.Verify(r.Context(), token)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("bearer token rejected, continuing anonymously")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
