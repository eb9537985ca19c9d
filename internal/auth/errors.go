package auth

import "errors"

var (
	// ErrMissingToken is returned when the request carries no Authorization header
	ErrMissingToken = errors.New("missing Authorization header")

	// ErrMalformedHeader is returned when the header is not "Bearer <token>"
	ErrMalformedHeader = errors.New("invalid Authorization header format, expected 'Bearer <token>'")

	// ErrInvalidToken is returned when a token fails verification
	ErrInvalidToken = errors.New("invalid bearer token")

	// ErrAuthDisabled is returned when no verifier is configured
	ErrAuthDisabled = errors.New("token verification disabled")
)
