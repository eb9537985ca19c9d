// Package apperr defines the coded errors returned to HTTP clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced in JSON error bodies.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNoAdvisors         = "NO_ADVISORS"
	CodeTooManyAdvisors    = "TOO_MANY_ADVISORS"
	CodeInputTooLong       = "INPUT_TOO_LONG"
	CodeAIServiceError     = "AI_SERVICE_ERROR"
	CodeAIResponseError    = "AI_RESPONSE_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeTimeout            = "TIMEOUT_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
	CodeDemoRateLimit      = "DEMO_RATE_LIMIT"
	CodeDemoError          = "DEMO_ERROR"
	CodeInvalidSelection   = "INVALID_SELECTION"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
)

// Error carries an HTTP status and a stable code alongside a client-safe message.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a coded error.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Wrap builds a coded error that keeps cause for logging.
func Wrap(cause error, status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: cause}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Resolve maps any error to a coded error, using fallback for uncoded ones.
func Resolve(err error, fallback *Error) *Error {
	if e, ok := As(err); ok {
		return e
	}
	out := *fallback
	out.Err = err
	return &out
}

func BadRequest(code, message string) *Error {
	return New(http.StatusBadRequest, code, message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, CodeInternal, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, CodeNotFound, message)
}
