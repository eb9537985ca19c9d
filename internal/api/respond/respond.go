package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ronnydonkey/scatterbrain-ai/internal/apperr"
)

// Failure is the error body shared by every endpoint.
type Failure struct {
	Success        bool     `json:"success"`
	Error          string   `json:"error"`
	Code           string   `json:"code"`
	ProcessingTime *float64 `json:"processingTime,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError writes a coded error body with the error's status.
func WriteError(w http.ResponseWriter, e *apperr.Error) {
	WriteJSON(w, e.Status, Failure{Error: e.Message, Code: e.Code})
}

// WriteTimedError is WriteError plus the elapsed processing time in seconds.
func WriteTimedError(w http.ResponseWriter, e *apperr.Error, seconds float64) {
	WriteJSON(w, e.Status, Failure{Error: e.Message, Code: e.Code, ProcessingTime: &seconds})
}

// WriteBadRequest writes a 400 with the INVALID_INPUT code
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, apperr.BadRequest(apperr.CodeInvalidInput, message))
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, apperr.NotFound(message))
}

// WriteInternalError writes a 500 Internal Server Error response
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, apperr.Internal(message))
}
