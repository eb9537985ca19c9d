package api

import (
	"encoding/json"
	"errors"
	"net/http"

	respond "github.com/ronnydonkey/scatterbrain-ai/internal/api/respond"
	"github.com/ronnydonkey/scatterbrain-ai/internal/apperr"
)

// Body caps sit well above the largest valid payload: 5000 or 2000 input
// characters, fully \u-escaped, plus up to eight persona objects.
const (
	synthesisBodyLimit = 128 << 10
	demoBodyLimit      = 32 << 10
	boardBodyLimit     = 16 << 10
)

// decodeBody decodes r's JSON body into v, reading at most limit bytes.
// An oversized body yields a coded 413.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v interface{}) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(v)
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return apperr.Wrap(err, http.StatusRequestEntityTooLarge, apperr.CodeInputTooLong, "Request body too large")
	}
	return err
}

// writeDecodeError reports a body that could not be decoded.
func writeDecodeError(w http.ResponseWriter, err error) {
	if ae, ok := apperr.As(err); ok {
		respond.WriteError(w, ae)
		return
	}
	respond.WriteBadRequest(w, "Invalid JSON")
}
