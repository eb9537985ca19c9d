package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	respond "github.com/ronnydonkey/scatterbrain-ai/internal/api/respond"
	"github.com/ronnydonkey/scatterbrain-ai/internal/apperr"
	"github.com/ronnydonkey/scatterbrain-ai/internal/auth"
	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
	"github.com/ronnydonkey/scatterbrain-ai/internal/services"
)

var errSynthesisFallback = apperr.Internal("An internal error occurred")

type synthesisRequest struct {
	Advisors []model.Persona `json:"advisors"`
	Input    string          `json:"input"`
	// UserID is accepted for compatibility and ignored; history is keyed by the bearer token.
	UserID string `json:"userId,omitempty"`
}

type synthesisResponse struct {
	Success bool `json:"success"`
	*model.SynthesisResult
}

// SynthesisHandler serves POST /board-synthesis.
type SynthesisHandler struct {
	svc *services.SynthesisService
	log zerolog.Logger
}

func NewSynthesisHandler(svc *services.SynthesisService, log zerolog.Logger) *SynthesisHandler {
	return &SynthesisHandler{svc: svc, log: log}
}

// Synthesize POST /board-synthesis
func (h *SynthesisHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req synthesisRequest
	if err := decodeBody(w, r, synthesisBodyLimit, &req); err != nil {
		h.log.Error().Err(err).Msg("decode board-synthesis body")
		respond.WriteTimedError(w, apperr.Resolve(err, errSynthesisFallback), time.Since(start).Seconds())
		return
	}

	// Oracle work runs to completion even if the client goes away.
	ctx := context.WithoutCancel(r.Context())
	res, err := h.svc.Synthesize(ctx, req.Advisors, req.Input, auth.UserID(r.Context()))
	if err != nil {
		respond.WriteTimedError(w, apperr.Resolve(err, errSynthesisFallback), time.Since(start).Seconds())
		return
	}
	respond.WriteJSON(w, http.StatusOK, synthesisResponse{Success: true, SynthesisResult: res})
}
