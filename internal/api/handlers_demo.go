package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	respond "github.com/ronnydonkey/scatterbrain-ai/internal/api/respond"
	"github.com/ronnydonkey/scatterbrain-ai/internal/apperr"
	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
	"github.com/ronnydonkey/scatterbrain-ai/internal/services"
)

var errDemoFallback = apperr.New(http.StatusInternalServerError, apperr.CodeDemoError, "Demo temporarily unavailable")

type demoRequest struct {
	Input string `json:"input"`
}

type demoResponse struct {
	Success bool `json:"success"`
	*model.DemoAnalysis
	IsDemo bool `json:"isDemo"`
}

// DemoHandler serves POST /synthesize-demo.
type DemoHandler struct {
	svc *services.DemoService
	log zerolog.Logger
}

func NewDemoHandler(svc *services.DemoService, log zerolog.Logger) *DemoHandler {
	return &DemoHandler{svc: svc, log: log}
}

// Analyze POST /synthesize-demo
// The rate check runs before the body is read, so rejected requests cost nothing.
func (h *DemoHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := context.WithoutCancel(r.Context())

	if err := h.svc.Admit(ctx, ClientIdentifier(r)); err != nil {
		respond.WriteError(w, apperr.Resolve(err, errDemoFallback))
		return
	}

	var req demoRequest
	if err := decodeBody(w, r, demoBodyLimit, &req); err != nil {
		h.log.Error().Err(err).Msg("decode synthesize-demo body")
		respond.WriteTimedError(w, apperr.Resolve(err, errDemoFallback), time.Since(start).Seconds())
		return
	}

	res, err := h.svc.Analyze(ctx, req.Input)
	if err != nil {
		respond.WriteTimedError(w, apperr.Resolve(err, errDemoFallback), time.Since(start).Seconds())
		return
	}
	respond.WriteJSON(w, http.StatusOK, demoResponse{Success: true, DemoAnalysis: res, IsDemo: true})
}
