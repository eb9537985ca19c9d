package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	respond "github.com/ronnydonkey/scatterbrain-ai/internal/api/respond"
	"github.com/ronnydonkey/scatterbrain-ai/internal/api/validate"
	"github.com/ronnydonkey/scatterbrain-ai/internal/apperr"
	"github.com/ronnydonkey/scatterbrain-ai/internal/auth"
	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
	"github.com/ronnydonkey/scatterbrain-ai/internal/services"
)

// BoardHandler is a thin HTTP transport over BoardService. Every board write
// goes through the AutoSaver so debounced and immediate saves stay ordered.
type BoardHandler struct {
	svc   *services.BoardService
	saver *services.AutoSaver
	log   zerolog.Logger
}

func NewBoardHandler(svc *services.BoardService, saver *services.AutoSaver, log zerolog.Logger) *BoardHandler {
	return &BoardHandler{svc: svc, saver: saver, log: log}
}

// GetBoard GET /api/board
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, h.svc.Load(r.Context(), auth.UserID(r.Context())))
}

// PutBoard PUT /api/board[?sync=true]
func (h *BoardHandler) PutBoard(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	var req struct {
		AdvisorIDs []string `json:"advisorIds"`
	}
	if err := decodeBody(w, r, boardBodyLimit, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := validate.AdvisorIDs(req.AdvisorIDs); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.svc.CheckSelection(r.Context(), userID, req.AdvisorIDs); err != nil {
		respond.WriteError(w, apperr.BadRequest(apperr.CodeInvalidSelection, err.Error()))
		return
	}

	if r.URL.Query().Get("sync") == "true" {
		h.saver.SaveNow(r.Context(), userID, req.AdvisorIDs)
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"advisorIds": req.AdvisorIDs, "saved": true})
		return
	}
	h.saver.Schedule(userID, req.AdvisorIDs)
	respond.WriteJSON(w, http.StatusAccepted, map[string]interface{}{"advisorIds": req.AdvisorIDs, "saved": false})
}

// CreateCustomPersona POST /api/board/custom-personas
func (h *BoardHandler) CreateCustomPersona(w http.ResponseWriter, r *http.Request) {
	var draft model.PersonaDraft
	if err := decodeBody(w, r, boardBodyLimit, &draft); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := validate.PersonaDraft(draft); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	p, _ := h.svc.AddCustomPersona(r.Context(), auth.UserID(r.Context()), draft)
	respond.WriteJSON(w, http.StatusCreated, p)
}

// DeleteCustomPersona DELETE /api/board/custom-personas/{personaId}
func (h *BoardHandler) DeleteCustomPersona(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID != "" {
		// A pending save may still name the persona; land it so the removal filters it.
		h.saver.FlushUser(r.Context(), userID)
	}
	err := h.svc.RemoveCustomPersona(r.Context(), userID, mux.Vars(r)["personaId"])
	switch {
	case errors.Is(err, services.ErrUserRequired):
		respond.WriteError(w, apperr.New(http.StatusUnauthorized, apperr.CodeUnauthorized, "sign in to remove custom personas"))
		return
	case err != nil:
		h.log.Error().Stack().Err(err).Msg("remove custom persona")
		respond.WriteInternalError(w, "could not remove custom persona")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTemplates GET /api/board/templates
func (h *BoardHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	tpls := h.svc.Templates(r.Context())
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"templates": tpls, "count": len(tpls)})
}

// ApplyTemplate POST /api/board/templates/{templateId}/apply
func (h *BoardHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	selection, err := h.svc.TemplateSelection(r.Context(), mux.Vars(r)["templateId"])
	if errors.Is(err, model.ErrNotFound) {
		respond.WriteNotFound(w, "template not found")
		return
	}
	if err != nil {
		h.log.Error().Stack().Err(err).Msg("apply template")
		respond.WriteInternalError(w, "could not apply template")
		return
	}
	h.saver.SaveNow(r.Context(), auth.UserID(r.Context()), services.PersonaIDs(selection))
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"selection": selection})
}
