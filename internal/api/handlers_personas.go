package api

import (
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/ronnydonkey/scatterbrain-ai/internal/api/respond"
	"github.com/ronnydonkey/scatterbrain-ai/internal/personas"
)

// PersonaHandler serves the built-in persona directory.
type PersonaHandler struct {
	dir *personas.Directory
}

func NewPersonaHandler(dir *personas.Directory) *PersonaHandler { return &PersonaHandler{dir: dir} }

// ListPersonas GET /api/personas?category=
func (h *PersonaHandler) ListPersonas(w http.ResponseWriter, r *http.Request) {
	ps := h.dir.ByCategory(r.URL.Query().Get("category"))
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"personas":   ps,
		"count":      len(ps),
		"categories": append([]string{personas.CategoryAll}, h.dir.Categories()...),
	})
}

// GetPersona GET /api/personas/{personaId}
func (h *PersonaHandler) GetPersona(w http.ResponseWriter, r *http.Request) {
	p, ok := h.dir.Get(mux.Vars(r)["personaId"])
	if !ok {
		respond.WriteNotFound(w, "persona not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}
