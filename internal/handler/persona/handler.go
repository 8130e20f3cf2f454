// Package persona exposes the read-only specialist directory.
package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	personaModel "github.com/advisia/advisor/internal/model/persona"
	"github.com/advisia/advisor/pkg/utils"
)

// Handler serves the persona directory.
type Handler struct {
	personas personaModel.Store
}

// New creates the persona handler.
func New(personas personaModel.Store) *Handler {
	return &Handler{personas: personas}
}

// RegisterRoutes mounts the persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}
