// Package diagnostic exposes the maturity-interview endpoint.
package diagnostic

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/advisia/advisor/internal/service/diagnostic"
	"github.com/advisia/advisor/pkg/utils"
)

const (
	maxSessionIDLen = 128
	maxMessageLen   = 2000
)

// Handler serves the diagnostic API.
type Handler struct {
	interviews *diagnostic.Service
}

// New creates the diagnostic handler.
func New(interviews *diagnostic.Service) *Handler {
	return &Handler{interviews: interviews}
}

// RegisterRoutes mounts the diagnostic routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/diagnostic", h.handleDiagnostic)
}

type diagnosticPayload struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Sector    string `json:"sector"`
}

func (h *Handler) handleDiagnostic(w http.ResponseWriter, r *http.Request) {
	var payload diagnosticPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	if len(sessionID) > maxSessionIDLen {
		utils.RespondError(w, http.StatusBadRequest, "sessionId exceeds 128 characters")
		return
	}
	// An empty message is the interview kickoff; anything else is bounded.
	if len([]rune(payload.Message)) > maxMessageLen {
		utils.RespondError(w, http.StatusBadRequest, "message exceeds 2000 characters")
		return
	}

	result, err := h.interviews.Process(r.Context(), diagnostic.Request{
		SessionID: sessionID,
		Message:   payload.Message,
		FirstName: payload.FirstName,
		Email:     payload.Email,
		Sector:    payload.Sector,
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "diagnostic failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}
