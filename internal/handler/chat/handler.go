// Package chat exposes the conversation endpoint. Input validation happens
// here, before any state mutation; everything past validation is handled by
// the conversation service and never fails the request.
package chat

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/advisia/advisor/internal/model/persona"
	"github.com/advisia/advisor/internal/service/conversation"
	"github.com/advisia/advisor/pkg/utils"
)

const (
	maxSessionIDLen = 128
	maxMessageLen   = 2000
)

// Handler serves the conversation API.
type Handler struct {
	conversations *conversation.Service
	personas      persona.Store
}

// New creates the conversation handler.
func New(conversations *conversation.Service, personas persona.Store) *Handler {
	return &Handler{conversations: conversations, personas: personas}
}

// RegisterRoutes mounts the conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

type chatPayload struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	PersonaID string `json:"persona"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg, ok := h.validate(payload); !ok {
		utils.RespondError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.conversations.Process(r.Context(), conversation.Request{
		SessionID: strings.TrimSpace(payload.SessionID),
		Message:   payload.Message,
		PersonaID: strings.TrimSpace(payload.PersonaID),
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "conversation failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

// validate rejects malformed input with field-level detail.
func (h *Handler) validate(payload chatPayload) (string, bool) {
	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		return "sessionId is required", false
	}
	if len(sessionID) > maxSessionIDLen {
		return "sessionId exceeds 128 characters", false
	}

	if strings.TrimSpace(payload.Message) == "" {
		return "message is required", false
	}
	if len([]rune(payload.Message)) > maxMessageLen {
		return "message exceeds 2000 characters", false
	}

	selector := strings.TrimSpace(payload.PersonaID)
	if selector != "" && selector != conversation.SelectorAuto {
		if _, ok := h.personas.FindByID(persona.ID(selector)); !ok {
			return "persona selector is unknown", false
		}
	}
	return "", true
}
