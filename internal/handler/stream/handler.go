// Package stream serves the SSE variant of the conversation endpoint: the
// reply of an existing session is delivered as incremental deltas, then
// persisted as a single assistant turn.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	"github.com/advisia/advisor/internal/model/chat"
	"github.com/advisia/advisor/internal/model/persona"
	"github.com/advisia/advisor/internal/routing"
	"github.com/advisia/advisor/internal/sanitize"
	aiService "github.com/advisia/advisor/internal/service/ai"
	"github.com/advisia/advisor/internal/store"
	"github.com/advisia/advisor/pkg/utils"
)

const maxMessageLen = 2000

// Handler manages streaming replies via Server-Sent Events.
type Handler struct {
	ai         *aiService.Service
	sessions   store.Store
	personas   persona.Store
	redirector *routing.Redirector
}

// New creates a stream handler.
func New(ai *aiService.Service, sessions store.Store, personas persona.Store, redirector *routing.Redirector) *Handler {
	return &Handler{ai: ai, sessions: sessions, personas: personas, redirector: redirector}
}

// RegisterRoutes mounts the stream routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/stream", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	message := r.URL.Query().Get("message")

	if sessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId query parameter is required")
		return
	}
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}
	if len([]rune(message)) > maxMessageLen {
		utils.RespondError(w, http.StatusBadRequest, "message exceeds 2000 characters")
		return
	}

	// SSE transports its own error events past this point.
	_ = h.HandleStreamRequest(r.Context(), w, sessionID, message)
}

// StreamResponse is one SSE chunk.
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Persona   string `json:"persona,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleStreamRequest streams the reply for one visitor turn of an existing
// session.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	session, err := h.sessions.GetConversation(ctx, sessionID)
	if err != nil {
		h.sendSSEError(w, flusher, "session not found")
		return err
	}

	current, ok := h.personas.FindByID(session.CurrentPersona)
	if !ok {
		current = h.personas.Default()
	}

	message := sanitize.Clean(userMessage)
	target, switched := h.redirector.Evaluate(current, message)
	if switched {
		h.sendSSE(w, flusher, StreamResponse{
			Event:     "handoff",
			SessionID: sessionID,
			Persona:   string(target.ID),
			Content:   fmt.Sprintf("%s, %s, prend le relais de %s.", target.Name, target.Title, current.Name),
		})
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: sessionID,
		Persona:   string(target.ID),
	})

	reply, err := h.dispatchReply(ctx, w, flusher, sessionID, target, session.Messages, message)
	if err != nil {
		log.Printf("[stream] completion failed for session=%s: %v", sessionID, err)
		reply = target.FallbackLine
		h.sendSSE(w, flusher, StreamResponse{
			Event:     "message",
			SessionID: sessionID,
			Content:   reply,
		})
	}

	session.AppendUser(message)
	session.AppendAssistant(target.ID, reply)
	if err := h.sessions.PutConversation(ctx, session); err != nil {
		log.Printf("[stream] failed to persist session=%s: %v", sessionID, err)
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed response for session=%s, persona=%s", sessionID, target.ID)
	return nil
}

// dispatchReply streams deltas when the model supports it, otherwise sends
// the whole reply as one message event.
func (h *Handler) dispatchReply(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sessionID string, p persona.Persona, history []chat.Message, message string) (string, error) {
	if h.ai.StreamingEnabled() {
		return h.streamReply(ctx, w, flusher, sessionID, p, history, message)
	}

	reply, err := h.ai.Complete(ctx, p.SystemScript, history, message)
	if err != nil {
		return "", err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   reply,
	})
	return reply, nil
}

func (h *Handler) streamReply(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sessionID string, p persona.Persona, history []chat.Message, message string) (string, error) {
	stream, err := h.ai.Stream(ctx, p.SystemScript, history, message)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			h.sendSSE(w, flusher, StreamResponse{
				Event:     "delta",
				SessionID: sessionID,
				Content:   chunk.Content,
			})
		}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}

func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, errorMsg string) {
	h.sendSSE(w, flusher, StreamResponse{Event: "error", Error: errorMsg})
}
