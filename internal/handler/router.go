package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/advisia/advisor/internal/handler/chat"
	diagnosticHandler "github.com/advisia/advisor/internal/handler/diagnostic"
	personaHandler "github.com/advisia/advisor/internal/handler/persona"
	"github.com/advisia/advisor/internal/handler/stream"
	middlewarePkg "github.com/advisia/advisor/internal/middleware"
	personaModel "github.com/advisia/advisor/internal/model/persona"
	"github.com/advisia/advisor/internal/service/conversation"
	"github.com/advisia/advisor/internal/service/diagnostic"
	"github.com/advisia/advisor/pkg/utils"
)

// NewRouter wires HTTP routes to core services. streamHandler may be nil
// when the completion service is not configured.
func NewRouter(personas personaModel.Store, conversations *conversation.Service, interviews *diagnostic.Service, streamHandler *stream.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		personaHandler.New(personas).RegisterRoutes(api)
		chatHandler.New(conversations, personas).RegisterRoutes(api)
		diagnosticHandler.New(interviews).RegisterRoutes(api)

		if streamHandler != nil {
			streamHandler.RegisterRoutes(api)
		} else {
			api.Get("/chat/stream", func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "streaming unavailable")
			})
		}
	})

	return r
}
