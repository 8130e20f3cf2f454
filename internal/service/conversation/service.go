// Package conversation drives the per-session dialogue state machine:
// session creation, persona routing and hand-off, and the append-only
// message history replayed to the completion service.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/advisia/advisor/internal/model/chat"
	"github.com/advisia/advisor/internal/model/persona"
	"github.com/advisia/advisor/internal/routing"
	"github.com/advisia/advisor/internal/sanitize"
	"github.com/advisia/advisor/internal/store"
)

// SelectorAuto asks the service to route the message itself.
const SelectorAuto = "auto"

// Completer is the slice of the completion service this controller needs.
// *ai.Service satisfies it; nil means the service is not configured and
// every reply degrades to the persona fallback line.
type Completer interface {
	Complete(ctx context.Context, system string, history []chat.Message, query string) (string, error)
}

// Request is one inbound visitor turn.
type Request struct {
	SessionID string
	Message   string
	PersonaID string // explicit persona id, or SelectorAuto
}

// Result is the outcome returned to the HTTP layer.
type Result struct {
	Message        string     `json:"message"`
	PersonaID      persona.ID `json:"persona"`
	PersonaChanged bool       `json:"personaChanged"`
	AutoRouted     bool       `json:"autoRouted"`
	TurnCount      int        `json:"turnCount"`
}

// Service is the conversation controller.
type Service struct {
	store      store.Store
	personas   persona.Store
	smart      *routing.SmartRouter
	redirector *routing.Redirector
	completer  Completer
}

// NewService wires the controller. completer may be nil.
func NewService(sessions store.Store, personas persona.Store, smart *routing.SmartRouter, redirector *routing.Redirector, completer Completer) *Service {
	return &Service{
		store:      sessions,
		personas:   personas,
		smart:      smart,
		redirector: redirector,
		completer:  completer,
	}
}

// Process handles one visitor turn, creating the session on first contact.
// It never fails on completion-service or store trouble; only the inputs
// already validated by the handler could produce an error.
func (s *Service) Process(ctx context.Context, req Request) (Result, error) {
	message := sanitize.Clean(req.Message)

	session, err := s.store.GetConversation(ctx, req.SessionID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			// Degraded mode: answer the current request from a fresh
			// session even though state will not survive.
			log.Printf("[conversation] session store unavailable, continuing without persistence: %v", err)
		}
		return s.startSession(ctx, req, message), nil
	}
	return s.continueSession(ctx, session, req, message), nil
}

// startSession covers the New -> Active transition. A greeting-only opener
// gets the persona's scripted greeting with no completion call; a
// substantive question is answered immediately by the resolved persona to
// avoid a wasted round trip.
func (s *Service) startSession(ctx context.Context, req Request, message string) Result {
	auto := req.PersonaID == "" || req.PersonaID == SelectorAuto
	greeting := IsGreeting(message)

	var chosen persona.Persona
	switch {
	case !auto:
		var ok bool
		chosen, ok = s.personas.FindByID(persona.ID(req.PersonaID))
		if !ok {
			chosen = s.personas.Default()
		}
	case greeting:
		// No routing signal in a bare greeting; keep it off the
		// completion service entirely.
		chosen = s.personas.Default()
	default:
		chosen, _ = s.smart.Route(ctx, message)
	}

	var reply string
	if greeting {
		reply = chosen.OpeningLine
	} else {
		reply = s.generateReply(ctx, chosen, nil, message)
	}

	session := chat.NewSession(req.SessionID, chosen.ID)
	session.AppendUser(message)
	session.AppendAssistant(chosen.ID, reply)
	s.persist(ctx, session)

	return Result{
		Message:    reply,
		PersonaID:  chosen.ID,
		AutoRouted: auto,
		TurnCount:  session.UserTurns(),
	}
}

// continueSession covers Active -> (Switching ->) Active.
func (s *Service) continueSession(ctx context.Context, session *chat.Session, req Request, message string) Result {
	current, ok := s.personas.FindByID(session.CurrentPersona)
	if !ok {
		current = s.personas.Default()
	}

	target := current
	switched := false
	auto := req.PersonaID == SelectorAuto

	switch {
	case req.PersonaID != "" && !auto && persona.ID(req.PersonaID) != current.ID:
		// User-selected hand-off.
		if p, found := s.personas.FindByID(persona.ID(req.PersonaID)); found {
			target, switched = p, true
		}
	case auto && !IsGreeting(message):
		if p, _ := s.smart.Route(ctx, message); p.ID != current.ID {
			target, switched = p, true
		}
	default:
		if p, redirected := s.redirector.Evaluate(current, message); redirected {
			target, switched = p, true
		}
	}

	history := append([]chat.Message(nil), session.Messages...)
	reply := s.generateReply(ctx, target, history, message)
	if switched {
		reply = handoffNarration(current, target) + "\n\n" + reply
	}

	session.AppendUser(message)
	session.AppendAssistant(target.ID, reply)
	s.persist(ctx, session)

	return Result{
		Message:        reply,
		PersonaID:      target.ID,
		PersonaChanged: switched,
		AutoRouted:     auto,
		TurnCount:      session.UserTurns(),
	}
}

// generateReply asks the completion service for the persona's answer,
// degrading to the persona fallback line on any failure.
func (s *Service) generateReply(ctx context.Context, p persona.Persona, history []chat.Message, message string) string {
	if s.completer == nil {
		return p.FallbackLine
	}

	reply, err := s.completer.Complete(ctx, p.SystemScript, history, message)
	if err != nil {
		log.Printf("[conversation] completion failed for persona=%s: %v", p.ID, err)
		return p.FallbackLine
	}
	return reply
}

func (s *Service) persist(ctx context.Context, session *chat.Session) {
	if err := s.store.PutConversation(ctx, session); err != nil {
		log.Printf("[conversation] failed to persist session=%s: %v", session.ID, err)
	}
}

// handoffNarration is synthesized locally, never asked of the completion
// service, and names the prior persona.
func handoffNarration(prev, next persona.Persona) string {
	if prev.Name == "" {
		return fmt.Sprintf("%s, %s, rejoint la conversation.", next.Name, next.Title)
	}
	return fmt.Sprintf("%s, %s, prend le relais de %s pour vous répondre.", next.Name, next.Title, prev.Name)
}
