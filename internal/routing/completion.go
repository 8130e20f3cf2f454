package routing

import (
	"context"
	"log"
	"strings"

	"github.com/advisia/advisor/internal/model/chat"
	"github.com/advisia/advisor/internal/model/persona"
)

// Completer is the slice of the completion service the routers need.
// *ai.Service satisfies it.
type Completer interface {
	Complete(ctx context.Context, system string, history []chat.Message, query string) (string, error)
}

const routerScript = "Tu es le standardiste du cabinet Advisia. On te donne le message d'un visiteur. " +
	"Choisis le spécialiste le plus pertinent et réponds UNIQUEMENT par l'un de ces identifiants, sans autre texte : " +
	"strategie (stratégie IA, ROI, feuille de route), " +
	"technique (intégration, données, infrastructure, sécurité), " +
	"adoption (formation, accompagnement des équipes, conduite du changement)."

// CompletionRouter asks the completion service to name a persona. Any
// failure, timeout or unrecognized reply falls back to the rule router:
// routing must never fail the request.
type CompletionRouter struct {
	completer Completer
	personas  persona.Store
	fallback  *RuleRouter
}

// NewCompletionRouter builds the LLM-assisted router. completer may be nil
// when the service is not configured; every route then uses the fallback.
func NewCompletionRouter(completer Completer, personas persona.Store, fallback *RuleRouter) *CompletionRouter {
	return &CompletionRouter{completer: completer, personas: personas, fallback: fallback}
}

// Route resolves a persona for the message, locally when it must.
func (r *CompletionRouter) Route(ctx context.Context, message string) persona.Persona {
	if r.completer == nil {
		return r.fallback.Route(message)
	}

	reply, err := r.completer.Complete(ctx, routerScript, nil, message)
	if err != nil {
		log.Printf("[routing] completion router unavailable, using rules: %v", err)
		return r.fallback.Route(message)
	}

	if p, ok := r.parseReply(reply); ok {
		return p
	}
	log.Printf("[routing] unrecognized router reply %q, using rules", strings.TrimSpace(reply))
	return r.fallback.Route(message)
}

// parseReply accepts the persona id anywhere in the reply so that a chatty
// model ("je choisis: technique") still routes.
func (r *CompletionRouter) parseReply(reply string) (persona.Persona, bool) {
	normalized := strings.ToLower(strings.TrimSpace(reply))
	if normalized == "" {
		return persona.Persona{}, false
	}

	for _, p := range r.personas.List() {
		if strings.Contains(normalized, string(p.ID)) {
			return p, true
		}
	}
	return persona.Persona{}, false
}
