package routing

import (
	"context"

	"github.com/advisia/advisor/internal/model/persona"
)

// confidenceThreshold is the keyword score at which a rule match is trusted
// without consulting the completion service. Bounds cost and latency.
const confidenceThreshold = 2

// SmartRouter composes the keyword rules with the completion router: a
// high-confidence rule match answers directly, everything else defers to
// the completion service (which itself falls back to rules).
type SmartRouter struct {
	personas   persona.Store
	rules      *RuleRouter
	completion *CompletionRouter
}

// NewSmartRouter wires the composition over a shared persona store.
func NewSmartRouter(personas persona.Store, rules *RuleRouter, completion *CompletionRouter) *SmartRouter {
	return &SmartRouter{personas: personas, rules: rules, completion: completion}
}

// Route picks a persona for the message and reports whether the keyword
// rules decided on their own.
func (r *SmartRouter) Route(ctx context.Context, message string) (persona.Persona, bool) {
	items := r.personas.List()
	scores := ScoreAll(message, items)

	best := persona.Persona{}
	bestScore := -1
	tied := false
	for _, p := range items {
		s := scores[p.ID]
		switch {
		case s > bestScore:
			best, bestScore, tied = p, s, false
		case s == bestScore:
			tied = true
		}
	}

	if bestScore >= confidenceThreshold {
		if tied {
			// Still a high-confidence rule decision, no external call;
			// the tie resolves like any other rule tie.
			return r.rules.Route(message), true
		}
		return best, true
	}
	return r.completion.Route(ctx, message), false
}
