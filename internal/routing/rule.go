package routing

import "github.com/advisia/advisor/internal/model/persona"

// RuleRouter selects the persona with the maximum keyword score. Ambiguous
// or purely social messages ("bonjour") must resolve predictably, so every
// tie, including the all-zero case, goes to the default persona.
type RuleRouter struct {
	personas persona.Store
}

// NewRuleRouter builds the keyword-rule router over the persona set.
func NewRuleRouter(personas persona.Store) *RuleRouter {
	return &RuleRouter{personas: personas}
}

// Route picks a persona for the message. Pure: identical text always yields
// the identical persona.
func (r *RuleRouter) Route(message string) persona.Persona {
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

	if tied || bestScore <= 0 {
		return r.personas.Default()
	}
	return best
}
