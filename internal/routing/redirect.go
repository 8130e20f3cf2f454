package routing

import "github.com/advisia/advisor/internal/model/persona"

// Redirector re-evaluates persona fit on every turn of an established
// conversation, using each persona's narrow redirect taxonomy. A challenger
// takes over only when its score is at least 1 AND strictly greater than the
// current persona's score on the same message; this hysteresis keeps a single
// ambiguous keyword from causing churn mid-conversation.
type Redirector struct {
	personas persona.Store
}

// NewRedirector builds the mid-conversation redirector.
func NewRedirector(personas persona.Store) *Redirector {
	return &Redirector{personas: personas}
}

// Evaluate returns the persona that should handle the message and whether
// that means switching away from current.
func (r *Redirector) Evaluate(current persona.Persona, message string) (persona.Persona, bool) {
	currentScore := Score(message, current.RedirectKeywords)

	challenger := current
	challengerScore := currentScore
	for _, p := range r.personas.List() {
		if p.ID == current.ID {
			continue
		}
		if s := Score(message, p.RedirectKeywords); s > challengerScore {
			challenger, challengerScore = p, s
		}
	}

	if challenger.ID != current.ID && challengerScore >= 1 && challengerScore > currentScore {
		return challenger, true
	}
	return current, false
}
