package routing

import (
	"strings"

	"github.com/advisia/advisor/internal/model/persona"
)

// Score counts how many of the given keyword phrases occur in the message.
// Matching is a case-insensitive substring test with no stemming and no
// word-boundary requirement; a phrase counts once no matter how often it
// repeats. Pure and deterministic.
func Score(message string, keywords []string) int {
	normalized := strings.ToLower(message)
	if strings.TrimSpace(normalized) == "" {
		return 0
	}

	score := 0
	for _, phrase := range keywords {
		if phrase == "" {
			continue
		}
		if strings.Contains(normalized, strings.ToLower(phrase)) {
			score++
		}
	}
	return score
}

// ScoreAll scores the message against the broad routing taxonomy of every
// persona, in seed order.
func ScoreAll(message string, personas []persona.Persona) map[persona.ID]int {
	scores := make(map[persona.ID]int, len(personas))
	for _, p := range personas {
		scores[p.ID] = Score(message, p.Keywords)
	}
	return scores
}
