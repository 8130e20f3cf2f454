package diagnostic

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	model "github.com/advisia/advisor/internal/model/diagnostic"
)

// scorePayload mirrors the JSON object requested by scoringScript. The
// model's pack suggestion is parsed but the final pack is always derived
// from the grade mapping.
type scorePayload struct {
	Scores          model.ScoreSet `json:"scores"`
	Summary         string         `json:"synthese"`
	Recommendations []string       `json:"recommandations"`
	Pack            int            `json:"pack"`
}

// Extractor turns an interview transcript into a validated Result. It never
// fails: a diagnostic must always complete with some result, so every
// upstream or parse problem degrades to the neutral fallback.
type Extractor struct {
	completer Completer
}

// NewExtractor builds the score extractor. completer may be nil.
func NewExtractor(completer Completer) *Extractor {
	return &Extractor{completer: completer}
}

// Extract runs the scoring pass over the session transcript.
func (e *Extractor) Extract(ctx context.Context, session *model.Session) model.Result {
	if e.completer == nil {
		return NeutralResult()
	}

	reply, err := e.completer.Complete(ctx, scoringScript, nil, scoringQuery(session))
	if err != nil {
		log.Printf("[diagnostic] scoring call failed for session=%s, using neutral result: %v", session.ID, err)
		return NeutralResult()
	}

	raw, ok := extractJSONObject(reply)
	if !ok {
		log.Printf("[diagnostic] no JSON object in scoring reply for session=%s, using neutral result", session.ID)
		return NeutralResult()
	}

	payload := scorePayload{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		log.Printf("[diagnostic] unparsable scoring reply for session=%s, using neutral result: %v", session.ID, err)
		return NeutralResult()
	}

	if !payload.Scores.Valid() || strings.TrimSpace(payload.Summary) == "" || len(payload.Recommendations) == 0 {
		log.Printf("[diagnostic] invalid scoring fields for session=%s, using neutral result", session.ID)
		return NeutralResult()
	}

	grade := model.GradeFor(payload.Scores.Mean())
	return model.Result{
		Scores:          payload.Scores,
		Grade:           grade,
		Summary:         strings.TrimSpace(payload.Summary),
		Recommendations: payload.Recommendations,
		Pack:            model.PackFor(grade),
	}
}

// NeutralResult is the fixed fallback attached when scoring cannot run.
func NeutralResult() model.Result {
	return model.Result{
		Scores: model.ScoreSet{
			Strategie:   50,
			Donnees:     50,
			Technologie: 50,
			Competences: 50,
			Gouvernance: 50,
			Culture:     50,
		},
		Grade:   model.GradeC,
		Summary: "Votre entreprise présente une maturité IA intermédiaire, avec des fondations à consolider.",
		Recommendations: []string{
			"Planifier un entretien avec un consultant Advisia pour affiner ce diagnostic.",
		},
		Pack: 1,
	}
}

// extractJSONObject locates the first balanced top-level {...} region in
// the raw reply; the model may wrap the JSON in prose or code fences.
// String literals and escapes are honored so braces inside values do not
// unbalance the scan.
func extractJSONObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}
