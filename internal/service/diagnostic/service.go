// Package diagnostic drives the fixed 7-question maturity interview: strict
// linear question order, sentinel-based completion detection and a single
// scoring pass whose result is frozen on the session.
package diagnostic

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/advisia/advisor/internal/model/chat"
	model "github.com/advisia/advisor/internal/model/diagnostic"
	"github.com/advisia/advisor/internal/sanitize"
	"github.com/advisia/advisor/internal/store"
)

// Completer is the slice of the completion service the interview needs.
type Completer interface {
	Complete(ctx context.Context, system string, history []chat.Message, query string) (string, error)
}

// Request is one inbound interview turn. Profile fields are honored only
// when the session is created.
type Request struct {
	SessionID string
	Message   string
	FirstName string
	Email     string
	Sector    string
}

// Result is the outcome returned to the HTTP layer. Score fields are
// present only once the interview is complete.
type Result struct {
	Message         string          `json:"message"`
	IsComplete      bool            `json:"isComplete"`
	QuestionCount   int             `json:"questionCount"`
	Scores          *model.ScoreSet `json:"scores,omitempty"`
	Grade           model.Grade     `json:"grade,omitempty"`
	Summary         string          `json:"summary,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`
	Pack            int             `json:"pack,omitempty"`
}

// Service is the interview controller.
type Service struct {
	store     store.Store
	completer Completer
	extractor *Extractor
}

// NewService wires the controller. completer may be nil; the interview then
// runs entirely on scripted fallbacks.
func NewService(sessions store.Store, completer Completer) *Service {
	return &Service{
		store:     sessions,
		completer: completer,
		extractor: NewExtractor(completer),
	}
}

// Process handles one interview turn. First contact creates the session and
// asks question 1; a completed session is terminal and idempotent.
func (s *Service) Process(ctx context.Context, req Request) (Result, error) {
	session, err := s.store.GetDiagnostic(ctx, req.SessionID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[diagnostic] session store unavailable, continuing without persistence: %v", err)
		}
		return s.begin(ctx, req), nil
	}

	if session.IsComplete {
		// Re-entry guard: no completion call, the cached result is frozen.
		return resultFor(session, completedReply), nil
	}

	message := sanitize.Clean(req.Message, CompletionSentinel)
	if message == "" {
		// An empty turn carries no answer: the question index must not
		// move, so re-serve the pending question as-is.
		return resultFor(session, pendingQuestion(session)), nil
	}
	session.AppendUserTurn(message)

	if session.QuestionCount >= model.MaxQuestions {
		return s.finish(ctx, session), nil
	}
	return s.ask(ctx, session), nil
}

// begin provisions the session and asks question 1.
func (s *Service) begin(ctx context.Context, req Request) Result {
	session := model.NewSession(req.SessionID, strings.TrimSpace(req.FirstName), strings.TrimSpace(req.Email), strings.TrimSpace(req.Sector))

	if message := sanitize.Clean(req.Message, CompletionSentinel); message != "" && !isKickoff(message) {
		session.AppendUserTurn(message)
	}
	return s.ask(ctx, session)
}

// ask obtains the next question, advancing the question index by exactly
// one. The completion sentinel is never honored here: the interview cannot
// complete before its seventh answer, so a premature marker is stripped.
func (s *Service) ask(ctx context.Context, session *model.Session) Result {
	reply, err := s.nextQuestion(ctx, session)
	if err != nil {
		log.Printf("[diagnostic] completion failed for session=%s question=%d, using scripted question: %v",
			session.ID, session.QuestionCount+1, err)
		reply = fallbackQuestions[session.QuestionCount]
	}
	reply = strings.TrimSpace(strings.ReplaceAll(reply, CompletionSentinel, ""))
	if reply == "" {
		reply = fallbackQuestions[session.QuestionCount]
	}

	if err := session.AdvanceQuestion(); err != nil {
		// Unreachable given the caller's guard; finish defensively.
		return s.finish(ctx, session)
	}
	session.AppendAssistantTurn(reply)
	s.persist(ctx, session)

	return resultFor(session, reply)
}

// finish runs the terminal turn: wrap-up narration, sentinel stripping,
// and exactly one scoring pass.
func (s *Service) finish(ctx context.Context, session *model.Session) Result {
	reply, err := s.nextQuestion(ctx, session)
	if err != nil || !strings.Contains(reply, CompletionSentinel) {
		if err != nil {
			log.Printf("[diagnostic] wrap-up completion failed for session=%s, using scripted closing: %v", session.ID, err)
		}
		reply = fallbackClosing
	}
	reply = strings.TrimSpace(strings.ReplaceAll(reply, CompletionSentinel, ""))

	outcome := s.extractor.Extract(ctx, session)
	if err := session.Complete(outcome); err != nil {
		return resultFor(session, completedReply)
	}
	session.AppendAssistantTurn(reply)
	s.persist(ctx, session)

	return resultFor(session, reply)
}

func (s *Service) nextQuestion(ctx context.Context, session *model.Session) (string, error) {
	if s.completer == nil {
		return "", errors.New("completion service not configured")
	}

	history := session.Messages
	query := ""
	if len(history) > 0 && history[len(history)-1].Role == chat.RoleUser {
		query = history[len(history)-1].Content
		history = history[:len(history)-1]
	}
	if query == "" {
		query = "Commence l'entretien en posant la première question."
	}
	return s.completer.Complete(ctx, interviewScript(session.FirstName, session.Sector), history, query)
}

func (s *Service) persist(ctx context.Context, session *model.Session) {
	if err := s.store.PutDiagnostic(ctx, session); err != nil {
		log.Printf("[diagnostic] failed to persist session=%s: %v", session.ID, err)
	}
}

func resultFor(session *model.Session, message string) Result {
	result := Result{
		Message:       message,
		IsComplete:    session.IsComplete,
		QuestionCount: session.QuestionCount,
	}
	if session.IsComplete && session.Result != nil {
		scores := session.Result.Scores
		result.Scores = &scores
		result.Grade = session.Result.Grade
		result.Summary = session.Result.Summary
		result.Recommendations = session.Result.Recommendations
		result.Pack = session.Result.Pack
	}
	return result
}

// pendingQuestion returns the question the participant has not answered yet:
// the most recent auditor turn, or its scripted equivalent if the transcript
// has none.
func pendingQuestion(session *model.Session) string {
	for i := len(session.Messages) - 1; i >= 0; i-- {
		if session.Messages[i].Role == chat.RoleAssistant {
			return session.Messages[i].Content
		}
	}
	if session.QuestionCount > 0 {
		return fallbackQuestions[session.QuestionCount-1]
	}
	return fallbackQuestions[0]
}

// isKickoff recognizes the conventional opener the frontend sends to start
// the interview, so it is not recorded as an answer.
func isKickoff(message string) bool {
	switch strings.ToLower(strings.TrimSpace(message)) {
	case "start", "commencer", "démarrer", "demarrer", "go":
		return true
	}
	return false
}
