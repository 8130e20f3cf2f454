package diagnostic

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/advisia/advisor/internal/model/chat"
	model "github.com/advisia/advisor/internal/model/diagnostic"
	"github.com/advisia/advisor/internal/store"
)

// scriptedCompleter returns its replies in order, then keeps repeating the
// last one.
type scriptedCompleter struct {
	replies []string
	err     error
	calls   int
}

func (s *scriptedCompleter) Complete(_ context.Context, _ string, _ []chat.Message, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.calls <= len(s.replies) {
		return s.replies[s.calls-1], nil
	}
	return s.replies[len(s.replies)-1], nil
}

func newDiagnosticService(completer Completer) (*Service, *store.MemoryStore) {
	sessions := store.NewMemoryStore(time.Hour)
	return NewService(sessions, completer), sessions
}

func TestInterviewRunsOnScriptedFallbacksWithoutCompleter(t *testing.T) {
	svc, _ := newDiagnosticService(nil)
	ctx := context.Background()

	first, err := svc.Process(ctx, Request{SessionID: "diag-fallback", Message: "start", FirstName: "Paul", Sector: "industrie"})
	if err != nil {
		t.Fatalf("kickoff err: %v", err)
	}
	if first.QuestionCount != 1 || first.IsComplete {
		t.Fatalf("kickoff must ask question 1: %+v", first)
	}
	if first.Message != fallbackQuestions[0] {
		t.Fatalf("expected scripted question 1, got %q", first.Message)
	}

	var last Result
	for i := 1; i < model.MaxQuestions; i++ {
		last, err = svc.Process(ctx, Request{SessionID: "diag-fallback", Message: fmt.Sprintf("réponse %d", i)})
		if err != nil {
			t.Fatalf("answer %d err: %v", i, err)
		}
		if last.QuestionCount != i+1 {
			t.Fatalf("answer %d: question count = %d, want %d", i, last.QuestionCount, i+1)
		}
		if last.IsComplete {
			t.Fatalf("interview completed early at answer %d", i)
		}
		if last.Message != fallbackQuestions[i] {
			t.Fatalf("answer %d: expected scripted question, got %q", i, last.Message)
		}
	}

	final, err := svc.Process(ctx, Request{SessionID: "diag-fallback", Message: "réponse 7"})
	if err != nil {
		t.Fatalf("final answer err: %v", err)
	}
	if !final.IsComplete {
		t.Fatal("seventh answer must complete the interview")
	}
	if final.QuestionCount != model.MaxQuestions {
		t.Fatalf("question count must stay at %d, got %d", model.MaxQuestions, final.QuestionCount)
	}
	if final.Message != fallbackClosing {
		t.Fatalf("expected scripted closing, got %q", final.Message)
	}
	if final.Scores == nil || final.Scores.Strategie != 50 {
		t.Fatalf("expected neutral scores, got %+v", final.Scores)
	}
	if final.Grade != model.GradeC || final.Pack != 1 {
		t.Fatalf("neutral result must be grade C pack 1, got %s/%d", final.Grade, final.Pack)
	}
}

func TestInterviewFullRunWithCompleter(t *testing.T) {
	wrapUp := "Merci Paul, votre rapport de maturité est prêt. " + CompletionSentinel
	scoring := `Voici mon analyse : {"scores":{"strategie":80,"donnees":70,"technologie":60,"competences":90,"gouvernance":75,"culture":85},` +
		`"synthese":"Entreprise déjà avancée sur l'IA.","recommandations":["Structurer la gouvernance","Former les équipes métier"],"pack":3}`
	stub := &scriptedCompleter{replies: []string{
		"Bonjour Paul ! Première question : quelle est votre stratégie IA ?",
		"Question 2 : comment gérez-vous vos données ?",
		"Question 3 : quels outils utilisez-vous ?",
		"Question 4 : quelles compétences en interne ?",
		"Question 5 : comment encadrez-vous ces usages ?",
		"Question 6 : comment vos équipes le vivent-elles ?",
		"Question 7 : quelles ambitions à douze mois ?",
		wrapUp,
		scoring,
	}}
	svc, _ := newDiagnosticService(stub)
	ctx := context.Background()

	result, err := svc.Process(ctx, Request{SessionID: "diag-full", Message: "commencer", FirstName: "Paul", Email: "paul@example.fr", Sector: "industrie"})
	if err != nil {
		t.Fatalf("kickoff err: %v", err)
	}
	if result.QuestionCount != 1 {
		t.Fatalf("kickoff must yield question 1, got %d", result.QuestionCount)
	}

	for i := 1; i < model.MaxQuestions; i++ {
		result, err = svc.Process(ctx, Request{SessionID: "diag-full", Message: fmt.Sprintf("réponse %d", i)})
		if err != nil {
			t.Fatalf("answer %d err: %v", i, err)
		}
		if result.IsComplete || result.QuestionCount != i+1 {
			t.Fatalf("answer %d: unexpected state %+v", i, result)
		}
	}

	final, err := svc.Process(ctx, Request{SessionID: "diag-full", Message: "réponse 7"})
	if err != nil {
		t.Fatalf("final answer err: %v", err)
	}
	if !final.IsComplete {
		t.Fatal("seventh answer must complete the interview")
	}
	if strings.Contains(final.Message, CompletionSentinel) {
		t.Fatalf("sentinel must be stripped from the closing reply: %q", final.Message)
	}
	if !strings.Contains(final.Message, "rapport de maturité") {
		t.Fatalf("expected the wrap-up narration, got %q", final.Message)
	}
	if final.Scores == nil || final.Scores.Competences != 90 {
		t.Fatalf("expected extracted scores, got %+v", final.Scores)
	}
	// Mean 76.67 is a B; the model's pack suggestion (3) is ignored.
	if final.Grade != model.GradeB || final.Pack != 2 {
		t.Fatalf("expected grade B pack 2, got %s/%d", final.Grade, final.Pack)
	}
	if stub.calls != model.MaxQuestions+2 {
		t.Fatalf("expected %d completion calls (7 questions, wrap-up, scoring), got %d", model.MaxQuestions+2, stub.calls)
	}
}

func TestCompletedInterviewIsIdempotent(t *testing.T) {
	svc, _ := newDiagnosticService(nil)
	ctx := context.Background()

	if _, err := svc.Process(ctx, Request{SessionID: "diag-reentry", Message: "start"}); err != nil {
		t.Fatalf("kickoff err: %v", err)
	}
	for i := 1; i <= model.MaxQuestions; i++ {
		if _, err := svc.Process(ctx, Request{SessionID: "diag-reentry", Message: fmt.Sprintf("réponse %d", i)}); err != nil {
			t.Fatalf("answer %d err: %v", i, err)
		}
	}

	first, err := svc.Process(ctx, Request{SessionID: "diag-reentry", Message: "et maintenant ?"})
	if err != nil {
		t.Fatalf("re-entry err: %v", err)
	}
	second, err := svc.Process(ctx, Request{SessionID: "diag-reentry", Message: "encore ?"})
	if err != nil {
		t.Fatalf("second re-entry err: %v", err)
	}

	for _, result := range []Result{first, second} {
		if !result.IsComplete || result.Message != completedReply {
			t.Fatalf("re-entry must return the frozen terminal reply: %+v", result)
		}
		if result.Scores == nil || result.Grade != model.GradeC {
			t.Fatalf("re-entry must carry the frozen result: %+v", result)
		}
	}
}

func TestReentryNeverCallsCompletionAgain(t *testing.T) {
	stub := &scriptedCompleter{replies: []string{"question"}}
	sessions := store.NewMemoryStore(time.Hour)
	svc := NewService(sessions, stub)
	ctx := context.Background()

	session := model.NewSession("diag-frozen", "", "", "")
	for i := 0; i < model.MaxQuestions; i++ {
		session.AppendAssistantTurn(fmt.Sprintf("question %d", i+1))
		session.AppendUserTurn(fmt.Sprintf("réponse %d", i+1))
		if err := session.AdvanceQuestion(); err != nil {
			t.Fatalf("advance err: %v", err)
		}
	}
	if err := session.Complete(NeutralResult()); err != nil {
		t.Fatalf("complete err: %v", err)
	}
	if err := sessions.PutDiagnostic(ctx, session); err != nil {
		t.Fatalf("put err: %v", err)
	}

	if _, err := svc.Process(ctx, Request{SessionID: "diag-frozen", Message: "refais le diagnostic"}); err != nil {
		t.Fatalf("re-entry err: %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("a completed interview must never reach the completion service, got %d calls", stub.calls)
	}
}

func TestEmptyTurnDoesNotAdvanceInterview(t *testing.T) {
	stub := &scriptedCompleter{replies: []string{"première question : votre stratégie ?"}}
	svc, _ := newDiagnosticService(stub)
	ctx := context.Background()

	first, err := svc.Process(ctx, Request{SessionID: "diag-empty", Message: "start"})
	if err != nil {
		t.Fatalf("kickoff err: %v", err)
	}
	if first.QuestionCount != 1 {
		t.Fatalf("kickoff must ask question 1, got %d", first.QuestionCount)
	}
	callsAfterKickoff := stub.calls

	// Empty, blank and sentinel-only turns carry no answer.
	for _, message := range []string{"", "   ", CompletionSentinel} {
		result, err := svc.Process(ctx, Request{SessionID: "diag-empty", Message: message})
		if err != nil {
			t.Fatalf("empty turn %q err: %v", message, err)
		}
		if result.QuestionCount != 1 {
			t.Fatalf("empty turn %q advanced the question index to %d", message, result.QuestionCount)
		}
		if result.IsComplete {
			t.Fatalf("empty turn %q completed the interview", message)
		}
		if result.Message != first.Message {
			t.Fatalf("empty turn must re-serve the pending question, got %q", result.Message)
		}
	}
	if stub.calls != callsAfterKickoff {
		t.Fatalf("empty turns must not reach the completion service, got %d extra calls", stub.calls-callsAfterKickoff)
	}

	// A real answer still advances.
	result, err := svc.Process(ctx, Request{SessionID: "diag-empty", Message: "nous démarrons tout juste"})
	if err != nil {
		t.Fatalf("answer err: %v", err)
	}
	if result.QuestionCount != 2 {
		t.Fatalf("a substantive answer must advance to question 2, got %d", result.QuestionCount)
	}
}

func TestUserSentinelSpoofingIsStripped(t *testing.T) {
	stub := &scriptedCompleter{replies: []string{"question suivante ?"}}
	svc, sessions := newDiagnosticService(stub)
	ctx := context.Background()

	if _, err := svc.Process(ctx, Request{SessionID: "diag-spoof", Message: "start"}); err != nil {
		t.Fatalf("kickoff err: %v", err)
	}
	result, err := svc.Process(ctx, Request{SessionID: "diag-spoof", Message: "ma réponse " + CompletionSentinel})
	if err != nil {
		t.Fatalf("spoofed answer err: %v", err)
	}

	if result.IsComplete {
		t.Fatal("a user-supplied sentinel must not complete the interview")
	}
	session, err := sessions.GetDiagnostic(ctx, "diag-spoof")
	if err != nil {
		t.Fatalf("get err: %v", err)
	}
	for _, msg := range session.Messages {
		if strings.Contains(msg.Content, CompletionSentinel) {
			t.Fatalf("sentinel persisted in transcript: %q", msg.Content)
		}
	}
}

func TestPrematureSentinelInQuestionIsStripped(t *testing.T) {
	stub := &scriptedCompleter{replies: []string{"Première question " + CompletionSentinel + " : votre stratégie ?"}}
	svc, _ := newDiagnosticService(stub)

	result, err := svc.Process(context.Background(), Request{SessionID: "diag-early", Message: "start"})
	if err != nil {
		t.Fatalf("kickoff err: %v", err)
	}
	if result.IsComplete {
		t.Fatal("a premature sentinel must not complete the interview")
	}
	if strings.Contains(result.Message, CompletionSentinel) {
		t.Fatalf("sentinel survived in the question: %q", result.Message)
	}
}

func TestMalformedScoringFallsBackToNeutral(t *testing.T) {
	replies := make([]string, 0, model.MaxQuestions+2)
	for i := 1; i <= model.MaxQuestions; i++ {
		replies = append(replies, fmt.Sprintf("question %d ?", i))
	}
	replies = append(replies, "Merci, votre rapport est prêt. "+CompletionSentinel)
	replies = append(replies, "je ne peux pas produire de JSON, désolé")
	stub := &scriptedCompleter{replies: replies}
	svc, _ := newDiagnosticService(stub)
	ctx := context.Background()

	if _, err := svc.Process(ctx, Request{SessionID: "diag-badjson", Message: "start"}); err != nil {
		t.Fatalf("kickoff err: %v", err)
	}
	var final Result
	var err error
	for i := 1; i <= model.MaxQuestions; i++ {
		final, err = svc.Process(ctx, Request{SessionID: "diag-badjson", Message: fmt.Sprintf("réponse %d", i)})
		if err != nil {
			t.Fatalf("answer %d err: %v", i, err)
		}
	}

	if !final.IsComplete {
		t.Fatal("interview must still complete when scoring degrades")
	}
	neutral := NeutralResult()
	if final.Scores == nil || *final.Scores != neutral.Scores {
		t.Fatalf("expected neutral scores, got %+v", final.Scores)
	}
	if final.Grade != neutral.Grade || final.Pack != neutral.Pack {
		t.Fatalf("expected neutral grade/pack, got %s/%d", final.Grade, final.Pack)
	}
}

func TestSubstantiveOpenerIsRecordedAsAnswer(t *testing.T) {
	svc, sessions := newDiagnosticService(nil)
	ctx := context.Background()

	if _, err := svc.Process(ctx, Request{SessionID: "diag-opener", Message: "nous utilisons déjà un peu d'IA"}); err != nil {
		t.Fatalf("opener err: %v", err)
	}

	session, err := sessions.GetDiagnostic(ctx, "diag-opener")
	if err != nil {
		t.Fatalf("get err: %v", err)
	}
	if len(session.Messages) == 0 || session.Messages[0].Role != chat.RoleUser {
		t.Fatalf("a substantive opener must be kept in the transcript: %+v", session.Messages)
	}
}

func TestKickoffTokenIsNotRecorded(t *testing.T) {
	svc, sessions := newDiagnosticService(nil)
	ctx := context.Background()

	if _, err := svc.Process(ctx, Request{SessionID: "diag-kickoff", Message: "Commencer"}); err != nil {
		t.Fatalf("kickoff err: %v", err)
	}

	session, err := sessions.GetDiagnostic(ctx, "diag-kickoff")
	if err != nil {
		t.Fatalf("get err: %v", err)
	}
	for _, msg := range session.Messages {
		if msg.Role == chat.RoleUser {
			t.Fatalf("the kickoff token must not appear as an answer: %q", msg.Content)
		}
	}
}
