package diagnostic

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/advisia/advisor/internal/model/chat"
)

// MaxQuestions is the fixed length of the diagnostic interview.
const MaxQuestions = 7

var (
	ErrInterviewOver = errors.New("diagnostic interview already complete")
	ErrTooManyTurns  = errors.New("diagnostic question limit reached")
)

// ScoreSet holds the six maturity dimensions, each an integer in [0,100].
type ScoreSet struct {
	Strategie   int `json:"strategie"`
	Donnees     int `json:"donnees"`
	Technologie int `json:"technologie"`
	Competences int `json:"competences"`
	Gouvernance int `json:"gouvernance"`
	Culture     int `json:"culture"`
}

// Values returns the dimensions in declaration order.
func (s ScoreSet) Values() [6]int {
	return [6]int{s.Strategie, s.Donnees, s.Technologie, s.Competences, s.Gouvernance, s.Culture}
}

// Valid reports whether every dimension is within [0,100].
func (s ScoreSet) Valid() bool {
	for _, v := range s.Values() {
		if v < 0 || v > 100 {
			return false
		}
	}
	return true
}

// Mean is the arithmetic mean of the six dimensions.
func (s ScoreSet) Mean() float64 {
	sum := 0
	for _, v := range s.Values() {
		sum += v
	}
	return float64(sum) / 6
}

// Grade is the ordinal summary letter derived from the score mean.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
)

// GradeFor maps a mean score to a grade with fixed, non-overlapping
// breakpoints. Total on [0,100].
func GradeFor(mean float64) Grade {
	switch {
	case mean >= 80:
		return GradeA
	case mean >= 60:
		return GradeB
	case mean >= 40:
		return GradeC
	case mean >= 20:
		return GradeD
	default:
		return GradeE
	}
}

// PackFor maps a grade to the recommended engagement tier.
func PackFor(grade Grade) int {
	switch grade {
	case GradeA:
		return 3
	case GradeB, GradeC:
		return 2
	default:
		return 1
	}
}

// Result is the frozen outcome of a completed interview.
type Result struct {
	Scores          ScoreSet `json:"scores"`
	Grade           Grade    `json:"grade"`
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
	Pack            int      `json:"pack"`
}

// Session is the diagnostic specialization of a conversation: a strict
// linear Q1..Q7 flow followed by a terminal Complete state.
type Session struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	Email     string `json:"email,omitempty"`
	Sector    string `json:"sector,omitempty"`

	Messages      []chat.Message `json:"messages"`
	QuestionCount int            `json:"questionCount"`
	IsComplete    bool           `json:"isComplete"`
	Result        *Result        `json:"result,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// NewSession provisions an interview keyed by the caller-supplied id.
func NewSession(id, firstName, email, sector string) *Session {
	return &Session{
		ID:        id,
		FirstName: firstName,
		Email:     email,
		Sector:    sector,
		Messages:  make([]chat.Message, 0, 16),
		CreatedAt: time.Now().UTC(),
	}
}

// AppendUserTurn records a participant answer.
func (s *Session) AppendUserTurn(content string) {
	s.Messages = append(s.Messages, chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.RoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
}

// AppendAssistantTurn records an auditor turn.
func (s *Session) AppendAssistantTurn(content string) {
	s.Messages = append(s.Messages, chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.RoleAssistant,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
}

// AdvanceQuestion moves the interview to the next question index. The count
// strictly increases by one per assistant turn and can never pass
// MaxQuestions, making an eighth question unrepresentable.
func (s *Session) AdvanceQuestion() error {
	if s.IsComplete {
		return ErrInterviewOver
	}
	if s.QuestionCount >= MaxQuestions {
		return ErrTooManyTurns
	}
	s.QuestionCount++
	return nil
}

// Complete freezes the session with its result. The session becomes
// read-only: scores are defined if and only if the interview is complete.
func (s *Session) Complete(result Result) error {
	if s.IsComplete {
		return ErrInterviewOver
	}
	s.IsComplete = true
	s.Result = &result
	return nil
}
