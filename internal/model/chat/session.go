package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/advisia/advisor/internal/model/persona"
)

// Session captures a visitor conversation. The session id is an opaque
// token supplied by the client, stable per browser session.
type Session struct {
	ID             string     `json:"id"`
	CurrentPersona persona.ID `json:"currentPersona"`
	Messages       []Message  `json:"messages"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// NewSession provisions a session bound to an initial persona.
func NewSession(id string, personaID persona.ID) *Session {
	return &Session{
		ID:             id,
		CurrentPersona: personaID,
		Messages:       make([]Message, 0, 8),
		CreatedAt:      time.Now().UTC(),
	}
}

// AppendUser records a visitor turn.
func (s *Session) AppendUser(content string) {
	s.Messages = append(s.Messages, Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
}

// AppendAssistant records a persona turn and keeps CurrentPersona equal to
// the persona tag of the most recent assistant message.
func (s *Session) AppendAssistant(personaID persona.ID, content string) {
	s.Messages = append(s.Messages, Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		PersonaID: string(personaID),
		CreatedAt: time.Now().UTC(),
	})
	s.CurrentPersona = personaID
}

// UserTurns counts visitor messages in the session.
func (s *Session) UserTurns() int {
	n := 0
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}
