package chat

import "time"

// Role distinguishes the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn. Immutable once appended; ordering
// is significant because history is replayed to the completion service.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	PersonaID string    `json:"personaId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
