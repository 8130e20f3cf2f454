// Package store persists session state in an external key-value store.
// Access is plain get/set keyed by session id with a fixed TTL on every
// write; there is no optimistic or pessimistic concurrency control, so two
// concurrent requests for the same session may race and the last writer
// wins.
package store

import (
	"context"
	"errors"

	"github.com/advisia/advisor/internal/model/chat"
	"github.com/advisia/advisor/internal/model/diagnostic"
)

// ErrNotFound reports that no session exists under the requested key.
var ErrNotFound = errors.New("session not found")

// Store exposes session persistence for the conversation and diagnostic
// controllers.
type Store interface {
	GetConversation(ctx context.Context, id string) (*chat.Session, error)
	PutConversation(ctx context.Context, session *chat.Session) error

	GetDiagnostic(ctx context.Context, id string) (*diagnostic.Session, error)
	PutDiagnostic(ctx context.Context, session *diagnostic.Session) error
}
