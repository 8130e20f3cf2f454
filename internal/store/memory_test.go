package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/advisia/advisor/internal/model/chat"
	"github.com/advisia/advisor/internal/model/diagnostic"
	"github.com/advisia/advisor/internal/model/persona"
)

func TestMemoryConversationRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	session := chat.NewSession("sess-1", persona.Strategie)
	session.AppendUser("quel ROI attendre ?")
	session.AppendAssistant(persona.Strategie, "cela dépend du cas d'usage")

	if err := store.PutConversation(ctx, session); err != nil {
		t.Fatalf("put err: %v", err)
	}

	got, err := store.GetConversation(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get err: %v", err)
	}
	if got.UserTurns() != 1 || got.CurrentPersona != persona.Strategie {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestMemoryMissingSessionIsErrNotFound(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	if _, err := store.GetConversation(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryEntriesExpire(t *testing.T) {
	store := NewMemoryStore(-time.Second)
	ctx := context.Background()

	if err := store.PutDiagnostic(ctx, diagnostic.NewSession("diag-1", "", "", "")); err != nil {
		t.Fatalf("put err: %v", err)
	}
	if _, err := store.GetDiagnostic(ctx, "diag-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired entry, got %v", err)
	}
}

func TestMemoryStoredCopyIsIsolated(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	session := chat.NewSession("sess-iso", persona.Technique)
	session.AppendUser("premier message")
	if err := store.PutConversation(ctx, session); err != nil {
		t.Fatalf("put err: %v", err)
	}

	// Mutating the caller's copy after the write must not leak into the store.
	session.AppendUser("message jamais persisté")

	got, err := store.GetConversation(ctx, "sess-iso")
	if err != nil {
		t.Fatalf("get err: %v", err)
	}
	if got.UserTurns() != 1 {
		t.Fatalf("store must hold the state at write time, got %d turns", got.UserTurns())
	}
}
