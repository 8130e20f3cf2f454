package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/advisia/advisor/internal/model/chat"
	"github.com/advisia/advisor/internal/model/diagnostic"
)

// MemoryStore is the development-mode store used when no redis address is
// configured. State lives only in this process; sessions silently reset
// when it restarts, which callers must tolerate.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// NewMemoryStore builds the in-process store with the given entry TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) get(key string) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}
	return entry.payload, nil
}

func (s *MemoryStore) set(key string, payload []byte) {
	s.mu.Lock()
	s.entries[key] = memoryEntry{payload: payload, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
}

// GetConversation retrieves a conversation session.
func (s *MemoryStore) GetConversation(_ context.Context, id string) (*chat.Session, error) {
	payload, err := s.get(conversationKey(id))
	if err != nil {
		return nil, err
	}
	session := &chat.Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, err
	}
	return session, nil
}

// PutConversation writes a conversation session, refreshing its TTL.
func (s *MemoryStore) PutConversation(_ context.Context, session *chat.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	s.set(conversationKey(session.ID), payload)
	return nil
}

// GetDiagnostic retrieves a diagnostic session.
func (s *MemoryStore) GetDiagnostic(_ context.Context, id string) (*diagnostic.Session, error) {
	payload, err := s.get(diagnosticKey(id))
	if err != nil {
		return nil, err
	}
	session := &diagnostic.Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, err
	}
	return session, nil
}

// PutDiagnostic writes a diagnostic session, refreshing its TTL.
func (s *MemoryStore) PutDiagnostic(_ context.Context, session *diagnostic.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	s.set(diagnosticKey(session.ID), payload)
	return nil
}

func conversationKey(id string) string { return "conv:" + id }
func diagnosticKey(id string) string   { return "diag:" + id }
