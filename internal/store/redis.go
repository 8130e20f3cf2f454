package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/advisia/advisor/internal/model/chat"
	"github.com/advisia/advisor/internal/model/diagnostic"
)

// keyPrefix namespaces every session key in the shared redis instance.
const keyPrefix = "advisia"

// RedisStore persists sessions as JSON values in redis, with the configured
// TTL re-applied on every write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds the redis-backed store and verifies connectivity.
func NewRedisStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// NewRedisStoreWithClient wraps an existing client; used by tests.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) get(ctx context.Context, key string, out any) error {
	payload, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	return json.Unmarshal([]byte(payload), out)
}

func (s *RedisStore) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// GetConversation retrieves a conversation session.
func (s *RedisStore) GetConversation(ctx context.Context, id string) (*chat.Session, error) {
	session := &chat.Session{}
	if err := s.get(ctx, s.conversationKey(id), session); err != nil {
		return nil, err
	}
	return session, nil
}

// PutConversation writes a conversation session with the store TTL.
func (s *RedisStore) PutConversation(ctx context.Context, session *chat.Session) error {
	return s.set(ctx, s.conversationKey(session.ID), session)
}

// GetDiagnostic retrieves a diagnostic session.
func (s *RedisStore) GetDiagnostic(ctx context.Context, id string) (*diagnostic.Session, error) {
	session := &diagnostic.Session{}
	if err := s.get(ctx, s.diagnosticKey(id), session); err != nil {
		return nil, err
	}
	return session, nil
}

// PutDiagnostic writes a diagnostic session with the store TTL.
func (s *RedisStore) PutDiagnostic(ctx context.Context, session *diagnostic.Session) error {
	return s.set(ctx, s.diagnosticKey(session.ID), session)
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) conversationKey(id string) string {
	return fmt.Sprintf("%s:conv:%s", keyPrefix, id)
}

func (s *RedisStore) diagnosticKey(id string) string {
	return fmt.Sprintf("%s:diag:%s", keyPrefix, id)
}
