package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore maps session tokens to user ids.
type SessionStore interface {
	UserForToken(ctx context.Context, token string) (int64, error)
	Save(ctx context.Context, token string, userID int64, ttl time.Duration) error
	Revoke(ctx context.Context, token string) error
	Close() error
}

type memorySession struct {
	userID    int64
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func (s *MemoryStore) UserForToken(_ context.Context, token string) (int64, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return 0, ErrSessionNotFound
	}

	if !session.expiresAt.IsZero() && s.now().After(session.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()

		return 0, ErrSessionNotFound
	}

	return session.userID, nil
}

// Save stores a session. A zero ttl never expires.
func (s *MemoryStore) Save(_ context.Context, token string, userID int64, ttl time.Duration) error {
	session := memorySession{userID: userID}
	if ttl > 0 {
		session.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Close() error { return nil }

const sessionKeyPrefix = "formtrigger:session:"

// RedisStore keeps sessions in Redis so every API instance shares them.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) UserForToken(ctx context.Context, token string) (int64, error) {
	value, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}

		return 0, fmt.Errorf("failed to read session: %w", err)
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value %q: %w", value, err)
	}

	return userID, nil
}

func (s *RedisStore) Save(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	err := s.client.Set(ctx, sessionKeyPrefix+token, strconv.FormatInt(userID, 10), ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKeyPrefix+token).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
