// Package counter tracks how many deserving events each user produced for a
// trigger.
package counter

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	redis "github.com/redis/go-redis/v9"
)

type Counter interface {
	// Increment adds one to key and returns the new value.
	Increment(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
	Close() error
}

// Key builds the counter key of a user and trigger.
func Key(triggerID string, userID int64) string {
	return "trigger:" + triggerID + ":user:" + strconv.FormatInt(userID, 10)
}

type Memory struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewMemory() *Memory {
	return &Memory{counts: make(map[string]int64)}
}

func (m *Memory) Increment(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts[key]++

	return m.counts[key], nil
}

func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.counts, key)

	return nil
}

func (m *Memory) Close() error { return nil }

const keyPrefix = "formtrigger:count:"

type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Increment(ctx context.Context, key string) (int64, error) {
	count, err := r.client.Incr(ctx, keyPrefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}

	return count, nil
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to reset %s: %w", key, err)
	}

	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
