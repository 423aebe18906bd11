package cmd

import (
	"fmt"

	"github.com/dukex/formtrigger/pkg/auth"
	"github.com/dukex/formtrigger/pkg/counter"
	redis "github.com/redis/go-redis/v9"
)

// NewRedisClient connects to redisURL. An empty URL returns a nil client and
// the in-memory stores are used instead.
func NewRedisClient(redisURL string) (redis.UniversalClient, error) {
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return redis.NewClient(opts), nil
}

func NewSessionStore(client redis.UniversalClient) auth.SessionStore {
	if client == nil {
		return auth.NewMemoryStore()
	}

	return auth.NewRedisStore(client)
}

func NewCounter(client redis.UniversalClient) counter.Counter {
	if client == nil {
		return counter.NewMemory()
	}

	return counter.NewRedis(client)
}
