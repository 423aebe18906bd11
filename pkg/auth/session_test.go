package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/dukex/formtrigger/pkg/auth"
	"github.com/dukex/formtrigger/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store auth.SessionStore) {
	t.Helper()

	ctx := context.Background()

	_, err := store.UserForToken(ctx, "missing")
	require.ErrorIs(t, err, auth.ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, "token-1", 7, time.Hour))

	userID, err := store.UserForToken(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)

	require.NoError(t, store.Revoke(ctx, "token-1"))

	_, err = store.UserForToken(ctx, "token-1")
	require.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, auth.NewMemoryStore())
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := auth.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "short", 3, time.Nanosecond))
	time.Sleep(time.Millisecond)

	_, err := store.UserForToken(ctx, "short")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, "forever", 3, 0))

	userID, err := store.UserForToken(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, int64(3), userID)
}

func TestRedisStore(t *testing.T) {
	client := testutil.StartRedis(t)

	exerciseStore(t, auth.NewRedisStore(client))
}
