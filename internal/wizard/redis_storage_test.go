package wizard

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRedisStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := NewRedisStorage(newTestRedis(t), testLogger(), time.Hour)

	session := NewSession(100, 42, "buyer")
	require.NoError(t, storage.SetSession(ctx, 100, session))

	loaded, err := storage.GetSession(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), loaded.ThreadID)
	assert.Equal(t, int64(42), loaded.UserID)
	assert.Equal(t, StageAwaitingStart, loaded.Stage)
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestRedisStorageMissingSession(t *testing.T) {
	ctx := context.Background()
	storage := NewRedisStorage(newTestRedis(t), testLogger(), time.Hour)

	_, err := storage.GetSession(ctx, 999)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStorageClearSession(t *testing.T) {
	ctx := context.Background()
	storage := NewRedisStorage(newTestRedis(t), testLogger(), time.Hour)

	require.NoError(t, storage.SetSession(ctx, 100, NewSession(100, 42, "buyer")))
	require.NoError(t, storage.ClearSession(ctx, 100))

	_, err := storage.GetSession(ctx, 100)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStorageAllSessions(t *testing.T) {
	ctx := context.Background()
	storage := NewRedisStorage(newTestRedis(t), testLogger(), time.Hour)

	// Same user, two independent threads.
	require.NoError(t, storage.SetSession(ctx, 100, NewSession(100, 42, "buyer")))
	require.NoError(t, storage.SetSession(ctx, 200, NewSession(200, 42, "buyer")))

	sessions, err := storage.AllSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	threads := map[int64]bool{}
	for _, s := range sessions {
		threads[s.ThreadID] = true
	}
	assert.True(t, threads[100])
	assert.True(t, threads[200])
}
