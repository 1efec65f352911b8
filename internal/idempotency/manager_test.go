package idempotency

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return NewRedisStore(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestManagerExecuteRunsHandlerOnce(t *testing.T) {
	store := newTestStore(t)
	manager := NewManager(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	calls := 0
	fn := func(ctx context.Context) error {
		calls++
		return nil
	}

	first, err := manager.Execute(ctx, "update-1", time.Hour, fn)
	require.NoError(t, err)
	assert.Equal(t, OutcomeExecuted, first)

	second, err := manager.Execute(ctx, "update-1", time.Hour, fn)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second)
	assert.Equal(t, 1, calls)
}

func TestManagerExecuteInProgress(t *testing.T) {
	store := newTestStore(t)
	manager := NewManager(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	locked, err := store.Lock(ctx, "update-2", time.Minute)
	require.NoError(t, err)
	require.True(t, locked)

	require.NoError(t, store.Set(ctx, "update-2", &Record{Status: StatusProcessing, SeenAt: time.Now()}, time.Minute))

	_, err = manager.Execute(ctx, "update-2", time.Hour, func(ctx context.Context) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrUpdateInProgress)
}

func TestManagerExecuteFailedHandlerRetries(t *testing.T) {
	store := newTestStore(t)
	manager := NewManager(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	handlerErr := errors.New("telegram send failed")

	_, err := manager.Execute(ctx, "update-3", time.Hour, func(ctx context.Context) error {
		return handlerErr
	})
	require.ErrorIs(t, err, handlerErr)

	// No completion record was written, so a redelivery runs the handler.
	outcome, err := manager.Execute(ctx, "update-3", time.Hour, func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeExecuted, outcome)
}

func TestGenerateKeyDeterministic(t *testing.T) {
	a := GenerateKey("cb", "123")
	b := GenerateKey("cb", "123")
	c := GenerateKey("cb", "124")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
