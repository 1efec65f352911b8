package idempotency

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrUpdateInProgress indicates another delivery of the same update is being
// handled right now.
var ErrUpdateInProgress = errors.New("update with this key is already being handled")

const (
	handlerLockTTL = 5 * time.Minute
	pollInterval   = 100 * time.Millisecond
)

// Outcome describes how an update was handled relative to earlier deliveries
// of the same key.
type Outcome int

const (
	// OutcomeExecuted means this delivery ran the handler.
	OutcomeExecuted Outcome = iota
	// OutcomeDuplicate means an earlier delivery already completed and the
	// handler was skipped.
	OutcomeDuplicate
)

// HandlerFunc is the unit of work guarded by an idempotency key.
type HandlerFunc func(ctx context.Context) error

// Manager runs a handler at most once per key. Redelivered updates observe
// the completed record and are reported as duplicates instead of re-running.
type Manager interface {
	Execute(ctx context.Context, key string, ttl time.Duration, fn HandlerFunc) (Outcome, error)
}

type manager struct {
	store Store
	log   *slog.Logger
}

func NewManager(store Store, log *slog.Logger) Manager {
	if log == nil {
		log = slog.Default()
	}

	return &manager{
		store: store,
		log:   log,
	}
}

// Execute runs fn under the update key. A failed handler leaves no completion
// record, so a later redelivery of the same update retries it.
func (m *manager) Execute(ctx context.Context, key string, ttl time.Duration, fn HandlerFunc) (Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if fn == nil {
		return OutcomeExecuted, errors.New("handler fn cannot be nil")
	}

	for {
		locked, err := m.store.Lock(ctx, key, handlerLockTTL)
		if err != nil {
			return OutcomeExecuted, err
		}

		if !locked {
			record, err := m.store.Get(ctx, key)
			if err != nil {
				return OutcomeExecuted, err
			}

			switch {
			case record == nil:
				// Lock holder crashed or has not written yet, wait it out.
			case record.Status == StatusProcessing:
				return OutcomeExecuted, ErrUpdateInProgress
			case record.Status == StatusCompleted:
				return OutcomeDuplicate, nil
			}

			select {
			case <-ctx.Done():
				return OutcomeExecuted, ctx.Err()
			case <-time.After(pollInterval):
				continue
			}
		}

		defer m.store.ReleaseLock(ctx, key)

		if err := fn(ctx); err != nil {
			return OutcomeExecuted, err
		}

		if err := m.store.Set(ctx, key, &Record{
			Status: StatusCompleted,
			SeenAt: time.Now().UTC(),
		}, ttl); err != nil {
			return OutcomeExecuted, err
		}

		return OutcomeExecuted, nil
	}
}
