package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robux-town/order-bot/internal/domain"
	apperrors "github.com/robux-town/order-bot/internal/errors"
)

const (
	threadLockKeyPattern = "order:lock:%d"
	lockTTL              = 5 * time.Second
)

// OrderWriter persists finalized order records. Implemented by the order
// repository.
type OrderWriter interface {
	Create(ctx context.Context, record *domain.OrderRecord) error
}

// Engine drives wizard sessions: it loads the session for a thread, applies
// one event, persists side effects, and returns the rendered output.
type Engine interface {
	StartSession(ctx context.Context, threadID, userID int64, username string) (Output, error)
	HandleEvent(ctx context.Context, threadID int64, ev Event) (Output, error)
	CancelSession(ctx context.Context, threadID int64) (Output, error)
	GetSession(ctx context.Context, threadID int64) (*Session, error)
}

type engine struct {
	cfg         *Config
	storage     Storage
	orders      OrderWriter
	log         *slog.Logger
	redisClient *redis.Client
}

// NewEngine creates a session engine using the provided storage backend,
// order writer, and redis client for per-thread locking.
func NewEngine(cfg *Config, storage Storage, orders OrderWriter, log *slog.Logger, redisClient *redis.Client) Engine {
	if log == nil {
		log = slog.Default()
	}

	return &engine{
		cfg:         cfg,
		storage:     storage,
		orders:      orders,
		log:         log,
		redisClient: redisClient,
	}
}

// StartSession creates a fresh session for the thread and returns the step
// 1/5 prompt. An existing non-terminal session for the thread is kept as-is.
func (e *engine) StartSession(ctx context.Context, threadID, userID int64, username string) (Output, error) {
	if err := e.lock(ctx, threadID); err != nil {
		return Output{}, err
	}
	defer e.unlock(ctx, threadID)

	existing, err := e.storage.GetSession(ctx, threadID)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return Output{}, apperrors.NewDatabaseError(err)
	}
	if existing != nil && !existing.Stage.IsTerminal() {
		return Output{}, apperrors.NewStaleEventError(string(existing.Stage))
	}

	session := NewSession(threadID, userID, username)
	if err := e.storage.SetSession(ctx, threadID, session); err != nil {
		return Output{}, apperrors.NewDatabaseError(err)
	}

	return Output{Text: renderStartPrompt(), Keyboard: KeyboardYesNo}, nil
}

// HandleEvent applies one event to the thread's session. The order record,
// when a payment leaf is reached, is written before the session advances, so
// a storage failure leaves the session at its pre-write stage and the
// triggering action can be retried.
func (e *engine) HandleEvent(ctx context.Context, threadID int64, ev Event) (Output, error) {
	if err := e.lock(ctx, threadID); err != nil {
		return Output{}, err
	}
	defer e.unlock(ctx, threadID)

	session, err := e.storage.GetSession(ctx, threadID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Output{}, ErrSessionNotFound
		}
		return Output{}, apperrors.NewDatabaseError(err)
	}

	next, out, err := Advance(e.cfg, *session, ev)
	if err != nil {
		return Output{}, err
	}

	if out.Record != nil {
		if err := e.orders.Create(ctx, out.Record); err != nil {
			e.log.Error("failed to write order record",
				slog.Int64("thread_id", threadID),
				slog.Int64("user_id", session.UserID),
				slog.Any("error", err),
			)
			return Output{}, apperrors.NewDatabaseError(err)
		}

		e.log.Info("order recorded",
			slog.Int64("order_id", out.Record.ID),
			slog.Int64("thread_id", threadID),
			slog.Int64("amount", out.Record.Amount),
			slog.String("method", string(out.Record.PaymentMethod)),
		)
	}

	if err := e.persist(ctx, threadID, &next); err != nil {
		if out.Record != nil {
			// The record is already durable; losing the terminal session
			// state only delays cleanup.
			e.log.Error("failed to persist terminal session", slog.Int64("thread_id", threadID), slog.Any("error", err))
			return out, nil
		}
		return Output{}, apperrors.NewDatabaseError(err)
	}

	return out, nil
}

// CancelSession transitions the thread's session to cancelled and discards
// it. Used by the /cancel command and idle-session expiry.
func (e *engine) CancelSession(ctx context.Context, threadID int64) (Output, error) {
	if err := e.lock(ctx, threadID); err != nil {
		return Output{}, err
	}
	defer e.unlock(ctx, threadID)

	session, err := e.storage.GetSession(ctx, threadID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Output{}, ErrSessionNotFound
		}
		return Output{}, apperrors.NewDatabaseError(err)
	}

	next, out, err := Cancel(*session)
	if err != nil {
		return Output{}, err
	}

	if err := e.persist(ctx, threadID, &next); err != nil {
		return Output{}, apperrors.NewDatabaseError(err)
	}

	return out, nil
}

// GetSession proxies to the underlying storage implementation.
func (e *engine) GetSession(ctx context.Context, threadID int64) (*Session, error) {
	return e.storage.GetSession(ctx, threadID)
}

func (e *engine) persist(ctx context.Context, threadID int64, session *Session) error {
	if session.Stage.IsTerminal() {
		return e.storage.ClearSession(ctx, threadID)
	}

	return e.storage.SetSession(ctx, threadID, session)
}

func (e *engine) lock(ctx context.Context, threadID int64) error {
	if e.redisClient == nil {
		return nil
	}

	key := fmt.Sprintf(threadLockKeyPattern, threadID)
	acquired, err := e.redisClient.SetNX(ctx, key, 1, lockTTL).Result()
	if err != nil {
		e.log.Error("failed to acquire thread lock", "thread_id", threadID, "error", err)
		return err
	}

	if !acquired {
		e.log.Warn("thread lock already held", "thread_id", threadID)
		return ErrSessionLocked
	}

	return nil
}

func (e *engine) unlock(ctx context.Context, threadID int64) {
	if e.redisClient == nil {
		return
	}

	key := fmt.Sprintf(threadLockKeyPattern, threadID)
	if err := e.redisClient.Del(ctx, key).Err(); err != nil {
		e.log.Error("failed to release thread lock", "thread_id", threadID, "error", err)
	}
}
