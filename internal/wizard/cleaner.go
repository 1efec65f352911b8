package wizard

import (
	"context"
	"log/slog"
	"time"
)

// Expirer handles a session that sat idle past the allowed TTL. The bot layer
// implements it to cancel the session and close its thread.
type Expirer interface {
	ExpireSession(ctx context.Context, threadID int64) error
}

// Cleaner cancels wizard sessions that have been idle for longer than the
// configured TTL.
type Cleaner struct {
	storage  Storage
	expirer  Expirer
	log      *slog.Logger
	ttl      time.Duration
	interval time.Duration
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(storage Storage, expirer Expirer, log *slog.Logger, ttl, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		storage:  storage,
		expirer:  expirer,
		log:      log,
		ttl:      ttl,
		interval: interval,
	}
}

// Run starts the cleanup loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.storage == nil || c.expirer == nil {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("session cleaner stopped")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *Cleaner) cleanup(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	sessions, err := c.storage.AllSessions(ctx)
	if err != nil {
		c.log.Error("session cleaner failed to list sessions", slog.Any("error", err))
		return
	}

	now := time.Now().UTC()
	for _, session := range sessions {
		if session == nil || session.Stage.IsTerminal() {
			continue
		}

		if now.Sub(session.UpdatedAt) <= c.ttl {
			continue
		}

		if err := c.expirer.ExpireSession(ctx, session.ThreadID); err != nil {
			c.log.Error("session cleaner failed to expire session",
				slog.Int64("thread_id", session.ThreadID),
				slog.Any("error", err),
			)
			continue
		}

		c.log.Info("idle session expired",
			slog.Int64("thread_id", session.ThreadID),
			slog.Int64("user_id", session.UserID),
		)
	}
}
