package handlers

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/robux-town/order-bot/internal/bot/keyboard"
	"github.com/robux-town/order-bot/internal/wizard"
)

// NewCancelHandler returns the /cancel command handler. It aborts the order
// flow in the current thread and closes the topic.
func NewCancelHandler(engine wizard.Engine, threads ThreadHost, kb *keyboard.Builder, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		threadID := ThreadID(c)
		if threadID == 0 {
			return c.Send("Use /cancel inside your order thread.")
		}

		ctx := context.Background()
		out, err := engine.CancelSession(ctx, threadID)
		if err != nil {
			if errors.Is(err, wizard.ErrSessionNotFound) {
				return threads.Send(ctx, threadID, "There is no active order in this thread.", nil)
			}
			return err
		}

		if c.Sender() != nil {
			log.Info("order cancelled by user",
				slog.Int64("thread_id", threadID),
				slog.Int64("user_id", c.Sender().ID),
			)
		}

		return deliver(ctx, threads, kb, threadID, out)
	}
}
