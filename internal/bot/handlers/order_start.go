package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/robux-town/order-bot/internal/bot/keyboard"
	apperrors "github.com/robux-town/order-bot/internal/errors"
	"github.com/robux-town/order-bot/internal/wizard"
)

// NewOrderStartHandler handles the panel button: it opens a fresh order
// thread for the clicking user and starts a wizard session inside it.
func NewOrderStartHandler(engine wizard.Engine, threads ThreadHost, kb *keyboard.Builder, log *slog.Logger) CallbackHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		sender := c.Sender()
		title := threadTitle(sender)
		ctx := context.Background()

		threadID, err := threads.CreateThread(ctx, title)
		if err != nil {
			log.Error("failed to create order thread",
				slog.Int64("user_id", sender.ID),
				slog.Any("error", err),
			)
			return respondCallback(c, "Could not open an order thread. Please try again.", true)
		}

		out, err := engine.StartSession(ctx, threadID, sender.ID, sender.Username)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.Code == apperrors.CodeStaleEvent {
				return respondCallback(c, "You already have an order in progress.", true)
			}

			log.Error("failed to start wizard session",
				slog.Int64("thread_id", threadID),
				slog.Int64("user_id", sender.ID),
				slog.Any("error", err),
			)
			return respondCallback(c, "Could not start your order. Please try again.", true)
		}

		if err := deliver(ctx, threads, kb, threadID, out); err != nil {
			log.Error("failed to deliver start prompt", slog.Int64("thread_id", threadID), slog.Any("error", err))
			return respondCallback(c, "Could not start your order. Please try again.", true)
		}

		log.Info("order thread opened",
			slog.Int64("thread_id", threadID),
			slog.Int64("user_id", sender.ID),
		)

		return respondCallback(c, "Order thread created. Check the new topic!", false)
	}
}

func threadTitle(sender *telebot.User) string {
	if sender.Username != "" {
		return fmt.Sprintf("Order - @%s", sender.Username)
	}
	return fmt.Sprintf("Order - %d", sender.ID)
}

// deliver posts a wizard output into its thread: the text with any keyboard,
// then closes the thread when the flow has reached a terminal stage.
func deliver(ctx context.Context, threads ThreadHost, kb *keyboard.Builder, threadID int64, out wizard.Output) error {
	if err := threads.Send(ctx, threadID, out.Text, kb.For(out.Keyboard)); err != nil {
		return err
	}

	if out.CloseThread {
		return threads.CloseThread(ctx, threadID)
	}

	return nil
}
