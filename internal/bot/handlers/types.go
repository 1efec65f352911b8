package handlers

import (
	"context"

	telebot "gopkg.in/telebot.v3"
)

// Handler processes bot commands and thread messages.
type Handler func(c telebot.Context) error

// CallbackHandler processes inline callback events.
type CallbackHandler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// ThreadHost abstracts the platform operations for order threads: creating a
// topic for a new order, posting into it, and closing it.
type ThreadHost interface {
	CreateThread(ctx context.Context, title string) (int64, error)
	Send(ctx context.Context, threadID int64, text string, markup *telebot.ReplyMarkup) error
	CloseThread(ctx context.Context, threadID int64) error
}

// ThreadID extracts the forum topic identifier from the update, whether it
// arrived as a message or a callback. Zero means the update is not bound to
// an order thread.
func ThreadID(c telebot.Context) int64 {
	if c == nil {
		return 0
	}

	if cb := c.Callback(); cb != nil && cb.Message != nil {
		return int64(cb.Message.ThreadID)
	}

	if msg := c.Message(); msg != nil {
		return int64(msg.ThreadID)
	}

	return 0
}

func respondCallback(c telebot.Context, text string, alert bool) error {
	if c == nil || c.Callback() == nil {
		return nil
	}
	return c.Respond(&telebot.CallbackResponse{
		Text:      text,
		ShowAlert: alert,
	})
}
