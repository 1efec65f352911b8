package bot

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/robux-town/order-bot/internal/bot/handlers"
)

// threadHost implements handlers.ThreadHost on top of Telegram forum topics.
// Each order lives in its own topic inside the tickets supergroup.
type threadHost struct {
	bot           *telebot.Bot
	ticketsChatID int64
	log           *slog.Logger
}

var _ handlers.ThreadHost = (*threadHost)(nil)

func newThreadHost(bot *telebot.Bot, ticketsChatID int64, log *slog.Logger) *threadHost {
	if log == nil {
		log = slog.Default()
	}

	return &threadHost{
		bot:           bot,
		ticketsChatID: ticketsChatID,
		log:           log,
	}
}

// CreateThread opens a new forum topic and returns its thread identifier.
func (h *threadHost) CreateThread(ctx context.Context, title string) (int64, error) {
	topic, err := h.bot.CreateTopic(h.chat(), &telebot.Topic{Name: title})
	if err != nil {
		return 0, fmt.Errorf("create forum topic: %w", err)
	}

	h.log.Debug("forum topic created",
		slog.String("title", title),
		slog.Int("thread_id", topic.ThreadID),
	)

	return int64(topic.ThreadID), nil
}

// Send posts a message into the given topic, attaching the markup if present.
func (h *threadHost) Send(ctx context.Context, threadID int64, text string, markup *telebot.ReplyMarkup) error {
	opts := &telebot.SendOptions{ThreadID: int(threadID)}
	if markup != nil {
		opts.ReplyMarkup = markup
	}

	if _, err := h.bot.Send(h.chat(), text, opts); err != nil {
		return fmt.Errorf("send to thread %d: %w", threadID, err)
	}

	return nil
}

// CloseThread closes the topic so no further messages can be posted.
func (h *threadHost) CloseThread(ctx context.Context, threadID int64) error {
	if err := h.bot.CloseTopic(h.chat(), &telebot.Topic{ThreadID: int(threadID)}); err != nil {
		return fmt.Errorf("close forum topic %d: %w", threadID, err)
	}

	return nil
}

func (h *threadHost) chat() *telebot.Chat {
	return &telebot.Chat{ID: h.ticketsChatID}
}
