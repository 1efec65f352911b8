package handlers

import (
	"log/slog"

	"github.com/shopspring/decimal"
	telebot "gopkg.in/telebot.v3"

	"github.com/robux-town/order-bot/internal/bot/keyboard"
	"github.com/robux-town/order-bot/internal/wizard"
	"github.com/robux-town/order-bot/pkg/config"
)

// NewPanelHandler returns the /panel command handler. It posts the order
// panel with its entry button into the configured panel chat.
func NewPanelHandler(cfg config.Config, kb *keyboard.Builder, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Bot() == nil {
			return nil
		}

		rate := decimal.NewFromFloat(cfg.Commerce.RatePerThousand)
		text := wizard.RenderPanel(cfg.Commerce.MinAmount, rate)
		markup := kb.PanelButton()
		chat := &telebot.Chat{ID: cfg.Bot.PanelChatID}

		var err error
		if cfg.Commerce.BannerURL != "" {
			photo := &telebot.Photo{
				File:    telebot.FromURL(cfg.Commerce.BannerURL),
				Caption: text,
			}
			_, err = c.Bot().Send(chat, photo, markup)
		} else {
			_, err = c.Bot().Send(chat, text, markup)
		}

		if err != nil {
			log.Error("failed to post order panel", slog.Int64("chat_id", cfg.Bot.PanelChatID), slog.Any("error", err))
			return err
		}

		log.Info("order panel posted", slog.Int64("chat_id", cfg.Bot.PanelChatID))
		return c.Send("Panel posted.")
	}
}
