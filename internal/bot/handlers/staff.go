package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/robux-town/order-bot/internal/domain"
	"github.com/robux-town/order-bot/internal/repository"
	"github.com/robux-town/order-bot/internal/wizard"
	"github.com/robux-town/order-bot/pkg/config"
)

const recentOrdersLimit = 10

// RequireStaff wraps a handler so only configured staff users may invoke it.
func RequireStaff(cfg config.BotConfig, log *slog.Logger, next Handler) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		if !cfg.IsStaff(c.Sender().ID) {
			log.Warn("staff command denied", slog.Int64("user_id", c.Sender().ID))
			return c.Send("This command is restricted to staff.")
		}

		return next(c)
	}
}

// NewDoneHandler returns the /done command handler. Staff run it inside an
// order thread after fulfilling the order to close the topic.
func NewDoneHandler(threads ThreadHost, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		threadID := ThreadID(c)
		if threadID == 0 {
			return c.Send("Use /done inside the order thread you are closing.")
		}

		ctx := context.Background()
		if err := threads.Send(ctx, threadID, "Order completed. Thank you for your purchase! 🎉", nil); err != nil {
			return err
		}

		if err := threads.CloseThread(ctx, threadID); err != nil {
			log.Error("failed to close completed thread", slog.Int64("thread_id", threadID), slog.Any("error", err))
			return err
		}

		log.Info("order thread closed by staff", slog.Int64("thread_id", threadID))
		return nil
	}
}

// NewOrdersHandler returns the /orders command handler, listing the most
// recent order records for staff.
func NewOrdersHandler(orders repository.OrderRepository, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		ctx := context.Background()
		records, err := orders.ListRecent(ctx, recentOrdersLimit)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			return c.Send("No orders recorded yet.")
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Last %d orders:\n", len(records))
		for _, record := range records {
			b.WriteString(formatOrderLine(record))
			b.WriteByte('\n')
		}

		return c.Send(b.String())
	}
}

func formatOrderLine(record domain.OrderRecord) string {
	method := string(record.PaymentMethod)
	if record.Coin != nil {
		method = fmt.Sprintf("%s (%s)", method, *record.Coin)
	}

	who := record.Username
	if who == "" {
		who = fmt.Sprintf("id %d", record.UserID)
	}

	return fmt.Sprintf(
		"#%d — %s — %s Robux — %s — %s — %s",
		record.ID,
		who,
		wizard.FormatAmount(record.Amount),
		wizard.FormatPrice(record.PriceUSD),
		method,
		record.Status,
	)
}
