package handlers

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/robux-town/order-bot/internal/bot/keyboard"
	apperrors "github.com/robux-town/order-bot/internal/errors"
	"github.com/robux-town/order-bot/internal/wizard"
	"github.com/robux-town/order-bot/pkg/metrics"
)

// WizardHandlers bundles the dependencies shared by every step of the order
// flow.
type WizardHandlers struct {
	engine  wizard.Engine
	threads ThreadHost
	kb      *keyboard.Builder
	log     *slog.Logger
}

// NewWizardHandlers constructs the handler set for wizard events.
func NewWizardHandlers(engine wizard.Engine, threads ThreadHost, kb *keyboard.Builder, log *slog.Logger) *WizardHandlers {
	if log == nil {
		log = slog.Default()
	}

	return &WizardHandlers{
		engine:  engine,
		threads: threads,
		kb:      kb,
		log:     log,
	}
}

// StartDecision handles the step 1/5 Yes/No buttons.
func (h *WizardHandlers) StartDecision() CallbackHandler {
	return func(c telebot.Context) error {
		_, data := callbackPayload(c)
		return h.applyCallback(c, wizard.StartDecision{Accept: data == "yes"})
	}
}

// ConfirmDecision handles the step 3/5 Confirm/Cancel buttons.
func (h *WizardHandlers) ConfirmDecision() CallbackHandler {
	return func(c telebot.Context) error {
		_, data := callbackPayload(c)
		return h.applyCallback(c, wizard.ConfirmDecision{Accept: data == "yes"})
	}
}

// MethodSelected handles the step 4/5 payment method buttons.
func (h *WizardHandlers) MethodSelected() CallbackHandler {
	return func(c telebot.Context) error {
		_, data := callbackPayload(c)

		method, ok := keyboard.MethodFromCode(data)
		if !ok {
			return respondCallback(c, "Unknown payment method.", true)
		}

		return h.applyCallback(c, wizard.MethodSelected{Method: method})
	}
}

// CoinSelected handles the step 5/5 coin buttons.
func (h *WizardHandlers) CoinSelected() CallbackHandler {
	return func(c telebot.Context) error {
		_, data := callbackPayload(c)

		coin, ok := keyboard.CoinFromCode(data)
		if !ok {
			return respondCallback(c, "Unknown coin.", true)
		}

		return h.applyCallback(c, wizard.CoinSelected{Coin: coin})
	}
}

// AmountMessage handles free-text messages while the session awaits the
// amount. Validation failures surface through the error middleware so the
// user sees the explanatory notice and stays on the amount step.
func (h *WizardHandlers) AmountMessage() Handler {
	return func(c telebot.Context) error {
		threadID := ThreadID(c)
		if threadID == 0 {
			return nil
		}

		ctx := context.Background()
		out, err := h.engine.HandleEvent(ctx, threadID, wizard.AmountSubmitted{Raw: c.Text()})
		if err != nil {
			if errors.Is(err, wizard.ErrSessionNotFound) {
				return nil
			}
			return err
		}

		return h.finish(ctx, threadID, out)
	}
}

func (h *WizardHandlers) applyCallback(c telebot.Context, ev wizard.Event) error {
	threadID := ThreadID(c)
	if threadID == 0 {
		return respondCallback(c, "This button only works inside an order thread.", true)
	}

	ctx := context.Background()
	out, err := h.engine.HandleEvent(ctx, threadID, ev)
	if err != nil {
		switch {
		case errors.Is(err, wizard.ErrSessionNotFound):
			return respondCallback(c, "This order is no longer active.", true)
		case errors.Is(err, wizard.ErrSessionLocked):
			return respondCallback(c, "Hold on, your previous action is still processing.", true)
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeStaleEvent {
			return respondCallback(c, appErr.UserMessage, true)
		}

		if respondErr := respondCallback(c, "", false); respondErr != nil {
			h.log.Warn("failed to answer callback", slog.Any("error", respondErr))
		}
		return err
	}

	if err := h.finish(ctx, threadID, out); err != nil {
		return err
	}

	return respondCallback(c, "", false)
}

func (h *WizardHandlers) finish(ctx context.Context, threadID int64, out wizard.Output) error {
	if out.Record != nil {
		metrics.RecordOrder(string(out.Record.PaymentMethod))
	}

	return deliver(ctx, h.threads, h.kb, threadID, out)
}

func callbackPayload(c telebot.Context) (unique, data string) {
	if c == nil || c.Callback() == nil {
		return "", ""
	}

	unique, data, err := keyboard.DecodeCallback(c.Callback().Data)
	if err != nil {
		return "", ""
	}
	return unique, data
}

// StageHandlers maps wizard stages to their free-text handlers for the
// dispatcher. Only the amount step consumes text.
func (h *WizardHandlers) StageHandlers() map[wizard.Stage]Handler {
	return map[wizard.Stage]Handler{
		wizard.StageAwaitingAmount: h.AmountMessage(),
	}
}
