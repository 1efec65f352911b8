package keyboard

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/robux-town/order-bot/internal/domain"
	"github.com/robux-town/order-bot/internal/wizard"
)

// Callback uniques shared between the builder and the router registrations.
const (
	UniqueOrderStart = "order_start"
	UniqueWizard     = "wizard"
	UniqueConfirm    = "confirm"
	UniqueMethod     = "method"
	UniqueCoin       = "coin"
)

var methodCodes = map[domain.PaymentMethod]string{
	domain.PaymentMethodCrypto:   "crypto",
	domain.PaymentMethodPayPal:   "paypal",
	domain.PaymentMethodCard:     "card",
	domain.PaymentMethodGiftcard: "giftcard",
}

var coinCodes = map[domain.Coin]string{
	domain.CoinBitcoin:  "bitcoin",
	domain.CoinLitecoin: "litecoin",
	domain.CoinEthereum: "ethereum",
	domain.CoinSolana:   "solana",
	domain.CoinTether:   "usdt",
}

// MethodFromCode resolves a callback payload back to a payment method.
func MethodFromCode(code string) (domain.PaymentMethod, bool) {
	for method, c := range methodCodes {
		if c == code {
			return method, true
		}
	}
	return "", false
}

// CoinFromCode resolves a callback payload back to a coin.
func CoinFromCode(code string) (domain.Coin, bool) {
	for coin, c := range coinCodes {
		if c == code {
			return coin, true
		}
	}
	return "", false
}

// Builder creates the inline keyboards used throughout the order flow.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{log: log}
}

// For maps a wizard keyboard name to its telebot markup. Returns nil when the
// prompt carries no controls.
func (b *Builder) For(kb wizard.Keyboard) *telebot.ReplyMarkup {
	switch kb {
	case wizard.KeyboardYesNo:
		return b.YesNo()
	case wizard.KeyboardConfirm:
		return b.Confirm()
	case wizard.KeyboardMethods:
		return b.Methods()
	case wizard.KeyboardCoins:
		return b.Coins()
	default:
		return nil
	}
}

// PanelButton builds the single entry-point button attached to the order panel.
func (b *Builder) PanelButton() *telebot.ReplyMarkup {
	return NewInlineKeyboard().
		AddRow(InlineButton{Text: "Order Robux 🛒", Unique: UniqueOrderStart}).
		Build(b.encode)
}

// YesNo builds the step 1/5 start decision buttons.
func (b *Builder) YesNo() *telebot.ReplyMarkup {
	return NewInlineKeyboard().
		AddRow(
			InlineButton{Text: "Yes ✅", Unique: UniqueWizard, Data: "yes"},
			InlineButton{Text: "No ❌", Unique: UniqueWizard, Data: "no"},
		).
		Build(b.encode)
}

// Confirm builds the step 3/5 purchase confirmation buttons.
func (b *Builder) Confirm() *telebot.ReplyMarkup {
	return NewInlineKeyboard().
		AddRow(
			InlineButton{Text: "Confirm ✅", Unique: UniqueConfirm, Data: "yes"},
			InlineButton{Text: "Cancel ❌", Unique: UniqueConfirm, Data: "no"},
		).
		Build(b.encode)
}

// Methods builds the step 4/5 payment method buttons, one per row.
func (b *Builder) Methods() *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, method := range []domain.PaymentMethod{
		domain.PaymentMethodCrypto,
		domain.PaymentMethodPayPal,
		domain.PaymentMethodCard,
		domain.PaymentMethodGiftcard,
	} {
		kb.AddRow(InlineButton{Text: string(method), Unique: UniqueMethod, Data: methodCodes[method]})
	}
	return kb.Build(b.encode)
}

// Coins builds the step 5/5 coin buttons, one per row.
func (b *Builder) Coins() *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, coin := range domain.Coins {
		kb.AddRow(InlineButton{Text: string(coin), Unique: UniqueCoin, Data: coinCodes[coin]})
	}
	return kb.Build(b.encode)
}

func (b *Builder) encode(unique, data string) string {
	payload, err := EncodeCallback(unique, data)
	if err != nil {
		b.log.Error("failed to encode callback data", slog.String("unique", unique), slog.Any("error", err))
		return unique
	}
	return payload
}
