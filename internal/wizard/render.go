package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/robux-town/order-bot/internal/domain"
)

// Keyboard names the set of controls to attach to a rendered prompt. The
// transport layer maps these to platform-specific markup.
type Keyboard string

const (
	KeyboardNone    Keyboard = ""
	KeyboardYesNo   Keyboard = "yes_no"
	KeyboardConfirm Keyboard = "confirm"
	KeyboardMethods Keyboard = "methods"
	KeyboardCoins   Keyboard = "coins"
)

// Output is what a transition produces: the text to send into the thread, the
// keyboard for the next step, whether to close the thread, and the order
// record to persist when a payment leaf was reached.
type Output struct {
	Text        string
	Keyboard    Keyboard
	CloseThread bool
	Record      *domain.OrderRecord
}

// FormatAmount renders an integer with comma thousands grouping, e.g. 10000
// becomes "10,000".
func FormatAmount(n int64) string {
	s := strconv.FormatInt(n, 10)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatPrice renders a USD price with two decimals and a dollar sign.
func FormatPrice(p decimal.Decimal) string {
	return "$" + p.StringFixed(2)
}

func renderStartPrompt() string {
	return "Would you like to start buying Robux? (1/5)\n" +
		`Please click "Yes" if you would like to start purchasing your Robux.`
}

func renderAmountPrompt(minAmount int64) string {
	return fmt.Sprintf("How much Robux? (2/5)\nEnter the amount of Robux (min: %s).", FormatAmount(minAmount))
}

func renderConfirmPrompt(amount int64, rate, price decimal.Decimal) string {
	return fmt.Sprintf(
		"Confirm your purchase (3/5)\n"+
			"Are you sure you want to purchase %s Robux?\n\n"+
			"Current Rate: %s per 1,000 Robux\n"+
			"Price in USD: %s",
		FormatAmount(amount),
		FormatPrice(rate),
		FormatPrice(price),
	)
}

func renderMethodPrompt() string {
	return "Please select your preferred payment method (4/5)\nChoose one option below."
}

func renderCoinPrompt() string {
	return "Choose your coin (5/5)\nPick a cryptocurrency below."
}

func renderOrderSummary(amount int64, price decimal.Decimal) string {
	return fmt.Sprintf("Order Summary: %s Robux — %s", FormatAmount(amount), FormatPrice(price))
}

func renderMarketplaceInstructions(title, link string, amount int64, price decimal.Decimal) string {
	return fmt.Sprintf(
		"%s\nPlease purchase via:\n%s\n\n"+
			"After completing payment, reply here with your order ID / proof, and staff will verify.\n%s",
		title,
		link,
		renderOrderSummary(amount, price),
	)
}

func renderGiftcardInstructions(instructions string, amount int64, price decimal.Decimal) string {
	return fmt.Sprintf("Pay with Giftcards\n%s\n\n%s", instructions, renderOrderSummary(amount, price))
}

func renderCryptoInstructions(coin domain.Coin, address string, amount int64, price decimal.Decimal) string {
	return fmt.Sprintf(
		"Pay with %s\n"+
			"Send %s USD worth of %s to the address below.\n"+
			"Address: %s\n\n"+
			"After sending, reply here with your TXID / proof. Staff will verify and deliver your Robux.\n%s",
		coin,
		FormatPrice(price),
		coin,
		address,
		renderOrderSummary(amount, price),
	)
}

func renderDeclined() string {
	return "Okay, closing this order thread."
}

func renderCancelled() string {
	return "Purchase canceled. You can start again anytime."
}

// RenderPanel produces the static entry-point text with the information
// needed to start an order.
func RenderPanel(minAmount int64, rate decimal.Decimal) string {
	return fmt.Sprintf(
		"Robux Town — Automatic Order\n"+
			"Click the button below to start your automatic order.\n"+
			"Minimum order: %s Robux\n"+
			"Current rate: %s per 1,000 Robux",
		FormatAmount(minAmount),
		FormatPrice(rate),
	)
}
