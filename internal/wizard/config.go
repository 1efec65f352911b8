package wizard

import (
	"github.com/shopspring/decimal"

	"github.com/robux-town/order-bot/internal/domain"
)

// Config holds the commerce settings the wizard needs. It is built once at
// startup and passed by reference; nothing mutates it afterwards.
type Config struct {
	// MinAmount is the smallest accepted Robux order.
	MinAmount int64
	// Rate is the USD price per 1,000 Robux.
	Rate decimal.Decimal
	// EnebaLink is the marketplace link for the PayPal method.
	EnebaLink string
	// G2ALink is the marketplace link for the Card method.
	G2ALink string
	// GiftcardInstructions is the verbatim text for the Giftcards method.
	GiftcardInstructions string
	// CoinAddresses maps each supported coin to its payment address.
	CoinAddresses map[domain.Coin]string
}

// AddressFor returns the configured payment address for the coin.
func (c *Config) AddressFor(coin domain.Coin) string {
	if addr, ok := c.CoinAddresses[coin]; ok {
		return addr
	}
	return "N/A"
}
