package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how the buyer intends to pay for an order.
type PaymentMethod string

const (
	PaymentMethodCrypto   PaymentMethod = "Crypto"
	PaymentMethodPayPal   PaymentMethod = "PayPal (Eneba)"
	PaymentMethodCard     PaymentMethod = "Card (G2A)"
	PaymentMethodGiftcard PaymentMethod = "Giftcards"
)

// Coin is one of the supported cryptocurrencies for the Crypto payment method.
type Coin string

const (
	CoinBitcoin  Coin = "Bitcoin"
	CoinLitecoin Coin = "Litecoin"
	CoinEthereum Coin = "Ethereum"
	CoinSolana   Coin = "Solana"
	CoinTether   Coin = "Tether (USDT)"
)

// Coins lists every supported coin in display order.
var Coins = []Coin{
	CoinBitcoin,
	CoinLitecoin,
	CoinEthereum,
	CoinSolana,
	CoinTether,
}

// IsValidCoin reports whether c belongs to the supported coin set.
func IsValidCoin(c Coin) bool {
	for _, known := range Coins {
		if known == c {
			return true
		}
	}
	return false
}

// OrderStatus tracks the manual fulfillment state of an order record.
// The bot only ever writes StatusPending; later transitions are a staff concern.
type OrderStatus string

const (
	StatusPending OrderStatus = "pending"
)

// OrderRecord is the durable log entry written once a wizard session reaches
// a payment-instruction leaf. Records are append-only: never updated or
// deleted by the bot.
type OrderRecord struct {
	ID            int64           `db:"id"`
	UserID        int64           `db:"user_id"`
	Username      string          `db:"username"`
	Amount        int64           `db:"amount"`
	PriceUSD      decimal.Decimal `db:"price_usd"`
	PaymentMethod PaymentMethod   `db:"payment_method"`
	Coin          *Coin           `db:"coin"` // nil unless PaymentMethod is Crypto
	Status        OrderStatus     `db:"status"`
	ThreadID      int64           `db:"thread_id"`
	CreatedAt     time.Time       `db:"created_at"`
}
