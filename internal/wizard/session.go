// Package wizard implements the five-step order flow: start confirmation,
// amount entry, price confirmation, payment method selection, and payment
// instructions. One session exists per order thread.
package wizard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/robux-town/order-bot/internal/domain"
)

// Session captures the wizard state for one order thread. ThreadID and UserID
// are assigned at creation and never change; Amount and PriceUSD are set once
// at the amount step and immutable thereafter.
type Session struct {
	ThreadID  int64                `json:"thread_id"`
	UserID    int64                `json:"user_id"`
	Username  string               `json:"username"`
	Stage     Stage                `json:"stage"`
	Amount    int64                `json:"amount,omitempty"`
	PriceUSD  decimal.Decimal      `json:"price_usd"`
	Method    domain.PaymentMethod `json:"payment_method,omitempty"`
	Coin      domain.Coin          `json:"coin,omitempty"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// NewSession creates a session at the initial stage.
func NewSession(threadID, userID int64, username string) *Session {
	return &Session{
		ThreadID: threadID,
		UserID:   userID,
		Username: username,
		Stage:    StageAwaitingStart,
	}
}

// Record builds the order record for a session that reached a payment leaf.
// Coin is nil for non-crypto methods.
func (s *Session) Record() *domain.OrderRecord {
	var coin *domain.Coin
	if s.Method == domain.PaymentMethodCrypto && s.Coin != "" {
		c := s.Coin
		coin = &c
	}

	return &domain.OrderRecord{
		UserID:        s.UserID,
		Username:      s.Username,
		Amount:        s.Amount,
		PriceUSD:      s.PriceUSD,
		PaymentMethod: s.Method,
		Coin:          coin,
		Status:        domain.StatusPending,
		ThreadID:      s.ThreadID,
	}
}
