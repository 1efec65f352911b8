package wizard

import "github.com/robux-town/order-bot/internal/domain"

// Event is a single discrete user action delivered by the host platform.
// Exactly one event kind matches each awaiting stage; Advance rejects the
// rest as stale.
type Event interface {
	isEvent()
}

// StartDecision answers the step 1/5 prompt.
type StartDecision struct {
	Accept bool
}

// AmountSubmitted carries the raw amount text from step 2/5.
type AmountSubmitted struct {
	Raw string
}

// ConfirmDecision answers the step 3/5 price confirmation.
type ConfirmDecision struct {
	Accept bool
}

// MethodSelected carries the step 4/5 payment method choice.
type MethodSelected struct {
	Method domain.PaymentMethod
}

// CoinSelected carries the step 5/5 coin choice on the Crypto branch.
type CoinSelected struct {
	Coin domain.Coin
}

func (StartDecision) isEvent()   {}
func (AmountSubmitted) isEvent() {}
func (ConfirmDecision) isEvent() {}
func (MethodSelected) isEvent()  {}
func (CoinSelected) isEvent()    {}
