package wizard

// Stage represents the session's position in the five-step order flow.
type Stage string

const (
	// StageAwaitingStart waits for the buyer to confirm they want to order.
	StageAwaitingStart Stage = "awaiting_start"
	// StageAwaitingAmount waits for the Robux amount.
	StageAwaitingAmount Stage = "awaiting_amount"
	// StageAwaitingConfirm waits for the buyer to confirm amount and price.
	StageAwaitingConfirm Stage = "awaiting_confirm"
	// StageAwaitingMethod waits for a payment method selection.
	StageAwaitingMethod Stage = "awaiting_method"
	// StageAwaitingCoin waits for a coin selection on the Crypto branch.
	StageAwaitingCoin Stage = "awaiting_coin"
	// StageCompleted is terminal; the order record has been written.
	StageCompleted Stage = "completed"
	// StageCancelled is terminal; no order record is ever written.
	StageCancelled Stage = "cancelled"
)

// IsTerminal reports whether the stage ends the session.
func (s Stage) IsTerminal() bool {
	return s == StageCompleted || s == StageCancelled
}

// validTransitions contains the permitted forward transitions of the flow.
// Cancellation is allowed from any non-terminal stage and handled separately
// by IsTransitionAllowed.
var validTransitions = map[Stage][]Stage{
	StageAwaitingStart: {
		StageAwaitingAmount,
	},
	StageAwaitingAmount: {
		StageAwaitingConfirm,
	},
	StageAwaitingConfirm: {
		StageAwaitingMethod,
	},
	StageAwaitingMethod: {
		StageAwaitingCoin,
		StageCompleted,
	},
	StageAwaitingCoin: {
		StageCompleted,
	},
}

// IsTransitionAllowed reports whether moving from one stage to another is
// valid. Sessions advance monotonically; the only backward-looking move is
// cancellation, which is terminal.
func IsTransitionAllowed(from, to Stage) bool {
	if from.IsTerminal() {
		return false
	}

	if to == StageCancelled {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, stage := range allowed {
		if stage == to {
			return true
		}
	}

	return false
}

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe stage
// transitions, e.g. for metrics.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}
