package wizard

import "testing"

func TestIsTransitionAllowed(t *testing.T) {
	testCases := []struct {
		name    string
		from    Stage
		to      Stage
		allowed bool
	}{
		{name: "start to amount", from: StageAwaitingStart, to: StageAwaitingAmount, allowed: true},
		{name: "amount to confirm", from: StageAwaitingAmount, to: StageAwaitingConfirm, allowed: true},
		{name: "confirm to method", from: StageAwaitingConfirm, to: StageAwaitingMethod, allowed: true},
		{name: "method to coin", from: StageAwaitingMethod, to: StageAwaitingCoin, allowed: true},
		{name: "method to completed", from: StageAwaitingMethod, to: StageCompleted, allowed: true},
		{name: "coin to completed", from: StageAwaitingCoin, to: StageCompleted, allowed: true},
		{name: "cancel from start", from: StageAwaitingStart, to: StageCancelled, allowed: true},
		{name: "cancel from coin", from: StageAwaitingCoin, to: StageCancelled, allowed: true},
		{name: "no skipping ahead", from: StageAwaitingStart, to: StageAwaitingMethod, allowed: false},
		{name: "no backward moves", from: StageAwaitingConfirm, to: StageAwaitingAmount, allowed: false},
		{name: "completed is terminal", from: StageCompleted, to: StageAwaitingStart, allowed: false},
		{name: "cancelled is terminal", from: StageCancelled, to: StageAwaitingAmount, allowed: false},
		{name: "no completing from amount", from: StageAwaitingAmount, to: StageCompleted, allowed: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransitionAllowed(tc.from, tc.to); got != tc.allowed {
				t.Fatalf("IsTransitionAllowed(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestStageIsTerminal(t *testing.T) {
	for _, stage := range []Stage{StageAwaitingStart, StageAwaitingAmount, StageAwaitingConfirm, StageAwaitingMethod, StageAwaitingCoin} {
		if stage.IsTerminal() {
			t.Fatalf("stage %s must not be terminal", stage)
		}
	}

	for _, stage := range []Stage{StageCompleted, StageCancelled} {
		if !stage.IsTerminal() {
			t.Fatalf("stage %s must be terminal", stage)
		}
	}
}
