package wizard

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robux-town/order-bot/internal/domain"
	apperrors "github.com/robux-town/order-bot/internal/errors"
)

func testConfig() *Config {
	return &Config{
		MinAmount:            10000,
		Rate:                 decimal.RequireFromString("1.0"),
		EnebaLink:            "https://eneba.example/robux-paypal",
		G2ALink:              "https://g2a.example/robux-card",
		GiftcardInstructions: "Send a clear photo or digital code. Staff will verify value.",
		CoinAddresses: map[domain.Coin]string{
			domain.CoinBitcoin:  "bc1qtestbitcoinaddress",
			domain.CoinLitecoin: "ltc1qtestlitecoinaddress",
			domain.CoinEthereum: "0xTestEthereumAddress",
			domain.CoinSolana:   "TestSolanaAddress",
			domain.CoinTether:   "TTestTetherAddress",
		},
	}
}

func sessionAt(stage Stage) Session {
	s := Session{
		ThreadID: 100,
		UserID:   42,
		Username: "buyer",
		Stage:    stage,
	}

	// Stages past the amount step carry a priced amount.
	if stage == StageAwaitingConfirm || stage == StageAwaitingMethod || stage == StageAwaitingCoin {
		s.Amount = 10000
		s.PriceUSD = decimal.RequireFromString("10")
	}

	return s
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Code
}

func TestParseAmount(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected int64
		wantErr  bool
	}{
		{name: "plain integer", raw: "10000", expected: 10000},
		{name: "comma grouping", raw: "10,000", expected: 10000},
		{name: "large grouped", raw: "1,250,000", expected: 1250000},
		{name: "surrounding whitespace", raw: "  25000  ", expected: 25000},
		{name: "grouped with whitespace", raw: " 10,000 ", expected: 10000},
		{name: "letters", raw: "abc", wantErr: true},
		{name: "malformed grouping", raw: "1,2,3", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "decimal point", raw: "10.5", wantErr: true},
		{name: "trailing comma", raw: "10,", wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			n, err := ParseAmount(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.CodeNotAnInteger, appErrCode(t, err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, n)
		})
	}
}

func TestAdvanceStartDecision(t *testing.T) {
	cfg := testConfig()

	t.Run("yes advances to amount", func(t *testing.T) {
		next, out, err := Advance(cfg, sessionAt(StageAwaitingStart), StartDecision{Accept: true})
		require.NoError(t, err)
		assert.Equal(t, StageAwaitingAmount, next.Stage)
		assert.Contains(t, out.Text, "(2/5)")
		assert.Contains(t, out.Text, "10,000")
		assert.False(t, out.CloseThread)
	})

	t.Run("no cancels and closes thread", func(t *testing.T) {
		next, out, err := Advance(cfg, sessionAt(StageAwaitingStart), StartDecision{Accept: false})
		require.NoError(t, err)
		assert.Equal(t, StageCancelled, next.Stage)
		assert.True(t, out.CloseThread)
		assert.Nil(t, out.Record)
	})
}

func TestAdvanceAmount(t *testing.T) {
	cfg := testConfig()

	t.Run("valid amount computes price and advances", func(t *testing.T) {
		next, out, err := Advance(cfg, sessionAt(StageAwaitingAmount), AmountSubmitted{Raw: "10000"})
		require.NoError(t, err)
		assert.Equal(t, StageAwaitingConfirm, next.Stage)
		assert.Equal(t, int64(10000), next.Amount)
		assert.True(t, next.PriceUSD.Equal(decimal.RequireFromString("10")))
		assert.Contains(t, out.Text, "$10.00")
		assert.Equal(t, KeyboardConfirm, out.Keyboard)
	})

	t.Run("non-integer keeps stage", func(t *testing.T) {
		for _, raw := range []string{"abc", "1,2,3", ""} {
			next, _, err := Advance(cfg, sessionAt(StageAwaitingAmount), AmountSubmitted{Raw: raw})
			require.Error(t, err, "input %q", raw)
			assert.Equal(t, apperrors.CodeNotAnInteger, appErrCode(t, err))
			assert.Equal(t, StageAwaitingAmount, next.Stage)
		}
	})

	t.Run("below minimum restates the configured minimum", func(t *testing.T) {
		next, _, err := Advance(cfg, sessionAt(StageAwaitingAmount), AmountSubmitted{Raw: "5000"})
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperrors.CodeBelowMinimum, appErr.Code)
		assert.Contains(t, appErr.UserMessage, "10,000")
		assert.Equal(t, StageAwaitingAmount, next.Stage)
	})

	t.Run("resubmitting after rejection succeeds identically", func(t *testing.T) {
		s := sessionAt(StageAwaitingAmount)

		rejected, _, err := Advance(cfg, s, AmountSubmitted{Raw: "oops"})
		require.Error(t, err)
		require.Equal(t, StageAwaitingAmount, rejected.Stage)

		first, firstOut, err := Advance(cfg, rejected, AmountSubmitted{Raw: "15000"})
		require.NoError(t, err)

		fresh, freshOut, err := Advance(cfg, sessionAt(StageAwaitingAmount), AmountSubmitted{Raw: "15000"})
		require.NoError(t, err)

		assert.Equal(t, fresh.Stage, first.Stage)
		assert.Equal(t, fresh.Amount, first.Amount)
		assert.True(t, fresh.PriceUSD.Equal(first.PriceUSD))
		assert.Equal(t, freshOut.Text, firstOut.Text)
	})
}

func TestAdvanceConfirmDecision(t *testing.T) {
	cfg := testConfig()

	t.Run("confirm advances to method picker", func(t *testing.T) {
		next, out, err := Advance(cfg, sessionAt(StageAwaitingConfirm), ConfirmDecision{Accept: true})
		require.NoError(t, err)
		assert.Equal(t, StageAwaitingMethod, next.Stage)
		assert.Equal(t, KeyboardMethods, out.Keyboard)
	})

	t.Run("cancel is terminal", func(t *testing.T) {
		next, out, err := Advance(cfg, sessionAt(StageAwaitingConfirm), ConfirmDecision{Accept: false})
		require.NoError(t, err)
		assert.Equal(t, StageCancelled, next.Stage)
		assert.True(t, out.CloseThread)
		assert.Nil(t, out.Record)
	})
}

func TestAdvanceMethodSelected(t *testing.T) {
	cfg := testConfig()

	t.Run("crypto branches to coin picker without a record", func(t *testing.T) {
		next, out, err := Advance(cfg, sessionAt(StageAwaitingMethod), MethodSelected{Method: domain.PaymentMethodCrypto})
		require.NoError(t, err)
		assert.Equal(t, StageAwaitingCoin, next.Stage)
		assert.Equal(t, KeyboardCoins, out.Keyboard)
		assert.Nil(t, out.Record)
	})

	t.Run("paypal completes with a record and the eneba link", func(t *testing.T) {
		next, out, err := Advance(cfg, sessionAt(StageAwaitingMethod), MethodSelected{Method: domain.PaymentMethodPayPal})
		require.NoError(t, err)
		assert.Equal(t, StageCompleted, next.Stage)
		assert.Contains(t, out.Text, cfg.EnebaLink)

		require.NotNil(t, out.Record)
		assert.Equal(t, domain.PaymentMethodPayPal, out.Record.PaymentMethod)
		assert.Nil(t, out.Record.Coin)
		assert.Equal(t, int64(10000), out.Record.Amount)
		assert.True(t, out.Record.PriceUSD.Equal(decimal.RequireFromString("10")))
		assert.Equal(t, domain.StatusPending, out.Record.Status)
	})

	t.Run("card completes with the g2a link", func(t *testing.T) {
		_, out, err := Advance(cfg, sessionAt(StageAwaitingMethod), MethodSelected{Method: domain.PaymentMethodCard})
		require.NoError(t, err)
		assert.Contains(t, out.Text, cfg.G2ALink)
		require.NotNil(t, out.Record)
		assert.Equal(t, domain.PaymentMethodCard, out.Record.PaymentMethod)
	})

	t.Run("giftcards complete with the configured instructions", func(t *testing.T) {
		_, out, err := Advance(cfg, sessionAt(StageAwaitingMethod), MethodSelected{Method: domain.PaymentMethodGiftcard})
		require.NoError(t, err)
		assert.Contains(t, out.Text, cfg.GiftcardInstructions)
		require.NotNil(t, out.Record)
	})
}

func TestAdvanceCoinSelected(t *testing.T) {
	cfg := testConfig()

	t.Run("bitcoin completes with the configured address verbatim", func(t *testing.T) {
		s := sessionAt(StageAwaitingCoin)
		s.Amount = 25000
		s.PriceUSD = decimal.RequireFromString("25")
		s.Method = domain.PaymentMethodCrypto

		next, out, err := Advance(cfg, s, CoinSelected{Coin: domain.CoinBitcoin})
		require.NoError(t, err)
		assert.Equal(t, StageCompleted, next.Stage)
		assert.Contains(t, out.Text, "bc1qtestbitcoinaddress")
		assert.Contains(t, out.Text, "$25.00")

		require.NotNil(t, out.Record)
		require.NotNil(t, out.Record.Coin)
		assert.Equal(t, domain.CoinBitcoin, *out.Record.Coin)
		assert.Equal(t, domain.PaymentMethodCrypto, out.Record.PaymentMethod)
	})

	t.Run("unknown coin rejected", func(t *testing.T) {
		s := sessionAt(StageAwaitingCoin)
		s.Method = domain.PaymentMethodCrypto

		next, _, err := Advance(cfg, s, CoinSelected{Coin: domain.Coin("Dogecoin")})
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeStaleEvent, appErrCode(t, err))
		assert.Equal(t, StageAwaitingCoin, next.Stage)
	})
}

func TestAdvanceRejectsStaleEvents(t *testing.T) {
	cfg := testConfig()

	testCases := []struct {
		name  string
		stage Stage
		ev    Event
	}{
		{name: "amount text at start", stage: StageAwaitingStart, ev: AmountSubmitted{Raw: "10000"}},
		{name: "start click at amount", stage: StageAwaitingAmount, ev: StartDecision{Accept: true}},
		{name: "method pick at confirm", stage: StageAwaitingConfirm, ev: MethodSelected{Method: domain.PaymentMethodPayPal}},
		{name: "coin pick at method", stage: StageAwaitingMethod, ev: CoinSelected{Coin: domain.CoinBitcoin}},
		{name: "confirm at coin", stage: StageAwaitingCoin, ev: ConfirmDecision{Accept: true}},
		{name: "anything at completed", stage: StageCompleted, ev: StartDecision{Accept: true}},
		{name: "anything at cancelled", stage: StageCancelled, ev: AmountSubmitted{Raw: "10000"}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			next, out, err := Advance(cfg, sessionAt(tc.stage), tc.ev)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeStaleEvent, appErrCode(t, err))
			assert.Equal(t, tc.stage, next.Stage)
			assert.Nil(t, out.Record)
		})
	}
}

func TestCancel(t *testing.T) {
	t.Run("cancels non-terminal session", func(t *testing.T) {
		next, out, err := Cancel(sessionAt(StageAwaitingConfirm))
		require.NoError(t, err)
		assert.Equal(t, StageCancelled, next.Stage)
		assert.True(t, out.CloseThread)
	})

	t.Run("terminal session cannot be cancelled again", func(t *testing.T) {
		_, _, err := Cancel(sessionAt(StageCompleted))
		require.Error(t, err)
	})
}

func TestFormatAmount(t *testing.T) {
	testCases := []struct {
		in       int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{10000, "10,000"},
		{1250000, "1,250,000"},
		{-5000, "-5,000"},
	}

	for _, tc := range testCases {
		if got := FormatAmount(tc.in); got != tc.expected {
			t.Fatalf("FormatAmount(%d) = %q, want %q", tc.in, got, tc.expected)
		}
	}
}

func TestRenderPanel(t *testing.T) {
	text := RenderPanel(10000, decimal.RequireFromString("1.0"))

	if !strings.Contains(text, "10,000") {
		t.Fatalf("panel must state the minimum order, got %q", text)
	}
	if !strings.Contains(text, "$1.00 per 1,000") {
		t.Fatalf("panel must state the rate, got %q", text)
	}
}
