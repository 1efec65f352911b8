package wizard

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/robux-town/order-bot/internal/domain"
	apperrors "github.com/robux-town/order-bot/internal/errors"
	"github.com/robux-town/order-bot/internal/pricing"
)

// groupedAmountPattern matches integers written with well-formed comma
// thousands grouping, e.g. "10,000" but not "1,2,3".
var groupedAmountPattern = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)

// ParseAmount converts raw amount text into an integer. Surrounding
// whitespace is ignored and well-formed comma grouping is accepted; anything
// else fails with a NotAnInteger validation error.
func ParseAmount(raw string) (int64, error) {
	cleaned := strings.TrimSpace(raw)

	if strings.Contains(cleaned, ",") {
		if !groupedAmountPattern.MatchString(cleaned) {
			return 0, apperrors.NewNotAnIntegerError()
		}
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, apperrors.NewNotAnIntegerError()
	}

	return n, nil
}

// Advance applies one event to a session and returns the updated session
// together with the rendered output. It is a pure function: persistence and
// message delivery are the caller's concern. On a validation error the
// returned session equals the input and the stage does not change; an event
// that does not match the current stage fails with a stale-event error.
func Advance(cfg *Config, s Session, ev Event) (Session, Output, error) {
	switch ev := ev.(type) {
	case StartDecision:
		if s.Stage != StageAwaitingStart {
			return s, Output{}, apperrors.NewStaleEventError(string(s.Stage))
		}

		if !ev.Accept {
			moveTo(&s, StageCancelled)
			return s, Output{Text: renderDeclined(), CloseThread: true}, nil
		}

		moveTo(&s, StageAwaitingAmount)
		return s, Output{Text: renderAmountPrompt(cfg.MinAmount)}, nil

	case AmountSubmitted:
		if s.Stage != StageAwaitingAmount {
			return s, Output{}, apperrors.NewStaleEventError(string(s.Stage))
		}

		amount, err := ParseAmount(ev.Raw)
		if err != nil {
			return s, Output{}, err
		}

		if amount < cfg.MinAmount {
			return s, Output{}, apperrors.NewBelowMinimumError(FormatAmount(cfg.MinAmount))
		}

		price, err := pricing.Compute(amount, cfg.Rate)
		if err != nil {
			// Unreachable for amounts at or above a positive minimum.
			return s, Output{}, apperrors.NewInvalidAmountError(err)
		}

		s.Amount = amount
		s.PriceUSD = price
		moveTo(&s, StageAwaitingConfirm)
		return s, Output{
			Text:     renderConfirmPrompt(amount, cfg.Rate, price),
			Keyboard: KeyboardConfirm,
		}, nil

	case ConfirmDecision:
		if s.Stage != StageAwaitingConfirm {
			return s, Output{}, apperrors.NewStaleEventError(string(s.Stage))
		}

		if !ev.Accept {
			moveTo(&s, StageCancelled)
			return s, Output{Text: renderCancelled(), CloseThread: true}, nil
		}

		moveTo(&s, StageAwaitingMethod)
		return s, Output{Text: renderMethodPrompt(), Keyboard: KeyboardMethods}, nil

	case MethodSelected:
		if s.Stage != StageAwaitingMethod {
			return s, Output{}, apperrors.NewStaleEventError(string(s.Stage))
		}

		s.Method = ev.Method

		if ev.Method == domain.PaymentMethodCrypto {
			moveTo(&s, StageAwaitingCoin)
			return s, Output{Text: renderCoinPrompt(), Keyboard: KeyboardCoins}, nil
		}

		var text string
		switch ev.Method {
		case domain.PaymentMethodPayPal:
			text = renderMarketplaceInstructions("Pay with PayPal (Eneba)", cfg.EnebaLink, s.Amount, s.PriceUSD)
		case domain.PaymentMethodCard:
			text = renderMarketplaceInstructions("Pay with Card (G2A)", cfg.G2ALink, s.Amount, s.PriceUSD)
		case domain.PaymentMethodGiftcard:
			text = renderGiftcardInstructions(cfg.GiftcardInstructions, s.Amount, s.PriceUSD)
		default:
			return s, Output{}, apperrors.NewStaleEventError(string(s.Stage))
		}

		moveTo(&s, StageCompleted)
		return s, Output{Text: text, Record: s.Record()}, nil

	case CoinSelected:
		if s.Stage != StageAwaitingCoin {
			return s, Output{}, apperrors.NewStaleEventError(string(s.Stage))
		}

		if !domain.IsValidCoin(ev.Coin) {
			return s, Output{}, apperrors.NewStaleEventError(string(s.Stage))
		}

		s.Coin = ev.Coin
		moveTo(&s, StageCompleted)
		return s, Output{
			Text:   renderCryptoInstructions(ev.Coin, cfg.AddressFor(ev.Coin), s.Amount, s.PriceUSD),
			Record: s.Record(),
		}, nil

	default:
		return s, Output{}, apperrors.NewStaleEventError(string(s.Stage))
	}
}

// Cancel transitions a non-terminal session to the cancelled stage, e.g. on
// an explicit /cancel or an idle-session expiry.
func Cancel(s Session) (Session, Output, error) {
	if s.Stage.IsTerminal() {
		return s, Output{}, apperrors.NewStaleEventError(string(s.Stage))
	}

	moveTo(&s, StageCancelled)
	return s, Output{Text: renderCancelled(), CloseThread: true}, nil
}

func moveTo(s *Session, to Stage) {
	transitionRecorder(string(s.Stage), string(to))
	s.Stage = to
}
