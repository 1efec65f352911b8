// Package pricing converts Robux amounts into USD prices.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount indicates that a price was requested for a non-positive
// amount. The wizard validates amounts before pricing, so hitting this error
// means an invariant was violated upstream.
var ErrInvalidAmount = errors.New("pricing: amount must be positive")

var perThousand = decimal.NewFromInt(1000)

// Compute returns the USD price for the given Robux amount at the supplied
// rate per 1,000 Robux. The result is exact; rounding happens only at render
// time.
func Compute(amount int64, rate decimal.Decimal) (decimal.Decimal, error) {
	if amount <= 0 {
		return decimal.Decimal{}, ErrInvalidAmount
	}

	return decimal.NewFromInt(amount).Div(perThousand).Mul(rate), nil
}
