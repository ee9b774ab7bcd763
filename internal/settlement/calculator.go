// Package settlement splits a final trip price into the marketplace commission
// and the amount payable to the driver.
package settlement

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"freight/internal/domain"
)

// ErrInvalidRate is returned when the commission rate is outside [0, 100].
var ErrInvalidRate = errors.New("commission rate out of range")

var hundred = decimal.NewFromInt(100)

// Result is the outcome of a settlement.
type Result struct {
	Price      domain.Money
	Commission domain.Money
	Net        domain.Money
	RatePct    decimal.Decimal
}

// Settle computes commission = price * rate / 100 rounded half-up to minor
// units, and net = price - commission. Commission + net always equals price.
func Settle(finalPrice domain.Money, ratePct decimal.Decimal) (Result, error) {
	if ratePct.IsNegative() || ratePct.GreaterThan(hundred) {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidRate, ratePct)
	}

	// Round is half away from zero; amounts are non-negative so this is half-up.
	commissionAmount := finalPrice.Amount.Mul(ratePct).Div(hundred).Round(domain.MinorUnitPlaces)
	commission, err := domain.NewMoney(commissionAmount, finalPrice.Currency)
	if err != nil {
		return Result{}, err
	}

	net, err := finalPrice.Sub(commission)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Price:      finalPrice,
		Commission: commission,
		Net:        net,
		RatePct:    ratePct,
	}, nil
}

// SettleIn is Settle with an explicit currency expectation; a price in any
// other currency fails with domain.ErrCurrencyMismatch.
func SettleIn(currency string, finalPrice domain.Money, ratePct decimal.Decimal) (Result, error) {
	if finalPrice.Currency != currency {
		return Result{}, fmt.Errorf("%w: settling %s in %s", domain.ErrCurrencyMismatch, finalPrice.Currency, currency)
	}
	return Settle(finalPrice, ratePct)
}
