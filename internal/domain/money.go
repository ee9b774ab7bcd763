package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnitPlaces is the number of decimal places amounts are rounded to.
const MinorUnitPlaces = 2

var (
	// ErrCurrencyMismatch is returned when arithmetic mixes currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrNegativeAmount is returned when a Money amount would be negative.
	ErrNegativeAmount = errors.New("negative money amount")

	// ErrInvalidCurrency is returned when a currency code is not a three-letter code.
	ErrInvalidCurrency = errors.New("invalid currency code")
)

// Money is a non-negative amount in a single ISO 4217 currency.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney creates a Money value, rejecting negative amounts and malformed currency codes.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	if amount.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// MustMoney is NewMoney for constants and tests. It panics on invalid input.
func MustMoney(amount string, currency string) Money {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	m, err := NewMoney(d, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// SameCurrency reports whether m and other share a currency.
func (m Money) SameCurrency(other Money) bool {
	return m.Currency == other.Currency
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other. The result must stay non-negative.
func (m Money) Sub(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	amount := m.Amount.Sub(other.Amount)
	if amount.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	return Money{Amount: amount, Currency: m.Currency}, nil
}

// Equal reports whether both amount and currency are equal.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) String() string {
	return m.Amount.StringFixed(MinorUnitPlaces) + " " + m.Currency
}
