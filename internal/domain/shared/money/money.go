package money

import (
	"errors"
	"math"
	"strings"
)

// MaxAmount keeps Percent and fee sums clear of int64 overflow.
const MaxAmount = math.MaxInt64 / 100

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrOutOfRange       = errors.New("money: amount out of range")
)

// Money keeps amounts in whole currency units; quotes never carry fractions.
type Money struct {
	Amount   int64
	Currency string
}

// New constructs a Money value validating minimal invariants.
func New(amount int64, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	currency = strings.ToUpper(currency)
	return Money{Amount: amount, Currency: currency}, nil
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Percent returns pct percent of the amount rounded half-up to a whole unit.
// Amounts are expected to be at most MaxAmount.
func (m Money) Percent(pct int64) Money {
	return Money{Amount: (m.Amount*pct + 50) / 100, Currency: m.Currency}
}

// RoundHalfUp rounds a non-negative amount to the nearest whole unit, halves going up.
func RoundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

// FromFloat rounds v half-up and rejects values that are not finite, negative
// or above MaxAmount.
func FromFloat(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v >= MaxAmount {
		return 0, ErrOutOfRange
	}
	return RoundHalfUp(v), nil
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}
