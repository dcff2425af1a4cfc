package pricing

import (
	"errors"
	"fmt"

	"rentcar/internal/domain/shared/money"
)

const (
	// HoursPerDay is the rental block a daily rate buys for hourly bookings.
	HoursPerDay = 8

	ServiceFeePercent   = 5
	InsuranceFeePercent = 3

	DefaultCurrency = "USD"
)

var ErrInvalidInput = errors.New("pricing: daily rate and duration must be positive and within range")

// Quote is a presentation-only price; it is recomputed whenever rate or duration change.
type Quote struct {
	Subtotal     money.Money
	ServiceFee   money.Money
	InsuranceFee money.Money
	Total        money.Money
}

// Calculator is the single place fee arithmetic lives.
type Calculator struct {
	Currency string
}

func NewCalculator(currency string) (Calculator, error) {
	if currency == "" {
		currency = DefaultCurrency
	}
	if _, err := money.New(0, currency); err != nil {
		return Calculator{}, err
	}
	return Calculator{Currency: currency}, nil
}

// HourlyRate models a day as an 8-hour rental block.
func HourlyRate(dailyRate float64) float64 {
	return dailyRate / HoursPerDay
}

// Quote prices an hourly booking.
func (c Calculator) Quote(dailyRate, durationHours float64) (Quote, error) {
	if !(dailyRate > 0) || !(durationHours > 0) {
		return Quote{}, ErrInvalidInput
	}
	return c.compose(durationHours * HourlyRate(dailyRate))
}

// QuoteForDays prices a full-day booking.
func (c Calculator) QuoteForDays(dailyRate float64, days int) (Quote, error) {
	if !(dailyRate > 0) || days <= 0 {
		return Quote{}, ErrInvalidInput
	}
	return c.compose(float64(days) * dailyRate)
}

// compose rounds each fee on its own. The total can therefore differ by one
// unit from round(subtotal*1.08); displayed and charged totals rely on this.
func (c Calculator) compose(raw float64) (Quote, error) {
	subtotal, err := money.FromFloat(raw)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	sub, err := money.New(subtotal, c.currency())
	if err != nil {
		return Quote{}, err
	}
	q := Quote{
		Subtotal:     sub,
		ServiceFee:   sub.Percent(ServiceFeePercent),
		InsuranceFee: sub.Percent(InsuranceFeePercent),
	}
	total, err := q.Subtotal.Add(q.ServiceFee)
	if err != nil {
		return Quote{}, err
	}
	if total, err = total.Add(q.InsuranceFee); err != nil {
		return Quote{}, err
	}
	q.Total = total
	return q, nil
}

func (c Calculator) currency() string {
	if c.Currency == "" {
		return DefaultCurrency
	}
	return c.Currency
}
