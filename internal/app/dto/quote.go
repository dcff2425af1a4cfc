package dto

import "rentcar/internal/domain/pricing"

// Quote mirrors the UI contract: whole currency units, one field per component.
type Quote struct {
	Subtotal     int64  `json:"subtotal"`
	ServiceFee   int64  `json:"serviceFee"`
	InsuranceFee int64  `json:"insuranceFee"`
	Total        int64  `json:"total"`
	Currency     string `json:"currency"`
}

type HourlyQuote struct {
	Quote         Quote   `json:"quote"`
	HourlyRate    float64 `json:"hourlyRate"`
	DurationHours float64 `json:"durationHours"`
}

type DailyQuote struct {
	Quote Quote `json:"quote"`
	Days  int   `json:"days"`
}

func MapQuote(q pricing.Quote) Quote {
	return Quote{
		Subtotal:     q.Subtotal.Amount,
		ServiceFee:   q.ServiceFee.Amount,
		InsuranceFee: q.InsuranceFee.Amount,
		Total:        q.Total.Amount,
		Currency:     q.Total.Currency,
	}
}
