package quotes

import (
	"context"

	"rentcar/internal/app/dto"
	"rentcar/internal/app/queries"
	"rentcar/internal/domain/pricing"
	"rentcar/internal/domain/shared/timerange"
)

const (
	hourlyQuoteKey = "quotes.hourly"
	dailyQuoteKey  = "quotes.daily"
)

// HourlyQuoteQuery prices a pickup/return pair. It is a preview: the minimum
// duration is enforced by the booking check, not here.
type HourlyQuoteQuery struct {
	DailyRate  float64
	PickupTime string
	ReturnTime string
}

func (q HourlyQuoteQuery) Key() string { return hourlyQuoteKey }

type DailyQuoteQuery struct {
	DailyRate float64
	Days      int
}

func (q DailyQuoteQuery) Key() string { return dailyQuoteKey }

type Handler struct {
	Pricing pricing.Calculator
}

type HourlyHandler struct{ Handler }

type DailyHandler struct{ Handler }

func (h HourlyHandler) Handle(ctx context.Context, q HourlyQuoteQuery) (dto.HourlyQuote, error) {
	times, err := timerange.ParseRange(q.PickupTime, q.ReturnTime)
	if err != nil {
		return dto.HourlyQuote{}, err
	}
	hours, err := times.DurationHours()
	if err != nil {
		return dto.HourlyQuote{}, err
	}
	quote, err := h.Pricing.Quote(q.DailyRate, hours)
	if err != nil {
		return dto.HourlyQuote{}, err
	}
	return dto.HourlyQuote{
		Quote:         dto.MapQuote(quote),
		HourlyRate:    pricing.HourlyRate(q.DailyRate),
		DurationHours: hours,
	}, nil
}

func (h DailyHandler) Handle(ctx context.Context, q DailyQuoteQuery) (dto.DailyQuote, error) {
	quote, err := h.Pricing.QuoteForDays(q.DailyRate, q.Days)
	if err != nil {
		return dto.DailyQuote{}, err
	}
	return dto.DailyQuote{Quote: dto.MapQuote(quote), Days: q.Days}, nil
}

// Register wires both quote handlers onto bus.
func Register(bus *queries.InMemoryBus, calc pricing.Calculator) error {
	h := Handler{Pricing: calc}
	if err := queries.RegisterHandler[HourlyQuoteQuery, dto.HourlyQuote](bus, hourlyQuoteKey, HourlyHandler{h}); err != nil {
		return err
	}
	return queries.RegisterHandler[DailyQuoteQuery, dto.DailyQuote](bus, dailyQuoteKey, DailyHandler{h})
}

var (
	_ queries.Handler[HourlyQuoteQuery, dto.HourlyQuote] = HourlyHandler{}
	_ queries.Handler[DailyQuoteQuery, dto.DailyQuote]   = DailyHandler{}
)
