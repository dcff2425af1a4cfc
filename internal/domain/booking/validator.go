package booking

import (
	"context"
	"strings"
	"time"

	"rentcar/internal/domain/availability"
	"rentcar/internal/domain/pricing"
	"rentcar/internal/domain/shared/daterange"
	"rentcar/internal/domain/shared/timerange"
)

// Request is a snapshot of the same-day booking form.
type Request struct {
	ListingID        string
	SelectedDate     string
	PickupTime       string
	ReturnTime       string
	DailyRate        float64
	AvailabilityFrom string
	AvailabilityTo   string
}

// Intent is an accepted hourly booking, ready for the booking-creation service.
type Intent struct {
	ListingID     string
	SelectedDate  time.Time
	Times         timerange.TimeRange
	DurationHours float64
	Quote         pricing.Quote
}

// DayRequest is a snapshot of the multi-day booking form.
type DayRequest struct {
	ListingID         string
	StartDate         string
	EndDate           string
	DailyRate         float64
	AvailabilityFrom  string
	AvailabilityTo    string
	MinimumRentalDays int
	MaximumRentalDays int
}

// DayIntent is an accepted full-day booking.
type DayIntent struct {
	ListingID string
	Range     daterange.DateInterval
	Days      int
	Quote     pricing.Quote
}

// Validator runs the pre-submission booking check. It keeps no state between
// calls; availability is fetched again on every call.
type Validator struct {
	Source   availability.Source
	Pricing  pricing.Calculator
	Now      func() time.Time
	Location *time.Location
}

// Validate checks a same-day request. The first failing check wins.
func (v *Validator) Validate(ctx context.Context, req Request) (Intent, error) {
	if strings.TrimSpace(req.SelectedDate) == "" {
		return Intent{}, ErrMissingDate
	}
	if strings.TrimSpace(req.PickupTime) == "" || strings.TrimSpace(req.ReturnTime) == "" {
		return Intent{}, ErrMissingTime
	}

	date, err := daterange.Parse(req.SelectedDate)
	if err != nil {
		return Intent{}, err
	}
	if date.Before(v.today()) {
		return Intent{}, ErrPastDate
	}

	window, err := parseWindow(req.AvailabilityFrom, req.AvailabilityTo, 0, 0)
	if err != nil {
		return Intent{}, err
	}
	if !window.Contains(date) {
		return Intent{}, &OutOfWindowError{From: window.From, To: window.To}
	}

	times, err := timerange.ParseRange(req.PickupTime, req.ReturnTime)
	if err != nil {
		return Intent{}, err
	}
	hours := float64(times.Minutes()) / 60
	if !timerange.MeetsMinimum(hours) {
		return Intent{}, ErrMinimumDuration
	}
	if times.Return <= times.Pickup {
		return Intent{}, ErrInvalidTimeOrder
	}

	bookings, err := v.fetch(ctx, req.ListingID)
	if err != nil {
		return Intent{}, err
	}
	if existing, conflict := availability.FirstConflict(date, bookings); conflict {
		return Intent{}, &ConflictError{Date: date, Existing: existing}
	}

	quote, err := v.Pricing.Quote(req.DailyRate, hours)
	if err != nil {
		return Intent{}, err
	}
	return Intent{
		ListingID:     req.ListingID,
		SelectedDate:  date,
		Times:         times,
		DurationHours: hours,
		Quote:         quote,
	}, nil
}

// ValidateDays checks a multi-day request priced per day.
func (v *Validator) ValidateDays(ctx context.Context, req DayRequest) (DayIntent, error) {
	if strings.TrimSpace(req.StartDate) == "" || strings.TrimSpace(req.EndDate) == "" {
		return DayIntent{}, ErrMissingDate
	}
	start, err := daterange.Parse(req.StartDate)
	if err != nil {
		return DayIntent{}, err
	}
	end, err := daterange.Parse(req.EndDate)
	if err != nil {
		return DayIntent{}, err
	}
	if start.Before(v.today()) {
		return DayIntent{}, ErrPastDate
	}
	interval, err := daterange.New(start, end)
	if err != nil {
		return DayIntent{}, err
	}

	window, err := parseWindow(req.AvailabilityFrom, req.AvailabilityTo, req.MinimumRentalDays, req.MaximumRentalDays)
	if err != nil {
		return DayIntent{}, err
	}
	days := interval.Days()
	if !window.AllowsDays(days) {
		return DayIntent{}, &RentalLengthError{Days: days, Minimum: window.MinimumRentalDays, Maximum: window.MaximumRentalDays}
	}
	if !window.Contains(start) || !window.Contains(end) {
		return DayIntent{}, &OutOfWindowError{From: window.From, To: window.To}
	}

	bookings, err := v.fetch(ctx, req.ListingID)
	if err != nil {
		return DayIntent{}, err
	}
	if !availability.IsRangeBookable(start, end, window, bookings) {
		return DayIntent{}, firstRangeConflict(interval, bookings)
	}

	quote, err := v.Pricing.QuoteForDays(req.DailyRate, days)
	if err != nil {
		return DayIntent{}, err
	}
	return DayIntent{ListingID: req.ListingID, Range: interval, Days: days, Quote: quote}, nil
}

// NextAvailable returns the earliest bookable date on or after from, never earlier than today.
func (v *Validator) NextAvailable(ctx context.Context, listingID string, from time.Time, window availability.Window) (time.Time, bool, error) {
	if err := window.Validate(); err != nil {
		return time.Time{}, false, err
	}
	today := v.today()
	window = window.ClampFrom(today)
	if from.IsZero() || daterange.Day(from).Before(window.From) {
		from = window.From
	}
	bookings, err := v.fetch(ctx, listingID)
	if err != nil {
		return time.Time{}, false, err
	}
	next, ok := availability.NextAvailableDate(from, window, bookings)
	return next, ok, nil
}

func (v *Validator) fetch(ctx context.Context, listingID string) ([]availability.Booking, error) {
	if v.Source == nil {
		return nil, ErrSourceMissing
	}
	bookings, err := v.Source.UnavailableDates(ctx, listingID)
	if err != nil {
		return nil, &AvailabilityCheckFailedError{Err: err}
	}
	return bookings, nil
}

func (v *Validator) today() time.Time {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return daterange.Today(now(), v.Location)
}

func parseWindow(fromRaw, toRaw string, minDays, maxDays int) (availability.Window, error) {
	if strings.TrimSpace(fromRaw) == "" || strings.TrimSpace(toRaw) == "" {
		return availability.Window{}, availability.ErrInvalidWindow
	}
	from, err := daterange.Parse(fromRaw)
	if err != nil {
		return availability.Window{}, err
	}
	to, err := daterange.Parse(toRaw)
	if err != nil {
		return availability.Window{}, err
	}
	w := availability.Window{From: from, To: to, MinimumRentalDays: minDays, MaximumRentalDays: maxDays}
	if err := w.Validate(); err != nil {
		return availability.Window{}, err
	}
	return w, nil
}

func firstRangeConflict(interval daterange.DateInterval, bookings []availability.Booking) error {
	var conflict *ConflictError
	interval.Each(func(day time.Time) bool {
		if existing, ok := availability.FirstConflict(day, bookings); ok {
			conflict = &ConflictError{Date: day, Existing: existing}
			return false
		}
		return true
	})
	if conflict == nil {
		return &ConflictError{Date: interval.Start}
	}
	return conflict
}
