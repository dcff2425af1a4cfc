package availability

import (
	"context"
	"errors"
	"time"

	"rentcar/internal/domain/shared/daterange"
)

var (
	ErrInvalidWindow = errors.New("availability: window end must not precede its start")
	ErrInvalidLimits = errors.New("availability: rental day limits are inconsistent")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusActive    Status = "ACTIVE"
)

// Booking is an existing reservation blocking [StartDate, EndDate], both ends included.
// It is read-only here and refreshed on every fetch.
type Booking struct {
	StartDate time.Time
	EndDate   time.Time
	Status    Status
}

func (b Booking) Interval() daterange.DateInterval {
	return daterange.DateInterval{Start: b.StartDate, End: b.EndDate}
}

// Covers reports whether the booking blocks the given calendar date.
func (b Booking) Covers(date time.Time) bool {
	return b.Interval().ContainsDate(date)
}

// Window is the owner-defined period in which a vehicle may be booked at all.
// Zero rental day limits mean unbounded.
type Window struct {
	From              time.Time
	To                time.Time
	MinimumRentalDays int
	MaximumRentalDays int
}

func (w Window) Validate() error {
	if w.From.IsZero() || w.To.IsZero() || daterange.Day(w.To).Before(daterange.Day(w.From)) {
		return ErrInvalidWindow
	}
	if w.MinimumRentalDays < 0 || w.MaximumRentalDays < 0 {
		return ErrInvalidLimits
	}
	if w.MaximumRentalDays > 0 && w.MinimumRentalDays > w.MaximumRentalDays {
		return ErrInvalidLimits
	}
	return nil
}

// Contains reports whether date lies inside [From, To].
func (w Window) Contains(date time.Time) bool {
	return daterange.DateInterval{Start: w.From, End: w.To}.ContainsDate(date)
}

// AllowsDays checks a rental length against the window's limits.
func (w Window) AllowsDays(days int) bool {
	if days < w.MinimumRentalDays {
		return false
	}
	if w.MaximumRentalDays > 0 && days > w.MaximumRentalDays {
		return false
	}
	return true
}

// ClampFrom returns the window with From moved up to today when it lies in the past.
func (w Window) ClampFrom(today time.Time) Window {
	if daterange.Day(w.From).Before(daterange.Day(today)) {
		w.From = daterange.Day(today)
	}
	return w
}

// Source fetches the current unavailable dates of a listing. Implementations
// must hit the backing store on every call; results are never cached.
type Source interface {
	UnavailableDates(ctx context.Context, listingID string) ([]Booking, error)
}
