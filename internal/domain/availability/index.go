package availability

import (
	"time"

	"rentcar/internal/domain/shared/daterange"
)

// The functions below are pure: no clock reads, no I/O. A window whose From
// lies in the past has to be clamped by the caller (see Window.ClampFrom).

// IsDateBookable reports whether date is inside the window and not covered by any booking.
func IsDateBookable(date time.Time, window Window, bookings []Booking) bool {
	if !window.Contains(date) {
		return false
	}
	_, conflict := FirstConflict(date, bookings)
	return !conflict
}

// IsRangeBookable requires end after start and checks every day of [start, end].
func IsRangeBookable(start, end time.Time, window Window, bookings []Booking) bool {
	interval, err := daterange.New(start, end)
	if err != nil {
		return false
	}
	ok := true
	interval.Each(func(day time.Time) bool {
		ok = IsDateBookable(day, window, bookings)
		return ok
	})
	return ok
}

// NextAvailableDate scans forward from `from` through window.To and returns the
// earliest bookable date.
func NextAvailableDate(from time.Time, window Window, bookings []Booking) (time.Time, bool) {
	end := daterange.Day(window.To)
	for day := daterange.Day(from); !day.After(end); day = day.AddDate(0, 0, 1) {
		if IsDateBookable(day, window, bookings) {
			return day, true
		}
	}
	return time.Time{}, false
}

// FirstConflict returns the first booking covering date, in input order.
func FirstConflict(date time.Time, bookings []Booking) (Booking, bool) {
	for _, b := range bookings {
		if b.Covers(date) {
			return b, true
		}
	}
	return Booking{}, false
}
