package booking

import (
	"errors"
	"fmt"
	"time"

	"rentcar/internal/domain/availability"
	"rentcar/internal/domain/pricing"
	"rentcar/internal/domain/shared/daterange"
	"rentcar/internal/domain/shared/timerange"
)

var (
	ErrMissingDate      = errors.New("booking: please select a date")
	ErrMissingTime      = errors.New("booking: please select pickup and return times")
	ErrPastDate         = errors.New("booking: selected date is in the past")
	ErrMinimumDuration  = errors.New("booking: minimum rental duration is 2 hours")
	ErrInvalidTimeOrder = errors.New("booking: return time must be after pickup time")
	ErrSourceMissing    = errors.New("booking: availability source not configured")
	ErrMissingListing   = errors.New("booking: listing id is required")
)

// OutOfWindowError carries the availability bounds so the message can show them.
type OutOfWindowError struct {
	From time.Time
	To   time.Time
}

func (e *OutOfWindowError) Error() string {
	return fmt.Sprintf("booking: vehicle is only available from %s to %s", daterange.Format(e.From), daterange.Format(e.To))
}

// RentalLengthError reports a day count outside the owner's rental limits.
type RentalLengthError struct {
	Days    int
	Minimum int
	Maximum int
}

func (e *RentalLengthError) Error() string {
	if e.Maximum > 0 {
		return fmt.Sprintf("booking: rental must last between %d and %d days, got %d", e.Minimum, e.Maximum, e.Days)
	}
	return fmt.Sprintf("booking: rental must last at least %d days, got %d", e.Minimum, e.Days)
}

// ConflictError means an existing booking already covers the requested date.
type ConflictError struct {
	Date     time.Time
	Existing availability.Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking: vehicle is already booked on %s (%s)", daterange.Format(e.Date), e.Existing.Interval())
}

// AvailabilityCheckFailedError wraps a failed remote fetch. Callers may retry.
type AvailabilityCheckFailedError struct {
	Err error
}

func (e *AvailabilityCheckFailedError) Error() string {
	return fmt.Sprintf("booking: could not verify availability, please try again: %v", e.Err)
}

func (e *AvailabilityCheckFailedError) Unwrap() error { return e.Err }

func (e *AvailabilityCheckFailedError) Retryable() bool { return true }

const (
	CodeFormat                  = "format_error"
	CodeInvalidRange            = "invalid_range"
	CodeInvalidInput            = "invalid_input"
	CodeMissingDate             = "missing_date"
	CodeMissingTime             = "missing_time"
	CodePastDate                = "past_date"
	CodeOutOfWindow             = "out_of_window"
	CodeRentalLength            = "rental_length"
	CodeMinimumDuration         = "minimum_duration"
	CodeInvalidTimeOrder        = "invalid_time_order"
	CodeConflict                = "conflict"
	CodeAvailabilityCheckFailed = "availability_check_failed"
	CodeInternal                = "internal"
)

// Code maps an error from the quote and booking packages to a stable identifier.
func Code(err error) string {
	var (
		outOfWindow *OutOfWindowError
		length      *RentalLengthError
		conflict    *ConflictError
		failed      *AvailabilityCheckFailedError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &failed):
		return CodeAvailabilityCheckFailed
	case errors.As(err, &conflict):
		return CodeConflict
	case errors.As(err, &outOfWindow):
		return CodeOutOfWindow
	case errors.As(err, &length):
		return CodeRentalLength
	case errors.Is(err, ErrMissingDate):
		return CodeMissingDate
	case errors.Is(err, ErrMissingTime):
		return CodeMissingTime
	case errors.Is(err, ErrPastDate):
		return CodePastDate
	case errors.Is(err, ErrMinimumDuration):
		return CodeMinimumDuration
	case errors.Is(err, ErrInvalidTimeOrder):
		return CodeInvalidTimeOrder
	case errors.Is(err, timerange.ErrInvalidFormat), errors.Is(err, daterange.ErrInvalidDate):
		return CodeFormat
	case errors.Is(err, timerange.ErrInvalidRange), errors.Is(err, daterange.ErrInvalidRange):
		return CodeInvalidRange
	case errors.Is(err, pricing.ErrInvalidInput),
		errors.Is(err, ErrMissingListing),
		errors.Is(err, availability.ErrInvalidWindow),
		errors.Is(err, availability.ErrInvalidLimits):
		return CodeInvalidInput
	default:
		return CodeInternal
	}
}

// Retryable reports whether the caller may repeat the same request unchanged.
func Retryable(err error) bool {
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}
