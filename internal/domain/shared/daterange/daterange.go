package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the ISO calendar-date format used on every boundary.
const Layout = "2006-01-02"

var (
	ErrInvalidRange = errors.New("daterange: end must be after start")
	ErrInvalidDate  = errors.New("daterange: invalid ISO date")
)

// Day truncates t to its calendar date at UTC midnight, keeping the wall-clock date of t's location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date as observed in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(now.In(loc))
}

// Parse reads an ISO date. Timestamps are cut to their date part so that
// "2024-01-03T23:00:00Z" and "2024-01-03" name the same day.
func Parse(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(Layout) {
		raw = raw[:len(Layout)]
	}
	t, err := time.Parse(Layout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return t, nil
}

// Format renders a date in ISO form.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// AddDays moves a date forward (or backward) by whole calendar days.
func AddDays(t time.Time, days int) time.Time {
	return Day(t).AddDate(0, 0, days)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween counts calendar days from start to end. Both are UTC midnights
// after Day, so Unix seconds divide evenly for any span.
func DaysBetween(start, end time.Time) int {
	return int((Day(end).Unix() - Day(start).Unix()) / secondsPerDay)
}

// DateInterval represents the closed interval [Start, End] of calendar dates.
type DateInterval struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateInterval, error) {
	di := DateInterval{Start: Day(start), End: Day(end)}
	if err := di.Validate(); err != nil {
		return DateInterval{}, err
	}
	return di, nil
}

func (di DateInterval) Validate() error {
	if di.Start.IsZero() || di.End.IsZero() {
		return ErrInvalidRange
	}
	if !di.End.After(di.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Days is the rental length in days.
func (di DateInterval) Days() int {
	return DaysBetween(di.Start, di.End)
}

// ContainsDate reports whether the date lies in [Start, End], both ends included.
func (di DateInterval) ContainsDate(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(di.Start)) && !d.After(Day(di.End))
}

// Each calls fn for every date in the interval in ascending order and stops when fn returns false.
func (di DateInterval) Each(fn func(day time.Time) bool) {
	end := Day(di.End)
	for d := Day(di.Start); !d.After(end); d = d.AddDate(0, 0, 1) {
		if !fn(d) {
			return
		}
	}
}

func (di DateInterval) String() string {
	return Format(di.Start) + ".." + Format(di.End)
}
