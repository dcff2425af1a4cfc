package timerange

import (
	"errors"
	"fmt"
)

const (
	// MinimumDuration is the shortest bookable rental. TimeRange itself only
	// guarantees a positive duration; callers enforce this policy.
	MinimumDuration = 120
	MinimumHours    = float64(MinimumDuration) / 60
)

var (
	ErrInvalidFormat = errors.New("timerange: time must be HH:MM")
	ErrInvalidRange  = errors.New("timerange: return time must be after pickup time")
)

// TimeOfDay counts minutes since midnight, in [0, 1440).
type TimeOfDay int

// Parse reads a strict "HH:MM" string with HH in [0,23] and MM in [0,59].
func Parse(hhmm string) (TimeOfDay, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, hhmm)
	}
	hours, ok := twoDigits(hhmm[0], hhmm[1])
	if !ok || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, hhmm)
	}
	minutes, ok := twoDigits(hhmm[3], hhmm[4])
	if !ok || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, hhmm)
	}
	return TimeOfDay(hours*60 + minutes), nil
}

func twoDigits(hi, lo byte) (int, bool) {
	if hi < '0' || hi > '9' || lo < '0' || lo > '9' {
		return 0, false
	}
	return int(hi-'0')*10 + int(lo-'0'), true
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// TimeRange is a same-day pickup/return pair. No midnight wraparound.
type TimeRange struct {
	Pickup TimeOfDay
	Return TimeOfDay
}

// ParseRange parses both ends; it does not check their order.
func ParseRange(pickup, ret string) (TimeRange, error) {
	p, err := Parse(pickup)
	if err != nil {
		return TimeRange{}, err
	}
	r, err := Parse(ret)
	if err != nil {
		return TimeRange{}, err
	}
	return TimeRange{Pickup: p, Return: r}, nil
}

// Minutes is the raw signed difference between return and pickup.
func (r TimeRange) Minutes() int {
	return int(r.Return) - int(r.Pickup)
}

// Duration returns the rental length in minutes.
func (r TimeRange) Duration() (int, error) {
	d := r.Minutes()
	if d <= 0 {
		return 0, ErrInvalidRange
	}
	return d, nil
}

func (r TimeRange) DurationHours() (float64, error) {
	d, err := r.Duration()
	if err != nil {
		return 0, err
	}
	return float64(d) / 60, nil
}

// MeetsMinimum reports whether a duration in hours satisfies the minimum rental.
func MeetsMinimum(hours float64) bool {
	return hours >= MinimumHours
}
