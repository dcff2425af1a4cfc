package booking

import "time"

// CheckPassed is recorded when a booking request clears every check.
type CheckPassed struct {
	CheckID   string    `json:"check_id"`
	ListingID string    `json:"listing_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date,omitempty"`
	Hours     float64   `json:"duration_hours,omitempty"`
	Days      int       `json:"days,omitempty"`
	Total     int64     `json:"total"`
	Currency  string    `json:"currency"`
	At        time.Time `json:"at"`
}

func (e CheckPassed) EventName() string     { return "booking.check_passed" }
func (e CheckPassed) AggregateID() string   { return e.ListingID }
func (e CheckPassed) OccurredAt() time.Time { return e.At }

// CheckRejected is recorded when a booking request fails a check.
type CheckRejected struct {
	CheckID   string    `json:"check_id"`
	ListingID string    `json:"listing_id"`
	StartDate string    `json:"start_date,omitempty"`
	Code      string    `json:"code"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

func (e CheckRejected) EventName() string     { return "booking.check_rejected" }
func (e CheckRejected) AggregateID() string   { return e.ListingID }
func (e CheckRejected) OccurredAt() time.Time { return e.At }
