package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	domainavailability "rentcar/internal/domain/availability"
	"rentcar/internal/domain/shared/daterange"
)

// AvailabilitySource keeps existing bookings per listing for local runs and tests.
type AvailabilitySource struct {
	mu       sync.RWMutex
	bookings map[string][]domainavailability.Booking
}

func NewAvailabilitySource() *AvailabilitySource {
	return &AvailabilitySource{bookings: make(map[string][]domainavailability.Booking)}
}

// Add appends bookings to a listing.
func (s *AvailabilitySource) Add(listingID string, bookings ...domainavailability.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[listingID] = append(s.bookings[listingID], bookings...)
}

// UnavailableDates returns a copy so callers cannot mutate the stored snapshot.
func (s *AvailabilitySource) UnavailableDates(ctx context.Context, listingID string) ([]domainavailability.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domainavailability.Booking(nil), s.bookings[listingID]...), nil
}

type bookingFixture struct {
	ListingID string `json:"listingId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Status    string `json:"status"`
}

// Fixture is one decoded booking fixture.
type Fixture struct {
	ListingID string
	Booking   domainavailability.Booking
}

// ReadFixtures decodes a JSON array of {listingId, startDate, endDate, status}.
func ReadFixtures(r io.Reader) ([]Fixture, error) {
	var raw []bookingFixture
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	out := make([]Fixture, 0, len(raw))
	for i, fx := range raw {
		if fx.ListingID == "" {
			return nil, fmt.Errorf("fixture %d: listingId is required", i)
		}
		start, err := daterange.Parse(fx.StartDate)
		if err != nil {
			return nil, fmt.Errorf("fixture %d: %w", i, err)
		}
		end, err := daterange.Parse(fx.EndDate)
		if err != nil {
			return nil, fmt.Errorf("fixture %d: %w", i, err)
		}
		out = append(out, Fixture{
			ListingID: fx.ListingID,
			Booking: domainavailability.Booking{
				StartDate: start,
				EndDate:   end,
				Status:    domainavailability.Status(strings.ToUpper(fx.Status)),
			},
		})
	}
	return out, nil
}

// LoadFixtures reads fixtures and returns how many were loaded. Nothing is
// added when any entry is invalid.
func (s *AvailabilitySource) LoadFixtures(r io.Reader) (int, error) {
	fixtures, err := ReadFixtures(r)
	if err != nil {
		return 0, err
	}
	for _, fx := range fixtures {
		s.Add(fx.ListingID, fx.Booking)
	}
	return len(fixtures), nil
}

var _ domainavailability.Source = (*AvailabilitySource)(nil)
