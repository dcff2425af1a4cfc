package availability

import (
	"context"
	"errors"
	"time"

	"rentcar/internal/app/dto"
	"rentcar/internal/app/queries"
	domainavailability "rentcar/internal/domain/availability"
	"rentcar/internal/domain/booking"
	"rentcar/internal/domain/shared/daterange"
)

const nextAvailableKey = "availability.next"

var ErrNoAvailableDate = errors.New("availability: no bookable date left in the window")

type NextAvailableQuery struct {
	ListingID string
	From      time.Time
	Window    domainavailability.Window
}

func (q NextAvailableQuery) Key() string { return nextAvailableKey }

func (q NextAvailableQuery) Validate() error {
	if q.ListingID == "" {
		return booking.ErrMissingListing
	}
	return nil
}

type NextAvailableHandler struct {
	Validator *booking.Validator
}

func (h *NextAvailableHandler) Handle(ctx context.Context, q NextAvailableQuery) (dto.NextAvailable, error) {
	next, ok, err := h.Validator.NextAvailable(ctx, q.ListingID, q.From, q.Window)
	if err != nil {
		return dto.NextAvailable{}, err
	}
	if !ok {
		return dto.NextAvailable{}, ErrNoAvailableDate
	}
	return dto.NextAvailable{ListingID: q.ListingID, Date: daterange.Format(next)}, nil
}

func Register(bus *queries.InMemoryBus, v *booking.Validator) error {
	return queries.RegisterHandler[NextAvailableQuery, dto.NextAvailable](bus, nextAvailableKey, &NextAvailableHandler{Validator: v})
}

var _ queries.Handler[NextAvailableQuery, dto.NextAvailable] = (*NextAvailableHandler)(nil)
