package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"rentcar/internal/app/commands"
	"rentcar/internal/app/dto"
	"rentcar/internal/app/outbox"
	domainbooking "rentcar/internal/domain/booking"
	"rentcar/internal/domain/shared/daterange"
	"rentcar/internal/domain/shared/events"
)

const (
	checkBookingKey    = "booking.check"
	checkDayBookingKey = "booking.check_days"
)

// CheckBookingCommand runs the full pre-submission check for a same-day booking.
type CheckBookingCommand struct {
	CheckID string
	Request domainbooking.Request
}

func (c CheckBookingCommand) Key() string { return checkBookingKey }

func (c CheckBookingCommand) Validate() error {
	if c.Request.ListingID == "" {
		return domainbooking.ErrMissingListing
	}
	return nil
}

type CheckDayBookingCommand struct {
	CheckID string
	Request domainbooking.DayRequest
}

func (c CheckDayBookingCommand) Key() string { return checkDayBookingKey }

func (c CheckDayBookingCommand) Validate() error {
	if c.Request.ListingID == "" {
		return domainbooking.ErrMissingListing
	}
	return nil
}

// CheckHandler validates requests and records one verdict event per check.
type CheckHandler struct {
	Validator *domainbooking.Validator
	Outbox    outbox.Outbox
	Encoder   outbox.EventEncoder
	Now       func() time.Time
}

func (h *CheckHandler) Handle(ctx context.Context, cmd CheckBookingCommand) (dto.BookingIntent, error) {
	checkID := resolveCheckID(cmd.CheckID)
	intent, err := h.Validator.Validate(ctx, cmd.Request)

	var rec events.EventRecorder
	if err != nil {
		rec.Record(h.rejected(checkID, cmd.Request.ListingID, cmd.Request.SelectedDate, err))
	} else {
		rec.Record(domainbooking.CheckPassed{
			CheckID:   checkID,
			ListingID: intent.ListingID,
			StartDate: daterange.Format(intent.SelectedDate),
			Hours:     intent.DurationHours,
			Total:     intent.Quote.Total.Amount,
			Currency:  intent.Quote.Total.Currency,
			At:        h.now(),
		})
	}
	if err := joinRecordErr(err, outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, rec.PendingEvents())); err != nil {
		return dto.BookingIntent{}, err
	}
	return dto.MapBookingIntent(checkID, intent), nil
}

// DayCheckHandler is the multi-day counterpart of CheckHandler.
type DayCheckHandler struct {
	*CheckHandler
}

func (h DayCheckHandler) Handle(ctx context.Context, cmd CheckDayBookingCommand) (dto.DayBookingIntent, error) {
	checkID := resolveCheckID(cmd.CheckID)
	intent, err := h.Validator.ValidateDays(ctx, cmd.Request)

	var rec events.EventRecorder
	if err != nil {
		rec.Record(h.rejected(checkID, cmd.Request.ListingID, cmd.Request.StartDate, err))
	} else {
		rec.Record(domainbooking.CheckPassed{
			CheckID:   checkID,
			ListingID: intent.ListingID,
			StartDate: daterange.Format(intent.Range.Start),
			EndDate:   daterange.Format(intent.Range.End),
			Days:      intent.Days,
			Total:     intent.Quote.Total.Amount,
			Currency:  intent.Quote.Total.Currency,
			At:        h.now(),
		})
	}
	if err := joinRecordErr(err, outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, rec.PendingEvents())); err != nil {
		return dto.DayBookingIntent{}, err
	}
	return dto.MapDayBookingIntent(checkID, intent), nil
}

func (h *CheckHandler) rejected(checkID, listingID, date string, err error) domainbooking.CheckRejected {
	return domainbooking.CheckRejected{
		CheckID:   checkID,
		ListingID: listingID,
		StartDate: date,
		Code:      domainbooking.Code(err),
		Reason:    err.Error(),
		At:        h.now(),
	}
}

func (h *CheckHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func joinRecordErr(verdict, record error) error {
	if record == nil {
		return verdict
	}
	if verdict == nil {
		return record
	}
	return errors.Join(verdict, record)
}

func resolveCheckID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// Register wires both check handlers onto bus.
func Register(bus *commands.InMemoryBus, h *CheckHandler) error {
	if err := commands.RegisterHandler[CheckBookingCommand, dto.BookingIntent](bus, checkBookingKey, h); err != nil {
		return err
	}
	return commands.RegisterHandler[CheckDayBookingCommand, dto.DayBookingIntent](bus, checkDayBookingKey, DayCheckHandler{h})
}

var (
	_ commands.Handler[CheckBookingCommand, dto.BookingIntent]       = (*CheckHandler)(nil)
	_ commands.Handler[CheckDayBookingCommand, dto.DayBookingIntent] = DayCheckHandler{}
)
