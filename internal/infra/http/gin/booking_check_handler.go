package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentcar/internal/app/commands"
	"rentcar/internal/app/dto"
	bookingapp "rentcar/internal/app/handlers/booking"
	"rentcar/internal/domain/booking"
)

type BookingCheckHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

// bookingCheckRequest mirrors the booking form; the listing comes from the path.
type bookingCheckRequest struct {
	CheckID          string  `json:"checkId"`
	SelectedDate     string  `json:"selectedDate"`
	PickupTime       string  `json:"pickupTime"`
	ReturnTime       string  `json:"returnTime"`
	DailyRate        float64 `json:"dailyRate"`
	AvailabilityFrom string  `json:"availabilityFrom"`
	AvailabilityTo   string  `json:"availabilityTo"`
}

type dayBookingCheckRequest struct {
	CheckID           string  `json:"checkId"`
	StartDate         string  `json:"startDate"`
	EndDate           string  `json:"endDate"`
	DailyRate         float64 `json:"dailyRate"`
	AvailabilityFrom  string  `json:"availabilityFrom"`
	AvailabilityTo    string  `json:"availabilityTo"`
	MinimumRentalDays int     `json:"minimumRentalDays"`
	MaximumRentalDays int     `json:"maximumRentalDays"`
}

func (h BookingCheckHandler) Check(c *gin.Context) {
	var req bookingCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	cmd := bookingapp.CheckBookingCommand{
		CheckID: req.CheckID,
		Request: booking.Request{
			ListingID:        c.Param("id"),
			SelectedDate:     req.SelectedDate,
			PickupTime:       req.PickupTime,
			ReturnTime:       req.ReturnTime,
			DailyRate:        req.DailyRate,
			AvailabilityFrom: req.AvailabilityFrom,
			AvailabilityTo:   req.AvailabilityTo,
		},
	}
	result, err := commands.Dispatch[bookingapp.CheckBookingCommand, dto.BookingIntent](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingCheckHandler) CheckDays(c *gin.Context) {
	var req dayBookingCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	cmd := bookingapp.CheckDayBookingCommand{
		CheckID: req.CheckID,
		Request: booking.DayRequest{
			ListingID:         c.Param("id"),
			StartDate:         req.StartDate,
			EndDate:           req.EndDate,
			DailyRate:         req.DailyRate,
			AvailabilityFrom:  req.AvailabilityFrom,
			AvailabilityTo:    req.AvailabilityTo,
			MinimumRentalDays: req.MinimumRentalDays,
			MaximumRentalDays: req.MaximumRentalDays,
		},
	}
	result, err := commands.Dispatch[bookingapp.CheckDayBookingCommand, dto.DayBookingIntent](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingCheckHTTP = BookingCheckHandler{}
