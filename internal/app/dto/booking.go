package dto

import (
	"rentcar/internal/domain/booking"
	"rentcar/internal/domain/shared/daterange"
)

// BookingIntent is the accepted hourly booking handed to the submission collaborator.
type BookingIntent struct {
	CheckID       string  `json:"checkId"`
	ListingID     string  `json:"listingId"`
	SelectedDate  string  `json:"selectedDate"`
	PickupTime    string  `json:"pickupTime"`
	ReturnTime    string  `json:"returnTime"`
	DurationHours float64 `json:"durationHours"`
	Quote         Quote   `json:"quote"`
}

type DayBookingIntent struct {
	CheckID   string `json:"checkId"`
	ListingID string `json:"listingId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Days      int    `json:"days"`
	Quote     Quote  `json:"quote"`
}

type NextAvailable struct {
	ListingID string `json:"listingId"`
	Date      string `json:"date"`
}

func MapBookingIntent(checkID string, in booking.Intent) BookingIntent {
	return BookingIntent{
		CheckID:       checkID,
		ListingID:     in.ListingID,
		SelectedDate:  daterange.Format(in.SelectedDate),
		PickupTime:    in.Times.Pickup.String(),
		ReturnTime:    in.Times.Return.String(),
		DurationHours: in.DurationHours,
		Quote:         MapQuote(in.Quote),
	}
}

func MapDayBookingIntent(checkID string, in booking.DayIntent) DayBookingIntent {
	return DayBookingIntent{
		CheckID:   checkID,
		ListingID: in.ListingID,
		StartDate: daterange.Format(in.Range.Start),
		EndDate:   daterange.Format(in.Range.End),
		Days:      in.Days,
		Quote:     MapQuote(in.Quote),
	}
}
