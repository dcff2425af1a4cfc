package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentcar/internal/app/dto"
	quoteapp "rentcar/internal/app/handlers/quotes"
	"rentcar/internal/app/queries"
)

type QuoteHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

type hourlyQuoteRequest struct {
	DailyRate  float64 `json:"dailyRate"`
	PickupTime string  `json:"pickupTime"`
	ReturnTime string  `json:"returnTime"`
}

type dailyQuoteRequest struct {
	DailyRate float64 `json:"dailyRate"`
	Days      int     `json:"days"`
}

func (h QuoteHandler) Hourly(c *gin.Context) {
	var req hourlyQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	query := quoteapp.HourlyQuoteQuery{DailyRate: req.DailyRate, PickupTime: req.PickupTime, ReturnTime: req.ReturnTime}
	result, err := queries.Ask[quoteapp.HourlyQuoteQuery, dto.HourlyQuote](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h QuoteHandler) Daily(c *gin.Context) {
	var req dailyQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	query := quoteapp.DailyQuoteQuery{DailyRate: req.DailyRate, Days: req.Days}
	result, err := queries.Ask[quoteapp.DailyQuoteQuery, dto.DailyQuote](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ QuoteHTTP = QuoteHandler{}
