package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"rentcar/internal/app/dto"
	availabilityapp "rentcar/internal/app/handlers/availability"
	"rentcar/internal/app/queries"
	domainavailability "rentcar/internal/domain/availability"
	"rentcar/internal/domain/shared/daterange"
)

type AvailabilityHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// NextAvailable answers with the earliest bookable date inside the window.
// window_from and window_to are required; from defaults to the window start.
func (h AvailabilityHandler) NextAvailable(c *gin.Context) {
	windowFrom, err := daterange.Parse(c.Query("window_from"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	windowTo, err := daterange.Parse(c.Query("window_to"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	var from time.Time
	if raw := c.Query("from"); raw != "" {
		if from, err = daterange.Parse(raw); err != nil {
			respondError(c, h.Logger, err)
			return
		}
	}
	query := availabilityapp.NextAvailableQuery{
		ListingID: c.Param("id"),
		From:      from,
		Window:    domainavailability.Window{From: windowFrom, To: windowTo},
	}
	result, err := queries.Ask[availabilityapp.NextAvailableQuery, dto.NextAvailable](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
