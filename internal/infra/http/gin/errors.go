package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	availabilityapp "rentcar/internal/app/handlers/availability"
	"rentcar/internal/domain/booking"
)

const codeNotFound = "not_found"

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable"`
}

// statusFor maps an error code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case booking.CodeFormat, booking.CodeInvalidRange, booking.CodeInvalidInput:
		return http.StatusBadRequest
	case booking.CodeMissingDate,
		booking.CodeMissingTime,
		booking.CodePastDate,
		booking.CodeOutOfWindow,
		booking.CodeRentalLength,
		booking.CodeMinimumDuration,
		booking.CodeInvalidTimeOrder:
		return http.StatusUnprocessableEntity
	case booking.CodeConflict:
		return http.StatusConflict
	case booking.CodeAvailabilityCheckFailed:
		return http.StatusServiceUnavailable
	case codeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	if errors.Is(err, availabilityapp.ErrNoAvailableDate) {
		return codeNotFound
	}
	return booking.Code(err)
}

// respondError writes the API error body. Internal errors are logged and their text withheld.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	code := errorCode(err)
	status := statusFor(code)
	c.Set("error_code", code)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		}
		msg = "internal error"
	}
	c.JSON(status, errorBody{Error: msg, Code: code, Retryable: booking.Retryable(err)})
}

func respondBindError(c *gin.Context, err error) {
	c.Set("error_code", booking.CodeFormat)
	c.JSON(http.StatusBadRequest, errorBody{Error: "malformed request body: " + err.Error(), Code: booking.CodeFormat})
}
