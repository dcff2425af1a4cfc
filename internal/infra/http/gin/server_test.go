package ginserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentcar/internal/app/commands"
	availabilityapp "rentcar/internal/app/handlers/availability"
	bookingapp "rentcar/internal/app/handlers/booking"
	quoteapp "rentcar/internal/app/handlers/quotes"
	"rentcar/internal/app/middleware"
	"rentcar/internal/app/outbox"
	"rentcar/internal/app/queries"
	domainavailability "rentcar/internal/domain/availability"
	"rentcar/internal/domain/booking"
	"rentcar/internal/domain/pricing"
	"rentcar/internal/infra/config"
	"rentcar/internal/infra/obs"
	"rentcar/internal/infra/storage/memory"
)

type failingSource struct{}

func (failingSource) UnavailableDates(context.Context, string) ([]domainavailability.Booking, error) {
	return nil, errors.New("connection reset")
}

type capturingPublisher struct{ topics []string }

func (p *capturingPublisher) Publish(_ context.Context, topic, _ string, _ []byte, _ map[string]string) error {
	p.topics = append(p.topics, topic)
	return nil
}

type fixture struct {
	router    *gin.Engine
	source    *memory.AvailabilitySource
	publisher *capturingPublisher
}

func newFixture(t *testing.T, src domainavailability.Source) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := memory.NewAvailabilitySource()
	if src == nil {
		src = mem
	}
	calc := pricing.Calculator{Currency: "USD"}
	validator := &booking.Validator{
		Source:  src,
		Pricing: calc,
		Now:     func() time.Time { return time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC) },
	}
	pub := &capturingPublisher{}
	box := memory.NewOutbox(pub, "")

	cmdBus := commands.NewInMemoryBus()
	require.NoError(t, bookingapp.Register(cmdBus, &bookingapp.CheckHandler{Validator: validator, Outbox: box, Encoder: outbox.JSONEventEncoder{}}))
	qBus := queries.NewInMemoryBus()
	require.NoError(t, quoteapp.Register(qBus, calc))
	require.NoError(t, availabilityapp.Register(qBus, validator))

	handlers := Handlers{
		Quotes:       QuoteHandler{Queries: middleware.ChainQueries(qBus, middleware.QueryValidation())},
		BookingCheck: BookingCheckHandler{Commands: middleware.ChainCommands(cmdBus, middleware.Validation(), middleware.OutboxFlush(box, nil))},
		Availability: AvailabilityHandler{Queries: middleware.ChainQueries(qBus, middleware.QueryValidation())},
	}
	cfg := config.Config{Env: "test", CORSAllowAll: true}
	return fixture{
		router:    NewRouter(cfg, obs.Middleware{}, obs.HealthHandlers{}, handlers),
		source:    mem,
		publisher: pub,
	}
}

func (f fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const checkBody = `{"checkId":"chk-1","selectedDate":"2024-01-03","pickupTime":"10:00","returnTime":"14:00","dailyRate":240,"availabilityFrom":"2024-01-01","availabilityTo":"2024-01-31"}`

func TestBookingCheck_Accepted(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodPost, "/api/v1/listings/car-1/booking-checks", checkBody)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"checkId":"chk-1","listingId":"car-1","selectedDate":"2024-01-03",
		"pickupTime":"10:00","returnTime":"14:00","durationHours":4,
		"quote":{"subtotal":120,"serviceFee":6,"insuranceFee":4,"total":130,"currency":"USD"}
	}`, rec.Body.String())
	assert.Equal(t, []string{"booking.events.v1"}, f.publisher.topics)
}

func TestBookingCheck_Conflict(t *testing.T) {
	f := newFixture(t, nil)
	f.source.Add("car-1", domainavailability.Booking{
		StartDate: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Status:    domainavailability.StatusConfirmed,
	})
	rec := f.do(http.MethodPost, "/api/v1/listings/car-1/booking-checks", checkBody)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, booking.CodeConflict, body.Code)
	assert.False(t, body.Retryable)
	assert.Equal(t, []string{"booking.events.v1"}, f.publisher.topics, "rejections are published too")
}

func TestBookingCheck_AvailabilityFailureIsRetryable(t *testing.T) {
	f := newFixture(t, failingSource{})
	rec := f.do(http.MethodPost, "/api/v1/listings/car-1/booking-checks", checkBody)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, booking.CodeAvailabilityCheckFailed, body.Code)
	assert.True(t, body.Retryable)
}

func TestBookingCheck_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing date", `{"pickupTime":"10:00","returnTime":"14:00","dailyRate":240,"availabilityFrom":"2024-01-01","availabilityTo":"2024-01-31"}`, http.StatusUnprocessableEntity, booking.CodeMissingDate},
		{"past date", `{"selectedDate":"2024-01-01","pickupTime":"10:00","returnTime":"14:00","dailyRate":240,"availabilityFrom":"2024-01-01","availabilityTo":"2024-01-31"}`, http.StatusUnprocessableEntity, booking.CodePastDate},
		{"out of window", `{"selectedDate":"2024-02-03","pickupTime":"10:00","returnTime":"14:00","dailyRate":240,"availabilityFrom":"2024-01-01","availabilityTo":"2024-01-31"}`, http.StatusUnprocessableEntity, booking.CodeOutOfWindow},
		{"too short", `{"selectedDate":"2024-01-03","pickupTime":"10:00","returnTime":"11:00","dailyRate":240,"availabilityFrom":"2024-01-01","availabilityTo":"2024-01-31"}`, http.StatusUnprocessableEntity, booking.CodeMinimumDuration},
		{"bad time", `{"selectedDate":"2024-01-03","pickupTime":"10","returnTime":"14:00","dailyRate":240,"availabilityFrom":"2024-01-01","availabilityTo":"2024-01-31"}`, http.StatusBadRequest, booking.CodeFormat},
		{"bad rate", `{"selectedDate":"2024-01-03","pickupTime":"10:00","returnTime":"14:00","dailyRate":0,"availabilityFrom":"2024-01-01","availabilityTo":"2024-01-31"}`, http.StatusBadRequest, booking.CodeInvalidInput},
		{"malformed json", `{"selectedDate":`, http.StatusBadRequest, booking.CodeFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := newFixture(t, nil).do(http.MethodPost, "/api/v1/listings/car-1/booking-checks", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, decodeError(t, rec).Code)
		})
	}
}

func TestDayBookingCheck(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodPost, "/api/v1/listings/car-1/day-booking-checks",
		`{"startDate":"2024-01-10","endDate":"2024-01-13","dailyRate":55,"availabilityFrom":"2024-01-01","availabilityTo":"2024-01-31","minimumRentalDays":2,"maximumRentalDays":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Days  int `json:"days"`
		Quote struct {
			Total int64 `json:"total"`
		} `json:"quote"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Days)
	assert.Equal(t, int64(178), got.Quote.Total)

	rec = f.do(http.MethodPost, "/api/v1/listings/car-1/day-booking-checks",
		`{"startDate":"2024-01-10","endDate":"2024-01-20","dailyRate":55,"availabilityFrom":"2024-01-01","availabilityTo":"2024-01-31","maximumRentalDays":5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, booking.CodeRentalLength, decodeError(t, rec).Code)
}

func TestQuotes(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodPost, "/api/v1/quotes", `{"dailyRate":100,"pickupTime":"09:00","returnTime":"11:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"quote":{"subtotal":25,"serviceFee":1,"insuranceFee":1,"total":27,"currency":"USD"},"hourlyRate":12.5,"durationHours":2}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/v1/quotes/days", `{"dailyRate":55,"days":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"quote":{"subtotal":165,"serviceFee":8,"insuranceFee":5,"total":178,"currency":"USD"},"days":3}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/v1/quotes/days", `{"dailyRate":55,"days":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(http.MethodPost, "/api/v1/quotes", `{"dailyRate":1e19,"pickupTime":"09:00","returnTime":"17:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, booking.CodeInvalidInput, decodeError(t, rec).Code)
}

func TestNextAvailable(t *testing.T) {
	f := newFixture(t, nil)
	f.source.Add("car-1", domainavailability.Booking{
		StartDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
	})

	rec := f.do(http.MethodGet, "/api/v1/listings/car-1/availability/next?window_from=2024-01-01&window_to=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"listingId":"car-1","date":"2024-01-05"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/v1/listings/car-1/availability/next?window_from=2024-01-01&window_to=2024-01-04", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, codeNotFound, decodeError(t, rec).Code)

	rec = f.do(http.MethodGet, "/api/v1/listings/car-1/availability/next?window_from=jan", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndSwagger(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/livez", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/readyz", "").Code)

	rec := f.do(http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/listings/{id}/booking-checks")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(booking.CodeInternal))
	assert.Equal(t, http.StatusConflict, statusFor(booking.CodeConflict))
	assert.Equal(t, http.StatusBadRequest, statusFor(booking.CodeInvalidRange))
}
