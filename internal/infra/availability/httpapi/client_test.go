package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "rentcar/internal/domain/availability"
	"rentcar/internal/domain/shared/daterange"
)

func newClient(srv *httptest.Server) *Client {
	return &Client{BaseURL: srv.URL, Client: srv.Client()}
}

func TestUnavailableDates_Decodes(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/listings/car%2F1/unavailable-dates", r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"unavailableDates":[
			{"startDate":"2024-01-03T00:00:00.000Z","endDate":"2024-01-05","status":"confirmed"},
			{"startDate":"2024-02-01","endDate":"2024-02-01","status":"PENDING"}
		]}`))
	}))
	defer srv.Close()

	c := newClient(srv)
	got, err := c.UnavailableDates(context.Background(), "car/1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	start, _ := daterange.Parse("2024-01-03")
	end, _ := daterange.Parse("2024-01-05")
	assert.Equal(t, domainavailability.Booking{StartDate: start, EndDate: end, Status: domainavailability.StatusConfirmed}, got[0])
	assert.Equal(t, domainavailability.StatusPending, got[1].Status)

	_, err = c.UnavailableDates(context.Background(), "car/1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "every call reaches the service")
}

func TestUnavailableDates_Errors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server error", http.StatusBadGateway, "upstream down", "status 502: upstream down"},
		{"not found", http.StatusNotFound, "", "status 404"},
		{"bad json", http.StatusOK, "{", "decode"},
		{"bad date", http.StatusOK, `{"unavailableDates":[{"startDate":"soon","endDate":"2024-01-01"}]}`, "entry 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := newClient(srv).UnavailableDates(context.Background(), "car-1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestUnavailableDates_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := newClient(srv)
	c.Client.Timeout = 20 * time.Millisecond
	_, err := c.UnavailableDates(context.Background(), "car-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestUnavailableDates_NotConfigured(t *testing.T) {
	var c *Client
	_, err := c.UnavailableDates(context.Background(), "car-1")
	assert.Error(t, err)

	_, err = (&Client{Client: http.DefaultClient}).UnavailableDates(context.Background(), "car-1")
	assert.Error(t, err)
}
