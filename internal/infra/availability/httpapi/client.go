package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	domainavailability "rentcar/internal/domain/availability"
	"rentcar/internal/domain/shared/daterange"
)

// Client reads a listing's unavailable dates from the bookings service.
// Every call goes to the network; there is no cache.
type Client struct {
	BaseURL string
	Client  *http.Client
	Logger  *slog.Logger
}

type unavailableDatesResponse struct {
	UnavailableDates []unavailableDate `json:"unavailableDates"`
}

type unavailableDate struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Status    string `json:"status"`
}

func (c *Client) UnavailableDates(ctx context.Context, listingID string) ([]domainavailability.Booking, error) {
	if c == nil || c.Client == nil {
		return nil, errors.New("availability api: http client not configured")
	}
	if c.BaseURL == "" {
		return nil, errors.New("availability api: base url not configured")
	}

	endpoint := c.BaseURL + "/listings/" + url.PathEscape(listingID) + "/unavailable-dates"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			err = fmt.Errorf("availability api: timeout: %w", err)
		} else {
			err = fmt.Errorf("availability api: unavailable: %w", err)
		}
		c.logError(ctx, "availability request failed", listingID, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("availability api: returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
		c.logError(ctx, "availability api returned error", listingID, err)
		return nil, err
	}

	var payload unavailableDatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		err = fmt.Errorf("availability api: decode: %w", err)
		c.logError(ctx, "availability decode failed", listingID, err)
		return nil, err
	}

	bookings := make([]domainavailability.Booking, 0, len(payload.UnavailableDates))
	for i, item := range payload.UnavailableDates {
		start, err := daterange.Parse(item.StartDate)
		if err != nil {
			return nil, fmt.Errorf("availability api: entry %d: %w", i, err)
		}
		end, err := daterange.Parse(item.EndDate)
		if err != nil {
			return nil, fmt.Errorf("availability api: entry %d: %w", i, err)
		}
		bookings = append(bookings, domainavailability.Booking{
			StartDate: start,
			EndDate:   end,
			Status:    domainavailability.Status(strings.ToUpper(item.Status)),
		})
	}
	return bookings, nil
}

func (c *Client) logError(ctx context.Context, msg, listingID string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.ErrorContext(ctx, msg, "listing_id", listingID, "error", err)
}

var _ domainavailability.Source = (*Client)(nil)
