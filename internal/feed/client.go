package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/quakewatch/quakewatch/internal/seismic"
)

// Client consumes the engine's own merged events endpoint. The monitor polls
// this rather than the upstream service so drill events participate and the
// bounding/normalization live in one place.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an engine feed client. baseURL is the API root, e.g.
// "http://localhost:8000".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Events fetches events in [start, end] at or above minMagnitude.
func (c *Client) Events(ctx context.Context, start, end time.Time, minMagnitude float64, includeSynthetic bool) ([]seismic.Event, error) {
	params := url.Values{}
	params.Set("startDate", start.UTC().Format(dateFormat))
	params.Set("endDate", end.UTC().Format(dateFormat))
	params.Set("minMagnitude", fmt.Sprintf("%g", minMagnitude))
	params.Set("includeSynthetic", strconv.FormatBool(includeSynthetic))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/events?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build events request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("events endpoint returned %d: %s", resp.StatusCode, body)
	}

	var events []seismic.Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

// TriggerRequest is the fan-out trigger payload.
type TriggerRequest struct {
	Event    seismic.Event    `json:"event"`
	Override *TriggerOverride `json:"current_user_settings,omitempty"`
}

// TriggerOverride carries a live, not-yet-persisted threshold for the
// triggering recipient.
type TriggerOverride struct {
	OwnerID      string  `json:"owner_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	MinMagnitude float64 `json:"minimum_magnitude"`
	RadiusKm     float64 `json:"alert_radius"`
}

// TriggerResult mirrors the fan-out response body.
type TriggerResult struct {
	Notified   int  `json:"notified"`
	Failed     bool `json:"failed"`
	Recipients []struct {
		Username   string  `json:"username"`
		DistanceKm float64 `json:"distance_km"`
		Label      string  `json:"label"`
	} `json:"recipients"`
}

// TriggerNotification asks the server to fan the event out over SMS. Used by
// the monitor's alert hook; delivery failure surfaces in the result, not as
// a transport error.
func (c *Client) TriggerNotification(ctx context.Context, treq TriggerRequest) (TriggerResult, error) {
	var result TriggerResult

	body, err := json.Marshal(treq)
	if err != nil {
		return result, fmt.Errorf("encode trigger request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/notifications/earthquake", bytes.NewReader(body))
	if err != nil {
		return result, fmt.Errorf("build trigger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("trigger notification: %w", err)
	}
	defer resp.Body.Close()

	// 502 carries the preserved recipient list for a failed batch; decode
	// either way.
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, fmt.Errorf("decode trigger response (%d): %w", resp.StatusCode, err)
	}
	return result, nil
}
