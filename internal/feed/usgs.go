// Package feed provides clients for the seismic event feeds: the upstream
// USGS fdsnws service and the engine's own merged events endpoint. Both
// normalize records to seismic.Event at the boundary.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/quakewatch/quakewatch/internal/geo"
	"github.com/quakewatch/quakewatch/internal/seismic"
)

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

const (
	usgsTimeout = 15 * time.Second

	// Philippines bounding box for upstream queries.
	boxMinLatitude  = 5.0
	boxMaxLatitude  = 20.0
	boxMinLongitude = 115.0
	boxMaxLongitude = 130.0
)

const dateFormat = "2006-01-02"

// ---------------------------------------------------------------------------
// USGSClient — upstream fdsnws GeoJSON feed
// ---------------------------------------------------------------------------

// USGSClient queries the USGS fdsnws event service for the Philippine region.
type USGSClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewUSGSClient creates a USGS feed client.
func NewUSGSClient(baseURL string, logger *slog.Logger) *USGSClient {
	return &USGSClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: usgsTimeout},
		logger:     logger,
	}
}

// Query bounds an upstream feed request.
type Query struct {
	Start        time.Time
	End          time.Time
	MinMagnitude float64
}

// geoJSON mirrors the slice of the USGS response the engine consumes.
// Properties are nullable upstream, hence the pointer fields.
type geoJSON struct {
	Features []struct {
		Properties struct {
			Mag     *float64 `json:"mag"`
			Place   *string  `json:"place"`
			Time    *int64   `json:"time"`
			MagType *string  `json:"magType"`
			Tsunami int      `json:"tsunami"`
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
		} `json:"geometry"`
	} `json:"features"`
}

// Fetch queries the feed and returns normalized events in upstream order
// (time descending). Malformed records (no magnitude, or no coordinates and
// no resolvable place) are skipped, never errors, so a corrected re-delivery
// is still evaluated later.
func (c *USGSClient) Fetch(ctx context.Context, q Query) ([]seismic.Event, error) {
	params := url.Values{}
	params.Set("starttime", q.Start.UTC().Format(dateFormat))
	params.Set("endtime", q.End.UTC().Format(dateFormat))
	params.Set("format", "geojson")
	params.Set("minmagnitude", fmt.Sprintf("%g", q.MinMagnitude))
	params.Set("minlatitude", fmt.Sprintf("%g", boxMinLatitude))
	params.Set("maxlatitude", fmt.Sprintf("%g", boxMaxLatitude))
	params.Set("minlongitude", fmt.Sprintf("%g", boxMinLongitude))
	params.Set("maxlongitude", fmt.Sprintf("%g", boxMaxLongitude))
	params.Set("orderby", "time")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed returned %d: %s", resp.StatusCode, body)
	}

	var payload geoJSON
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}

	events := make([]seismic.Event, 0, len(payload.Features))
	skipped := 0
	for _, f := range payload.Features {
		ev, ok := normalizeFeature(
			f.Properties.Mag, f.Properties.Place, f.Properties.Time,
			f.Properties.MagType, f.Properties.Tsunami, f.Geometry.Coordinates,
		)
		if !ok {
			skipped++
			continue
		}
		events = append(events, ev)
	}

	if skipped > 0 {
		c.logger.Warn("Skipped malformed feed records", "count", skipped)
	}
	return events, nil
}

// normalizeFeature builds a seismic.Event from one GeoJSON feature. Returns
// ok=false for records the engine cannot evaluate.
func normalizeFeature(mag *float64, place *string, t *int64, magType *string, tsunami int, coords []float64) (seismic.Event, bool) {
	if mag == nil || t == nil {
		return seismic.Event{}, false
	}

	var ev seismic.Event
	ev.Magnitude = *mag
	ev.Time = *t
	ev.Tsunami = tsunami
	if place != nil {
		ev.Place = *place
	}
	if magType != nil {
		ev.MagnitudeType = *magType
	}

	if len(coords) >= 3 {
		ev.Longitude = coords[0]
		ev.Latitude = coords[1]
		ev.DepthKm = coords[2]
	}

	if !ev.HasCoordinates() {
		// No epicenter on the wire: the event is only usable if its place
		// resolves through the gazetteer.
		if _, ok := geo.Lookup(ev.Place); !ok {
			return seismic.Event{}, false
		}
	}
	return ev, true
}
