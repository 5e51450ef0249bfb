package feed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleGeoJSON = `{
  "features": [
    {
      "properties": {"mag": 5.1, "place": "10km NE of Manila, Philippines", "time": 1767009600000, "magType": "mb", "tsunami": 0},
      "geometry": {"coordinates": [120.98, 14.60, 33.0]}
    },
    {
      "properties": {"mag": null, "place": "somewhere", "time": 1767009600000, "magType": null, "tsunami": 0},
      "geometry": {"coordinates": [121.0, 14.7, 10.0]}
    },
    {
      "properties": {"mag": 4.2, "place": "Baguio, Philippines", "time": 1767009500000, "magType": "ml", "tsunami": 0},
      "geometry": {"coordinates": []}
    },
    {
      "properties": {"mag": 3.9, "place": "Middle of Nowhere", "time": 1767009400000, "magType": "ml", "tsunami": 0},
      "geometry": {"coordinates": []}
    }
  ]
}`

func testFeedLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUSGSFetch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(sampleGeoJSON)); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	c := NewUSGSClient(srv.URL, testFeedLogger())
	events, err := c.Fetch(context.Background(), Query{
		Start:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		MinMagnitude: 3.0,
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	// The null-magnitude record and the coordinate-less unresolvable place
	// are skipped; the gazetteer rescues the Baguio record.
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	first := events[0]
	if first.Magnitude != 5.1 || first.Latitude != 14.60 || first.Longitude != 120.98 || first.DepthKm != 33.0 {
		t.Errorf("first event not normalized correctly: %+v", first)
	}
	if first.MagnitudeType != "mb" {
		t.Errorf("magnitude type = %q, want mb", first.MagnitudeType)
	}

	second := events[1]
	if second.Place != "Baguio, Philippines" || second.HasCoordinates() {
		t.Errorf("coordinate-less event should keep its place only: %+v", second)
	}

	if gotQuery["format"] != "geojson" {
		t.Errorf("format = %q, want geojson", gotQuery["format"])
	}
	if gotQuery["minmagnitude"] != "3" {
		t.Errorf("minmagnitude = %q, want 3", gotQuery["minmagnitude"])
	}
	if gotQuery["minlatitude"] != "5" || gotQuery["maxlongitude"] != "130" {
		t.Errorf("bounding box not applied: %v", gotQuery)
	}
}

func TestUSGSFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewUSGSClient(srv.URL, testFeedLogger())
	if _, err := c.Fetch(context.Background(), Query{}); err == nil {
		t.Error("non-200 upstream response must be an error")
	}
}

func TestNormalizeFeature(t *testing.T) {
	mag := 4.5
	ts := int64(1767009600000)
	place := "Cebu City, Philippines"

	tests := []struct {
		name   string
		mag    *float64
		place  *string
		time   *int64
		coords []float64
		wantOK bool
	}{
		{"complete", &mag, &place, &ts, []float64{123.88, 10.31, 12}, true},
		{"missing magnitude", nil, &place, &ts, []float64{123.88, 10.31, 12}, false},
		{"missing time", &mag, &place, nil, []float64{123.88, 10.31, 12}, false},
		{"no coords, resolvable place", &mag, &place, &ts, nil, true},
		{"no coords, no place", &mag, nil, &ts, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := normalizeFeature(tt.mag, tt.place, tt.time, nil, 0, tt.coords)
			if ok != tt.wantOK {
				t.Errorf("normalizeFeature() ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}
