// Package evaluate decides whether one seismic event matches one recipient's
// effective threshold: magnitude gate first, then distance from the
// recipient's alert anchor to the epicenter.
package evaluate

import (
	"github.com/quakewatch/quakewatch/internal/geo"
	"github.com/quakewatch/quakewatch/internal/seismic"
	"github.com/quakewatch/quakewatch/internal/threshold"
)

// AnchorSource tags where a recipient's alert anchor came from.
type AnchorSource string

const (
	SourceConfigured AnchorSource = "configured" // explicit threshold coordinate or location name
	SourceDevice     AnchorSource = "device"     // last-known device coordinate
	SourceNone       AnchorSource = "none"       // no location at all: magnitude-only
)

// Anchor is a resolved alert-anchor coordinate with its provenance.
type Anchor struct {
	Coordinate geo.Coordinate
	Source     AnchorSource
}

// ResolveAnchor walks the ordered fallback chain: explicit threshold
// coordinate, then configured location name via the gazetteer, then the
// device coordinate, then the magnitude-only sentinel.
func ResolveAnchor(t threshold.Threshold, device *geo.Coordinate) Anchor {
	if t.Latitude != 0 || t.Longitude != 0 {
		return Anchor{
			Coordinate: geo.Coordinate{Latitude: t.Latitude, Longitude: t.Longitude},
			Source:     SourceConfigured,
		}
	}
	if t.LocationName != "" {
		coord, _ := geo.Lookup(t.LocationName)
		return Anchor{Coordinate: coord, Source: SourceConfigured}
	}
	if device != nil {
		return Anchor{Coordinate: *device, Source: SourceDevice}
	}
	return Anchor{Source: SourceNone}
}

// Epicenter returns the coordinate to measure against: the event's own
// coordinates when present, else the gazetteer's best guess for its place.
// A gazetteer miss yields the default anchor so evaluation proceeds rather
// than failing closed.
func Epicenter(ev seismic.Event) geo.Coordinate {
	if ev.HasCoordinates() {
		return geo.Coordinate{Latitude: ev.Latitude, Longitude: ev.Longitude}
	}
	coord, _ := geo.Lookup(ev.Place)
	return coord
}

// Matches applies the full client-side rule. A recipient with no location at
// all matches on the magnitude gate alone, so nobody is silently un-alerted
// for lacking location data.
func Matches(ev seismic.Event, t threshold.Threshold, device *geo.Coordinate) bool {
	if ev.Magnitude < t.MinMagnitude {
		return false
	}

	anchor := ResolveAnchor(t, device)
	if anchor.Source == SourceNone {
		return true
	}

	epi := Epicenter(ev)
	dist := geo.DistanceKm(anchor.Coordinate.Latitude, anchor.Coordinate.Longitude,
		epi.Latitude, epi.Longitude)
	return dist <= t.RadiusKm
}

// MatchesStrict is the server-side variant: it requires an explicit anchor
// and never falls back to device location or magnitude-only. Used for live
// (unsaved) threshold overrides on the fan-out path.
func MatchesStrict(ev seismic.Event, t threshold.Threshold) (distanceKm float64, ok bool) {
	if ev.Magnitude < t.MinMagnitude {
		return 0, false
	}
	if t.Latitude == 0 && t.Longitude == 0 {
		return 0, false
	}

	epi := Epicenter(ev)
	dist := geo.DistanceKm(t.Latitude, t.Longitude, epi.Latitude, epi.Longitude)
	return dist, dist <= t.RadiusKm
}
