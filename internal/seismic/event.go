// Package seismic defines the normalized earthquake event value type shared
// by the whole engine. Events are constructed once at the feed boundary;
// downstream code never sees raw feed records.
package seismic

import (
	"fmt"
	"math"
	"time"
)

// Event is a single seismic event as observed by the feed. Immutable after
// construction.
type Event struct {
	Time          int64   `json:"time"` // occurrence time, epoch milliseconds
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	DepthKm       float64 `json:"depth"`
	Magnitude     float64 `json:"magnitude"`
	Place         string  `json:"place"`
	MagnitudeType string  `json:"magnitude_type,omitempty"`
	Tsunami       int     `json:"tsunami,omitempty"`
	Synthetic     bool    `json:"synthetic,omitempty"`
}

// Identity derives a deterministic natural key from event content. The feed
// supplies no stable primary id, so place + magnitude + occurrence time is
// the dedup key.
func (e Event) Identity() string {
	return fmt.Sprintf("%s-%g-%d", e.Place, e.Magnitude, e.Time)
}

// HasCoordinates reports whether the event carries a usable epicenter.
// Records lacking coordinates are resolved via the gazetteer instead.
func (e Event) HasCoordinates() bool {
	if math.IsNaN(e.Latitude) || math.IsNaN(e.Longitude) {
		return false
	}
	return e.Latitude != 0 || e.Longitude != 0
}

// OccurredAt returns the occurrence time as a time.Time.
func (e Event) OccurredAt() time.Time {
	return time.UnixMilli(e.Time)
}

// --------------------------------------------------------------------------
// Severity
// --------------------------------------------------------------------------

// Level is the alert severity band for an event magnitude.
type Level string

const (
	LevelEmergency Level = "EMERGENCY" // magnitude >= 5.0
	LevelWarning   Level = "WARNING"   // magnitude >= 4.0
	LevelNotice    Level = "NOTICE"    // magnitude >= 3.0
	LevelNone      Level = "NONE"
)

const (
	emergencyMagnitude = 5.0
	warningMagnitude   = 4.0
	noticeMagnitude    = 3.0
)

// AlertLevel maps a magnitude to its severity band.
func AlertLevel(magnitude float64) Level {
	switch {
	case magnitude >= emergencyMagnitude:
		return LevelEmergency
	case magnitude >= warningMagnitude:
		return LevelWarning
	case magnitude >= noticeMagnitude:
		return LevelNotice
	default:
		return LevelNone
	}
}

// MagnitudeClass returns the conventional descriptive class for a magnitude.
func MagnitudeClass(magnitude float64) string {
	switch {
	case magnitude < 2.0:
		return "Micro"
	case magnitude < 4.0:
		return "Minor"
	case magnitude < 5.0:
		return "Light"
	case magnitude < 6.0:
		return "Moderate"
	case magnitude < 7.0:
		return "Strong"
	case magnitude < 8.0:
		return "Major"
	default:
		return "Great"
	}
}
