// Package threshold manages per-recipient alert configuration: location
// anchor, magnitude gate, alert radius, and channel toggles. Records are
// owned by their recipient, created lazily, and updated by full replace.
package threshold

import (
	"errors"
	"fmt"

	"github.com/quakewatch/quakewatch/internal/config"
)

// ErrNotFound is returned when a recipient has no stored threshold yet.
var ErrNotFound = errors.New("alert threshold not found")

// Threshold is one recipient's alert configuration.
type Threshold struct {
	OwnerID      string  `json:"owner_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	LocationName string  `json:"location_name"`
	MinMagnitude float64 `json:"minimum_magnitude"`
	RadiusKm     float64 `json:"alert_radius"`
	SMSEnabled   bool    `json:"enable_sms_alerts"`
	PushEnabled  bool    `json:"enable_push_notifications"`
}

// Default returns a threshold with engine defaults applied, anchored at the
// given coordinate.
func Default(ownerID string, lat, lon float64, locationName string) Threshold {
	return Threshold{
		OwnerID:      ownerID,
		Latitude:     lat,
		Longitude:    lon,
		LocationName: locationName,
		MinMagnitude: config.DefaultMinMagnitude,
		RadiusKm:     config.DefaultRadiusKm,
		SMSEnabled:   false,
		PushEnabled:  true,
	}
}

// HasAnchor reports whether an explicit alert-anchor coordinate or a
// resolvable location name is configured.
func (t Threshold) HasAnchor() bool {
	return t.Latitude != 0 || t.Longitude != 0 || t.LocationName != ""
}

// Validate rejects out-of-bounds configuration at the write boundary so the
// matching logic can assume validated input.
func Validate(t Threshold) error {
	if t.OwnerID == "" {
		return fmt.Errorf("owner_id is required")
	}
	if t.RadiusKm <= 0 {
		return fmt.Errorf("alert_radius must be positive, got %g", t.RadiusKm)
	}
	if t.MinMagnitude < 0 || t.MinMagnitude > 10 {
		return fmt.Errorf("minimum_magnitude must be between 0 and 10, got %g", t.MinMagnitude)
	}
	return nil
}
