package fanout

import (
	"fmt"
	"strings"
	"time"

	"github.com/quakewatch/quakewatch/internal/geo"
	"github.com/quakewatch/quakewatch/internal/seismic"
)

const safetyReminder = "Please stay safe and follow safety guidelines."

// ComposeMessage renders the fixed SMS body: severity banner, magnitude,
// place, depth, time, and the standard safety reminder. One body per batch;
// every recipient in the queue gets the same text.
func ComposeMessage(ev seismic.Event) string {
	place := ev.Place
	if place == "" {
		if ev.HasCoordinates() {
			place = geo.RegionName(ev.Latitude, ev.Longitude)
		} else {
			place = "Unknown location"
		}
	}

	depth := "N/A"
	if ev.DepthKm > 0 {
		depth = fmt.Sprintf("%.1f km", ev.DepthKm)
	}

	when := "Just now"
	if ev.Time > 0 {
		when = time.UnixMilli(ev.Time).Format("Jan 2, 2006 3:04 PM")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚨 EARTHQUAKE ALERT 🚨\n\n")
	fmt.Fprintf(&b, "Severity: %s\n", seismic.AlertLevel(ev.Magnitude))
	fmt.Fprintf(&b, "Magnitude: %.1f (%s)\n", ev.Magnitude, seismic.MagnitudeClass(ev.Magnitude))
	fmt.Fprintf(&b, "Location: %s\n", place)
	fmt.Fprintf(&b, "Depth: %s\n", depth)
	fmt.Fprintf(&b, "Time: %s\n\n", when)
	b.WriteString(safetyReminder)
	return b.String()
}
