package geo

import (
	"fmt"
	"strings"
)

// DefaultAnchor is the fallback coordinate when a place name cannot be
// resolved (Manila, Philippines).
var DefaultAnchor = Coordinate{Latitude: 14.5995, Longitude: 120.9842}

// region is a catalogued place with its canonical coordinate.
type region struct {
	name string
	lat  float64
	lon  float64
}

// Philippine cities plus a handful of Californian references kept for feeds
// that report US places.
var regions = []region{
	{"Manila, Philippines", 14.5995, 120.9842},
	{"Quezon City, Philippines", 14.6760, 121.0437},
	{"Makati, Philippines", 14.5547, 121.0244},
	{"Taguig, Philippines", 14.5176, 121.0509},
	{"Pasig, Philippines", 14.5764, 121.0851},
	{"Mandaluyong, Philippines", 14.5832, 121.0409},
	{"Marikina, Philippines", 14.6500, 121.1000},
	{"Las Piñas, Philippines", 14.4506, 120.9828},
	{"Parañaque, Philippines", 14.4793, 121.0198},
	{"Muntinlupa, Philippines", 14.4081, 121.0455},
	{"Caloocan, Philippines", 14.6546, 120.9840},
	{"Valenzuela, Philippines", 14.7000, 120.9833},
	{"Malabon, Philippines", 14.6626, 120.9569},
	{"Navotas, Philippines", 14.6500, 120.9500},
	{"San Juan, Philippines", 14.6019, 121.0356},
	{"Pasay, Philippines", 14.5378, 120.9969},
	{"Pateros, Philippines", 14.5406, 121.0681},
	{"Antipolo, Philippines", 14.6255, 121.1245},
	{"Cebu City, Philippines", 10.3157, 123.8854},
	{"Davao City, Philippines", 7.1907, 125.4553},
	{"Baguio, Philippines", 16.4023, 120.5960},
	{"Iloilo City, Philippines", 10.7202, 122.5621},
	{"Cagayan de Oro, Philippines", 8.4542, 124.6319},
	{"Bacolod, Philippines", 10.6407, 122.9689},
	{"Zamboanga City, Philippines", 6.9214, 122.0790},
	{"Batangas City, Philippines", 13.7565, 121.0583},
	{"Lucena, Philippines", 13.9314, 121.6174},
	{"Calamba, Philippines", 14.2117, 121.1653},
	{"Tagaytay, Philippines", 14.1000, 120.9333},
	{"Puerto Princesa, Philippines", 9.7392, 118.7369},
	{"Legazpi, Philippines", 13.1394, 123.7344},
	{"Naga, Philippines", 13.6192, 123.1833},
	{"Angeles, Philippines", 15.1475, 120.5900},
	{"Olongapo, Philippines", 14.8292, 120.2833},
	{"San Fernando, Pampanga, Philippines", 15.0300, 120.6861},
	{"Lipa, Philippines", 13.9411, 121.1631},
	{"San Pablo, Philippines", 14.0703, 121.3256},
	{"Tarlac City, Philippines", 15.4869, 120.5900},
	{"Cabanatuan, Philippines", 15.4833, 120.9667},
	{"Malolos, Philippines", 14.8431, 120.8111},
	{"San Francisco, CA", 37.7749, -122.4194},
	{"Los Angeles, CA", 34.0522, -118.2437},
	{"Fresno, CA", 36.7378, -119.7871},
	{"San Jose, CA", 37.3382, -121.8863},
	{"San Diego, CA", 32.7157, -117.1611},
	{"Sacramento, CA", 38.5816, -121.4944},
	{"Oakland, CA", 37.8044, -122.2711},
	{"Long Beach, CA", 33.7701, -118.1937},
	{"Bakersfield, CA", 35.3733, -119.0187},
	{"Anaheim, CA", 33.8353, -117.9143},
}

// Lookup resolves a place name to a coordinate. Exact matches win; otherwise
// a partial match on the city part is attempted in both directions. A miss
// returns DefaultAnchor with ok=false so evaluation can proceed rather than
// fail closed.
func Lookup(place string) (Coordinate, bool) {
	if place == "" {
		return DefaultAnchor, false
	}

	for _, r := range regions {
		if r.name == place {
			return Coordinate{Latitude: r.lat, Longitude: r.lon}, true
		}
	}

	placeCity := cityPart(place)
	for _, r := range regions {
		keyCity := cityPart(r.name)
		if strings.Contains(strings.ToLower(place), strings.ToLower(keyCity)) ||
			strings.Contains(strings.ToLower(r.name), strings.ToLower(placeCity)) {
			return Coordinate{Latitude: r.lat, Longitude: r.lon}, true
		}
	}

	return DefaultAnchor, false
}

func cityPart(s string) string {
	if i := strings.Index(s, ","); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

// nearTolerance is the max coordinate-space offset (degrees, euclidean) for
// naming a point after the nearest catalogued region.
const nearTolerance = 0.45

// RegionName returns a human-readable label for a coordinate: the nearest
// catalogued region when close enough, else a coarse regional bucket, else
// formatted coordinates.
func RegionName(lat, lon float64) string {
	closest := regions[0]
	minDist := 1e18

	for _, r := range regions {
		latDiff := lat - r.lat
		lonDiff := lon - r.lon
		d := latDiff*latDiff + lonDiff*lonDiff
		if d < minDist {
			minDist = d
			closest = r
		}
	}

	if minDist < nearTolerance*nearTolerance {
		return closest.name
	}

	switch {
	case lat >= 14.0 && lat <= 15.0 && lon >= 120.0 && lon <= 121.5:
		return "Metro Manila Area, Philippines"
	case lat >= 13.5 && lat <= 14.5 && lon >= 120.5 && lon <= 122.0:
		return "Calabarzon Region, Philippines"
	case lat >= 10.0 && lat <= 11.0 && lon >= 123.0 && lon <= 124.0:
		return "Cebu Area, Philippines"
	case lat >= 6.0 && lat <= 8.0 && lon >= 124.0 && lon <= 126.0:
		return "Mindanao Region, Philippines"
	case lat >= 16.0 && lat <= 18.0 && lon >= 120.0 && lon <= 121.0:
		return "Northern Luzon, Philippines"
	default:
		return fmt.Sprintf("Philippines (%.2f, %.2f)", lat, lon)
	}
}
