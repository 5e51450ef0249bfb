package geo

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{"same point", 14.5995, 120.9842, 14.5995, 120.9842, 0, 0.001},
		{"metro manila short hop", 14.60, 120.98, 14.65, 121.03, 7.736, 0.01},
		{"manila to baguio", 14.5995, 120.9842, 16.4023, 120.5960, 204.73, 0.1},
		{"one degree longitude at equator", 0, 0, 0, 1, 111.19, 0.05},
		{"manila to quezon city", 14.5995, 120.9842, 14.6760, 121.0437, 10.646, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("DistanceKm() = %g, want %g (±%g)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestDistanceKmSymmetry(t *testing.T) {
	a := DistanceKm(14.5995, 120.9842, 16.4023, 120.5960)
	b := DistanceKm(16.4023, 120.5960, 14.5995, 120.9842)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("distance not symmetric: %g vs %g", a, b)
	}
}
