package geo

import (
	"math"
	"testing"
)

func TestWithinPhilippines(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		lat  float64
		lng  float64
		want bool
	}{
		{"manila", 14.5995, 120.9842, true},
		{"davao", 7.1907, 125.4553, true},
		{"south boundary", 4.0, 116.0, true},
		{"north boundary", 21.0, 127.0, true},
		{"taipei", 25.0330, 121.5654, false},
		{"south of box", 3.9, 120.0, false},
		{"west of box", 14.0, 115.9, false},
		{"negative", -14.5995, -120.9842, false},
	}

	for _, tc := range cases {
		if got := WithinPhilippines(tc.lat, tc.lng); got != tc.want {
			t.Fatalf("%s: WithinPhilippines(%v, %v) = %v, want %v", tc.name, tc.lat, tc.lng, got, tc.want)
		}
	}
}

func TestDistanceKm(t *testing.T) {
	t.Parallel()

	// Manila to Quezon City is roughly 11 km.
	dist := DistanceKm(14.5995, 120.9842, 14.6760, 121.0437)
	if dist < 9 || dist > 13 {
		t.Fatalf("unexpected Manila-QC distance: %f km", dist)
	}

	if d := DistanceKm(14.5995, 120.9842, 14.5995, 120.9842); d != 0 {
		t.Fatalf("distance to self should be 0, got %f", d)
	}
}

func TestBoundingRectEnclosesRadius(t *testing.T) {
	t.Parallel()

	lat, lng, radius := 14.5995, 120.9842, 5.0
	rect := BoundingRect(lat, lng, radius)

	if rect.LatMin >= lat || rect.LatMax <= lat {
		t.Fatalf("rect does not bracket latitude: %+v", rect)
	}
	if rect.LngMin >= lng || rect.LngMax <= lng {
		t.Fatalf("rect does not bracket longitude: %+v", rect)
	}

	// Points on the radius in the four cardinal directions must fall inside.
	degLat := radius / 111.0
	if lat+degLat > rect.LatMax || lat-degLat < rect.LatMin {
		t.Fatalf("rect too small for %f km radius: %+v", radius, rect)
	}

	// And the rect should not be wildly larger than the radius.
	if span := rect.LatMax - rect.LatMin; span > 4*degLat {
		t.Fatalf("rect latitude span too large: %f degrees", span)
	}

	if math.IsNaN(rect.LngMin) || math.IsNaN(rect.LngMax) {
		t.Fatalf("rect contains NaN: %+v", rect)
	}
}
