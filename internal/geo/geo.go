package geo

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Philippine geographic bounds (4-21 N, 116-127 E).
const (
	PHLatMin = 4.0
	PHLatMax = 21.0
	PHLngMin = 116.0
	PHLngMax = 127.0
)

const (
	earthRadiusKm = 6371.01
	degPerRad     = 180 / math.Pi
)

// WithinPhilippines reports whether the coordinates fall inside the
// Philippine bounding box. Candidates outside are never persisted.
func WithinPhilippines(lat, lng float64) bool {
	return PHLatMin <= lat && lat <= PHLatMax && PHLngMin <= lng && lng <= PHLngMax
}

// DistanceKm returns the great-circle distance between two points.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lng1)
	b := s2.LatLngFromDegrees(lat2, lng2)
	return a.Distance(b).Radians() * earthRadiusKm
}

// Rect is a lat/lng bounding rectangle in decimal degrees.
type Rect struct {
	LatMin float64
	LatMax float64
	LngMin float64
	LngMax float64
}

// BoundingRect computes the lat/lng rectangle enclosing a radius around a
// center point. Used as a cheap SQL prefilter before exact distance checks.
func BoundingRect(lat, lng, radiusKm float64) Rect {
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lng))
	bound := s2.CapFromCenterAngle(center, s1.Angle(radiusKm/earthRadiusKm)).RectBound()

	return Rect{
		LatMin: bound.Lat.Lo * degPerRad,
		LatMax: bound.Lat.Hi * degPerRad,
		LngMin: bound.Lng.Lo * degPerRad,
		LngMax: bound.Lng.Hi * degPerRad,
	}
}
