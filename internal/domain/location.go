package domain

import (
	"errors"
	"math"
	"time"
)

// LocationTolerance is the coordinate delta, in degrees, under which two points are equal.
const LocationTolerance = 0.0001

// ErrInvalidCoordinates is returned when latitude or longitude is out of range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// GeoLocation is an immutable position reading.
type GeoLocation struct {
	Latitude  float64
	Longitude float64
	Timestamp time.Time
	Accuracy  *float64 // meters
	Speed     *float64 // km/h
	Heading   *float64 // degrees from north
}

// NewGeoLocation validates coordinate ranges and returns a location.
func NewGeoLocation(lat, lng float64, at time.Time) (GeoLocation, error) {
	if !ValidLatitude(lat) || !ValidLongitude(lng) {
		return GeoLocation{}, ErrInvalidCoordinates
	}
	return GeoLocation{Latitude: lat, Longitude: lng, Timestamp: at}, nil
}

// Validate checks the coordinate ranges.
func (g GeoLocation) Validate() error {
	if !ValidLatitude(g.Latitude) || !ValidLongitude(g.Longitude) {
		return ErrInvalidCoordinates
	}
	return nil
}

// Equal compares positions only, within LocationTolerance.
func (g GeoLocation) Equal(other GeoLocation) bool {
	return math.Abs(g.Latitude-other.Latitude) <= LocationTolerance &&
		math.Abs(g.Longitude-other.Longitude) <= LocationTolerance
}

// ValidLatitude reports whether lat is a number within [-90, 90].
func ValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lng is a number within [-180, 180].
func ValidLongitude(lng float64) bool {
	return !math.IsNaN(lng) && lng >= -180 && lng <= 180
}
