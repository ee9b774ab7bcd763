// Package geo contains pure geographic computations used for trip progress.
package geo

import (
	"math"
	"time"

	"freight/internal/domain"
)

const earthRadiusKm = 6371.0

// RouteEstimate is a duration estimate returned by a routing service for a
// route of DistanceKm kilometres.
type RouteEstimate struct {
	Duration   time.Duration
	DistanceKm float64
}

// Distance returns the great-circle (haversine) distance in kilometres.
func Distance(a, b domain.GeoLocation) float64 {
	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLng := degreesToRadians(b.Longitude - a.Longitude)

	rLat1 := degreesToRadians(a.Latitude)
	rLat2 := degreesToRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h marginally past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// ProgressPercent returns how much of totalKm has been covered, clamped to [0, 100].
// A zero or negative total yields 0.
func ProgressPercent(totalKm, remainingKm float64) float64 {
	if totalKm <= 0 {
		return 0
	}
	p := (totalKm - remainingKm) / totalKm * 100
	return math.Min(100, math.Max(0, p))
}

// EstimatedRemainingTime scales a routing estimate to the remaining distance.
// It returns false when no estimate is available.
func EstimatedRemainingTime(remainingKm float64, estimate *RouteEstimate) (time.Duration, bool) {
	if estimate == nil {
		return 0, false
	}
	if remainingKm <= 0 {
		return 0, true
	}
	if estimate.DistanceKm <= 0 {
		return estimate.Duration, true
	}
	scaled := float64(estimate.Duration) * remainingKm / estimate.DistanceKm
	return time.Duration(scaled), true
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
