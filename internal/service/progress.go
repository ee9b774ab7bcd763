package service

import (
	"context"
	"log"

	"freight/internal/domain"
	"freight/internal/geo"
)

// RouteEstimator estimates driving time between two points.
type RouteEstimator interface {
	Estimate(ctx context.Context, from, to domain.GeoLocation) (*geo.RouteEstimate, error)
}

// Progress is a read-only view of how far a trip has come.
type Progress struct {
	TripID              string
	Status              domain.TripStatus
	Percent             float64
	TotalDistanceKm     float64
	RemainingDistanceKm float64
	CurrentLocation     *domain.GeoLocation
	EtaMinutes          *float64
	ETAUnavailable      bool
}

// GetProgress derives the trip's progress from the pickup, delivery and
// driver locations. It never writes.
func (c *TripCoordinator) GetProgress(ctx context.Context, tripID string) (*Progress, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	agg, err := c.store.Snapshot(ctx, tripID)
	if err != nil {
		return nil, storeError("load trip", err)
	}

	trip := agg.Trip
	total := geo.Distance(agg.Cargo.Pickup, agg.Cargo.Delivery)

	p := &Progress{
		TripID:          trip.ID,
		Status:          trip.Status,
		TotalDistanceKm: total,
	}

	switch trip.Status {
	case domain.TripStatusDeliveryConfirmed, domain.TripStatusCompleted:
		p.RemainingDistanceKm = 0
	case domain.TripStatusPickupConfirmed, domain.TripStatusInProgress:
		p.CurrentLocation = c.currentLocation(ctx, agg.Driver, trip.DriverID)
		if p.CurrentLocation != nil {
			p.RemainingDistanceKm = geo.Distance(*p.CurrentLocation, agg.Cargo.Delivery)
		} else {
			p.RemainingDistanceKm = total
		}
	default:
		p.RemainingDistanceKm = total
	}

	p.Percent = geo.ProgressPercent(total, p.RemainingDistanceKm)

	switch {
	case p.RemainingDistanceKm == 0:
		zero := 0.0
		p.EtaMinutes = &zero
	case !isActive(trip.Status):
		// Nothing is moving, so there is no ETA to give.
	default:
		from := agg.Cargo.Pickup
		if p.CurrentLocation != nil {
			from = *p.CurrentLocation
		}
		p.EtaMinutes, p.ETAUnavailable = c.estimate(ctx, trip.ID, from, agg.Cargo.Delivery, p.RemainingDistanceKm)
	}

	return p, nil
}

func (c *TripCoordinator) estimate(ctx context.Context, tripID string, from, to domain.GeoLocation, remainingKm float64) (*float64, bool) {
	if c.routes == nil {
		return nil, true
	}

	rctx, cancel := context.WithTimeout(ctx, c.cfg.RouteTimeout)
	defer cancel()

	est, err := c.routes.Estimate(rctx, from, to)
	if err != nil {
		log.Printf("[PROGRESS] %s: route estimate for trip %s: %v", KindExternalService, tripID, err)
		return nil, true
	}

	d, ok := geo.EstimatedRemainingTime(remainingKm, est)
	if !ok {
		return nil, true
	}
	minutes := d.Minutes()
	return &minutes, false
}

// currentLocation prefers the live fix over the last persisted one.
func (c *TripCoordinator) currentLocation(ctx context.Context, driver *domain.Driver, driverID string) *domain.GeoLocation {
	if loc := c.snapshotLocation(ctx, driverID); loc != nil {
		return loc
	}
	if driver != nil {
		return driver.CurrentLocation
	}
	return nil
}

func isActive(s domain.TripStatus) bool {
	switch s {
	case domain.TripStatusAccepted, domain.TripStatusPickupConfirmed, domain.TripStatusInProgress:
		return true
	}
	return false
}
