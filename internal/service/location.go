package service

import (
	"context"
	"fmt"
	"log"

	"freight/internal/domain"
)

// LocationStore holds driver live locations.
type LocationStore interface {
	UpdateLocation(ctx context.Context, driverID string, loc domain.GeoLocation) (bool, error)
	GetLocation(ctx context.Context, driverID string) (*domain.GeoLocation, error)
}

// LocationService handles driver location ingest.
type LocationService struct {
	locationStore LocationStore
}

// NewLocationService creates a new LocationService.
func NewLocationService(locationStore LocationStore) *LocationService {
	return &LocationService{locationStore: locationStore}
}

// UpdateLocation stores a driver's reported position. Fixes older than the
// stored one are ignored; the bool reports whether this one was kept.
// Location writes never take the trip lock.
func (s *LocationService) UpdateLocation(ctx context.Context, driverID string, loc domain.GeoLocation) (bool, error) {
	if driverID == "" {
		return false, ErrInvalidDriverID
	}

	if err := loc.Validate(); err != nil {
		return false, err
	}

	applied, err := s.locationStore.UpdateLocation(ctx, driverID, loc)
	if err != nil {
		return false, fmt.Errorf("%w: store location: %v", ErrExternalService, err)
	}

	if !applied {
		log.Printf("[LOCATION] stale fix for driver %s at %s ignored", driverID, loc.Timestamp)
	}

	return applied, nil
}

// GetLocation returns the latest known live location, or nil.
func (s *LocationService) GetLocation(ctx context.Context, driverID string) (*domain.GeoLocation, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.locationStore.GetLocation(ctx, driverID)
}
