package redis

import (
	"context"

	"github.com/shopspring/decimal"

	"freight/internal/domain"
)

// LocationStoreInterface defines the interface for driver live-location operations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, driverID string, loc domain.GeoLocation) (bool, error)
	GetLocation(ctx context.Context, driverID string) (*domain.GeoLocation, error)
}

// RateCacheInterface defines the interface for cached commission rates.
type RateCacheInterface interface {
	GetRate(ctx context.Context, key string) (decimal.Decimal, bool, error)
	SetRate(ctx context.Context, key string, rate decimal.Decimal) error
	InvalidateRate(ctx context.Context, key string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ RateCacheInterface     = (*CacheStore)(nil)
)
