package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"freight/internal/repository"
)

// CommissionKeyDefault is the settings key of the marketplace commission rate.
const CommissionKeyDefault = "commission.default_rate_pct"

// CommissionConfigProvider supplies the commission rate, as a percentage.
type CommissionConfigProvider interface {
	GetRate(ctx context.Context, key string) (decimal.Decimal, error)
}

// RateCache is the subset of the Redis cache store used for rates.
type RateCache interface {
	GetRate(ctx context.Context, key string) (decimal.Decimal, bool, error)
	SetRate(ctx context.Context, key string, rate decimal.Decimal) error
}

// CommissionService resolves commission rates from cache, then settings,
// then the configured default.
type CommissionService struct {
	cache       RateCache
	settings    repository.SettingRepository
	defaultRate decimal.Decimal
}

// NewCommissionService creates a new CommissionService. cache may be nil.
func NewCommissionService(cache RateCache, settings repository.SettingRepository, defaultRate decimal.Decimal) *CommissionService {
	return &CommissionService{
		cache:       cache,
		settings:    settings,
		defaultRate: defaultRate,
	}
}

var _ CommissionConfigProvider = (*CommissionService)(nil)

// GetRate returns the rate for key. A cache failure falls through to the
// settings table; a settings failure is an ExternalServiceFailure.
func (s *CommissionService) GetRate(ctx context.Context, key string) (decimal.Decimal, error) {
	if s.cache != nil {
		rate, ok, err := s.cache.GetRate(ctx, key)
		if err != nil {
			log.Printf("[COMMISSION] cache read for %s failed: %v", key, err)
		} else if ok {
			return rate, nil
		}
	}

	raw, err := s.settings.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return s.defaultRate, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: read commission rate %s: %v", ErrExternalService, key, err)
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: commission rate %s=%q is not a number", ErrExternalService, key, raw)
	}

	if s.cache != nil {
		if err := s.cache.SetRate(ctx, key, rate); err != nil {
			log.Printf("[COMMISSION] cache write for %s failed: %v", key, err)
		}
	}

	return rate, nil
}
