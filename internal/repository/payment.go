package repository

import (
	"context"

	"freight/internal/domain"
)

// PaymentRepository reads settlement payments outside the trip unit of work.
type PaymentRepository interface {
	// GetByTripID returns nil, nil when the trip has no payment.
	GetByTripID(ctx context.Context, tripID string) (*domain.Payment, error)
}
