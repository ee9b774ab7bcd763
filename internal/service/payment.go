package service

import (
	"context"
	"fmt"

	"freight/internal/domain"
	"freight/internal/repository"
)

// PaymentService exposes the settlement recorded for completed trips.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo repository.PaymentRepository) *PaymentService {
	return &PaymentService{paymentRepo: paymentRepo}
}

// GetTripPayment returns the payment of a trip, or ErrNotFound if the trip
// has not been completed.
func (s *PaymentService) GetTripPayment(ctx context.Context, tripID string) (*domain.Payment, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	payment, err := s.paymentRepo.GetByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%w: get payment: %v", ErrPersistence, err)
	}

	if payment == nil {
		return nil, fmt.Errorf("payment for trip %s: %w", tripID, ErrNotFound)
	}

	return payment, nil
}
