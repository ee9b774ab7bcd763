package postgres

import (
	"context"
	"database/sql"
	"errors"

	"freight/internal/domain"
	"freight/internal/repository"
)

// PaymentRepository reads and writes settlement payments.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

var _ repository.PaymentRepository = (*PaymentRepository)(nil)

// Create persists a new payment. The unique constraint on trip_id turns
// a duplicate into repository.ErrPaymentExists.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `
		INSERT INTO payments (id, trip_id, payer_id, payee_id, amount, commission_amount, net_amount,
			currency, commission_rate, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (trip_id) DO NOTHING
	`

	result, err := r.q.ExecContext(ctx, query,
		p.ID,
		p.TripID,
		p.PayerID,
		p.PayeeID,
		p.Amount.Amount,
		p.CommissionAmount.Amount,
		p.NetAmount.Amount,
		p.Amount.Currency,
		p.CommissionRate,
		p.Status,
		p.CreatedAt,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrPaymentExists
	}

	return nil
}

// GetByTripID retrieves the payment of a trip. Returns nil if none exists.
func (r *PaymentRepository) GetByTripID(ctx context.Context, tripID string) (*domain.Payment, error) {
	query := `
		SELECT id, trip_id, payer_id, payee_id, amount, commission_amount, net_amount,
			currency, commission_rate, status, created_at
		FROM payments WHERE trip_id = $1
	`

	var p domain.Payment
	var currency string
	err := r.q.QueryRowContext(ctx, query, tripID).Scan(
		&p.ID,
		&p.TripID,
		&p.PayerID,
		&p.PayeeID,
		&p.Amount.Amount,
		&p.CommissionAmount.Amount,
		&p.NetAmount.Amount,
		&currency,
		&p.CommissionRate,
		&p.Status,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	p.Amount.Currency = currency
	p.CommissionAmount.Currency = currency
	p.NetAmount.Currency = currency

	return &p, nil
}

// ExistsForTrip reports whether a payment is recorded for the trip.
func (r *PaymentRepository) ExistsForTrip(ctx context.Context, tripID string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE trip_id = $1)`, tripID,
	).Scan(&exists)
	return exists, err
}
