package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"freight/internal/domain"
	"freight/internal/repository"
)

// TripRepository reads and writes trip rows.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, cargo_id, driver_id, status, agreed_amount, currency, actual_amount,
	accepted_at, picked_up_at, delivered_at, completed_at, cancelled_at,
	notes, cancel_reason, created_at, version`

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	return r.get(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a trip and locks its row for the rest of the transaction.
func (r *TripRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Trip, error) {
	return r.get(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1 FOR UPDATE`, id)
}

func (r *TripRepository) get(ctx context.Context, query string, id string) (*domain.Trip, error) {
	var trip domain.Trip
	var driverID, notes, cancelReason sql.NullString
	var actualAmount decimal.NullDecimal
	var acceptedAt, pickedUpAt, deliveredAt, completedAt, cancelledAt sql.NullTime

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&trip.ID,
		&trip.CargoID,
		&driverID,
		&trip.Status,
		&trip.AgreedPrice.Amount,
		&trip.AgreedPrice.Currency,
		&actualAmount,
		&acceptedAt,
		&pickedUpAt,
		&deliveredAt,
		&completedAt,
		&cancelledAt,
		&notes,
		&cancelReason,
		&trip.CreatedAt,
		&trip.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	trip.DriverID = driverID.String
	trip.Notes = notes.String
	trip.CancelReason = cancelReason.String
	if actualAmount.Valid {
		trip.ActualPrice = &domain.Money{Amount: actualAmount.Decimal, Currency: trip.AgreedPrice.Currency}
	}
	trip.AcceptedAt = toTimePtr(acceptedAt)
	trip.PickedUpAt = toTimePtr(pickedUpAt)
	trip.DeliveredAt = toTimePtr(deliveredAt)
	trip.CompletedAt = toTimePtr(completedAt)
	trip.CancelledAt = toTimePtr(cancelledAt)

	return &trip, nil
}

// Update writes the trip if its stored version still equals expectedVersion,
// and bumps the version. A lost race returns repository.ErrConflict.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip, expectedVersion int) error {
	query := `
		UPDATE trips
		SET driver_id = $1, status = $2, actual_amount = $3,
			accepted_at = $4, picked_up_at = $5, delivered_at = $6, completed_at = $7, cancelled_at = $8,
			notes = $9, cancel_reason = $10, version = version + 1
		WHERE id = $11 AND version = $12
	`

	var actualAmount decimal.NullDecimal
	if trip.ActualPrice != nil {
		actualAmount = decimal.NullDecimal{Decimal: trip.ActualPrice.Amount, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		nullString(trip.DriverID),
		trip.Status,
		actualAmount,
		toNullTime(trip.AcceptedAt),
		toNullTime(trip.PickedUpAt),
		toNullTime(trip.DeliveredAt),
		toNullTime(trip.CompletedAt),
		toNullTime(trip.CancelledAt),
		nullString(trip.Notes),
		nullString(trip.CancelReason),
		trip.ID,
		expectedVersion,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrConflict
	}

	trip.Version = expectedVersion + 1
	return nil
}

// AppendEvent records a committed transition.
func (r *TripRepository) AppendEvent(ctx context.Context, e *domain.TripEvent) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO trip_events (trip_id, from_status, to_status, actor_id, actor_role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.TripID,
		e.FromStatus,
		e.ToStatus,
		e.ActorID,
		e.ActorRole,
		e.CreatedAt,
	)
	return err
}

func toTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
