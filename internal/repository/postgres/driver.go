package postgres

import (
	"context"
	"database/sql"
	"errors"

	"freight/internal/domain"
	"freight/internal/repository"
)

// DriverRepository reads and writes drivers.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

const driverColumns = `id, COALESCE(name, ''), COALESCE(phone, ''), is_available,
	location_lat, location_lng, location_at, location_speed, location_heading`

// GetByID retrieves a driver by ID, including the last persisted location.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	return r.get(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a driver and locks the row for the rest of the
// transaction. Concurrent accepts by one driver queue here.
func (r *DriverRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Driver, error) {
	return r.get(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1 FOR UPDATE`, id)
}

func (r *DriverRepository) get(ctx context.Context, query string, id string) (*domain.Driver, error) {
	var driver domain.Driver
	var lat, lng, speed, heading sql.NullFloat64
	var at sql.NullTime

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.IsAvailable,
		&lat,
		&lng,
		&at,
		&speed,
		&heading,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if lat.Valid && lng.Valid {
		loc := domain.GeoLocation{Latitude: lat.Float64, Longitude: lng.Float64, Timestamp: at.Time}
		if speed.Valid {
			loc.Speed = &speed.Float64
		}
		if heading.Valid {
			loc.Heading = &heading.Float64
		}
		driver.CurrentLocation = &loc
	}

	return &driver, nil
}

// Claim marks an available driver busy. It returns repository.ErrConflict
// when the driver is already on another trip.
func (r *DriverRepository) Claim(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE drivers SET is_available = FALSE WHERE id = $1 AND is_available`, id)
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

	return nil
}

// UpdateAvailability flips the availability flag of a driver.
func (r *DriverRepository) UpdateAvailability(ctx context.Context, id string, available bool) error {
	result, err := r.q.ExecContext(ctx, `UPDATE drivers SET is_available = $1 WHERE id = $2`, available, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
