package postgres

import (
	"context"
	"database/sql"
	"errors"

	"freight/internal/domain"
	"freight/internal/repository"
)

// CargoRepository reads and writes cargo requests.
type CargoRepository struct {
	q Querier
}

// NewCargoRepository creates a new PostgreSQL cargo repository.
func NewCargoRepository(db *sql.DB) *CargoRepository {
	return &CargoRepository{q: db}
}

// NewCargoRepositoryWithTx creates a cargo repository using a transaction.
func NewCargoRepositoryWithTx(tx *sql.Tx) *CargoRepository {
	return &CargoRepository{q: tx}
}

const cargoColumns = `id, owner_id, pickup_lat, pickup_lng, delivery_lat, delivery_lng, status, created_at`

// GetByID retrieves a cargo request by ID.
func (r *CargoRepository) GetByID(ctx context.Context, id string) (*domain.Cargo, error) {
	return r.get(ctx, `SELECT `+cargoColumns+` FROM cargos WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a cargo request and locks its row for the rest
// of the transaction, so two trips cannot claim it at once.
func (r *CargoRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Cargo, error) {
	return r.get(ctx, `SELECT `+cargoColumns+` FROM cargos WHERE id = $1 FOR UPDATE`, id)
}

func (r *CargoRepository) get(ctx context.Context, query string, id string) (*domain.Cargo, error) {
	var cargo domain.Cargo
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&cargo.ID,
		&cargo.OwnerID,
		&cargo.Pickup.Latitude,
		&cargo.Pickup.Longitude,
		&cargo.Delivery.Latitude,
		&cargo.Delivery.Longitude,
		&cargo.Status,
		&cargo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &cargo, nil
}

// UpdateStatus moves a cargo request from one status to another. It returns
// repository.ErrConflict when the stored status is no longer from.
func (r *CargoRepository) UpdateStatus(ctx context.Context, id string, from, to domain.CargoStatus) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE cargos SET status = $1 WHERE id = $2 AND status = $3`, to, id, from)
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
