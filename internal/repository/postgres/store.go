package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"freight/internal/domain"
	"freight/internal/repository"
)

// TripStore is the PostgreSQL unit of work over trip aggregates.
type TripStore struct {
	db      *sql.DB
	trips   *TripRepository
	cargos  *CargoRepository
	drivers *DriverRepository
}

// NewTripStore creates a new TripStore.
func NewTripStore(db *sql.DB) *TripStore {
	return &TripStore{
		db:      db,
		trips:   NewTripRepository(db),
		cargos:  NewCargoRepository(db),
		drivers: NewDriverRepository(db),
	}
}

var _ repository.TripStore = (*TripStore)(nil)

// Begin starts a read-committed transaction. Row locks taken by Load keep
// concurrent transitions on the same trip serialized.
func (s *TripStore) Begin(ctx context.Context) (repository.TripTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	return &tripTx{
		tx:       tx,
		trips:    NewTripRepositoryWithTx(tx),
		cargos:   NewCargoRepositoryWithTx(tx),
		drivers:  NewDriverRepositoryWithTx(tx),
		payments: NewPaymentRepositoryWithTx(tx),
	}, nil
}

// Snapshot reads the aggregate without a transaction.
func (s *TripStore) Snapshot(ctx context.Context, tripID string) (*repository.TripAggregate, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return assemble(ctx, trip, s.cargos, s.drivers, false)
}

type tripTx struct {
	tx       *sql.Tx
	trips    *TripRepository
	cargos   *CargoRepository
	drivers  *DriverRepository
	payments *PaymentRepository
}

func (t *tripTx) Load(ctx context.Context, tripID string) (*repository.TripAggregate, error) {
	trip, err := t.trips.GetByIDForUpdate(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return assemble(ctx, trip, t.cargos, t.drivers, true)
}

// LoadDriver locks the driver row, so the availability read here holds until commit.
func (t *tripTx) LoadDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	return t.drivers.GetByIDForUpdate(ctx, driverID)
}

func (t *tripTx) PaymentExists(ctx context.Context, tripID string) (bool, error) {
	return t.payments.ExistsForTrip(ctx, tripID)
}

// SaveAtomically applies the write set in a fixed order: trip first so a
// stale version aborts before anything else is touched.
func (t *tripTx) SaveAtomically(ctx context.Context, m repository.Mutations) error {
	if m.Trip != nil {
		if err := t.trips.Update(ctx, m.Trip, m.ExpectedVersion); err != nil {
			return err
		}
	}

	if m.Cargo != nil {
		if err := t.cargos.UpdateStatus(ctx, m.Cargo.ID, m.ExpectedCargoStatus, m.Cargo.Status); err != nil {
			return fmt.Errorf("update cargo: %w", err)
		}
	}

	if m.Driver != nil {
		var err error
		if m.ClaimDriver {
			err = t.drivers.Claim(ctx, m.Driver.ID)
		} else {
			err = t.drivers.UpdateAvailability(ctx, m.Driver.ID, m.Driver.IsAvailable)
		}
		if err != nil {
			return fmt.Errorf("update driver: %w", err)
		}
	}

	if m.Payment != nil {
		if err := t.payments.Create(ctx, m.Payment); err != nil {
			return err
		}
	}

	if m.Event != nil {
		if err := t.trips.AppendEvent(ctx, m.Event); err != nil {
			return fmt.Errorf("append event: %w", err)
		}
	}

	return nil
}

func (t *tripTx) Commit() error {
	return t.tx.Commit()
}

// Rollback is safe to call after Commit.
func (t *tripTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// assemble loads the cargo and driver of a trip. With lock set the rows are
// locked in trip, cargo, driver order, the same order every transition uses.
func assemble(ctx context.Context, trip *domain.Trip, cargos *CargoRepository, drivers *DriverRepository, lock bool) (*repository.TripAggregate, error) {
	getCargo, getDriver := cargos.GetByID, drivers.GetByID
	if lock {
		getCargo, getDriver = cargos.GetByIDForUpdate, drivers.GetByIDForUpdate
	}

	cargo, err := getCargo(ctx, trip.CargoID)
	if err != nil {
		return nil, fmt.Errorf("load cargo %s: %w", trip.CargoID, err)
	}

	agg := &repository.TripAggregate{Trip: *trip, Cargo: *cargo}

	if trip.HasDriver() {
		driver, err := getDriver(ctx, trip.DriverID)
		if err != nil {
			return nil, fmt.Errorf("load driver %s: %w", trip.DriverID, err)
		}
		agg.Driver = driver
	}

	return agg, nil
}
