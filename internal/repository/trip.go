package repository

import (
	"context"

	"freight/internal/domain"
)

// TripAggregate is a fully materialized trip with its cargo and, when
// assigned, its driver.
type TripAggregate struct {
	Trip   domain.Trip
	Cargo  domain.Cargo
	Driver *domain.Driver
}

// Mutations is the full write set of one transition. Nil members are left untouched.
type Mutations struct {
	// Trip is written only if its stored version still equals ExpectedVersion.
	Trip            *domain.Trip
	ExpectedVersion int

	// Cargo is written only if its stored status still equals ExpectedCargoStatus.
	Cargo               *domain.Cargo
	ExpectedCargoStatus domain.CargoStatus

	// With ClaimDriver set, Driver is marked busy only if it is still available.
	Driver      *domain.Driver
	ClaimDriver bool

	Payment *domain.Payment
	Event   *domain.TripEvent
}

// TripStore opens units of work over trip aggregates.
type TripStore interface {
	// Begin starts a transaction.
	Begin(ctx context.Context) (TripTx, error)

	// Snapshot reads an aggregate outside any transaction, without locking.
	Snapshot(ctx context.Context, tripID string) (*TripAggregate, error)
}

// TripTx is a unit of work scoped to one transaction.
type TripTx interface {
	// Load materializes the aggregate and locks the trip, cargo and driver rows
	// until commit or rollback.
	Load(ctx context.Context, tripID string) (*TripAggregate, error)

	// LoadDriver reads a driver that is not yet attached to the trip and locks it
	// until commit or rollback.
	LoadDriver(ctx context.Context, driverID string) (*domain.Driver, error)

	// PaymentExists reports whether a payment is already recorded for the trip.
	PaymentExists(ctx context.Context, tripID string) (bool, error)

	// SaveAtomically writes every mutation or none.
	SaveAtomically(ctx context.Context, m Mutations) error

	Commit() error
	Rollback() error
}
