package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a write lost an optimistic version check.
	ErrConflict = errors.New("concurrent modification")

	// ErrPaymentExists is returned when a second payment is written for a trip.
	ErrPaymentExists = errors.New("payment already exists for trip")
)
