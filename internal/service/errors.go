package service

import (
	"errors"

	"freight/internal/domain"
	"freight/internal/lifecycle"
	"freight/internal/repository"
)

var (
	// ErrNotFound is returned when the trip or one of its parts does not exist.
	ErrNotFound = repository.ErrNotFound

	// ErrUnauthorized is returned when the actor may not request the transition.
	ErrUnauthorized = errors.New("actor not authorized for this transition")

	// ErrInvalidTransition is returned when the edge is not in the transition table or its guard fails.
	ErrInvalidTransition = lifecycle.ErrInvalidTransition

	// ErrCurrencyMismatch is returned when monetary values of different currencies meet.
	ErrCurrencyMismatch = domain.ErrCurrencyMismatch

	// ErrConcurrencyConflict is returned when another transition committed first.
	ErrConcurrencyConflict = repository.ErrConflict

	// ErrExternalService is returned when a collaborator outside the transaction failed.
	ErrExternalService = errors.New("external service failure")

	// ErrPersistence is returned when the store failed to load or save.
	ErrPersistence = errors.New("persistence failure")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidActorID is returned when actor ID is empty.
	ErrInvalidActorID = errors.New("invalid actor id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = domain.ErrInvalidCoordinates
)

// Kind is the coarse classification of a service error.
type Kind string

const (
	KindNone                Kind = ""
	KindNotFound            Kind = "NotFound"
	KindUnauthorized        Kind = "Unauthorized"
	KindInvalidTransition   Kind = "InvalidTransition"
	KindCurrencyMismatch    Kind = "CurrencyMismatch"
	KindConcurrencyConflict Kind = "ConcurrencyConflict"
	KindExternalService     Kind = "ExternalServiceFailure"
	KindPersistence         Kind = "PersistenceFailure"
	KindInvalidArgument     Kind = "InvalidArgument"
)

// KindOf classifies err. Unrecognized errors count as persistence failures.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrCurrencyMismatch):
		return KindCurrencyMismatch
	case errors.Is(err, ErrConcurrencyConflict):
		return KindConcurrencyConflict
	case errors.Is(err, ErrExternalService):
		return KindExternalService
	case errors.Is(err, ErrInvalidTripID),
		errors.Is(err, ErrInvalidActorID),
		errors.Is(err, ErrInvalidDriverID),
		errors.Is(err, ErrInvalidLocation),
		errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrInvalidCurrency):
		return KindInvalidArgument
	default:
		return KindPersistence
	}
}
