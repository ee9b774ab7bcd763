// Package lifecycle holds the trip transition table. It performs no I/O.
package lifecycle

import (
	"errors"
	"fmt"

	"freight/internal/domain"
)

var (
	// ErrInvalidTransition is returned for edges absent from the table or whose guard fails.
	ErrInvalidTransition = errors.New("invalid trip transition")

	// ErrRoleNotPermitted is returned when the edge exists but the actor's role may not take it.
	ErrRoleNotPermitted = errors.New("role not permitted for transition")

	// ErrUnknownStatus is returned by Parse for unrecognised status strings.
	ErrUnknownStatus = errors.New("unknown trip status")
)

// Flags carries the facts a guard may need. The caller computes them from
// the loaded aggregate.
type Flags struct {
	CargoUnassigned bool
	DriverAssigned  bool
	DriverAvailable bool
}

// Edge is a directed pair of states.
type Edge struct {
	From domain.TripStatus
	To   domain.TripStatus
}

// Rule is the permission and precondition attached to an edge.
type Rule struct {
	Role  domain.Role
	Guard func(Flags) error
}

var (
	errCargoAssigned = errors.New("cargo already assigned")
	errDriverBusy    = errors.New("driver not available")
	errDriverMissing = errors.New("no driver assigned")
)

func requireAcceptable(f Flags) error {
	if !f.CargoUnassigned {
		return errCargoAssigned
	}
	if !f.DriverAvailable {
		return errDriverBusy
	}
	return nil
}

func requireDriver(f Flags) error {
	if !f.DriverAssigned {
		return errDriverMissing
	}
	return nil
}

// transitions is the trip state graph.
var transitions = map[Edge]Rule{
	{domain.TripStatusRequested, domain.TripStatusAccepted}:                    {Role: domain.RoleDriver, Guard: requireAcceptable},
	{domain.TripStatusRequested, domain.TripStatusRejected}:                    {Role: domain.RoleDriver},
	{domain.TripStatusAccepted, domain.TripStatusPickupConfirmed}:              {Role: domain.RoleDriver, Guard: requireDriver},
	{domain.TripStatusPickupConfirmed, domain.TripStatusInProgress}:            {Role: domain.RoleDriver, Guard: requireDriver},
	{domain.TripStatusPickupConfirmed, domain.TripStatusDeliveryConfirmed}:     {Role: domain.RoleDriver, Guard: requireDriver},
	{domain.TripStatusInProgress, domain.TripStatusDeliveryConfirmed}:          {Role: domain.RoleDriver, Guard: requireDriver},
	{domain.TripStatusDeliveryConfirmed, domain.TripStatusCompleted}:           {Role: domain.RoleAdministrator, Guard: requireDriver},
	{domain.TripStatusAccepted, domain.TripStatusCancelledByDriver}:            {Role: domain.RoleDriver},
	{domain.TripStatusPickupConfirmed, domain.TripStatusCancelledByDriver}:     {Role: domain.RoleDriver},
	{domain.TripStatusAccepted, domain.TripStatusCancelledByCargoOwner}:        {Role: domain.RoleCargoOwner},
	{domain.TripStatusPickupConfirmed, domain.TripStatusCancelledByCargoOwner}: {Role: domain.RoleCargoOwner},
}

var terminal = map[domain.TripStatus]bool{
	domain.TripStatusCompleted:             true,
	domain.TripStatusCancelledByDriver:     true,
	domain.TripStatusCancelledByCargoOwner: true,
	domain.TripStatusRejected:              true,
}

var all = []domain.TripStatus{
	domain.TripStatusRequested,
	domain.TripStatusAccepted,
	domain.TripStatusPickupConfirmed,
	domain.TripStatusInProgress,
	domain.TripStatusDeliveryConfirmed,
	domain.TripStatusCompleted,
	domain.TripStatusCancelledByDriver,
	domain.TripStatusCancelledByCargoOwner,
	domain.TripStatusRejected,
}

// Initial is the state every trip starts in.
const Initial = domain.TripStatusRequested

// Next validates moving from current to requested for an actor of the given role.
// It returns the new state or a typed failure.
func Next(current, requested domain.TripStatus, role domain.Role, flags Flags) (domain.TripStatus, error) {
	rule, ok := transitions[Edge{From: current, To: requested}]
	if !ok {
		return current, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, requested)
	}
	if rule.Role != role {
		return current, fmt.Errorf("%w: %s may not move %s -> %s", ErrRoleNotPermitted, role, current, requested)
	}
	if rule.Guard != nil {
		if err := rule.Guard(flags); err != nil {
			return current, fmt.Errorf("%w: %s -> %s: %v", ErrInvalidTransition, current, requested, err)
		}
	}
	return requested, nil
}

// IsTerminal reports whether s has no outgoing edges.
func IsTerminal(s domain.TripStatus) bool {
	return terminal[s]
}

// Edges returns a copy of the transition table.
func Edges() map[Edge]Rule {
	out := make(map[Edge]Rule, len(transitions))
	for e, r := range transitions {
		out[e] = r
	}
	return out
}

// States returns every known status in lifecycle order.
func States() []domain.TripStatus {
	out := make([]domain.TripStatus, len(all))
	copy(out, all)
	return out
}

// Parse converts a wire string to a known status.
func Parse(s string) (domain.TripStatus, error) {
	for _, st := range all {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}
