package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusRequested             TripStatus = "REQUESTED"
	TripStatusAccepted              TripStatus = "ACCEPTED"
	TripStatusPickupConfirmed       TripStatus = "PICKUP_CONFIRMED"
	TripStatusInProgress            TripStatus = "IN_PROGRESS"
	TripStatusDeliveryConfirmed     TripStatus = "DELIVERY_CONFIRMED"
	TripStatusCompleted             TripStatus = "COMPLETED"
	TripStatusCancelledByDriver     TripStatus = "CANCELLED_BY_DRIVER"
	TripStatusCancelledByCargoOwner TripStatus = "CANCELLED_BY_CARGO_OWNER"
	TripStatusRejected              TripStatus = "REJECTED"
)

// IsCancellation reports whether s is one of the cancelled states.
func (s TripStatus) IsCancellation() bool {
	return s == TripStatusCancelledByDriver || s == TripStatusCancelledByCargoOwner
}

// Trip is the operational record of one cargo movement.
type Trip struct {
	ID           string
	CargoID      string
	DriverID     string // empty until a driver accepts
	Status       TripStatus
	AgreedPrice  Money
	ActualPrice  *Money
	AcceptedAt   *time.Time
	PickedUpAt   *time.Time
	DeliveredAt  *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	Notes        string
	CancelReason string
	CreatedAt    time.Time
	Version      int // incremented on every committed transition
}

// FinalPrice is the actual price when recorded, otherwise the agreed price.
func (t *Trip) FinalPrice() Money {
	if t.ActualPrice != nil {
		return *t.ActualPrice
	}
	return t.AgreedPrice
}

// HasDriver reports whether a driver is assigned.
func (t *Trip) HasDriver() bool {
	return t.DriverID != ""
}

// TripEvent is an audit record of one committed transition.
type TripEvent struct {
	TripID     string
	FromStatus TripStatus
	ToStatus   TripStatus
	ActorID    string
	ActorRole  Role
	CreatedAt  time.Time
}
