package domain

import "time"

// CargoStatus mirrors the lifecycle stage of the cargo's trip.
type CargoStatus string

const (
	CargoStatusPending   CargoStatus = "PENDING"
	CargoStatusAssigned  CargoStatus = "ASSIGNED"
	CargoStatusPickedUp  CargoStatus = "PICKED_UP"
	CargoStatusDelivered CargoStatus = "DELIVERED"
	CargoStatusCompleted CargoStatus = "COMPLETED"
	CargoStatusCancelled CargoStatus = "CANCELLED"
)

// Cargo is a shipment request owned by a cargo owner.
type Cargo struct {
	ID        string
	OwnerID   string
	Pickup    GeoLocation
	Delivery  GeoLocation
	Status    CargoStatus
	CreatedAt time.Time
}

// IsUnassigned reports whether no trip has claimed the cargo yet.
func (c *Cargo) IsUnassigned() bool {
	return c.Status == CargoStatusPending
}
