package domain

// Driver represents a driver in the system.
type Driver struct {
	ID              string
	Name            string
	Phone           string
	IsAvailable     bool
	CurrentLocation *GeoLocation
}
