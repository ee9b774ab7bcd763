package domain

// Role is the capacity in which an actor requests a transition.
type Role string

const (
	RoleDriver        Role = "DRIVER"
	RoleCargoOwner    Role = "CARGO_OWNER"
	RoleAdministrator Role = "ADMINISTRATOR"
)
