package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Payment is the settlement record created when a trip completes.
type Payment struct {
	ID               string
	TripID           string
	PayerID          string // cargo owner
	PayeeID          string // driver
	Amount           Money
	CommissionAmount Money
	NetAmount        Money
	CommissionRate   decimal.Decimal // percent
	Status           PaymentStatus
	CreatedAt        time.Time
}
