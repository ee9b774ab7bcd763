package domain

import "time"

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationTripAccepted      NotificationType = "TRIP_ACCEPTED"
	NotificationTripRejected      NotificationType = "TRIP_REJECTED"
	NotificationPickupConfirmed   NotificationType = "PICKUP_CONFIRMED"
	NotificationTripInProgress    NotificationType = "TRIP_IN_PROGRESS"
	NotificationDeliveryConfirmed NotificationType = "DELIVERY_CONFIRMED"
	NotificationTripCompleted     NotificationType = "TRIP_COMPLETED"
	NotificationTripCancelled     NotificationType = "TRIP_CANCELLED"
	NotificationSevereAdvisory    NotificationType = "SEVERE_ADVISORY"
)

// Notification represents a notification to be sent.
type Notification struct {
	ID          string                 `json:"id"`
	Type        NotificationType       `json:"type"`
	RecipientID string                 `json:"recipient_id"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Data        map[string]interface{} `json:"data,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// Advisory is a non-binding route or weather warning for a location.
type Advisory struct {
	IsSevere    bool   `json:"is_severe"`
	Description string `json:"description"`
}
