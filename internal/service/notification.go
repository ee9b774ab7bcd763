package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"freight/internal/domain"
	"freight/internal/repository"
)

// Dispatcher delivers a single notification to its recipient.
type Dispatcher interface {
	Dispatch(ctx context.Context, n domain.Notification) error
}

// NotificationService handles notification delivery with bounded retries.
type NotificationService struct {
	dispatcher Dispatcher
	maxRetries int
	backoff    time.Duration
}

// NewNotificationService creates a new NotificationService. Each failed
// delivery is retried up to maxRetries times, waiting backoff, 2*backoff, ...
func NewNotificationService(dispatcher Dispatcher, maxRetries int, backoff time.Duration) *NotificationService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &NotificationService{
		dispatcher: dispatcher,
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

var transitionMessages = map[domain.TripStatus]struct {
	kind    domain.NotificationType
	title   string
	message string
}{
	domain.TripStatusAccepted:              {domain.NotificationTripAccepted, "Trip Accepted", "A driver has accepted your cargo"},
	domain.TripStatusRejected:              {domain.NotificationTripRejected, "Trip Rejected", "The driver declined your cargo request"},
	domain.TripStatusPickupConfirmed:       {domain.NotificationPickupConfirmed, "Cargo Picked Up", "Your cargo has been picked up"},
	domain.TripStatusInProgress:            {domain.NotificationTripInProgress, "Trip In Progress", "Your cargo is on its way"},
	domain.TripStatusDeliveryConfirmed:     {domain.NotificationDeliveryConfirmed, "Cargo Delivered", "Delivery has been confirmed"},
	domain.TripStatusCompleted:             {domain.NotificationTripCompleted, "Trip Completed", "The trip is complete and settlement has been recorded"},
	domain.TripStatusCancelledByDriver:     {domain.NotificationTripCancelled, "Trip Cancelled", "The driver has cancelled the trip"},
	domain.TripStatusCancelledByCargoOwner: {domain.NotificationTripCancelled, "Trip Cancelled", "The cargo owner has cancelled the trip"},
}

// NotifyTransition notifies every trip participant other than the actor.
func (s *NotificationService) NotifyTransition(ctx context.Context, agg *repository.TripAggregate, actorID string) {
	tmpl, ok := transitionMessages[agg.Trip.Status]
	if !ok {
		return
	}

	data := map[string]interface{}{
		"trip_id":  agg.Trip.ID,
		"cargo_id": agg.Cargo.ID,
		"status":   agg.Trip.Status,
	}
	if agg.Trip.CancelReason != "" && agg.Trip.Status.IsCancellation() {
		data["reason"] = agg.Trip.CancelReason
	}

	for _, recipient := range participants(agg) {
		if recipient == actorID {
			continue
		}
		_ = s.Send(ctx, domain.Notification{
			Type:        tmpl.kind,
			RecipientID: recipient,
			Title:       tmpl.title,
			Message:     tmpl.message,
			Data:        data,
		})
	}
}

// NotifySevereAdvisory warns the driver and the cargo owner about conditions on the route.
func (s *NotificationService) NotifySevereAdvisory(ctx context.Context, agg *repository.TripAggregate, adv domain.Advisory) {
	for _, recipient := range participants(agg) {
		_ = s.Send(ctx, domain.Notification{
			Type:        domain.NotificationSevereAdvisory,
			RecipientID: recipient,
			Title:       "Severe Route Advisory",
			Message:     fmt.Sprintf("Severe conditions reported on route: %s", adv.Description),
			Data: map[string]interface{}{
				"trip_id":     agg.Trip.ID,
				"description": adv.Description,
			},
		})
	}
}

// Send delivers a notification, retrying with exponential backoff. The final
// error is logged and returned; callers never roll anything back on it.
func (s *NotificationService) Send(ctx context.Context, notification domain.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	var err error
	delay := s.backoff
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				log.Printf("[NOTIFICATION] Giving up Type=%s, Recipient=%s: %v", notification.Type, notification.RecipientID, ctx.Err())
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if err = s.dispatcher.Dispatch(ctx, notification); err == nil {
			log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
				notification.Type, notification.RecipientID, notification.Title, notification.Message)
			return nil
		}
	}

	log.Printf("[NOTIFICATION] Failed Type=%s, Recipient=%s after %d attempts: %v",
		notification.Type, notification.RecipientID, s.maxRetries+1, err)
	return err
}

func participants(agg *repository.TripAggregate) []string {
	recipients := []string{agg.Cargo.OwnerID}
	if agg.Trip.DriverID != "" {
		recipients = append(recipients, agg.Trip.DriverID)
	}
	return recipients
}
