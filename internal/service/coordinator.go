package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"

	"freight/internal/domain"
	"freight/internal/lifecycle"
	"freight/internal/repository"
	"freight/internal/settlement"
)

// Advisor looks up route and weather advisories for a location.
type Advisor interface {
	GetAdvisory(ctx context.Context, lat, lng float64) (domain.Advisory, error)
}

// TransitionPayload carries the optional inputs of a transition.
type TransitionPayload struct {
	Location    *domain.GeoLocation
	Reason      string
	Notes       string
	ActualPrice *domain.Money
}

// TripSnapshot is the committed state of a trip after a transition.
type TripSnapshot struct {
	Trip    domain.Trip
	Cargo   domain.Cargo
	Driver  *domain.Driver
	Payment *domain.Payment
}

// CoordinatorConfig holds the tunables of the coordinator.
type CoordinatorConfig struct {
	CommissionKey   string
	AdvisoryTimeout time.Duration
	RouteTimeout    time.Duration
}

// DefaultCoordinatorConfig returns the default coordinator configuration.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		CommissionKey:   CommissionKeyDefault,
		AdvisoryTimeout: 3 * time.Second,
		RouteTimeout:    3 * time.Second,
	}
}

// TripCoordinator drives trips through their lifecycle. Every transition
// commits trip, cargo, driver availability and payment together or not at all.
type TripCoordinator struct {
	store         repository.TripStore
	actors        repository.ActorDirectory
	locations     LocationStore
	commission    CommissionConfigProvider
	notifications *NotificationService
	advisor       Advisor
	routes        RouteEstimator
	cfg           CoordinatorConfig

	now func() time.Time
	wg  sync.WaitGroup
}

// NewTripCoordinator creates a new TripCoordinator. locations, advisor and
// routes may be nil; the features depending on them degrade.
func NewTripCoordinator(
	store repository.TripStore,
	actors repository.ActorDirectory,
	locations LocationStore,
	commission CommissionConfigProvider,
	notifications *NotificationService,
	advisor Advisor,
	routes RouteEstimator,
	cfg CoordinatorConfig,
) *TripCoordinator {
	if cfg.CommissionKey == "" {
		cfg.CommissionKey = CommissionKeyDefault
	}
	if cfg.AdvisoryTimeout <= 0 {
		cfg.AdvisoryTimeout = 3 * time.Second
	}
	if cfg.RouteTimeout <= 0 {
		cfg.RouteTimeout = 3 * time.Second
	}
	return &TripCoordinator{
		store:         store,
		actors:        actors,
		locations:     locations,
		commission:    commission,
		notifications: notifications,
		advisor:       advisor,
		routes:        routes,
		cfg:           cfg,
		now:           time.Now,
	}
}

// RequestTransition moves a trip to target on behalf of actorID.
func (c *TripCoordinator) RequestTransition(
	ctx context.Context,
	tripID, actorID string,
	target domain.TripStatus,
	payload TransitionPayload,
) (_ *TripSnapshot, err error) {
	if txn := newrelic.FromContext(ctx); txn != nil {
		defer txn.StartSegment("TripCoordinator/RequestTransition").End()
	}

	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if actorID == "" {
		return nil, ErrInvalidActorID
	}
	if payload.Location != nil {
		if err := payload.Location.Validate(); err != nil {
			return nil, err
		}
	}

	role, err := c.actors.ResolveRole(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown actor %s", ErrUnauthorized, actorID)
		}
		return nil, fmt.Errorf("%w: resolve actor: %v", ErrPersistence, err)
	}

	tx, err := c.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Rollback on error.
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	agg, err := tx.Load(ctx, tripID)
	if err != nil {
		return nil, storeError("load trip", err)
	}

	if err = authorize(agg, actorID, role); err != nil {
		return nil, err
	}

	// The only live-location read of this transition.
	liveLocation := c.snapshotLocation(ctx, driverOf(agg, actorID, role))

	flags := lifecycle.Flags{
		CargoUnassigned: agg.Cargo.IsUnassigned(),
		DriverAssigned:  agg.Trip.HasDriver(),
	}

	var acceptingDriver *domain.Driver
	if target == domain.TripStatusAccepted && role == domain.RoleDriver {
		acceptingDriver, err = tx.LoadDriver(ctx, actorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: no driver record for %s", ErrUnauthorized, actorID)
			}
			return nil, storeError("load driver", err)
		}
		flags.DriverAvailable = acceptingDriver.IsAvailable
	}

	next, err := lifecycle.Next(agg.Trip.Status, target, role, flags)
	if err != nil {
		if errors.Is(err, lifecycle.ErrRoleNotPermitted) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return nil, err
	}

	snapshot, m, err := c.apply(ctx, tx, agg, acceptingDriver, next, actorID, role, payload)
	if err != nil {
		return nil, err
	}

	if err = tx.SaveAtomically(ctx, m); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("trip %s: %w", tripID, err)
		case errors.Is(err, repository.ErrPaymentExists):
			return nil, fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
		default:
			return nil, fmt.Errorf("%w: save trip %s: %v", ErrPersistence, tripID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit trip %s: %v", ErrPersistence, tripID, err)
	}

	log.Printf("[COORDINATOR] trip %s %s -> %s by %s (%s)", tripID, agg.Trip.Status, next, actorID, role)

	c.afterCommit(ctx, snapshot, actorID, advisoryLocation(payload, liveLocation, agg))

	return snapshot, nil
}

// apply computes the new state of every part of the aggregate. agg is left untouched.
func (c *TripCoordinator) apply(
	ctx context.Context,
	tx repository.TripTx,
	agg *repository.TripAggregate,
	acceptingDriver *domain.Driver,
	next domain.TripStatus,
	actorID string,
	role domain.Role,
	payload TransitionPayload,
) (*TripSnapshot, repository.Mutations, error) {
	now := c.now().UTC()

	trip := agg.Trip
	cargo := agg.Cargo
	var driver *domain.Driver
	if agg.Driver != nil {
		d := *agg.Driver
		driver = &d
	}

	m := repository.Mutations{
		Trip:                &trip,
		ExpectedVersion:     agg.Trip.Version,
		ExpectedCargoStatus: agg.Cargo.Status,
	}

	trip.Status = next
	trip.Version = agg.Trip.Version + 1
	if payload.Notes != "" {
		if trip.Notes == "" {
			trip.Notes = payload.Notes
		} else {
			trip.Notes += "\n" + payload.Notes
		}
	}

	switch next {
	case domain.TripStatusAccepted:
		d := *acceptingDriver
		driver = &d
		trip.DriverID = driver.ID
		trip.AcceptedAt = &now
		cargo.Status = domain.CargoStatusAssigned
		driver.IsAvailable = false
		m.Cargo = &cargo
		m.Driver = driver
		m.ClaimDriver = true

	case domain.TripStatusPickupConfirmed:
		trip.PickedUpAt = &now
		cargo.Status = domain.CargoStatusPickedUp
		m.Cargo = &cargo

	case domain.TripStatusDeliveryConfirmed:
		if payload.ActualPrice != nil {
			if !payload.ActualPrice.SameCurrency(trip.AgreedPrice) {
				return nil, m, fmt.Errorf("%w: actual price in %s, agreed in %s",
					ErrCurrencyMismatch, payload.ActualPrice.Currency, trip.AgreedPrice.Currency)
			}
			price := *payload.ActualPrice
			trip.ActualPrice = &price
		}
		trip.DeliveredAt = &now
		cargo.Status = domain.CargoStatusDelivered
		m.Cargo = &cargo

	case domain.TripStatusCompleted:
		exists, err := tx.PaymentExists(ctx, trip.ID)
		if err != nil {
			return nil, m, storeError("check payment", err)
		}
		if exists {
			return nil, m, fmt.Errorf("%w: payment already recorded for trip %s", ErrInvalidTransition, trip.ID)
		}

		rate, err := c.commission.GetRate(ctx, c.cfg.CommissionKey)
		if err != nil {
			if !errors.Is(err, ErrExternalService) {
				err = fmt.Errorf("%w: %v", ErrExternalService, err)
			}
			return nil, m, err
		}

		result, err := settlement.SettleIn(trip.AgreedPrice.Currency, trip.FinalPrice(), rate)
		if err != nil {
			if errors.Is(err, settlement.ErrInvalidRate) {
				return nil, m, fmt.Errorf("%w: %v", ErrExternalService, err)
			}
			return nil, m, err
		}

		trip.CompletedAt = &now
		cargo.Status = domain.CargoStatusCompleted
		m.Cargo = &cargo
		if driver != nil {
			driver.IsAvailable = true
			m.Driver = driver
		}
		m.Payment = &domain.Payment{
			ID:               uuid.New().String(),
			TripID:           trip.ID,
			PayerID:          cargo.OwnerID,
			PayeeID:          trip.DriverID,
			Amount:           result.Price,
			CommissionAmount: result.Commission,
			NetAmount:        result.Net,
			CommissionRate:   result.RatePct,
			Status:           domain.PaymentStatusPending,
			CreatedAt:        now,
		}

	case domain.TripStatusCancelledByDriver, domain.TripStatusCancelledByCargoOwner:
		trip.CancelledAt = &now
		trip.CancelReason = payload.Reason
		cargo.Status = domain.CargoStatusCancelled
		m.Cargo = &cargo
		if driver != nil {
			driver.IsAvailable = true
			m.Driver = driver
		}

	case domain.TripStatusRejected:
		// The cargo stays PENDING and can be offered on a new trip.
		trip.CancelReason = payload.Reason
	}

	m.Event = &domain.TripEvent{
		TripID:     trip.ID,
		FromStatus: agg.Trip.Status,
		ToStatus:   next,
		ActorID:    actorID,
		ActorRole:  role,
		CreatedAt:  now,
	}

	return &TripSnapshot{
		Trip:    trip,
		Cargo:   cargo,
		Driver:  driver,
		Payment: m.Payment,
	}, m, nil
}

// afterCommit queues notifications and, for pickups, the advisory lookup.
// Nothing here can affect the committed transition.
func (c *TripCoordinator) afterCommit(ctx context.Context, snap *TripSnapshot, actorID string, loc domain.GeoLocation) {
	if c.notifications == nil {
		return
	}

	bg := context.WithoutCancel(ctx)
	agg := &repository.TripAggregate{Trip: snap.Trip, Cargo: snap.Cargo, Driver: snap.Driver}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.notifications.NotifyTransition(bg, agg, actorID)
	}()

	if snap.Trip.Status != domain.TripStatusPickupConfirmed || c.advisor == nil {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		actx, cancel := context.WithTimeout(bg, c.cfg.AdvisoryTimeout)
		defer cancel()

		adv, err := c.advisor.GetAdvisory(actx, loc.Latitude, loc.Longitude)
		if err != nil {
			log.Printf("[COORDINATOR] %s: advisory for trip %s unavailable: %v", KindExternalService, snap.Trip.ID, err)
			return
		}
		if adv.IsSevere {
			c.notifications.NotifySevereAdvisory(bg, agg, adv)
		}
	}()
}

// Wait blocks until every post-commit task has finished.
func (c *TripCoordinator) Wait() {
	c.wg.Wait()
}

func (c *TripCoordinator) snapshotLocation(ctx context.Context, driverID string) *domain.GeoLocation {
	if c.locations == nil || driverID == "" {
		return nil
	}
	loc, err := c.locations.GetLocation(ctx, driverID)
	if err != nil {
		log.Printf("[COORDINATOR] live location for driver %s unavailable: %v", driverID, err)
		return nil
	}
	return loc
}

// authorize checks that the actor is a party of record to the trip in its role.
// Any driver may act on a trip still waiting for one.
func authorize(agg *repository.TripAggregate, actorID string, role domain.Role) error {
	switch role {
	case domain.RoleAdministrator:
		return nil
	case domain.RoleDriver:
		if agg.Trip.HasDriver() {
			if agg.Trip.DriverID == actorID {
				return nil
			}
		} else if agg.Trip.Status == domain.TripStatusRequested {
			return nil
		}
	case domain.RoleCargoOwner:
		if agg.Cargo.OwnerID == actorID {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s is not a party to trip %s", ErrUnauthorized, role, actorID, agg.Trip.ID)
}

func driverOf(agg *repository.TripAggregate, actorID string, role domain.Role) string {
	if agg.Trip.HasDriver() {
		return agg.Trip.DriverID
	}
	if role == domain.RoleDriver {
		return actorID
	}
	return ""
}

// advisoryLocation prefers the reported position, then the live fix, then the pickup point.
func advisoryLocation(payload TransitionPayload, live *domain.GeoLocation, agg *repository.TripAggregate) domain.GeoLocation {
	if payload.Location != nil {
		return *payload.Location
	}
	if live != nil {
		return *live
	}
	return agg.Cargo.Pickup
}

func storeError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
