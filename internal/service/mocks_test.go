package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"freight/internal/domain"
	"freight/internal/geo"
	"freight/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRIP STORE
// ──────────────────────────────────────────────

// MockTripStore is an in-memory unit of work. With RowLocks set, Load and
// LoadDriver hold per-row locks on the trip, cargo and driver until commit or
// rollback, as SELECT ... FOR UPDATE does. Without it, only the conditional
// writes in SaveAtomically (trip version, cargo status, driver claim) protect them.
type MockTripStore struct {
	mu       sync.Mutex
	trips    map[string]*domain.Trip
	cargos   map[string]*domain.Cargo
	drivers  map[string]*domain.Driver
	payments map[string]*domain.Payment
	events   []domain.TripEvent
	rowLocks map[string]*sync.Mutex

	RowLocks bool

	// Counters for verification
	BeginCallCount    int32
	CommitCallCount   int32
	RollbackCallCount int32

	// Error injection
	BeginError  error
	LoadError   error
	SaveError   error
	CommitError error

	// AfterLoad and AfterLoadDriver run once the read is done, to widen race windows.
	AfterLoad       func()
	AfterLoadDriver func()
}

// NewMockTripStore creates a new mock trip store with row locking enabled.
func NewMockTripStore() *MockTripStore {
	return &MockTripStore{
		trips:    make(map[string]*domain.Trip),
		cargos:   make(map[string]*domain.Cargo),
		drivers:  make(map[string]*domain.Driver),
		payments: make(map[string]*domain.Payment),
		rowLocks: make(map[string]*sync.Mutex),
		RowLocks: true,
	}
}

// AddTrip adds a trip to the mock store.
func (s *MockTripStore) AddTrip(t *domain.Trip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips[t.ID] = t
}

// AddCargo adds a cargo request to the mock store.
func (s *MockTripStore) AddCargo(c *domain.Cargo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cargos[c.ID] = c
}

// AddDriver adds a driver to the mock store.
func (s *MockTripStore) AddDriver(d *domain.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[d.ID] = d
}

// GetTrip returns a copy of the stored trip for test assertions.
func (s *MockTripStore) GetTrip(id string) domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.trips[id]
}

// GetCargo returns a copy of the stored cargo for test assertions.
func (s *MockTripStore) GetCargo(id string) domain.Cargo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.cargos[id]
}

// GetDriver returns a copy of the stored driver for test assertions.
func (s *MockTripStore) GetDriver(id string) domain.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.drivers[id]
}

// GetPayment returns the payment recorded for a trip, if any.
func (s *MockTripStore) GetPayment(tripID string) *domain.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[tripID]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// CountPayments returns the number of payments across all trips.
func (s *MockTripStore) CountPayments() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}

// Events returns the audit trail.
func (s *MockTripStore) Events() []domain.TripEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TripEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *MockTripStore) Begin(ctx context.Context) (repository.TripTx, error) {
	atomic.AddInt32(&s.BeginCallCount, 1)
	if s.BeginError != nil {
		return nil, s.BeginError
	}
	return &mockTripTx{store: s}, nil
}

func (s *MockTripStore) Snapshot(ctx context.Context, tripID string) (*repository.TripAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregateLocked(tripID)
}

func (s *MockTripStore) aggregateLocked(tripID string) (*repository.TripAggregate, error) {
	trip, ok := s.trips[tripID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cargo, ok := s.cargos[trip.CargoID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	agg := &repository.TripAggregate{Trip: *trip, Cargo: *cargo}
	if trip.DriverID != "" {
		d, ok := s.drivers[trip.DriverID]
		if !ok {
			return nil, repository.ErrNotFound
		}
		cp := *d
		agg.Driver = &cp
	}
	return agg, nil
}

func (s *MockTripStore) rowLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.rowLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[key] = l
	}
	return l
}

type undo struct {
	trip    domain.Trip
	cargo   *domain.Cargo
	driver  *domain.Driver
	payment string
	events  int
}

type mockTripTx struct {
	store *MockTripStore
	held  map[string]*sync.Mutex
	order []string
	undo  *undo
	done  bool
}

// lock takes the row lock for key once per transaction.
func (t *mockTripTx) lock(key string) {
	if !t.store.RowLocks {
		return
	}
	if _, ok := t.held[key]; ok {
		return
	}
	l := t.store.rowLock(key)
	l.Lock()
	if t.held == nil {
		t.held = make(map[string]*sync.Mutex)
	}
	t.held[key] = l
	t.order = append(t.order, key)
}

func (t *mockTripTx) Load(ctx context.Context, tripID string) (*repository.TripAggregate, error) {
	if t.store.LoadError != nil {
		return nil, t.store.LoadError
	}

	t.lock("trip:" + tripID)

	t.store.mu.Lock()
	trip, ok := t.store.trips[tripID]
	var cargoID, driverID string
	if ok {
		cargoID, driverID = trip.CargoID, trip.DriverID
	}
	t.store.mu.Unlock()

	if ok {
		t.lock("cargo:" + cargoID)
		if driverID != "" {
			t.lock("driver:" + driverID)
		}
	}

	t.store.mu.Lock()
	agg, err := t.store.aggregateLocked(tripID)
	t.store.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if t.store.AfterLoad != nil {
		t.store.AfterLoad()
	}
	return agg, nil
}

func (t *mockTripTx) LoadDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	t.lock("driver:" + driverID)

	t.store.mu.Lock()
	d, ok := t.store.drivers[driverID]
	var cp domain.Driver
	if ok {
		cp = *d
	}
	t.store.mu.Unlock()

	if !ok {
		return nil, repository.ErrNotFound
	}
	if t.store.AfterLoadDriver != nil {
		t.store.AfterLoadDriver()
	}
	return &cp, nil
}

func (t *mockTripTx) PaymentExists(ctx context.Context, tripID string) (bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	_, ok := t.store.payments[tripID]
	return ok, nil
}

// SaveAtomically checks and applies the whole write set under the store
// mutex, remembering enough to undo it on rollback.
func (t *mockTripTx) SaveAtomically(ctx context.Context, m repository.Mutations) error {
	if t.store.SaveError != nil {
		return t.store.SaveError
	}

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.trips[m.Trip.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if current.Version != m.ExpectedVersion {
		return repository.ErrConflict
	}
	if m.Cargo != nil {
		if c, ok := s.cargos[m.Cargo.ID]; !ok || c.Status != m.ExpectedCargoStatus {
			return repository.ErrConflict
		}
	}
	if m.Driver != nil && m.ClaimDriver {
		if d, ok := s.drivers[m.Driver.ID]; !ok || !d.IsAvailable {
			return repository.ErrConflict
		}
	}
	if m.Payment != nil {
		if _, exists := s.payments[m.Payment.TripID]; exists {
			return repository.ErrPaymentExists
		}
	}

	u := &undo{trip: *current, events: len(s.events)}

	trip := *m.Trip
	trip.Version = m.ExpectedVersion + 1
	s.trips[trip.ID] = &trip

	if m.Cargo != nil {
		prev := *s.cargos[m.Cargo.ID]
		u.cargo = &prev
		cargo := *m.Cargo
		s.cargos[cargo.ID] = &cargo
	}
	if m.Driver != nil {
		if prev, ok := s.drivers[m.Driver.ID]; ok {
			cp := *prev
			u.driver = &cp
		}
		driver := *m.Driver
		s.drivers[driver.ID] = &driver
	}
	if m.Payment != nil {
		p := *m.Payment
		s.payments[p.TripID] = &p
		u.payment = p.TripID
	}
	if m.Event != nil {
		s.events = append(s.events, *m.Event)
	}

	t.undo = u
	return nil
}

func (t *mockTripTx) Commit() error {
	atomic.AddInt32(&t.store.CommitCallCount, 1)
	if t.store.CommitError != nil {
		return t.store.CommitError
	}
	t.undo = nil
	t.finish()
	return nil
}

func (t *mockTripTx) Rollback() error {
	if t.done {
		return nil
	}
	atomic.AddInt32(&t.store.RollbackCallCount, 1)

	if u := t.undo; u != nil {
		s := t.store
		s.mu.Lock()
		trip := u.trip
		s.trips[trip.ID] = &trip
		if u.cargo != nil {
			s.cargos[u.cargo.ID] = u.cargo
		}
		if u.driver != nil {
			s.drivers[u.driver.ID] = u.driver
		}
		if u.payment != "" {
			delete(s.payments, u.payment)
		}
		s.events = s.events[:u.events]
		s.mu.Unlock()
		t.undo = nil
	}

	t.finish()
	return nil
}

func (t *mockTripTx) finish() {
	t.done = true
	for i := len(t.order) - 1; i >= 0; i-- {
		t.held[t.order[i]].Unlock()
	}
	t.held, t.order = nil, nil
}

// ──────────────────────────────────────────────
// MOCK ACTOR DIRECTORY
// ──────────────────────────────────────────────

// MockActorDirectory is a mock implementation of ActorDirectory.
type MockActorDirectory struct {
	mu    sync.RWMutex
	roles map[string]domain.Role

	ResolveError error
}

// NewMockActorDirectory creates a new mock actor directory.
func NewMockActorDirectory() *MockActorDirectory {
	return &MockActorDirectory{roles: make(map[string]domain.Role)}
}

// Add registers an actor.
func (m *MockActorDirectory) Add(actorID string, role domain.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[actorID] = role
}

func (m *MockActorDirectory) ResolveRole(ctx context.Context, actorID string) (domain.Role, error) {
	if m.ResolveError != nil {
		return "", m.ResolveError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	role, ok := m.roles[actorID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return role, nil
}

// ──────────────────────────────────────────────
// MOCK COMMISSION PROVIDER
// ──────────────────────────────────────────────

// MockCommissionProvider returns a fixed rate.
type MockCommissionProvider struct {
	Rate  decimal.Decimal
	Error error

	CallCount int32
}

func (m *MockCommissionProvider) GetRate(ctx context.Context, key string) (decimal.Decimal, error) {
	atomic.AddInt32(&m.CallCount, 1)
	if m.Error != nil {
		return decimal.Zero, m.Error
	}
	return m.Rate, nil
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore keeps the newest fix per driver.
type MockLocationStore struct {
	mu        sync.Mutex
	locations map[string]domain.GeoLocation

	GetCallCount int32
	GetError     error
	UpdateError  error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{locations: make(map[string]domain.GeoLocation)}
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, loc domain.GeoLocation) (bool, error) {
	if m.UpdateError != nil {
		return false, m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.locations[driverID]; ok && !loc.Timestamp.After(cur.Timestamp) {
		return false, nil
	}
	m.locations[driverID] = loc
	return true, nil
}

func (m *MockLocationStore) GetLocation(ctx context.Context, driverID string) (*domain.GeoLocation, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	loc, ok := m.locations[driverID]
	if !ok {
		return nil, nil
	}
	return &loc, nil
}

// ──────────────────────────────────────────────
// MOCK DISPATCHER
// ──────────────────────────────────────────────

// MockDispatcher records delivered notifications. The first FailTimes calls
// fail with errDispatch; FailTimes < 0 fails every call.
type MockDispatcher struct {
	mu        sync.Mutex
	delivered []domain.Notification

	FailTimes int
	CallCount int32
}

var errDispatch = errors.New("broker unavailable")

func (m *MockDispatcher) Dispatch(ctx context.Context, n domain.Notification) error {
	call := atomic.AddInt32(&m.CallCount, 1)
	if m.FailTimes < 0 || int(call) <= m.FailTimes {
		return errDispatch
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivered = append(m.delivered, n)
	return nil
}

// Delivered returns a copy of delivered notifications.
func (m *MockDispatcher) Delivered() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, len(m.delivered))
	copy(out, m.delivered)
	return out
}

// ByType returns delivered notifications of one type.
func (m *MockDispatcher) ByType(kind domain.NotificationType) []domain.Notification {
	var out []domain.Notification
	for _, n := range m.Delivered() {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

// ──────────────────────────────────────────────
// MOCK ADVISOR
// ──────────────────────────────────────────────

// MockAdvisor returns a canned advisory. With Block set it waits for the
// context to expire.
type MockAdvisor struct {
	mu     sync.Mutex
	called []domain.GeoLocation

	Advisory domain.Advisory
	Error    error
	Block    bool
}

func (m *MockAdvisor) GetAdvisory(ctx context.Context, lat, lng float64) (domain.Advisory, error) {
	m.mu.Lock()
	m.called = append(m.called, domain.GeoLocation{Latitude: lat, Longitude: lng})
	m.mu.Unlock()

	if m.Block {
		<-ctx.Done()
		return domain.Advisory{}, ctx.Err()
	}
	if m.Error != nil {
		return domain.Advisory{}, m.Error
	}
	return m.Advisory, nil
}

// Calls returns the coordinates the advisor was asked about.
func (m *MockAdvisor) Calls() []domain.GeoLocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.GeoLocation, len(m.called))
	copy(out, m.called)
	return out
}

// ──────────────────────────────────────────────
// MOCK ROUTE ESTIMATOR
// ──────────────────────────────────────────────

// MockRouteEstimator returns a fixed estimate.
type MockRouteEstimator struct {
	Result    *geo.RouteEstimate
	Error     error
	Delay     time.Duration
}

func (m *MockRouteEstimator) Estimate(ctx context.Context, from, to domain.GeoLocation) (*geo.RouteEstimate, error) {
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	if m.Error != nil {
		return nil, m.Error
	}
	return m.Result, nil
}
