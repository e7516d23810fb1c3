package quotes

import (
	"context"
	"errors"
	"testing"
	"time"

	"charter-booking/internal/models"
	"charter-booking/internal/modules/allocation"

	"github.com/stretchr/testify/assert"
)

// --- In-memory fakes ---

type fakeQuoteRepo struct {
	quotes map[string]*models.Quote
	stops  map[string][]models.ItineraryStop
}

func newFakeQuoteRepo() *fakeQuoteRepo {
	return &fakeQuoteRepo{
		quotes: map[string]*models.Quote{},
		stops:  map[string][]models.ItineraryStop{},
	}
}

func (r *fakeQuoteRepo) Create(ctx context.Context, userID string, req models.CreateQuoteRequest, tripStart, tripEnd *time.Time) (*models.Quote, error) {
	q := &models.Quote{
		ID:               "q-new",
		UserID:           userID,
		TripType:         req.TripType,
		Status:           models.StatusDraft,
		PassengerCount:   req.PassengerCount,
		SelectedVehicles: req.SelectedVehicles,
		AmenityIDs:       req.AmenityIDs,
		TripStartAt:      tripStart,
		TripEndAt:        tripEnd,
	}
	r.quotes[q.ID] = q
	return q, nil
}

func (r *fakeQuoteRepo) FindByID(ctx context.Context, quoteID string) (*models.Quote, error) {
	q, ok := r.quotes[quoteID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *q
	return &copied, nil
}

func (r *fakeQuoteRepo) ListByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Quote, int, error) {
	var out []*models.Quote
	for _, q := range r.quotes {
		if q.UserID == userID {
			out = append(out, q)
		}
	}
	return out, len(out), nil
}

func (r *fakeQuoteRepo) ListByStatus(ctx context.Context, status models.QuoteStatus, page, limit int) ([]*models.Quote, int, error) {
	var out []*models.Quote
	for _, q := range r.quotes {
		if q.Status == status {
			out = append(out, q)
		}
	}
	return out, len(out), nil
}

func (r *fakeQuoteRepo) ListStops(ctx context.Context, quoteID string) ([]models.ItineraryStop, error) {
	return r.stops[quoteID], nil
}

func (r *fakeQuoteRepo) UpdateEditable(ctx context.Context, quoteID string, req models.UpdateQuoteRequest, tripStart, tripEnd *time.Time) (*models.Quote, error) {
	q, ok := r.quotes[quoteID]
	if !ok || !models.IsEditable(q.Status) {
		return nil, models.ErrQuoteNotEditable
	}
	if req.PassengerCount != nil {
		q.PassengerCount = *req.PassengerCount
	}
	if req.SelectedVehicles != nil {
		q.SelectedVehicles = req.SelectedVehicles
	}
	if tripStart != nil {
		q.TripStartAt = tripStart
		q.TripEndAt = tripEnd
	}
	copied := *q
	return &copied, nil
}

func (r *fakeQuoteRepo) UpdateStatus(ctx context.Context, quoteID string, from []models.QuoteStatus, to models.QuoteStatus, reason *string) error {
	q, ok := r.quotes[quoteID]
	if !ok {
		return models.ErrInvalidTransition
	}
	for _, f := range from {
		if q.Status == f {
			q.Status = to
			q.RejectionReason = reason
			return nil
		}
	}
	return models.ErrInvalidTransition
}

func (r *fakeQuoteRepo) ApplyQuoting(ctx context.Context, quoteID, driverID string, pricing models.PriceBreakdown, quotedAt time.Time) error {
	q, ok := r.quotes[quoteID]
	if !ok || !isQuotable(q.Status) {
		return models.ErrInvalidTransition
	}
	q.Status = models.StatusQuoted
	q.AssignedDriverID = &driverID
	q.Pricing = &pricing
	q.QuotedAt = &quotedAt
	return nil
}

func (r *fakeQuoteRepo) MarkPaid(ctx context.Context, quoteID string) error {
	q, ok := r.quotes[quoteID]
	if !ok || q.Status != models.StatusQuoted {
		return models.ErrInvalidTransition
	}
	q.Status = models.StatusPaid
	return nil
}

func (r *fakeQuoteRepo) ExpireIfStillQuoted(ctx context.Context, quoteID string) (bool, error) {
	q, ok := r.quotes[quoteID]
	if !ok || q.Status != models.StatusQuoted {
		return false, nil
	}
	q.Status = models.StatusExpired
	return true, nil
}

type fakeAllocationRepo struct {
	bookedDrivers  []string
	bookedVehicles []string
	drivers        map[string]*models.Driver
	assignable     []*models.Driver
	touched        map[string]time.Time
}

func newFakeAllocationRepo() *fakeAllocationRepo {
	return &fakeAllocationRepo{
		drivers: map[string]*models.Driver{},
		touched: map[string]time.Time{},
	}
}

func (r *fakeAllocationRepo) FindBookedDriverIDsInDateRange(ctx context.Context, start, end time.Time, excludeQuoteID string) ([]string, error) {
	return r.bookedDrivers, nil
}

func (r *fakeAllocationRepo) FindReservedVehicleIDsInDateRange(ctx context.Context, start, end time.Time, excludeQuoteID string) ([]string, error) {
	return r.bookedVehicles, nil
}

func (r *fakeAllocationRepo) FindDraftHeldVehicleIDs(ctx context.Context, createdAfter time.Time, excludeQuoteID string) ([]string, error) {
	return nil, nil
}

func (r *fakeAllocationRepo) FindDraftHeldDriverIDs(ctx context.Context, createdAfter time.Time, excludeQuoteID string) ([]string, error) {
	return nil, nil
}

func (r *fakeAllocationRepo) FindDriverByID(ctx context.Context, driverID string) (*models.Driver, error) {
	d, ok := r.drivers[driverID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return d, nil
}

func (r *fakeAllocationRepo) ListAssignableDrivers(ctx context.Context) ([]*models.Driver, error) {
	return r.assignable, nil
}

func (r *fakeAllocationRepo) TouchDriverLastAssigned(ctx context.Context, driverID string, at time.Time) error {
	r.touched[driverID] = at
	return nil
}

type fakePricingRepo struct {
	config    *models.PricingConfig
	vehicles  map[string]*models.Vehicle
	amenities []*models.Amenity
}

func (r *fakePricingRepo) FindActive(ctx context.Context) (*models.PricingConfig, error) {
	if r.config == nil {
		return nil, models.ErrNoActivePricingConfig
	}
	return r.config, nil
}

func (r *fakePricingRepo) Create(ctx context.Context, req models.CreatePricingConfigRequest) (*models.PricingConfig, error) {
	return nil, errors.New("not implemented")
}

func (r *fakePricingRepo) ListVersions(ctx context.Context, limit int) ([]*models.PricingConfig, error) {
	return nil, nil
}

func (r *fakePricingRepo) FindVehiclesByIDs(ctx context.Context, ids []string) (map[string]*models.Vehicle, error) {
	out := map[string]*models.Vehicle{}
	for _, id := range ids {
		v, ok := r.vehicles[id]
		if !ok {
			return nil, models.ErrNotFound
		}
		out[id] = v
	}
	return out, nil
}

func (r *fakePricingRepo) FindAmenitiesByIDs(ctx context.Context, ids []string) ([]*models.Amenity, error) {
	return r.amenities, nil
}

type fakeReservationRepo struct {
	created []*models.Reservation
}

func (r *fakeReservationRepo) Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error) {
	res.ID = "res-1"
	r.created = append(r.created, res)
	return res, nil
}

func (r *fakeReservationRepo) FindByID(ctx context.Context, reservationID string) (*models.Reservation, error) {
	return nil, models.ErrNotFound
}

func (r *fakeReservationRepo) FindByQuoteID(ctx context.Context, quoteID string) (*models.Reservation, error) {
	return nil, models.ErrNotFound
}

func (r *fakeReservationRepo) ListByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Reservation, int, error) {
	return nil, 0, nil
}

type fakeScheduler struct {
	scheduled   map[string]time.Time
	canceled    []string
	scheduleErr error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: map[string]time.Time{}}
}

func (s *fakeScheduler) ScheduleExpiry(ctx context.Context, quoteID string, quotedAt time.Time) error {
	if s.scheduleErr != nil {
		return s.scheduleErr
	}
	s.scheduled[quoteID] = quotedAt
	return nil
}

func (s *fakeScheduler) CancelExpiry(ctx context.Context, quoteID string) error {
	s.canceled = append(s.canceled, quoteID)
	return nil
}

type fakePayments struct {
	chargedAmount float64
	chargeErr     error
}

func (p *fakePayments) Charge(ctx context.Context, userID string, amount float64, currency, paymentMethodID string) (string, error) {
	if p.chargeErr != nil {
		return "", p.chargeErr
	}
	p.chargedAmount = amount
	return "pi_test_123", nil
}

type fakeDocuments struct{ rendered int }

func (d *fakeDocuments) RenderQuoteDocument(ctx context.Context, quote *models.Quote, driver *models.Driver) ([]byte, error) {
	d.rendered++
	return []byte("doc"), nil
}

type fakeEmails struct {
	issued   int
	receipts int
	expired  int
}

func (e *fakeEmails) SendQuoteIssued(ctx context.Context, userID string, quote *models.Quote) error {
	e.issued++
	return nil
}

func (e *fakeEmails) SendPaymentReceipt(ctx context.Context, userID string, res *models.Reservation) error {
	e.receipts++
	return nil
}

func (e *fakeEmails) SendQuoteExpired(ctx context.Context, userID string, quote *models.Quote) error {
	e.expired++
	return nil
}

type fakeNotifier struct{ events []string }

func (n *fakeNotifier) EmitQuoteEvent(ctx context.Context, event, quoteID string) error {
	n.events = append(n.events, event)
	return nil
}

// --- Fixture ---

type serviceFixture struct {
	svc       *Service
	repo      *fakeQuoteRepo
	alloc     *fakeAllocationRepo
	pricing   *fakePricingRepo
	resRepo   *fakeReservationRepo
	scheduler *fakeScheduler
	payments  *fakePayments
	documents *fakeDocuments
	emails    *fakeEmails
	notifier  *fakeNotifier
	now       time.Time
}

var fixtureNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		repo:      newFakeQuoteRepo(),
		alloc:     newFakeAllocationRepo(),
		pricing:   &fakePricingRepo{vehicles: map[string]*models.Vehicle{}},
		resRepo:   &fakeReservationRepo{},
		scheduler: newFakeScheduler(),
		payments:  &fakePayments{},
		documents: &fakeDocuments{},
		emails:    &fakeEmails{},
		notifier:  &fakeNotifier{},
		now:       fixtureNow,
	}
	f.svc = NewService(Deps{
		Repo:        f.repo,
		Reservation: f.resRepo,
		Allocation:  f.alloc,
		Conflicts:   allocation.NewDetector(f.alloc, 30*time.Minute),
		Pricing:     f.pricing,
		Scheduler:   f.scheduler,
		Payments:    f.payments,
		Documents:   f.documents,
		Emails:      f.emails,
		Notifier:    f.notifier,
	})
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *serviceFixture) seedQuotableQuote() *models.Quote {
	q := &models.Quote{
		ID:                  "q1",
		UserID:              "u1",
		TripType:            models.TripOneWay,
		Status:              models.StatusSubmitted,
		PassengerCount:      20,
		SelectedVehicles:    []models.SelectedVehicle{{VehicleID: "v1", Quantity: 2}},
		OutboundDistanceKm:  f64(200),
		OutboundDurationHrs: f64(4),
	}
	f.repo.quotes[q.ID] = q
	start := time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)
	f.repo.stops[q.ID] = []models.ItineraryStop{
		{Leg: models.LegOutbound, Role: models.RolePickup, ArriveAt: start},
		{Leg: models.LegOutbound, Role: models.RoleDropoff, ArriveAt: start.Add(4 * time.Hour)},
	}
	f.pricing.config = &models.PricingConfig{
		FuelPricePerLiter:   2.0,
		AvgDriverHourlyRate: 500,
		TaxPercent:          10,
		NightChargeRate:     300,
		NightStartHour:      22,
		NightEndHour:        6,
	}
	f.pricing.vehicles["v1"] = &models.Vehicle{
		ID:                   "v1",
		BaseFare:             1000,
		FuelConsumptionPerKm: 0.25,
		MaintenanceCostPerKm: 0.5,
	}
	f.alloc.drivers["d1"] = &models.Driver{
		ID: "d1", Status: models.DriverAvailable, IsOnboarded: true, Salary: 650,
	}
	return q
}

func f64(v float64) *float64 { return &v }

// --- AssignDriver ---

func TestAssignDriver_ExplicitDriver(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotableQuote()

	quote, err := f.svc.AssignDriver(context.Background(), "q1", models.AssignDriverRequest{DriverID: "d1"})
	assert.NoError(t, err)
	assert.Equal(t, models.StatusQuoted, quote.Status)
	assert.Equal(t, "d1", *quote.AssignedDriverID)
	assert.NotNil(t, quote.QuotedAt)
	assert.Equal(t, fixtureNow, *quote.QuotedAt)

	// Driver charge uses the driver's actual rate, not the config average:
	// 4h x 650 = 2600 instead of 4h x 500 = 2000.
	assert.Equal(t, 2600.0, quote.Pricing.DriverCharge)
	assert.Equal(t, 650.0, quote.Pricing.DriverRateAtTime)
	// base 2000 + distance 200 + driver 2600 + maintenance 200 = 5000; +10% tax.
	assert.Equal(t, 5500.0, quote.Pricing.Total)

	// Expiry armed keyed to quotedAt; side effects ran.
	assert.Equal(t, fixtureNow, f.scheduler.scheduled["q1"])
	assert.Equal(t, fixtureNow, f.alloc.touched["d1"])
	assert.Equal(t, 1, f.documents.rendered)
	assert.Equal(t, 1, f.emails.issued)
	assert.Contains(t, f.notifier.events, "quote.quoted")
}

func TestAssignDriver_AutoPickSkipsBookedAndIneligible(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotableQuote()

	// Fairness-ordered candidates: d-booked is committed elsewhere, d-blocked
	// fails eligibility, d-free is the first eligible unbooked driver.
	f.alloc.bookedDrivers = []string{"d-booked"}
	f.alloc.assignable = []*models.Driver{
		{ID: "d-booked", Status: models.DriverAvailable, IsOnboarded: true, Salary: 400},
		{ID: "d-blocked", Status: models.DriverSuspended, IsOnboarded: true, Salary: 400},
		{ID: "d-free", Status: models.DriverAvailable, IsOnboarded: true, Salary: 500},
	}

	quote, err := f.svc.AssignDriver(context.Background(), "q1", models.AssignDriverRequest{})
	assert.NoError(t, err)
	assert.Equal(t, "d-free", *quote.AssignedDriverID)
}

func TestAssignDriver_NoDriverAvailable(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotableQuote()
	f.alloc.assignable = []*models.Driver{
		{ID: "d-off", Status: models.DriverOffline, IsOnboarded: true},
	}

	_, err := f.svc.AssignDriver(context.Background(), "q1", models.AssignDriverRequest{})
	assert.ErrorIs(t, err, models.ErrNoDriverAvailable)
}

func TestAssignDriver_ExplicitDriverConflicted(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotableQuote()
	f.alloc.bookedDrivers = []string{"d1"}

	_, err := f.svc.AssignDriver(context.Background(), "q1", models.AssignDriverRequest{DriverID: "d1"})
	assert.ErrorIs(t, err, models.ErrDriverConflict)
}

func TestAssignDriver_ExplicitDriverIneligible(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotableQuote()
	f.alloc.drivers["d1"].Status = models.DriverSuspended

	_, err := f.svc.AssignDriver(context.Background(), "q1", models.AssignDriverRequest{DriverID: "d1"})
	assert.ErrorIs(t, err, models.ErrDriverNotEligible)
}

func TestAssignDriver_VehicleConflict(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotableQuote()
	f.alloc.bookedVehicles = []string{"v1"}

	_, err := f.svc.AssignDriver(context.Background(), "q1", models.AssignDriverRequest{DriverID: "d1"})
	assert.ErrorIs(t, err, models.ErrVehicleConflict)

	// Nothing was persisted.
	q, _ := f.repo.FindByID(context.Background(), "q1")
	assert.Equal(t, models.StatusSubmitted, q.Status)
	assert.Nil(t, q.AssignedDriverID)
}

func TestAssignDriver_NonQuotableStatus(t *testing.T) {
	f := newServiceFixture()
	q := f.seedQuotableQuote()
	q.Status = models.StatusDraft

	_, err := f.svc.AssignDriver(context.Background(), "q1", models.AssignDriverRequest{DriverID: "d1"})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestAssignDriver_MissingVehicleSelection(t *testing.T) {
	f := newServiceFixture()
	q := f.seedQuotableQuote()
	q.SelectedVehicles = nil

	_, err := f.svc.AssignDriver(context.Background(), "q1", models.AssignDriverRequest{DriverID: "d1"})
	assert.ErrorIs(t, err, models.ErrMissingVehicleSelection)
}

func TestAssignDriver_RequoteAfterWindowLapsed(t *testing.T) {
	f := newServiceFixture()
	q := f.seedQuotableQuote()
	q.Status = models.StatusQuoted
	quotedAt := fixtureNow.Add(-25 * time.Hour)
	q.QuotedAt = &quotedAt
	q.Pricing = &models.PriceBreakdown{Total: 5500}

	_, err := f.svc.AssignDriver(context.Background(), "q1", models.AssignDriverRequest{DriverID: "d1"})
	assert.ErrorIs(t, err, models.ErrPaymentWindowExpired)

	// The stale quote was reconciled on the way out.
	reloaded, _ := f.repo.FindByID(context.Background(), "q1")
	assert.Equal(t, models.StatusExpired, reloaded.Status)
	assert.Equal(t, 1, f.emails.expired)
}

// --- Pay ---

func (f *serviceFixture) seedQuotedQuote(quotedAgo time.Duration) *models.Quote {
	q := f.seedQuotableQuote()
	q.Status = models.StatusQuoted
	driverID := "d1"
	q.AssignedDriverID = &driverID
	quotedAt := fixtureNow.Add(-quotedAgo)
	q.QuotedAt = &quotedAt
	q.Pricing = &models.PriceBreakdown{Total: 5500}
	start := time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	q.TripStartAt = &start
	q.TripEndAt = &end
	return q
}

func TestPay_WithinWindow(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotedQuote(23*time.Hour + 59*time.Minute)

	res, err := f.svc.Pay(context.Background(), "q1", "u1", models.PayQuoteRequest{PaymentMethodID: "pm_1"})
	assert.NoError(t, err)
	assert.Equal(t, 5500.0, f.payments.chargedAmount)
	assert.Equal(t, "pi_test_123", res.PaymentRef)

	// Snapshot semantics: original driver and pricing frozen at payment time.
	assert.Equal(t, "d1", res.OriginalDriverID)
	assert.Equal(t, "d1", res.AssignedDriverID)
	assert.Equal(t, 5500.0, res.OriginalPricing.Total)
	assert.Equal(t, "q1", res.QuoteID)

	q, _ := f.repo.FindByID(context.Background(), "q1")
	assert.Equal(t, models.StatusPaid, q.Status)

	// Pending expiry task is withdrawn; receipt sent.
	assert.Contains(t, f.scheduler.canceled, "q1")
	assert.Equal(t, 1, f.emails.receipts)
	assert.Contains(t, f.notifier.events, "quote.paid")
}

func TestPay_WindowLapsed(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotedQuote(24*time.Hour + time.Minute)

	_, err := f.svc.Pay(context.Background(), "q1", "u1", models.PayQuoteRequest{PaymentMethodID: "pm_1"})
	assert.ErrorIs(t, err, models.ErrPaymentWindowExpired)

	// No charge was attempted and the quote was reconciled to expired.
	assert.Equal(t, 0.0, f.payments.chargedAmount)
	q, _ := f.repo.FindByID(context.Background(), "q1")
	assert.Equal(t, models.StatusExpired, q.Status)
}

func TestPay_ExactWindowBoundaryStillPayable(t *testing.T) {
	// now == quotedAt + window is not after the deadline.
	f := newServiceFixture()
	f.seedQuotedQuote(24 * time.Hour)

	_, err := f.svc.Pay(context.Background(), "q1", "u1", models.PayQuoteRequest{PaymentMethodID: "pm_1"})
	assert.NoError(t, err)
}

func TestPay_WrongOwner(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotedQuote(time.Hour)

	_, err := f.svc.Pay(context.Background(), "q1", "someone-else", models.PayQuoteRequest{PaymentMethodID: "pm_1"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPay_NotQuoted(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotableQuote()

	_, err := f.svc.Pay(context.Background(), "q1", "u1", models.PayQuoteRequest{PaymentMethodID: "pm_1"})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestPay_ChargeFailureLeavesQuoteQuoted(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotedQuote(time.Hour)
	f.payments.chargeErr = errors.New("card declined")

	_, err := f.svc.Pay(context.Background(), "q1", "u1", models.PayQuoteRequest{PaymentMethodID: "pm_1"})
	assert.Error(t, err)

	q, _ := f.repo.FindByID(context.Background(), "q1")
	assert.Equal(t, models.StatusQuoted, q.Status)
	assert.Empty(t, f.resRepo.created)
}

// --- ExpireIfLapsed ---

func TestExpireIfLapsed(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotedQuote(25 * time.Hour)

	expired, err := f.svc.ExpireIfLapsed(context.Background(), "q1", fixtureNow)
	assert.NoError(t, err)
	assert.True(t, expired)

	q, _ := f.repo.FindByID(context.Background(), "q1")
	assert.Equal(t, models.StatusExpired, q.Status)
	assert.Equal(t, 1, f.emails.expired)
	assert.Contains(t, f.notifier.events, "quote.expired")

	// A second delivery of the same task is a clean no-op.
	expired, err = f.svc.ExpireIfLapsed(context.Background(), "q1", fixtureNow)
	assert.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, 1, f.emails.expired)
}

func TestExpireIfLapsed_WindowStillOpen(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotedQuote(time.Hour)

	expired, err := f.svc.ExpireIfLapsed(context.Background(), "q1", fixtureNow)
	assert.NoError(t, err)
	assert.False(t, expired)

	q, _ := f.repo.FindByID(context.Background(), "q1")
	assert.Equal(t, models.StatusQuoted, q.Status)
}

func TestExpireIfLapsed_MissingQuote(t *testing.T) {
	f := newServiceFixture()
	expired, err := f.svc.ExpireIfLapsed(context.Background(), "gone", fixtureNow)
	assert.NoError(t, err)
	assert.False(t, expired)
}

func TestExpireIfLapsed_PaidQuoteIsNoOp(t *testing.T) {
	f := newServiceFixture()
	q := f.seedQuotedQuote(25 * time.Hour)
	q.Status = models.StatusPaid

	expired, err := f.svc.ExpireIfLapsed(context.Background(), "q1", fixtureNow)
	assert.NoError(t, err)
	assert.False(t, expired)

	reloaded, _ := f.repo.FindByID(context.Background(), "q1")
	assert.Equal(t, models.StatusPaid, reloaded.Status)
}

// --- Simple transitions ---

func TestSubmitQuote(t *testing.T) {
	f := newServiceFixture()
	q := f.seedQuotableQuote()
	q.Status = models.StatusDraft

	quote, err := f.svc.SubmitQuote(context.Background(), "q1", "u1")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, quote.Status)
	assert.Contains(t, f.notifier.events, "quote.submitted")
}

func TestSubmitQuote_WrongState(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotableQuote() // already submitted

	_, err := f.svc.SubmitQuote(context.Background(), "q1", "u1")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestStartNegotiation_MissingQuote(t *testing.T) {
	f := newServiceFixture()
	_, err := f.svc.StartNegotiation(context.Background(), "gone")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRejectQuote_RecordsReason(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotableQuote()

	quote, err := f.svc.RejectQuote(context.Background(), "q1", models.RejectQuoteRequest{Reason: "no capacity that week"})
	assert.NoError(t, err)
	assert.Equal(t, models.StatusRejected, quote.Status)
	assert.Equal(t, "no capacity that week", *quote.RejectionReason)
}

func TestGetQuoteDetails_OwnershipHiddenAsNotFound(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotableQuote()

	_, err := f.svc.GetQuoteDetails(context.Background(), "q1", "intruder", "user")
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Operators see everything.
	quote, err := f.svc.GetQuoteDetails(context.Background(), "q1", "intruder", "admin")
	assert.NoError(t, err)
	assert.Equal(t, "q1", quote.ID)
}

func TestUpdateQuote_NotEditableOnceQuoted(t *testing.T) {
	f := newServiceFixture()
	f.seedQuotedQuote(time.Hour)

	_, err := f.svc.UpdateQuote(context.Background(), "q1", "u1", models.UpdateQuoteRequest{PassengerCount: intp(30)})
	assert.ErrorIs(t, err, models.ErrQuoteNotEditable)
}

func intp(v int) *int { return &v }
