package quotes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"charter-booking/internal/models"
	"charter-booking/internal/modules/allocation"
	"charter-booking/internal/modules/expiry"
	"charter-booking/internal/modules/pricing"
	"charter-booking/internal/modules/reservations"
	"charter-booking/internal/modules/trips"
)

// ExpirySchedulerInterface arms the deferred payment-window expiry for a
// freshly quoted quote. CancelExpiry is advisory: the expiry handler is
// idempotent, so a task that outlives its quote simply no-ops.
type ExpirySchedulerInterface interface {
	ScheduleExpiry(ctx context.Context, quoteID string, quotedAt time.Time) error
	CancelExpiry(ctx context.Context, quoteID string) error
}

// PaymentServiceInterface is the narrow contract to the payment gateway.
type PaymentServiceInterface interface {
	Charge(ctx context.Context, userID string, amount float64, currency, paymentMethodID string) (string, error)
}

// DocumentServiceInterface renders the quote PDF sent to the customer.
// Rendering happens after the quoting transition commits; failures are
// logged, never rolled back into the transition.
type DocumentServiceInterface interface {
	RenderQuoteDocument(ctx context.Context, quote *models.Quote, driver *models.Driver) ([]byte, error)
}

// EmailServiceInterface delivers transactional mail for quote transitions.
type EmailServiceInterface interface {
	SendQuoteIssued(ctx context.Context, userID string, quote *models.Quote) error
	SendPaymentReceipt(ctx context.Context, userID string, res *models.Reservation) error
	SendQuoteExpired(ctx context.Context, userID string, quote *models.Quote) error
}

// NotifierInterface emits best-effort domain events (sockets, push, analytics).
type NotifierInterface interface {
	EmitQuoteEvent(ctx context.Context, event, quoteID string) error
}

// ServiceInterface defines the contract for the quote service.
type ServiceInterface interface {
	CreateQuote(ctx context.Context, userID string, req models.CreateQuoteRequest) (*models.Quote, error)
	UpdateQuote(ctx context.Context, quoteID, userID string, req models.UpdateQuoteRequest) (*models.Quote, error)
	GetQuoteDetails(ctx context.Context, quoteID, userID, role string) (*models.Quote, error)
	ListUserQuotes(ctx context.Context, userID string, page, limit int) ([]*models.Quote, int, error)
	ListQuotesByStatus(ctx context.Context, status models.QuoteStatus, page, limit int) ([]*models.Quote, int, error)

	SubmitQuote(ctx context.Context, quoteID, userID string) (*models.Quote, error)
	StartNegotiation(ctx context.Context, quoteID string) (*models.Quote, error)
	AcceptOffer(ctx context.Context, quoteID, userID string) (*models.Quote, error)
	RejectQuote(ctx context.Context, quoteID string, req models.RejectQuoteRequest) (*models.Quote, error)

	AssignDriver(ctx context.Context, quoteID string, req models.AssignDriverRequest) (*models.Quote, error)
	Pay(ctx context.Context, quoteID, userID string, req models.PayQuoteRequest) (*models.Reservation, error)

	// ExpireIfLapsed reconciles a quote whose payment window may have
	// passed. It reports whether this call performed the transition; a quote
	// that already moved on is a no-op, not an error.
	ExpireIfLapsed(ctx context.Context, quoteID string, now time.Time) (bool, error)
}

// Deps bundles the collaborators of the quote service.
type Deps struct {
	Repo        RepositoryInterface
	Reservation reservations.RepositoryInterface
	Allocation  allocation.RepositoryInterface
	Conflicts   *allocation.Detector
	Pricing     pricing.RepositoryInterface
	Scheduler   ExpirySchedulerInterface
	Payments    PaymentServiceInterface
	Documents   DocumentServiceInterface
	Emails      EmailServiceInterface
	Notifier    NotifierInterface

	// SoonStartThreshold is the window before departure inside which a
	// driver must be exactly available to be assignable.
	SoonStartThreshold time.Duration
	// PaymentWindow is how long a quote stays payable after quotedAt.
	PaymentWindow time.Duration
}

// Service implements the quote state machine.
type Service struct {
	deps Deps
	now  func() time.Time
}

// NewService creates a new quote service.
func NewService(deps Deps) *Service {
	if deps.SoonStartThreshold <= 0 {
		deps.SoonStartThreshold = 24 * time.Hour
	}
	if deps.PaymentWindow <= 0 {
		deps.PaymentWindow = 24 * time.Hour
	}
	return &Service{deps: deps, now: time.Now}
}

// CreateQuote creates a new draft quote for the requester. The trip window
// is derived from the stops when an itinerary is supplied.
func (s *Service) CreateQuote(ctx context.Context, userID string, req models.CreateQuoteRequest) (*models.Quote, error) {
	tripStart, tripEnd := deriveWindowFromInputs(req.Stops)
	quote, err := s.deps.Repo.Create(ctx, userID, req, tripStart, tripEnd)
	if err != nil {
		return nil, fmt.Errorf("service.CreateQuote: %w", err)
	}
	return quote, nil
}

// UpdateQuote edits a draft or submitted quote owned by the user.
func (s *Service) UpdateQuote(ctx context.Context, quoteID, userID string, req models.UpdateQuoteRequest) (*models.Quote, error) {
	quote, err := s.GetQuoteDetails(ctx, quoteID, userID, "user")
	if err != nil {
		return nil, err
	}
	if !models.IsEditable(quote.Status) {
		return nil, models.ErrQuoteNotEditable
	}

	var tripStart, tripEnd *time.Time
	if req.Stops != nil {
		tripStart, tripEnd = deriveWindowFromInputs(req.Stops)
	}
	updated, err := s.deps.Repo.UpdateEditable(ctx, quoteID, req, tripStart, tripEnd)
	if err != nil {
		if errors.Is(err, models.ErrQuoteNotEditable) {
			return nil, models.ErrQuoteNotEditable
		}
		return nil, fmt.Errorf("service.UpdateQuote: %w", err)
	}
	return updated, nil
}

// GetQuoteDetails retrieves a quote, enforcing ownership for plain users.
func (s *Service) GetQuoteDetails(ctx context.Context, quoteID, userID, role string) (*models.Quote, error) {
	quote, err := s.deps.Repo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	// Return NotFound rather than Forbidden to avoid leaking quote IDs.
	if role != "admin" && quote.UserID != userID {
		return nil, models.ErrNotFound
	}
	return quote, nil
}

// ListUserQuotes retrieves the requester's quotes.
func (s *Service) ListUserQuotes(ctx context.Context, userID string, page, limit int) ([]*models.Quote, int, error) {
	page, limit = clampPage(page, limit)
	return s.deps.Repo.ListByUserID(ctx, userID, page, limit)
}

// ListQuotesByStatus lists quotes in one status for the operator dashboard.
func (s *Service) ListQuotesByStatus(ctx context.Context, status models.QuoteStatus, page, limit int) ([]*models.Quote, int, error) {
	page, limit = clampPage(page, limit)
	return s.deps.Repo.ListByStatus(ctx, status, page, limit)
}

// SubmitQuote moves a draft to submitted, opening it for operator review.
func (s *Service) SubmitQuote(ctx context.Context, quoteID, userID string) (*models.Quote, error) {
	if _, err := s.GetQuoteDetails(ctx, quoteID, userID, "user"); err != nil {
		return nil, err
	}
	return s.transition(ctx, quoteID, []models.QuoteStatus{models.StatusDraft}, models.StatusSubmitted, nil, "quote.submitted")
}

// StartNegotiation marks a submitted quote as under negotiation.
func (s *Service) StartNegotiation(ctx context.Context, quoteID string) (*models.Quote, error) {
	return s.transition(ctx, quoteID, []models.QuoteStatus{models.StatusSubmitted}, models.StatusNegotiating, nil, "quote.negotiating")
}

// AcceptOffer records the customer accepting the negotiated terms.
func (s *Service) AcceptOffer(ctx context.Context, quoteID, userID string) (*models.Quote, error) {
	if _, err := s.GetQuoteDetails(ctx, quoteID, userID, "user"); err != nil {
		return nil, err
	}
	return s.transition(ctx, quoteID, []models.QuoteStatus{models.StatusNegotiating}, models.StatusAccepted, nil, "quote.accepted")
}

// RejectQuote terminates a quote with an operator-supplied reason.
func (s *Service) RejectQuote(ctx context.Context, quoteID string, req models.RejectQuoteRequest) (*models.Quote, error) {
	from := []models.QuoteStatus{models.StatusSubmitted, models.StatusNegotiating}
	return s.transition(ctx, quoteID, from, models.StatusRejected, &req.Reason, "quote.rejected")
}

func (s *Service) transition(ctx context.Context, quoteID string, from []models.QuoteStatus, to models.QuoteStatus, reason *string, event string) (*models.Quote, error) {
	if err := s.deps.Repo.UpdateStatus(ctx, quoteID, from, to, reason); err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			// Distinguish a missing quote from a wrong-state quote.
			if _, findErr := s.deps.Repo.FindByID(ctx, quoteID); errors.Is(findErr, models.ErrNotFound) {
				return nil, models.ErrNotFound
			}
			return nil, models.ErrInvalidTransition
		}
		return nil, fmt.Errorf("service.transition(%s): %w", to, err)
	}
	quote, err := s.deps.Repo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	s.runPostCommit(ctx, quoteID, []postCommitAction{s.emitAction(event, quoteID)})
	return quote, nil
}

// AssignDriver runs the quoting pipeline: state gate, payment-window gate,
// eligibility guard, conflict detection, pricing with the driver's actual
// rate, then one atomic write followed by expiry scheduling and best-effort
// side effects. Any failure before the write aborts with nothing persisted.
func (s *Service) AssignDriver(ctx context.Context, quoteID string, req models.AssignDriverRequest) (*models.Quote, error) {
	now := s.now()

	quote, err := s.deps.Repo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if !isQuotable(quote.Status) {
		return nil, models.ErrInvalidTransition
	}
	if quote.QuotedAt != nil && now.After(quote.QuotedAt.Add(s.deps.PaymentWindow)) {
		// Reconcile the stale quote before reporting the distinct window error.
		if _, expErr := s.ExpireIfLapsed(ctx, quoteID, now); expErr != nil {
			log.Printf("failed to reconcile expired quote %s: %v", quoteID, expErr)
		}
		return nil, models.ErrPaymentWindowExpired
	}
	if len(quote.SelectedVehicles) == 0 {
		return nil, models.ErrMissingVehicleSelection
	}

	stops, err := s.deps.Repo.ListStops(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	window, err := trips.DeriveWindow(stops)
	if err != nil {
		return nil, err
	}

	booked, err := s.deps.Conflicts.BookedInRange(ctx, window.StartAt, window.EndAt, quoteID, now)
	if err != nil {
		return nil, err
	}

	vehicleIDs := make([]string, 0, len(quote.SelectedVehicles))
	for _, sel := range quote.SelectedVehicles {
		vehicleIDs = append(vehicleIDs, sel.VehicleID)
	}
	if id, conflicted := booked.HasAnyVehicle(vehicleIDs); conflicted {
		return nil, fmt.Errorf("%w: vehicle %s", models.ErrVehicleConflict, id)
	}

	driver, err := s.resolveDriver(ctx, req.DriverID, window.StartAt, now, booked)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.priceQuote(ctx, quote, stops, &driver.Salary)
	if err != nil {
		return nil, err
	}

	quotedAt := now
	if err := s.deps.Repo.ApplyQuoting(ctx, quoteID, driver.ID, breakdown, quotedAt); err != nil {
		return nil, err
	}

	// Arm the 24h payment-window expiry. The write above already committed;
	// a scheduling failure is logged loudly rather than unwound.
	if err := s.deps.Scheduler.ScheduleExpiry(ctx, quoteID, quotedAt); err != nil {
		if errors.Is(err, expiry.ErrAlreadyDue) {
			if _, recErr := s.ExpireIfLapsed(ctx, quoteID, s.now()); recErr != nil {
				log.Printf("failed to reconcile already-due quote %s: %v", quoteID, recErr)
			}
		} else {
			log.Printf("CRITICAL: quote %s quoted but expiry scheduling failed: %v", quoteID, err)
		}
	}

	updated, err := s.deps.Repo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	s.runPostCommit(ctx, quoteID, []postCommitAction{
		{
			name: "touch driver fairness marker",
			run: func(ctx context.Context) error {
				return s.deps.Allocation.TouchDriverLastAssigned(ctx, driver.ID, quotedAt)
			},
		},
		{
			name: "render quote document",
			run: func(ctx context.Context) error {
				_, err := s.deps.Documents.RenderQuoteDocument(ctx, updated, driver)
				return err
			},
		},
		{
			name: "send quote issued email",
			run: func(ctx context.Context) error {
				return s.deps.Emails.SendQuoteIssued(ctx, updated.UserID, updated)
			},
		},
		s.emitAction("quote.quoted", quoteID),
	})

	return updated, nil
}

// resolveDriver validates the explicitly requested driver or, when none is
// given, picks the least-recently-assigned eligible one (nulls first).
func (s *Service) resolveDriver(ctx context.Context, driverID string, tripStartAt, now time.Time, booked allocation.BookedSets) (*models.Driver, error) {
	if driverID != "" {
		driver, err := s.deps.Allocation.FindDriverByID(ctx, driverID)
		if err != nil {
			return nil, err
		}
		result := allocation.CheckAssignable(*driver, &tripStartAt, now, s.deps.SoonStartThreshold)
		if !result.CanAssign {
			return nil, fmt.Errorf("%w: %s", models.ErrDriverNotEligible, result.Reason)
		}
		if booked.HasDriver(driver.ID) {
			return nil, models.ErrDriverConflict
		}
		return driver, nil
	}

	candidates, err := s.deps.Allocation.ListAssignableDrivers(ctx)
	if err != nil {
		return nil, err
	}
	for _, driver := range candidates {
		if booked.HasDriver(driver.ID) {
			continue
		}
		if result := allocation.CheckAssignable(*driver, &tripStartAt, now, s.deps.SoonStartThreshold); result.CanAssign {
			return driver, nil
		}
	}
	return nil, models.ErrNoDriverAvailable
}

// priceQuote resolves catalog data and runs the pricing engine with the
// bound driver's hourly rate substituted for the config average.
func (s *Service) priceQuote(ctx context.Context, quote *models.Quote, stops []models.ItineraryStop, driverRate *float64) (models.PriceBreakdown, error) {
	cfg, err := s.deps.Pricing.FindActive(ctx)
	if err != nil {
		return models.PriceBreakdown{}, err
	}

	vehicleIDs := make([]string, 0, len(quote.SelectedVehicles))
	for _, sel := range quote.SelectedVehicles {
		vehicleIDs = append(vehicleIDs, sel.VehicleID)
	}
	vehicles, err := s.deps.Pricing.FindVehiclesByIDs(ctx, vehicleIDs)
	if err != nil {
		return models.PriceBreakdown{}, err
	}
	amenities, err := s.deps.Pricing.FindAmenitiesByIDs(ctx, quote.AmenityIDs)
	if err != nil {
		return models.PriceBreakdown{}, err
	}

	in := pricing.ComputeInput{
		TripType:         quote.TripType,
		Config:           *cfg,
		DriverHourlyRate: driverRate,
		Outbound: pricing.LegInput{
			DistanceKm:  quote.OutboundDistanceKm,
			DurationHrs: quote.OutboundDurationHrs,
		},
		Return: pricing.LegInput{
			DistanceKm:  quote.ReturnDistanceKm,
			DurationHrs: quote.ReturnDurationHrs,
		},
	}
	for _, sel := range quote.SelectedVehicles {
		in.Vehicles = append(in.Vehicles, pricing.VehicleLine{Vehicle: *vehicles[sel.VehicleID], Quantity: sel.Quantity})
	}
	for _, a := range amenities {
		in.Amenities = append(in.Amenities, *a)
	}
	for _, stop := range stops {
		switch stop.Leg {
		case models.LegReturn:
			in.Return.Stops = append(in.Return.Stops, stop)
		default:
			in.Outbound.Stops = append(in.Outbound.Stops, stop)
		}
	}

	return pricing.Compute(in)
}

// Pay charges the customer and materializes the reservation from the quote.
func (s *Service) Pay(ctx context.Context, quoteID, userID string, req models.PayQuoteRequest) (*models.Reservation, error) {
	now := s.now()

	quote, err := s.GetQuoteDetails(ctx, quoteID, userID, "user")
	if err != nil {
		return nil, err
	}
	if quote.Status != models.StatusQuoted {
		return nil, models.ErrInvalidTransition
	}
	if quote.QuotedAt == nil || quote.Pricing == nil {
		// Broken invariant: quoted without pricing. Refuse rather than guess.
		return nil, models.ErrInvalidTransition
	}
	if now.After(quote.QuotedAt.Add(s.deps.PaymentWindow)) {
		if _, expErr := s.ExpireIfLapsed(ctx, quoteID, now); expErr != nil {
			log.Printf("failed to reconcile expired quote %s: %v", quoteID, expErr)
		}
		return nil, models.ErrPaymentWindowExpired
	}

	paymentRef, err := s.deps.Payments.Charge(ctx, userID, quote.Pricing.Total, "usd", req.PaymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("payment processing failed: %w", err)
	}

	if err := s.deps.Repo.MarkPaid(ctx, quoteID); err != nil {
		// The charge went through but the quote moved on underneath us.
		// Surface loudly; this needs manual reconciliation or a refund.
		log.Printf("CRITICAL: payment %s captured for quote %s but paid transition failed: %v", paymentRef, quoteID, err)
		return nil, fmt.Errorf("failed to mark quote paid after successful payment: %w", err)
	}

	tripStart, tripEnd := quote.TripStartAt, quote.TripEndAt
	res := &models.Reservation{
		QuoteID:          quote.ID,
		UserID:           quote.UserID,
		AssignedDriverID: *quote.AssignedDriverID,
		OriginalDriverID: *quote.AssignedDriverID,
		SelectedVehicles: quote.SelectedVehicles,
		OriginalPricing:  *quote.Pricing,
		PaymentRef:       paymentRef,
	}
	if tripStart != nil {
		res.TripStartAt = *tripStart
	}
	if tripEnd != nil {
		res.TripEndAt = *tripEnd
	}

	created, err := s.deps.Reservation.Create(ctx, res)
	if err != nil {
		log.Printf("CRITICAL: quote %s paid but reservation creation failed: %v", quoteID, err)
		return nil, fmt.Errorf("failed to materialize reservation: %w", err)
	}

	s.runPostCommit(ctx, quoteID, []postCommitAction{
		{
			name: "cancel pending expiry task",
			run: func(ctx context.Context) error {
				return s.deps.Scheduler.CancelExpiry(ctx, quoteID)
			},
		},
		{
			name: "send payment receipt email",
			run: func(ctx context.Context) error {
				return s.deps.Emails.SendPaymentReceipt(ctx, created.UserID, created)
			},
		},
		s.emitAction("quote.paid", quoteID),
	})

	return created, nil
}

// ExpireIfLapsed is shared by the expiry worker and the synchronous
// reconcile paths. A quote no longer in quoted status is success-via-no-op.
func (s *Service) ExpireIfLapsed(ctx context.Context, quoteID string, now time.Time) (bool, error) {
	quote, err := s.deps.Repo.FindByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if quote.Status != models.StatusQuoted || quote.QuotedAt == nil {
		return false, nil
	}
	if !now.After(quote.QuotedAt.Add(s.deps.PaymentWindow)) {
		// Window still open; a stale or early task fires again later.
		return false, nil
	}

	expired, err := s.deps.Repo.ExpireIfStillQuoted(ctx, quoteID)
	if err != nil {
		return false, err
	}
	if !expired {
		return false, nil
	}

	s.runPostCommit(ctx, quoteID, []postCommitAction{
		{
			name: "send quote expired email",
			run: func(ctx context.Context) error {
				return s.deps.Emails.SendQuoteExpired(ctx, quote.UserID, quote)
			},
		},
		s.emitAction("quote.expired", quoteID),
	})
	return true, nil
}

// postCommitAction is one best-effort side effect executed after the primary
// write commits. Failures are logged and never escalate: the transition
// succeeded even if the notification did not.
type postCommitAction struct {
	name string
	run  func(ctx context.Context) error
}

func (s *Service) runPostCommit(ctx context.Context, quoteID string, actions []postCommitAction) {
	for _, action := range actions {
		if err := action.run(ctx); err != nil {
			log.Printf("post-commit action %q failed for quote %s: %v", action.name, quoteID, err)
		}
	}
}

func (s *Service) emitAction(event, quoteID string) postCommitAction {
	return postCommitAction{
		name: "emit " + event,
		run: func(ctx context.Context) error {
			return s.deps.Notifier.EmitQuoteEvent(ctx, event, quoteID)
		},
	}
}

func deriveWindowFromInputs(stops []models.ItineraryStopInput) (*time.Time, *time.Time) {
	if len(stops) == 0 {
		return nil, nil
	}
	converted := make([]models.ItineraryStop, len(stops))
	for i, s := range stops {
		converted[i] = models.ItineraryStop{
			StopOrder:     s.StopOrder,
			Leg:           s.Leg,
			Role:          s.Role,
			ArriveAt:      s.ArriveAt,
			DepartAt:      s.DepartAt,
			DriverStaying: s.DriverStaying,
		}
	}
	window, err := trips.DeriveWindow(converted)
	if err != nil {
		return nil, nil
	}
	return &window.StartAt, &window.EndAt
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
