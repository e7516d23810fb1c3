package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charter-booking/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the quote repository.
type RepositoryInterface interface {
	Create(ctx context.Context, userID string, req models.CreateQuoteRequest, tripStart, tripEnd *time.Time) (*models.Quote, error)
	FindByID(ctx context.Context, quoteID string) (*models.Quote, error)
	ListByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Quote, int, error)
	ListByStatus(ctx context.Context, status models.QuoteStatus, page, limit int) ([]*models.Quote, int, error)
	ListStops(ctx context.Context, quoteID string) ([]models.ItineraryStop, error)

	// UpdateEditable replaces the editable fields of a draft/submitted quote.
	// The status condition is part of the UPDATE so a quote that moved on
	// concurrently is not silently overwritten.
	UpdateEditable(ctx context.Context, quoteID string, req models.UpdateQuoteRequest, tripStart, tripEnd *time.Time) (*models.Quote, error)

	// UpdateStatus performs a conditional status transition. Zero rows
	// affected means the quote was not in any of the from statuses.
	UpdateStatus(ctx context.Context, quoteID string, from []models.QuoteStatus, to models.QuoteStatus, reason *string) error

	// ApplyQuoting persists status=quoted, the driver binding, quotedAt and
	// the pricing snapshot as one atomic UPDATE, conditional on the quote
	// still being in a quotable status.
	ApplyQuoting(ctx context.Context, quoteID, driverID string, pricing models.PriceBreakdown, quotedAt time.Time) error

	// MarkPaid transitions quoted -> paid; conditional on status=quoted.
	MarkPaid(ctx context.Context, quoteID string) error

	// ExpireIfStillQuoted transitions quoted -> expired and reports whether
	// this call performed the transition. Safe to invoke repeatedly.
	ExpireIfStillQuoted(ctx context.Context, quoteID string) (bool, error)
}

// Repository implements the RepositoryInterface over PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new quote repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const quoteColumns = `id, user_id, trip_type, status, passenger_count, selected_vehicles, amenity_ids,
	assigned_driver_id, pricing, quoted_at,
	outbound_distance_km, outbound_duration_hrs, return_distance_km, return_duration_hrs,
	trip_start_at, trip_end_at, started_at, completed_at,
	rejection_reason, created_at, updated_at`

func scanQuote(row pgx.Row) (*models.Quote, error) {
	var q models.Quote
	err := row.Scan(
		&q.ID,
		&q.UserID,
		&q.TripType,
		&q.Status,
		&q.PassengerCount,
		&q.SelectedVehicles,
		&q.AmenityIDs,
		&q.AssignedDriverID,
		&q.Pricing,
		&q.QuotedAt,
		&q.OutboundDistanceKm,
		&q.OutboundDurationHrs,
		&q.ReturnDistanceKm,
		&q.ReturnDurationHrs,
		&q.TripStartAt,
		&q.TripEndAt,
		&q.StartedAt,
		&q.CompletedAt,
		&q.RejectionReason,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan quote: %w", err)
	}
	return &q, nil
}

// Create inserts a new draft quote and its itinerary stops in one transaction.
func (r *Repository) Create(ctx context.Context, userID string, req models.CreateQuoteRequest, tripStart, tripEnd *time.Time) (*models.Quote, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateQuote.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	selected := req.SelectedVehicles
	if selected == nil {
		selected = []models.SelectedVehicle{}
	}
	amenities := req.AmenityIDs
	if amenities == nil {
		amenities = []string{}
	}

	var route models.RouteDataInput
	if req.Route != nil {
		route = *req.Route
	}

	query := fmt.Sprintf(`
		INSERT INTO quotes
			(id, user_id, trip_type, status, passenger_count, selected_vehicles, amenity_ids,
			 outbound_distance_km, outbound_duration_hrs, return_distance_km, return_duration_hrs,
			 trip_start_at, trip_end_at)
		VALUES ($1, $2, $3, 'draft', $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s`, quoteColumns)

	quote, err := scanQuote(tx.QueryRow(ctx, query,
		uuid.New().String(), userID, req.TripType, req.PassengerCount, selected, amenities,
		route.OutboundDistanceKm, route.OutboundDurationHrs, route.ReturnDistanceKm, route.ReturnDurationHrs,
		tripStart, tripEnd,
	))
	if err != nil {
		return nil, fmt.Errorf("repository.CreateQuote: %w", err)
	}

	if err := insertStops(ctx, tx, quote.ID, req.Stops); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.CreateQuote.Commit: %w", err)
	}
	return quote, nil
}

func insertStops(ctx context.Context, tx pgx.Tx, quoteID string, stops []models.ItineraryStopInput) error {
	for _, s := range stops {
		_, err := tx.Exec(ctx, `
			INSERT INTO itinerary_stops
				(id, quote_id, stop_order, leg, role, address, arrive_at, depart_at, driver_staying, stay_hours)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.New().String(), quoteID, s.StopOrder, s.Leg, s.Role, s.Address,
			s.ArriveAt, s.DepartAt, s.DriverStaying, s.StayHours)
		if err != nil {
			return fmt.Errorf("repository.insertStops: %w", err)
		}
	}
	return nil
}

// FindByID retrieves a single quote by its ID.
func (r *Repository) FindByID(ctx context.Context, quoteID string) (*models.Quote, error) {
	query := fmt.Sprintf(`SELECT %s FROM quotes WHERE id = $1`, quoteColumns)
	quote, err := scanQuote(r.db.QueryRow(ctx, query, quoteID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return quote, nil
}

// ListByUserID retrieves a user's quotes with pagination, newest first.
func (r *Repository) ListByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Quote, int, error) {
	offset := (page - 1) * limit
	query := fmt.Sprintf(`
		SELECT %s FROM quotes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, quoteColumns)

	quotes, err := r.listQuotes(ctx, "ListByUserID", query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotes WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUserID.Count: %w", err)
	}
	return quotes, total, nil
}

// ListByStatus retrieves quotes in a given status with pagination (operator use).
func (r *Repository) ListByStatus(ctx context.Context, status models.QuoteStatus, page, limit int) ([]*models.Quote, int, error) {
	offset := (page - 1) * limit
	query := fmt.Sprintf(`
		SELECT %s FROM quotes
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, quoteColumns)

	quotes, err := r.listQuotes(ctx, "ListByStatus", query, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotes WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListByStatus.Count: %w", err)
	}
	return quotes, total, nil
}

func (r *Repository) listQuotes(ctx context.Context, op, query string, args ...any) ([]*models.Quote, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository.%s.Query: %w", op, err)
	}
	defer rows.Close()

	var quotes []*models.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.%s.Scan: %w", op, err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// ListStops returns the quote's itinerary stops ordered by leg then stop order.
func (r *Repository) ListStops(ctx context.Context, quoteID string) ([]models.ItineraryStop, error) {
	query := `
		SELECT id, quote_id, stop_order, leg, role, address, arrive_at, depart_at, driver_staying, stay_hours
		FROM itinerary_stops
		WHERE quote_id = $1
		ORDER BY leg, stop_order`

	rows, err := r.db.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListStops: %w", err)
	}
	defer rows.Close()

	var stops []models.ItineraryStop
	for rows.Next() {
		var s models.ItineraryStop
		if err := rows.Scan(&s.ID, &s.QuoteID, &s.StopOrder, &s.Leg, &s.Role, &s.Address,
			&s.ArriveAt, &s.DepartAt, &s.DriverStaying, &s.StayHours); err != nil {
			return nil, fmt.Errorf("repository.ListStops scan: %w", err)
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

// UpdateEditable rewrites a quote's editable fields; the itinerary is
// replaced wholesale when stops are provided.
func (r *Repository) UpdateEditable(ctx context.Context, quoteID string, req models.UpdateQuoteRequest, tripStart, tripEnd *time.Time) (*models.Quote, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.UpdateEditable.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
		UPDATE quotes SET
			passenger_count = COALESCE($2, passenger_count),
			selected_vehicles = COALESCE($3, selected_vehicles),
			amenity_ids = COALESCE($4, amenity_ids),
			outbound_distance_km = COALESCE($5, outbound_distance_km),
			outbound_duration_hrs = COALESCE($6, outbound_duration_hrs),
			return_distance_km = COALESCE($7, return_distance_km),
			return_duration_hrs = COALESCE($8, return_duration_hrs),
			trip_start_at = COALESCE($9, trip_start_at),
			trip_end_at = COALESCE($10, trip_end_at),
			updated_at = now()
		WHERE id = $1 AND status IN ('draft', 'submitted')
		RETURNING %s`, quoteColumns)

	var route models.RouteDataInput
	if req.Route != nil {
		route = *req.Route
	}

	var selected any
	if req.SelectedVehicles != nil {
		selected = req.SelectedVehicles
	}
	var amenities any
	if req.AmenityIDs != nil {
		amenities = req.AmenityIDs
	}

	quote, err := scanQuote(tx.QueryRow(ctx, query, quoteID,
		req.PassengerCount, selected, amenities,
		route.OutboundDistanceKm, route.OutboundDurationHrs, route.ReturnDistanceKm, route.ReturnDurationHrs,
		tripStart, tripEnd,
	))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrQuoteNotEditable
		}
		return nil, fmt.Errorf("repository.UpdateEditable: %w", err)
	}

	if req.Stops != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM itinerary_stops WHERE quote_id = $1`, quoteID); err != nil {
			return nil, fmt.Errorf("repository.UpdateEditable.DeleteStops: %w", err)
		}
		if err := insertStops(ctx, tx, quoteID, req.Stops); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.UpdateEditable.Commit: %w", err)
	}
	return quote, nil
}

// UpdateStatus performs a conditional status transition.
func (r *Repository) UpdateStatus(ctx context.Context, quoteID string, from []models.QuoteStatus, to models.QuoteStatus, reason *string) error {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}
	cmd, err := r.db.Exec(ctx, `
		UPDATE quotes
		SET status = $2, rejection_reason = COALESCE($3, rejection_reason), updated_at = now()
		WHERE id = $1 AND status = ANY($4)`,
		quoteID, to, reason, statuses)
	if err != nil {
		return fmt.Errorf("repository.UpdateStatus: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrInvalidTransition
	}
	return nil
}

// ApplyQuoting is the single atomic write of the quoting transition.
func (r *Repository) ApplyQuoting(ctx context.Context, quoteID, driverID string, pricing models.PriceBreakdown, quotedAt time.Time) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE quotes
		SET status = 'quoted',
		    assigned_driver_id = $2,
		    pricing = $3,
		    quoted_at = $4,
		    updated_at = now()
		WHERE id = $1 AND status IN ('submitted', 'accepted', 'quoted')`,
		quoteID, driverID, pricing, quotedAt)
	if err != nil {
		return fmt.Errorf("repository.ApplyQuoting: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrInvalidTransition
	}
	return nil
}

// MarkPaid transitions a quoted quote to paid.
func (r *Repository) MarkPaid(ctx context.Context, quoteID string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE quotes SET status = 'paid', updated_at = now()
		WHERE id = $1 AND status = 'quoted'`, quoteID)
	if err != nil {
		return fmt.Errorf("repository.MarkPaid: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrInvalidTransition
	}
	return nil
}

// ExpireIfStillQuoted is the check-then-transition write of the expiry task.
// The status condition makes repeated invocations side-effect free after the
// first successful transition.
func (r *Repository) ExpireIfStillQuoted(ctx context.Context, quoteID string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE quotes SET status = 'expired', updated_at = now()
		WHERE id = $1 AND status = 'quoted'`, quoteID)
	if err != nil {
		return false, fmt.Errorf("repository.ExpireIfStillQuoted: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}
