package reservations

import (
	"context"
	"errors"
	"fmt"

	"charter-booking/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the reservation repository.
type RepositoryInterface interface {
	// Create materializes a reservation from a paid quote. The quote_id
	// uniqueness constraint guarantees at most one reservation per quote.
	Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error)
	FindByID(ctx context.Context, reservationID string) (*models.Reservation, error)
	FindByQuoteID(ctx context.Context, quoteID string) (*models.Reservation, error)
	ListByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Reservation, int, error)
}

// Repository implements the RepositoryInterface over PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new reservation repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const reservationColumns = `id, quote_id, user_id, assigned_driver_id, original_driver_id,
	selected_vehicles, original_pricing, trip_start_at, trip_end_at, payment_ref, created_at`

func scanReservation(row pgx.Row) (*models.Reservation, error) {
	var res models.Reservation
	err := row.Scan(
		&res.ID,
		&res.QuoteID,
		&res.UserID,
		&res.AssignedDriverID,
		&res.OriginalDriverID,
		&res.SelectedVehicles,
		&res.OriginalPricing,
		&res.TripStartAt,
		&res.TripEndAt,
		&res.PaymentRef,
		&res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan reservation: %w", err)
	}
	return &res, nil
}

// Create inserts the reservation snapshot.
func (r *Repository) Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error) {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	query := fmt.Sprintf(`
		INSERT INTO reservations
			(id, quote_id, user_id, assigned_driver_id, original_driver_id,
			 selected_vehicles, original_pricing, trip_start_at, trip_end_at, payment_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s`, reservationColumns)

	created, err := scanReservation(r.db.QueryRow(ctx, query,
		res.ID, res.QuoteID, res.UserID, res.AssignedDriverID, res.OriginalDriverID,
		res.SelectedVehicles, res.OriginalPricing, res.TripStartAt, res.TripEndAt, res.PaymentRef,
	))
	if err != nil {
		return nil, fmt.Errorf("repository.CreateReservation: %w", err)
	}
	return created, nil
}

// FindByID retrieves a reservation by its ID.
func (r *Repository) FindByID(ctx context.Context, reservationID string) (*models.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations WHERE id = $1`, reservationColumns)
	res, err := scanReservation(r.db.QueryRow(ctx, query, reservationID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindReservationByID: %w", err)
	}
	return res, nil
}

// FindByQuoteID retrieves the reservation materialized from a quote.
func (r *Repository) FindByQuoteID(ctx context.Context, quoteID string) (*models.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations WHERE quote_id = $1`, reservationColumns)
	res, err := scanReservation(r.db.QueryRow(ctx, query, quoteID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindReservationByQuoteID: %w", err)
	}
	return res, nil
}

// ListByUserID retrieves a user's reservations with pagination.
func (r *Repository) ListByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Reservation, int, error) {
	offset := (page - 1) * limit
	query := fmt.Sprintf(`
		SELECT %s FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, reservationColumns)

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListReservations.Query: %w", err)
	}
	defer rows.Close()

	var out []*models.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListReservations.Scan: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reservations WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListReservations.Count: %w", err)
	}
	return out, total, nil
}
