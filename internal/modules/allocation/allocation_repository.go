package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charter-booking/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface declares the database methods needed for allocation
// conflict detection and fair driver selection.
type RepositoryInterface interface {
	// FindBookedDriverIDsInDateRange returns driver IDs committed to any
	// other quote or reservation whose trip window overlaps [start, end].
	FindBookedDriverIDsInDateRange(ctx context.Context, start, end time.Time, excludeQuoteID string) ([]string, error)
	// FindReservedVehicleIDsInDateRange is the vehicle counterpart.
	FindReservedVehicleIDsInDateRange(ctx context.Context, start, end time.Time, excludeQuoteID string) ([]string, error)
	// FindDraftHeldVehicleIDs returns vehicle IDs held by draft quotes
	// created after the cutoff (short-lived provisional holds).
	FindDraftHeldVehicleIDs(ctx context.Context, createdAfter time.Time, excludeQuoteID string) ([]string, error)
	// FindDraftHeldDriverIDs is the driver counterpart of the soft holds.
	FindDraftHeldDriverIDs(ctx context.Context, createdAfter time.Time, excludeQuoteID string) ([]string, error)

	FindDriverByID(ctx context.Context, driverID string) (*models.Driver, error)
	// ListAssignableDrivers returns onboarded, non-blocked drivers ordered by
	// last_assigned_at, nulls first, for fair round-robin selection.
	ListAssignableDrivers(ctx context.Context) ([]*models.Driver, error)
	// TouchDriverLastAssigned stamps the driver's fairness marker.
	TouchDriverLastAssigned(ctx context.Context, driverID string, at time.Time) error
}

// Repository is a PostgreSQL implementation of RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new allocation repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// Overlap is inclusive on both ends: a trip ending exactly when another
// starts still counts as a conflict, so turnaround time is never assumed.
func (r *Repository) FindBookedDriverIDsInDateRange(ctx context.Context, start, end time.Time, excludeQuoteID string) ([]string, error) {
	query := `
		SELECT assigned_driver_id FROM quotes
		WHERE status IN ('quoted', 'paid')
		  AND assigned_driver_id IS NOT NULL
		  AND id <> $3
		  AND trip_start_at <= $2 AND trip_end_at >= $1
		UNION
		SELECT assigned_driver_id FROM reservations
		WHERE quote_id <> $3
		  AND trip_start_at <= $2 AND trip_end_at >= $1`
	return r.collectIDs(ctx, "FindBookedDriverIDsInDateRange", query, start, end, excludeQuoteID)
}

func (r *Repository) FindReservedVehicleIDsInDateRange(ctx context.Context, start, end time.Time, excludeQuoteID string) ([]string, error) {
	query := `
		SELECT DISTINCT v->>'vehicle_id'
		FROM quotes, jsonb_array_elements(selected_vehicles) AS v
		WHERE status IN ('quoted', 'paid')
		  AND id <> $3
		  AND trip_start_at <= $2 AND trip_end_at >= $1
		UNION
		SELECT DISTINCT v->>'vehicle_id'
		FROM reservations, jsonb_array_elements(selected_vehicles) AS v
		WHERE quote_id <> $3
		  AND trip_start_at <= $2 AND trip_end_at >= $1`
	return r.collectIDs(ctx, "FindReservedVehicleIDsInDateRange", query, start, end, excludeQuoteID)
}

func (r *Repository) FindDraftHeldVehicleIDs(ctx context.Context, createdAfter time.Time, excludeQuoteID string) ([]string, error) {
	query := `
		SELECT DISTINCT v->>'vehicle_id'
		FROM quotes, jsonb_array_elements(selected_vehicles) AS v
		WHERE status = 'draft'
		  AND id <> $2
		  AND created_at > $1`
	return r.collectIDs(ctx, "FindDraftHeldVehicleIDs", query, createdAfter, excludeQuoteID)
}

func (r *Repository) FindDraftHeldDriverIDs(ctx context.Context, createdAfter time.Time, excludeQuoteID string) ([]string, error) {
	query := `
		SELECT assigned_driver_id FROM quotes
		WHERE status = 'draft'
		  AND assigned_driver_id IS NOT NULL
		  AND id <> $2
		  AND created_at > $1`
	return r.collectIDs(ctx, "FindDraftHeldDriverIDs", query, createdAfter, excludeQuoteID)
}

func (r *Repository) collectIDs(ctx context.Context, op, query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository.%s: %w", op, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repository.%s scan: %w", op, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const driverColumns = `id, full_name, status, is_onboarded, salary, last_assigned_at, created_at, updated_at`

func scanDriver(row pgx.Row) (*models.Driver, error) {
	var d models.Driver
	err := row.Scan(
		&d.ID,
		&d.FullName,
		&d.Status,
		&d.IsOnboarded,
		&d.Salary,
		&d.LastAssignedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan driver: %w", err)
	}
	return &d, nil
}

func (r *Repository) FindDriverByID(ctx context.Context, driverID string) (*models.Driver, error) {
	query := fmt.Sprintf(`SELECT %s FROM drivers WHERE id = $1`, driverColumns)
	d, err := scanDriver(r.db.QueryRow(ctx, query, driverID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindDriverByID: %w", err)
	}
	return d, nil
}

func (r *Repository) ListAssignableDrivers(ctx context.Context) ([]*models.Driver, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM drivers
		WHERE is_onboarded
		  AND status NOT IN ('suspended', 'blocked', 'offline')
		ORDER BY last_assigned_at ASC NULLS FIRST, created_at ASC`, driverColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository.ListAssignableDrivers: %w", err)
	}
	defer rows.Close()

	var drivers []*models.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListAssignableDrivers scan: %w", err)
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (r *Repository) TouchDriverLastAssigned(ctx context.Context, driverID string, at time.Time) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE drivers SET last_assigned_at = $2, updated_at = now() WHERE id = $1`,
		driverID, at)
	if err != nil {
		return fmt.Errorf("repository.TouchDriverLastAssigned: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
