package pricing

import (
	"context"
	"errors"
	"fmt"

	"charter-booking/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the pricing-config repository.
// Configs are versioned and append-only; exactly one version is active.
type RepositoryInterface interface {
	FindActive(ctx context.Context) (*models.PricingConfig, error)
	Create(ctx context.Context, req models.CreatePricingConfigRequest) (*models.PricingConfig, error)
	ListVersions(ctx context.Context, limit int) ([]*models.PricingConfig, error)

	// Catalog reads needed to resolve a quote's selection into engine input.
	FindVehiclesByIDs(ctx context.Context, ids []string) (map[string]*models.Vehicle, error)
	FindAmenitiesByIDs(ctx context.Context, ids []string) ([]*models.Amenity, error)
}

// Repository implements the RepositoryInterface over PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new pricing-config repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const configColumns = `id, version, fuel_price_per_liter, avg_driver_hourly_rate, tax_percent,
	night_charge_rate, night_start_hour, night_end_hour, is_active, created_at`

func scanConfig(row pgx.Row) (*models.PricingConfig, error) {
	var c models.PricingConfig
	err := row.Scan(
		&c.ID,
		&c.Version,
		&c.FuelPricePerLiter,
		&c.AvgDriverHourlyRate,
		&c.TaxPercent,
		&c.NightChargeRate,
		&c.NightStartHour,
		&c.NightEndHour,
		&c.IsActive,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan pricing config: %w", err)
	}
	return &c, nil
}

// FindActive returns the currently active pricing config version.
func (r *Repository) FindActive(ctx context.Context) (*models.PricingConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM pricing_configs WHERE is_active ORDER BY version DESC LIMIT 1`, configColumns)
	cfg, err := scanConfig(r.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNoActivePricingConfig
		}
		return nil, fmt.Errorf("repository.FindActive: %w", err)
	}
	return cfg, nil
}

// Create publishes a new config version and deactivates the predecessor in
// the same transaction.
func (r *Repository) Create(ctx context.Context, req models.CreatePricingConfigRequest) (*models.PricingConfig, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateConfig.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE pricing_configs SET is_active = FALSE WHERE is_active`); err != nil {
		return nil, fmt.Errorf("repository.CreateConfig.Deactivate: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO pricing_configs
			(version, fuel_price_per_liter, avg_driver_hourly_rate, tax_percent,
			 night_charge_rate, night_start_hour, night_end_hour, is_active)
		VALUES ((SELECT COALESCE(MAX(version), 0) + 1 FROM pricing_configs), $1, $2, $3, $4, $5, $6, TRUE)
		RETURNING %s`, configColumns)

	cfg, err := scanConfig(tx.QueryRow(ctx, query,
		req.FuelPricePerLiter,
		req.AvgDriverHourlyRate,
		req.TaxPercent,
		req.NightChargeRate,
		req.NightStartHour,
		req.NightEndHour,
	))
	if err != nil {
		return nil, fmt.Errorf("repository.CreateConfig: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.CreateConfig.Commit: %w", err)
	}
	return cfg, nil
}

// ListVersions returns recent config versions, newest first.
func (r *Repository) ListVersions(ctx context.Context, limit int) ([]*models.PricingConfig, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM pricing_configs ORDER BY version DESC LIMIT $1`, configColumns)
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("repository.ListVersions.Query: %w", err)
	}
	defer rows.Close()

	var configs []*models.PricingConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListVersions.Scan: %w", err)
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// FindVehiclesByIDs returns the catalog vehicles for the given IDs, keyed by
// ID. A missing ID surfaces as models.ErrNotFound so pricing never silently
// drops a selected vehicle.
func (r *Repository) FindVehiclesByIDs(ctx context.Context, ids []string) (map[string]*models.Vehicle, error) {
	if len(ids) == 0 {
		return map[string]*models.Vehicle{}, nil
	}
	query := `
		SELECT id, name, capacity, base_fare, maintenance_cost_per_km, fuel_consumption_per_km, created_at, updated_at
		FROM vehicles
		WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("repository.FindVehiclesByIDs: %w", err)
	}
	defer rows.Close()

	vehicles := make(map[string]*models.Vehicle, len(ids))
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.Capacity, &v.BaseFare, &v.MaintenanceCostPerKm, &v.FuelConsumptionPerKm, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("repository.FindVehiclesByIDs scan: %w", err)
		}
		vehicles[v.ID] = &v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.FindVehiclesByIDs rows: %w", err)
	}
	for _, id := range ids {
		if _, ok := vehicles[id]; !ok {
			return nil, models.ErrNotFound
		}
	}
	return vehicles, nil
}

// FindAmenitiesByIDs returns the amenities for the given IDs.
func (r *Repository) FindAmenitiesByIDs(ctx context.Context, ids []string) ([]*models.Amenity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, name, unit_price, created_at FROM amenities WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("repository.FindAmenitiesByIDs: %w", err)
	}
	defer rows.Close()

	var amenities []*models.Amenity
	for rows.Next() {
		var a models.Amenity
		if err := rows.Scan(&a.ID, &a.Name, &a.UnitPrice, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository.FindAmenitiesByIDs scan: %w", err)
		}
		amenities = append(amenities, &a)
	}
	return amenities, rows.Err()
}
