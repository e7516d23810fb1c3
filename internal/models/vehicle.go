package models

import "time"

// Vehicle represents a catalog vehicle. The catalog itself is managed by an
// out-of-scope CRUD surface; this module only reads vehicles for pricing and
// allocation-conflict checks.
type Vehicle struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Capacity int    `json:"capacity" db:"capacity"`
	BaseFare float64 `json:"base_fare" db:"base_fare"`
	// MaintenanceCostPerKm and FuelConsumptionPerKm feed the distance-based
	// pricing components.
	MaintenanceCostPerKm float64   `json:"maintenance_cost_per_km" db:"maintenance_cost_per_km"`
	FuelConsumptionPerKm float64   `json:"fuel_consumption_per_km" db:"fuel_consumption_per_km"` // liters/km
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// Amenity is an optional add-on with a flat unit price.
type Amenity struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	UnitPrice float64   `json:"unit_price" db:"unit_price"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
