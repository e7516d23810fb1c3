package models

import "time"

// Reservation is a paid, confirmed booking materialized exactly once from a
// paid quote. It carries a structural snapshot of the quote at payment time:
// OriginalPricing and OriginalDriverID never change even if the quote or the
// driver pool is mutated later.
type Reservation struct {
	ID               string            `json:"id" db:"id"`
	QuoteID          string            `json:"quote_id" db:"quote_id"`
	UserID           string            `json:"user_id" db:"user_id"`
	AssignedDriverID string            `json:"assigned_driver_id" db:"assigned_driver_id"`
	OriginalDriverID string            `json:"original_driver_id" db:"original_driver_id"`
	SelectedVehicles []SelectedVehicle `json:"selected_vehicles" db:"selected_vehicles"`
	OriginalPricing  PriceBreakdown    `json:"original_pricing" db:"original_pricing"`
	TripStartAt      time.Time         `json:"trip_start_at" db:"trip_start_at"`
	TripEndAt        time.Time         `json:"trip_end_at" db:"trip_end_at"`
	PaymentRef       string            `json:"payment_ref" db:"payment_ref"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
}
