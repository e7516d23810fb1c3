package models

import "time"

// PricingConfig is one version of the pricing configuration. Versions are
// append-only; exactly one is active at a time. Quotes freeze the values they
// were priced against so historical pricing stays reproducible after the
// active config changes.
type PricingConfig struct {
	ID                  int     `json:"id" db:"id"`
	Version             int     `json:"version" db:"version"`
	FuelPricePerLiter   float64 `json:"fuel_price_per_liter" db:"fuel_price_per_liter"`
	AvgDriverHourlyRate float64 `json:"avg_driver_hourly_rate" db:"avg_driver_hourly_rate"`
	TaxPercent          float64 `json:"tax_percent" db:"tax_percent"`
	NightChargeRate     float64 `json:"night_charge_rate" db:"night_charge_rate"`
	// Local clock hours bounding the night window, e.g. 22 -> 6. A leg whose
	// time span intersects this window incurs the night charge.
	NightStartHour int       `json:"night_start_hour" db:"night_start_hour"`
	NightEndHour   int       `json:"night_end_hour" db:"night_end_hour"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// PriceBreakdown is the multi-component price of a quote, along with the
// config values it was computed from (the *AtTime fields).
type PriceBreakdown struct {
	BaseFare        float64 `json:"base_fare"`
	DistanceFare    float64 `json:"distance_fare"`
	DriverCharge    float64 `json:"driver_charge"`
	FuelMaintenance float64 `json:"fuel_maintenance"`
	NightCharge     float64 `json:"night_charge"`
	AmenitiesTotal  float64 `json:"amenities_total"`
	Subtotal        float64 `json:"subtotal"`
	Tax             float64 `json:"tax"`
	Total           float64 `json:"total"`

	FuelPriceAtTime   float64 `json:"fuel_price_at_time"`
	DriverRateAtTime  float64 `json:"driver_rate_at_time"`
	TaxPercentAtTime  float64 `json:"tax_percent_at_time"`
	NightChargeAtTime float64 `json:"night_charge_at_time"`
}

// CreatePricingConfigRequest is the admin body for publishing a new pricing
// config version.
type CreatePricingConfigRequest struct {
	FuelPricePerLiter   float64 `json:"fuel_price_per_liter" validate:"required,gt=0"`
	AvgDriverHourlyRate float64 `json:"avg_driver_hourly_rate" validate:"required,gt=0"`
	TaxPercent          float64 `json:"tax_percent" validate:"min=0,max=100"`
	NightChargeRate     float64 `json:"night_charge_rate" validate:"min=0"`
	NightStartHour      int     `json:"night_start_hour" validate:"min=0,max=23"`
	NightEndHour        int     `json:"night_end_hour" validate:"min=0,max=23"`
}
