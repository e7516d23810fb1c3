package models

import "time"

// QuoteStatus enumerates the states a quote moves through between creation
// and payment. Transitions between them are owned by the quotes module.
type QuoteStatus string

const (
	StatusDraft       QuoteStatus = "draft"
	StatusSubmitted   QuoteStatus = "submitted"
	StatusNegotiating QuoteStatus = "negotiating"
	StatusAccepted    QuoteStatus = "accepted"
	StatusRejected    QuoteStatus = "rejected"
	StatusQuoted      QuoteStatus = "quoted"
	StatusPaid        QuoteStatus = "paid"
	StatusExpired     QuoteStatus = "expired"
)

// IsTerminal reports whether a quote in this status can never move again.
func IsTerminal(s QuoteStatus) bool {
	return s == StatusPaid || s == StatusRejected || s == StatusExpired
}

// IsEditable reports whether the itinerary/vehicle selection of a quote in
// this status may still be modified by the requester.
func IsEditable(s QuoteStatus) bool {
	return s == StatusDraft || s == StatusSubmitted
}

// TripType distinguishes one-way trips from trips with a return leg.
type TripType string

const (
	TripOneWay TripType = "one_way"
	TripTwoWay TripType = "two_way"
)

// SelectedVehicle is one line of a quote's vehicle selection. Stored as JSONB
// on the quote document.
type SelectedVehicle struct {
	VehicleID string `json:"vehicle_id"`
	Quantity  int    `json:"quantity"`
}

// Quote represents a charter-trip price proposal prior to payment.
//
// Invariants maintained by the quotes service:
//   - Status == quoted implies Pricing and QuotedAt are both set.
//   - The payment window is QuotedAt + the configured window (24h); once the
//     window has lapsed the quote must not be payable.
type Quote struct {
	ID               string            `json:"id" db:"id"`
	UserID           string            `json:"user_id" db:"user_id"`
	TripType         TripType          `json:"trip_type" db:"trip_type"`
	Status           QuoteStatus       `json:"status" db:"status"`
	PassengerCount   int               `json:"passenger_count" db:"passenger_count"`
	SelectedVehicles []SelectedVehicle `json:"selected_vehicles" db:"selected_vehicles"`
	AmenityIDs       []string          `json:"amenity_ids" db:"amenity_ids"`
	AssignedDriverID *string           `json:"assigned_driver_id,omitempty" db:"assigned_driver_id"`
	Pricing          *PriceBreakdown   `json:"pricing,omitempty" db:"pricing"`
	QuotedAt         *time.Time        `json:"quoted_at,omitempty" db:"quoted_at"`

	// Route data per leg, filled by the (out-of-scope) maps collaborator when
	// the itinerary is saved. Required before a quote can be priced.
	OutboundDistanceKm  *float64 `json:"outbound_distance_km,omitempty" db:"outbound_distance_km"`
	OutboundDurationHrs *float64 `json:"outbound_duration_hrs,omitempty" db:"outbound_duration_hrs"`
	ReturnDistanceKm    *float64 `json:"return_distance_km,omitempty" db:"return_distance_km"`
	ReturnDurationHrs   *float64 `json:"return_duration_hrs,omitempty" db:"return_duration_hrs"`

	// Denormalized trip window, maintained alongside the itinerary so range
	// queries for allocation conflicts stay on the quotes table.
	TripStartAt *time.Time `json:"trip_start_at,omitempty" db:"trip_start_at"`
	TripEndAt   *time.Time `json:"trip_end_at,omitempty" db:"trip_end_at"`

	// Explicit lifecycle timestamps, set by trip operations; the derived
	// phase rules give these priority over clock comparisons.
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	RejectionReason *string   `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// RouteDataInput carries per-leg distance and duration measured by the maps
// collaborator. Required before a quote can be priced.
type RouteDataInput struct {
	OutboundDistanceKm  *float64 `json:"outbound_distance_km,omitempty" validate:"omitempty,gt=0"`
	OutboundDurationHrs *float64 `json:"outbound_duration_hrs,omitempty" validate:"omitempty,gt=0"`
	ReturnDistanceKm    *float64 `json:"return_distance_km,omitempty" validate:"omitempty,gt=0"`
	ReturnDurationHrs   *float64 `json:"return_duration_hrs,omitempty" validate:"omitempty,gt=0"`
}

// CreateQuoteRequest is the body for creating a new draft quote.
type CreateQuoteRequest struct {
	TripType         TripType             `json:"trip_type" validate:"required,oneof=one_way two_way"`
	PassengerCount   int                  `json:"passenger_count" validate:"required,min=1"`
	SelectedVehicles []SelectedVehicle    `json:"selected_vehicles" validate:"omitempty,dive"`
	AmenityIDs       []string             `json:"amenity_ids,omitempty"`
	Stops            []ItineraryStopInput `json:"stops" validate:"omitempty,dive"`
	Route            *RouteDataInput      `json:"route,omitempty"`
}

// UpdateQuoteRequest is the body for editing a draft or submitted quote.
type UpdateQuoteRequest struct {
	PassengerCount   *int                 `json:"passenger_count,omitempty" validate:"omitempty,min=1"`
	SelectedVehicles []SelectedVehicle    `json:"selected_vehicles,omitempty" validate:"omitempty,dive"`
	AmenityIDs       []string             `json:"amenity_ids,omitempty"`
	Stops            []ItineraryStopInput `json:"stops,omitempty" validate:"omitempty,dive"`
	Route            *RouteDataInput      `json:"route,omitempty"`
}

// AssignDriverRequest is the operator's body for quoting. When DriverID is
// empty the service picks the least-recently-assigned eligible driver.
type AssignDriverRequest struct {
	DriverID string `json:"driver_id,omitempty"`
}

// PayQuoteRequest is the body for paying a quoted trip.
type PayQuoteRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
}

// RejectQuoteRequest carries the operator's reason for rejecting a quote.
type RejectQuoteRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}
