package models

import "errors"

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrQuoteNotEditable is returned when a quote's itinerary or vehicle
	// selection is modified outside the draft/submitted states.
	ErrQuoteNotEditable = errors.New("quote can no longer be edited")

	// ErrInvalidTransition is returned when a requested status change is not
	// a legal move in the quote state machine (e.g. assigning a driver to an
	// expired quote).
	ErrInvalidTransition = errors.New("quote is not in a valid state for this operation")

	// ErrPaymentWindowExpired is returned when the 24-hour payment window
	// anchored at quotedAt has lapsed. Kept distinct from ErrInvalidTransition
	// so the client can prompt for a new quote instead of retrying the same one.
	ErrPaymentWindowExpired = errors.New("the payment window for this quote has expired, please request a new quote")

	// ErrDriverConflict is returned when the target driver is already booked
	// on another quote or reservation overlapping the trip's date range.
	ErrDriverConflict = errors.New("driver is already booked for an overlapping trip")

	// ErrVehicleConflict is returned when one of the selected vehicles is
	// already reserved for an overlapping date range.
	ErrVehicleConflict = errors.New("one or more selected vehicles are already reserved for an overlapping trip")

	// ErrDriverNotEligible is returned when the eligibility guard rejects the
	// driver; the wrapped message carries the guard's reason.
	ErrDriverNotEligible = errors.New("driver is not eligible for this trip")

	// ErrNoDriverAvailable is returned when automatic assignment finds no
	// driver that passes both the eligibility guard and the conflict check.
	ErrNoDriverAvailable = errors.New("no eligible driver is available for this trip")

	// ErrNoItinerary is returned when a trip window is requested for a quote
	// with no itinerary stops. Callers must treat this as "window unknown",
	// never as "upcoming".
	ErrNoItinerary = errors.New("quote has no itinerary stops")

	// ErrMissingRouteData is returned when pricing is requested while the
	// distance/duration of a required leg is absent.
	ErrMissingRouteData = errors.New("route distance and duration are required for pricing")

	// ErrNoActivePricingConfig is returned when no pricing configuration
	// version is currently active.
	ErrNoActivePricingConfig = errors.New("no active pricing configuration")

	// ErrMissingVehicleSelection is returned when quoting is attempted before
	// any vehicle has been selected.
	ErrMissingVehicleSelection = errors.New("quote has no selected vehicles")
)

// ErrorResponse is the uniform JSON error body returned by handlers.
type ErrorResponse struct {
	Message string `json:"message"`
}
