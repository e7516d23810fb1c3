package models

import "time"

// TripLeg identifies which direction of the trip a stop belongs to.
type TripLeg string

const (
	LegOutbound TripLeg = "outbound"
	LegReturn   TripLeg = "return"
)

// StopRole identifies the function of a stop within its leg.
type StopRole string

const (
	RolePickup  StopRole = "pickup"
	RoleStop    StopRole = "stop"
	RoleDropoff StopRole = "dropoff"
)

// ItineraryStop is one ordered point of a quote's itinerary. Within one leg
// stop_order is a strict total order; the first pickup and last dropoff of a
// leg bound that leg's time window.
type ItineraryStop struct {
	ID            string     `json:"id" db:"id"`
	QuoteID       string     `json:"-" db:"quote_id"`
	StopOrder     int        `json:"stop_order" db:"stop_order"`
	Leg           TripLeg    `json:"leg" db:"leg"`
	Role          StopRole   `json:"role" db:"role"`
	Address       string     `json:"address" db:"address"`
	ArriveAt      time.Time  `json:"arrive_at" db:"arrive_at"`
	DepartAt      *time.Time `json:"depart_at,omitempty" db:"depart_at"`
	DriverStaying bool       `json:"driver_staying" db:"driver_staying"`
	StayHours     *float64   `json:"stay_hours,omitempty" db:"stay_hours"`
}

// ItineraryStopInput is the request shape for saving itinerary stops.
type ItineraryStopInput struct {
	StopOrder     int        `json:"stop_order" validate:"min=0"`
	Leg           TripLeg    `json:"leg" validate:"required,oneof=outbound return"`
	Role          StopRole   `json:"role" validate:"required,oneof=pickup stop dropoff"`
	Address       string     `json:"address" validate:"required"`
	ArriveAt      time.Time  `json:"arrive_at" validate:"required"`
	DepartAt      *time.Time `json:"depart_at,omitempty"`
	DriverStaying bool       `json:"driver_staying"`
	StayHours     *float64   `json:"stay_hours,omitempty" validate:"omitempty,gt=0"`
}
