package pricing

import (
	"math"
	"time"

	"charter-booking/internal/models"
)

// VehicleLine is one vehicle selection resolved against the catalog.
type VehicleLine struct {
	Vehicle  models.Vehicle
	Quantity int
}

// LegInput carries the itinerary stops and route data for one trip leg.
// DistanceKm/DurationHrs come from the maps collaborator and are stored on
// the quote; they must be present for every required leg.
type LegInput struct {
	Stops       []models.ItineraryStop
	DistanceKm  *float64
	DurationHrs *float64
}

// ComputeInput is everything the engine needs to price a quote. There is no
// clock in here: night charges are decided by itinerary times, so the same
// input always produces the same breakdown.
type ComputeInput struct {
	TripType  models.TripType
	Vehicles  []VehicleLine
	Amenities []models.Amenity
	Outbound  LegInput
	Return    LegInput
	Config    models.PricingConfig
	// DriverHourlyRate overrides the config's average rate. Set only after a
	// concrete driver has been bound to the quote.
	DriverHourlyRate *float64
}

// Compute produces the full price breakdown for a quote.
//
//	baseFare        = sum(vehicle base fare x quantity)
//	distanceFare    = total km x sum(qty x fuel l/km) x fuel price
//	fuelMaintenance = total km x sum(qty x maintenance cost/km)
//	driverCharge    = total hours x driver hourly rate (actual or average)
//	nightCharge     = night rate per leg crossing the configured night window
//	amenitiesTotal  = sum(amenity unit prices)
//	subtotal        = sum of the above; tax = subtotal x tax%; total = subtotal + tax
func Compute(in ComputeInput) (models.PriceBreakdown, error) {
	if in.Outbound.DistanceKm == nil || in.Outbound.DurationHrs == nil {
		return models.PriceBreakdown{}, models.ErrMissingRouteData
	}
	twoWay := in.TripType == models.TripTwoWay
	if twoWay && (in.Return.DistanceKm == nil || in.Return.DurationHrs == nil) {
		return models.PriceBreakdown{}, models.ErrMissingRouteData
	}

	totalKm := *in.Outbound.DistanceKm
	totalHrs := *in.Outbound.DurationHrs
	if twoWay {
		totalKm += *in.Return.DistanceKm
		totalHrs += *in.Return.DurationHrs
	}

	var baseFare, fuelPerKm, maintPerKm float64
	for _, line := range in.Vehicles {
		qty := float64(line.Quantity)
		baseFare += line.Vehicle.BaseFare * qty
		fuelPerKm += line.Vehicle.FuelConsumptionPerKm * qty
		maintPerKm += line.Vehicle.MaintenanceCostPerKm * qty
	}

	distanceFare := totalKm * fuelPerKm * in.Config.FuelPricePerLiter
	fuelMaintenance := totalKm * maintPerKm

	rate := in.Config.AvgDriverHourlyRate
	if in.DriverHourlyRate != nil {
		rate = *in.DriverHourlyRate
	}
	driverCharge := totalHrs * rate

	var nightCharge float64
	for _, leg := range []LegInput{in.Outbound, in.Return} {
		if legCrossesNight(leg.Stops, in.Config.NightStartHour, in.Config.NightEndHour) {
			nightCharge += in.Config.NightChargeRate
		}
	}

	var amenitiesTotal float64
	for _, a := range in.Amenities {
		amenitiesTotal += a.UnitPrice
	}

	b := models.PriceBreakdown{
		BaseFare:        round2(baseFare),
		DistanceFare:    round2(distanceFare),
		DriverCharge:    round2(driverCharge),
		FuelMaintenance: round2(fuelMaintenance),
		NightCharge:     round2(nightCharge),
		AmenitiesTotal:  round2(amenitiesTotal),

		FuelPriceAtTime:   in.Config.FuelPricePerLiter,
		DriverRateAtTime:  rate,
		TaxPercentAtTime:  in.Config.TaxPercent,
		NightChargeAtTime: in.Config.NightChargeRate,
	}
	b.Subtotal = round2(b.BaseFare + b.DistanceFare + b.DriverCharge + b.FuelMaintenance + b.NightCharge + b.AmenitiesTotal)
	b.Tax = round2(b.Subtotal * in.Config.TaxPercent / 100)
	b.Total = round2(b.Subtotal + b.Tax)
	return b, nil
}

// legCrossesNight reports whether the leg's time span [first arrival, last
// arrival-or-stay-departure] touches the configured night window. The check
// is purely itinerary-relative; it never consults the wall clock.
func legCrossesNight(stops []models.ItineraryStop, nightStart, nightEnd int) bool {
	if len(stops) == 0 || nightStart == nightEnd {
		return false
	}
	start := stops[0].ArriveAt
	end := stops[0].ArriveAt
	for _, s := range stops {
		if s.ArriveAt.Before(start) {
			start = s.ArriveAt
		}
		candidate := s.ArriveAt
		if s.DriverStaying && s.DepartAt != nil {
			candidate = *s.DepartAt
		}
		if candidate.After(end) {
			end = candidate
		}
	}
	if end.Sub(start) >= 24*time.Hour {
		return true
	}
	if inNightHours(start.Hour(), nightStart, nightEnd) {
		return true
	}
	// Does the night window open anywhere inside the span?
	for d := start.AddDate(0, 0, -1); !d.After(end); d = d.AddDate(0, 0, 1) {
		opens := time.Date(d.Year(), d.Month(), d.Day(), nightStart, 0, 0, 0, d.Location())
		if !opens.Before(start) && !opens.After(end) {
			return true
		}
	}
	return false
}

// inNightHours is a wrap-aware clock-hour membership test, e.g. 23 is inside
// a 22 -> 6 window.
func inNightHours(hour, nightStart, nightEnd int) bool {
	if nightStart < nightEnd {
		return hour >= nightStart && hour < nightEnd
	}
	return hour >= nightStart || hour < nightEnd
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
