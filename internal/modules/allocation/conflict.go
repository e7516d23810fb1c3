package allocation

import (
	"context"
	"fmt"
	"time"
)

// BookedSets holds the driver and vehicle IDs already committed within a
// date range. Membership means the resource must not be offered or assigned.
type BookedSets struct {
	DriverIDs  map[string]struct{}
	VehicleIDs map[string]struct{}
}

// HasDriver reports whether the driver is committed in the range.
func (b BookedSets) HasDriver(id string) bool {
	_, ok := b.DriverIDs[id]
	return ok
}

// HasAnyVehicle reports the first of the given vehicle IDs found in the
// booked set, if any.
func (b BookedSets) HasAnyVehicle(ids []string) (string, bool) {
	for _, id := range ids {
		if _, ok := b.VehicleIDs[id]; ok {
			return id, true
		}
	}
	return "", false
}

// Detector aggregates hard bookings (quoted/paid quotes and reservations)
// and soft holds (recent draft quotes) into conflict sets for a date range.
type Detector struct {
	repo RepositoryInterface
	// draftHoldWindow is how long a draft quote provisionally holds its
	// selected resources so two simultaneous shoppers are not both shown the
	// same vehicle as available.
	draftHoldWindow time.Duration
}

// NewDetector creates a conflict detector.
func NewDetector(repo RepositoryInterface, draftHoldWindow time.Duration) *Detector {
	return &Detector{repo: repo, draftHoldWindow: draftHoldWindow}
}

// BookedInRange returns the combined hard and soft conflict sets for
// [start, end], excluding the quote doing the asking. The caller must
// re-check at write time; this narrows but does not eliminate race windows.
func (d *Detector) BookedInRange(ctx context.Context, start, end time.Time, excludeQuoteID string, now time.Time) (BookedSets, error) {
	sets := BookedSets{
		DriverIDs:  make(map[string]struct{}),
		VehicleIDs: make(map[string]struct{}),
	}

	driverIDs, err := d.repo.FindBookedDriverIDsInDateRange(ctx, start, end, excludeQuoteID)
	if err != nil {
		return sets, fmt.Errorf("conflict.BookedInRange drivers: %w", err)
	}
	for _, id := range driverIDs {
		sets.DriverIDs[id] = struct{}{}
	}

	vehicleIDs, err := d.repo.FindReservedVehicleIDsInDateRange(ctx, start, end, excludeQuoteID)
	if err != nil {
		return sets, fmt.Errorf("conflict.BookedInRange vehicles: %w", err)
	}
	for _, id := range vehicleIDs {
		sets.VehicleIDs[id] = struct{}{}
	}

	cutoff := now.Add(-d.draftHoldWindow)
	heldVehicles, err := d.repo.FindDraftHeldVehicleIDs(ctx, cutoff, excludeQuoteID)
	if err != nil {
		return sets, fmt.Errorf("conflict.BookedInRange draft vehicles: %w", err)
	}
	for _, id := range heldVehicles {
		sets.VehicleIDs[id] = struct{}{}
	}

	heldDrivers, err := d.repo.FindDraftHeldDriverIDs(ctx, cutoff, excludeQuoteID)
	if err != nil {
		return sets, fmt.Errorf("conflict.BookedInRange draft drivers: %w", err)
	}
	for _, id := range heldDrivers {
		sets.DriverIDs[id] = struct{}{}
	}

	return sets, nil
}
