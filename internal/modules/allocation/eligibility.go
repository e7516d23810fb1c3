package allocation

import (
	"fmt"
	"time"

	"charter-booking/internal/models"
)

// CheckAssignable decides whether a driver may be bound to a trip starting at
// tripStartAt. A nil tripStartAt means the itinerary is unknown; only the
// time-scoped rule is skipped in that case.
//
// The checks run in a fixed order:
//  1. hard blockers: suspended, blocked, offline
//  2. onboarding
//  3. soon-start rule: a trip starting within soonThreshold requires the
//     driver to be exactly available; on_trip is tolerated only further out
//
// Ineligibility is a normal outcome, never an error.
func CheckAssignable(d models.Driver, tripStartAt *time.Time, now time.Time, soonThreshold time.Duration) models.EligibilityResult {
	if models.IsHardBlocked(d.Status) {
		return models.EligibilityResult{
			CanAssign: false,
			Reason:    fmt.Sprintf("driver status is %s", d.Status),
		}
	}

	if !d.IsOnboarded {
		return models.EligibilityResult{
			CanAssign: false,
			Reason:    "driver has not completed onboarding",
		}
	}

	if tripStartAt != nil && tripStartAt.Sub(now) <= soonThreshold && d.Status != models.DriverAvailable {
		return models.EligibilityResult{
			CanAssign: false,
			Reason:    fmt.Sprintf("trip starts soon and driver status is %s, not available", d.Status),
		}
	}

	return models.EligibilityResult{CanAssign: true}
}
