package models

import "time"

// DriverStatus enumerates the operational states of a driver.
type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverOnTrip    DriverStatus = "on_trip"
	DriverOffline   DriverStatus = "offline"
	DriverSuspended DriverStatus = "suspended"
	DriverBlocked   DriverStatus = "blocked"
)

// IsHardBlocked reports whether the status alone disqualifies a driver from
// any assignment, regardless of trip timing.
func IsHardBlocked(s DriverStatus) bool {
	return s == DriverSuspended || s == DriverBlocked || s == DriverOffline
}

// Driver represents a charter driver available for assignment.
type Driver struct {
	ID          string       `json:"id" db:"id"`
	FullName    string       `json:"full_name" db:"full_name"`
	Status      DriverStatus `json:"status" db:"status"`
	IsOnboarded bool         `json:"is_onboarded" db:"is_onboarded"`
	// Salary is the driver's actual hourly rate; it overrides the pricing
	// config's average rate once the driver is bound to a quote.
	Salary         float64    `json:"salary" db:"salary"`
	LastAssignedAt *time.Time `json:"last_assigned_at,omitempty" db:"last_assigned_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// EligibilityResult is the structured outcome of the driver eligibility
// guard. Ineligibility is a normal outcome, not an error.
type EligibilityResult struct {
	CanAssign bool   `json:"can_assign"`
	Reason    string `json:"reason,omitempty"`
}
