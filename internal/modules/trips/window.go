package trips

import (
	"time"

	"charter-booking/internal/models"
)

// Phase is the derived lifecycle state of a trip. It is computed from the
// itinerary and the clock on every read; nothing stores it.
type Phase string

const (
	PhaseUpcoming Phase = "upcoming"
	PhaseCurrent  Phase = "current"
	PhasePast     Phase = "past"
)

// DayOfStart is the window before departure during which the trip chat is
// opened and kept open.
const DayOfStart = 24 * time.Hour

// Window is the [start, end] span of a trip derived from its itinerary.
type Window struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

// DeriveWindow computes the trip window from the ordered itinerary stops of
// all legs. StartAt is the earliest arrival time; EndAt is the latest arrival
// time, or departure time where the driver is staying at the stop.
// Returns models.ErrNoItinerary for an empty stop list: callers must treat
// that as "window unknown", not as "upcoming".
func DeriveWindow(stops []models.ItineraryStop) (Window, error) {
	if len(stops) == 0 {
		return Window{}, models.ErrNoItinerary
	}

	var w Window
	for i, s := range stops {
		end := s.ArriveAt
		if s.DriverStaying && s.DepartAt != nil {
			end = *s.DepartAt
		}
		if i == 0 {
			w = Window{StartAt: s.ArriveAt, EndAt: end}
			continue
		}
		if s.ArriveAt.Before(w.StartAt) {
			w.StartAt = s.ArriveAt
		}
		if end.After(w.EndAt) {
			w.EndAt = end
		}
	}
	return w, nil
}

// phaseInput bundles everything the phase rules may look at.
type phaseInput struct {
	window      Window
	startedAt   *time.Time
	completedAt *time.Time
	now         time.Time
}

// phaseRule pairs a predicate with its outcome. Rules are evaluated top to
// bottom and the first match wins, which keeps the priority contract of the
// derivation explicit instead of buried in nested conditionals.
type phaseRule struct {
	name    string
	applies func(in phaseInput) bool
	phase   Phase
}

var phaseRules = []phaseRule{
	{
		name:    "completed",
		applies: func(in phaseInput) bool { return in.completedAt != nil },
		phase:   PhasePast,
	},
	{
		name:    "started",
		applies: func(in phaseInput) bool { return in.startedAt != nil },
		phase:   PhaseCurrent,
	},
	{
		name:    "not yet departed",
		applies: func(in phaseInput) bool { return in.window.StartAt.After(in.now) },
		phase:   PhaseUpcoming,
	},
	{
		// Time has passed but nobody closed the trip out.
		name:    "legacy expired",
		applies: func(in phaseInput) bool { return in.window.EndAt.Before(in.now) },
		phase:   PhasePast,
	},
	{
		name:    "in window",
		applies: func(in phaseInput) bool { return true },
		phase:   PhaseCurrent,
	},
}

// DerivePhase evaluates the ordered phase rules for a trip window. The
// explicit startedAt/completedAt timestamps take priority over any clock
// comparison against the window.
func DerivePhase(w Window, startedAt, completedAt *time.Time, now time.Time) Phase {
	in := phaseInput{window: w, startedAt: startedAt, completedAt: completedAt, now: now}
	for _, r := range phaseRules {
		if r.applies(in) {
			return r.phase
		}
	}
	// Unreachable: the last rule always applies.
	return PhaseCurrent
}

// WithinDayOfStart reports whether now falls inside the 24 hours leading up
// to the trip start: true iff 0 <= startAt-now <= 24h. Any instant strictly
// after startAt is outside the window.
func WithinDayOfStart(startAt, now time.Time) bool {
	until := startAt.Sub(now)
	return until >= 0 && until <= DayOfStart
}

// ChatAllowed decides whether trip messaging is open. A past trip blocks
// messaging even when a stale 24h-before-start window would still match.
func ChatAllowed(phase Phase, startAt, now time.Time) bool {
	switch phase {
	case PhasePast:
		return false
	case PhaseCurrent:
		return true
	default:
		return WithinDayOfStart(startAt, now)
	}
}
