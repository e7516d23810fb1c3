package trips

import (
	"testing"
	"time"

	"charter-booking/internal/models"

	"github.com/stretchr/testify/assert"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tsp(s string) *time.Time {
	t := ts(s)
	return &t
}

func TestDeriveWindow(t *testing.T) {
	stops := []models.ItineraryStop{
		{Leg: models.LegOutbound, StopOrder: 1, ArriveAt: ts("2026-06-01T08:00:00Z")},
		{Leg: models.LegOutbound, StopOrder: 2, ArriveAt: ts("2026-06-01T12:00:00Z")},
		{Leg: models.LegReturn, StopOrder: 1, ArriveAt: ts("2026-06-03T09:00:00Z")},
		{Leg: models.LegReturn, StopOrder: 2, ArriveAt: ts("2026-06-03T15:00:00Z")},
	}

	w, err := DeriveWindow(stops)
	assert.NoError(t, err)
	assert.Equal(t, ts("2026-06-01T08:00:00Z"), w.StartAt)
	assert.Equal(t, ts("2026-06-03T15:00:00Z"), w.EndAt)
}

func TestDeriveWindow_DriverStayingExtendsEnd(t *testing.T) {
	// The driver stays overnight at the last stop, so the window ends at
	// departure, not arrival.
	stops := []models.ItineraryStop{
		{Leg: models.LegOutbound, StopOrder: 1, ArriveAt: ts("2026-06-01T08:00:00Z")},
		{
			Leg:           models.LegOutbound,
			StopOrder:     2,
			ArriveAt:      ts("2026-06-01T20:00:00Z"),
			DriverStaying: true,
			DepartAt:      tsp("2026-06-02T10:00:00Z"),
		},
	}

	w, err := DeriveWindow(stops)
	assert.NoError(t, err)
	assert.Equal(t, ts("2026-06-02T10:00:00Z"), w.EndAt)
}

func TestDeriveWindow_UnorderedStops(t *testing.T) {
	// Window derivation must not depend on stop ordering.
	stops := []models.ItineraryStop{
		{ArriveAt: ts("2026-06-01T12:00:00Z")},
		{ArriveAt: ts("2026-06-01T08:00:00Z")},
		{ArriveAt: ts("2026-06-01T10:00:00Z")},
	}

	w, err := DeriveWindow(stops)
	assert.NoError(t, err)
	assert.Equal(t, ts("2026-06-01T08:00:00Z"), w.StartAt)
	assert.Equal(t, ts("2026-06-01T12:00:00Z"), w.EndAt)
}

func TestDeriveWindow_EmptyItinerary(t *testing.T) {
	_, err := DeriveWindow(nil)
	assert.ErrorIs(t, err, models.ErrNoItinerary)
}

func TestDerivePhase_Priority(t *testing.T) {
	w := Window{StartAt: ts("2026-06-01T08:00:00Z"), EndAt: ts("2026-06-03T15:00:00Z")}

	// completedAt wins over everything, even mid-window.
	now := ts("2026-06-02T00:00:00Z")
	assert.Equal(t, PhasePast, DerivePhase(w, tsp("2026-06-01T08:05:00Z"), tsp("2026-06-01T23:00:00Z"), now))

	// startedAt wins over clock comparisons, even before the window opens.
	assert.Equal(t, PhaseCurrent, DerivePhase(w, tsp("2026-05-31T07:00:00Z"), nil, ts("2026-05-31T07:30:00Z")))

	// No explicit timestamps: clock against the window.
	assert.Equal(t, PhaseUpcoming, DerivePhase(w, nil, nil, ts("2026-05-30T00:00:00Z")))
	assert.Equal(t, PhaseCurrent, DerivePhase(w, nil, nil, ts("2026-06-02T00:00:00Z")))
	assert.Equal(t, PhasePast, DerivePhase(w, nil, nil, ts("2026-06-04T00:00:00Z")))
}

func TestDerivePhase_LegacyExpired(t *testing.T) {
	// Trip window has fully passed but nobody started or completed it.
	w := Window{StartAt: ts("2026-06-01T08:00:00Z"), EndAt: ts("2026-06-01T18:00:00Z")}
	assert.Equal(t, PhasePast, DerivePhase(w, nil, nil, ts("2026-06-05T00:00:00Z")))
}

func TestWithinDayOfStart(t *testing.T) {
	start := ts("2026-06-01T08:00:00Z")

	// Exactly 24h before and exactly at start are both inside.
	assert.True(t, WithinDayOfStart(start, ts("2026-05-31T08:00:00Z")))
	assert.True(t, WithinDayOfStart(start, start))
	assert.True(t, WithinDayOfStart(start, ts("2026-06-01T07:59:59Z")))

	// One second outside on either edge.
	assert.False(t, WithinDayOfStart(start, ts("2026-05-31T07:59:59Z")))
	assert.False(t, WithinDayOfStart(start, ts("2026-06-01T08:00:01Z")))
}

func TestChatAllowed(t *testing.T) {
	start := ts("2026-06-01T08:00:00Z")

	// Current trips always allow chat.
	assert.True(t, ChatAllowed(PhaseCurrent, start, ts("2026-06-01T09:00:00Z")))

	// Past trips never do, even inside a stale pre-start window.
	assert.False(t, ChatAllowed(PhasePast, start, ts("2026-06-01T07:00:00Z")))

	// Upcoming trips gate on the 24h window.
	assert.True(t, ChatAllowed(PhaseUpcoming, start, ts("2026-05-31T10:00:00Z")))
	assert.False(t, ChatAllowed(PhaseUpcoming, start, ts("2026-05-29T10:00:00Z")))
}
