package trips

import (
	"context"
	"testing"
	"time"

	"charter-booking/internal/models"

	"github.com/stretchr/testify/assert"
)

type stubQuoteSource struct {
	quote *models.Quote
	stops []models.ItineraryStop
}

func (s *stubQuoteSource) FindByID(ctx context.Context, quoteID string) (*models.Quote, error) {
	if s.quote == nil || s.quote.ID != quoteID {
		return nil, models.ErrNotFound
	}
	return s.quote, nil
}

func (s *stubQuoteSource) ListStops(ctx context.Context, quoteID string) ([]models.ItineraryStop, error) {
	return s.stops, nil
}

func TestGetTripState(t *testing.T) {
	src := &stubQuoteSource{
		quote: &models.Quote{ID: "q1", UserID: "u1"},
		stops: []models.ItineraryStop{
			{ArriveAt: ts("2026-06-10T09:00:00Z")},
			{ArriveAt: ts("2026-06-10T17:00:00Z")},
		},
	}
	svc := NewService(src)
	svc.now = func() time.Time { return ts("2026-06-09T12:00:00Z") }

	state, err := svc.GetTripState(context.Background(), "q1", "u1", "user")
	assert.NoError(t, err)
	assert.Equal(t, "q1", state.QuoteID)
	assert.Equal(t, ts("2026-06-10T09:00:00Z"), state.Window.StartAt)
	assert.Equal(t, PhaseUpcoming, state.Phase)
	assert.True(t, state.WithinDayOfStart)
	assert.True(t, state.ChatOpen)
}

func TestGetTripState_Ownership(t *testing.T) {
	src := &stubQuoteSource{
		quote: &models.Quote{ID: "q1", UserID: "u1"},
		stops: []models.ItineraryStop{{ArriveAt: ts("2026-06-10T09:00:00Z")}},
	}
	svc := NewService(src)

	_, err := svc.GetTripState(context.Background(), "q1", "someone-else", "user")
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Operators bypass the ownership check.
	_, err = svc.GetTripState(context.Background(), "q1", "someone-else", "admin")
	assert.NoError(t, err)
}

func TestGetTripState_NoItinerary(t *testing.T) {
	src := &stubQuoteSource{quote: &models.Quote{ID: "q1", UserID: "u1"}}
	svc := NewService(src)

	_, err := svc.GetTripState(context.Background(), "q1", "u1", "user")
	assert.ErrorIs(t, err, models.ErrNoItinerary)
}
