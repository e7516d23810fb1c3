package trips

import (
	"context"
	"time"

	"charter-booking/internal/models"
)

// QuoteSourceInterface is the slice of the quote repository the trip read
// paths need.
type QuoteSourceInterface interface {
	FindByID(ctx context.Context, quoteID string) (*models.Quote, error)
	ListStops(ctx context.Context, quoteID string) ([]models.ItineraryStop, error)
}

// TripState is the derived temporal state of a trip. Nothing here is stored;
// it is recomputed from the itinerary and the clock on every read.
type TripState struct {
	QuoteID          string `json:"quote_id"`
	Window           Window `json:"window"`
	Phase            Phase  `json:"phase"`
	WithinDayOfStart bool   `json:"within_day_of_start"`
	ChatOpen         bool   `json:"chat_open"`
}

// Service derives trip state for dashboards and the chat gate.
type Service struct {
	quotes QuoteSourceInterface
	now    func() time.Time
}

// NewService creates a new trip service.
func NewService(quotes QuoteSourceInterface) *Service {
	return &Service{quotes: quotes, now: time.Now}
}

// GetTripState computes the trip window, lifecycle phase and chat gate for
// a quote. Ownership is enforced for plain users.
func (s *Service) GetTripState(ctx context.Context, quoteID, userID, role string) (*TripState, error) {
	quote, err := s.quotes.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if role != "admin" && quote.UserID != userID {
		return nil, models.ErrNotFound
	}

	stops, err := s.quotes.ListStops(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	window, err := DeriveWindow(stops)
	if err != nil {
		return nil, err
	}

	now := s.now()
	phase := DerivePhase(window, quote.StartedAt, quote.CompletedAt, now)
	return &TripState{
		QuoteID:          quote.ID,
		Window:           window,
		Phase:            phase,
		WithinDayOfStart: WithinDayOfStart(window.StartAt, now),
		ChatOpen:         ChatAllowed(phase, window.StartAt, now),
	}, nil
}
