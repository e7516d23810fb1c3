package trips

import (
	"net/http"

	"charter-booking/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler exposes the derived trip-state read endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new trip handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetTripState handles GET /trips/:quoteId/state.
func (h *Handler) GetTripState(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	state, err := h.svc.GetTripState(c.Request().Context(), c.Param("quoteId"), userID, role)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, state)
}

// GetChatEligibility handles GET /trips/:quoteId/chat-eligibility. The chat
// frontend only needs the boolean and, when closed, a displayable reason.
func (h *Handler) GetChatEligibility(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	state, err := h.svc.GetTripState(c.Request().Context(), c.Param("quoteId"), userID, role)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	body := map[string]interface{}{"chat_open": state.ChatOpen}
	if !state.ChatOpen {
		if state.Phase == PhasePast {
			body["reason"] = "trip has ended"
		} else {
			body["reason"] = "chat opens 24 hours before departure"
		}
	}
	return utils.RespondWithJSON(c, http.StatusOK, body)
}
