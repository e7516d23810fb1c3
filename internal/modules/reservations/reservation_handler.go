package reservations

import (
	"net/http"

	"charter-booking/internal/models"
	"charter-booking/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler exposes reservation read endpoints.
type Handler struct {
	repo RepositoryInterface
}

// NewHandler creates a new reservation handler.
func NewHandler(repo RepositoryInterface) *Handler {
	return &Handler{repo: repo}
}

// ListMyReservations handles GET /reservations.
func (h *Handler) ListMyReservations(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	page, limit := utils.GetPageLimit(c)
	out, total, err := h.repo.ListByUserID(c.Request().Context(), userID, page, limit)
	if err != nil {
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reservations")
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"reservations": out, "total": total})
}

// GetReservationDetails handles GET /reservations/:reservationId.
func (h *Handler) GetReservationDetails(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	res, err := h.repo.FindByID(c.Request().Context(), c.Param("reservationId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	if role != "admin" && res.UserID != userID {
		return utils.HandleServiceError(c, models.ErrNotFound)
	}
	return utils.RespondWithJSON(c, http.StatusOK, res)
}
