package utils

import (
	"errors"
	"net/http"

	"charter-booking/internal/models"

	"github.com/labstack/echo/v4"
)

// RespondWithJSON writes a JSON payload with the given status code.
func RespondWithJSON(c echo.Context, status int, payload interface{}) error {
	return c.JSON(status, payload)
}

// RespondWithError writes the uniform error body.
func RespondWithError(c echo.Context, status int, message string) error {
	return c.JSON(status, models.ErrorResponse{Message: message})
}

// HandleServiceError maps domain errors onto HTTP responses. Conflict and
// window-expired errors keep their specific messages because the client
// renders them differently (retry with a new driver vs. request a new quote).
func HandleServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return RespondWithError(c, http.StatusNotFound, models.ErrNotFound.Error())
	case errors.Is(err, models.ErrPaymentWindowExpired):
		return RespondWithError(c, http.StatusGone, models.ErrPaymentWindowExpired.Error())
	case errors.Is(err, models.ErrQuoteNotEditable),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrDriverConflict),
		errors.Is(err, models.ErrVehicleConflict):
		return RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrDriverNotEligible),
		errors.Is(err, models.ErrNoDriverAvailable),
		errors.Is(err, models.ErrNoItinerary),
		errors.Is(err, models.ErrMissingRouteData),
		errors.Is(err, models.ErrMissingVehicleSelection):
		return RespondWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrNoActivePricingConfig):
		return RespondWithError(c, http.StatusServiceUnavailable, models.ErrNoActivePricingConfig.Error())
	default:
		c.Logger().Errorf("unhandled service error: %v", err)
		return RespondWithError(c, http.StatusInternalServerError, "an unexpected error occurred")
	}
}
