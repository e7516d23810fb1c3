package pricing

import (
	"net/http"

	"charter-booking/internal/models"
	"charter-booking/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler exposes the admin pricing-config endpoints.
type Handler struct {
	repo RepositoryInterface
}

// NewHandler creates a new pricing handler.
func NewHandler(repo RepositoryInterface) *Handler {
	return &Handler{repo: repo}
}

// GetActiveConfig handles GET /admin/pricing-config.
func (h *Handler) GetActiveConfig(c echo.Context) error {
	cfg, err := h.repo.FindActive(c.Request().Context())
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, cfg)
}

// ListConfigVersions handles GET /admin/pricing-config/versions.
func (h *Handler) ListConfigVersions(c echo.Context) error {
	_, limit := utils.GetPageLimit(c)
	versions, err := h.repo.ListVersions(c.Request().Context(), limit)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, versions)
}

// CreateConfig handles POST /admin/pricing-config. Publishing a new version
// deactivates the predecessor; already-quoted prices are unaffected because
// quotes freeze the values they were priced against.
func (h *Handler) CreateConfig(c echo.Context) error {
	var req models.CreatePricingConfigRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	cfg, err := h.repo.Create(c.Request().Context(), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, cfg)
}
