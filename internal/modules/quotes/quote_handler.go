package quotes

import (
	"net/http"

	"charter-booking/internal/models"
	"charter-booking/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for quotes.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new quote handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CreateQuote(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.CreateQuoteRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	quote, err := h.svc.CreateQuote(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, quote)
}

func (h *Handler) UpdateQuote(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.UpdateQuoteRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	quote, err := h.svc.UpdateQuote(c.Request().Context(), c.Param("quoteId"), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, quote)
}

func (h *Handler) ListMyQuotes(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	page, limit := utils.GetPageLimit(c)
	quotes, total, err := h.svc.ListUserQuotes(c.Request().Context(), userID, page, limit)
	if err != nil {
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve quotes")
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"quotes": quotes, "total": total})
}

func (h *Handler) GetQuoteDetails(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	quote, err := h.svc.GetQuoteDetails(c.Request().Context(), c.Param("quoteId"), userID, role)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, quote)
}

func (h *Handler) SubmitQuote(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	quote, err := h.svc.SubmitQuote(c.Request().Context(), c.Param("quoteId"), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, quote)
}

func (h *Handler) AcceptOffer(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	quote, err := h.svc.AcceptOffer(c.Request().Context(), c.Param("quoteId"), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, quote)
}

func (h *Handler) Pay(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.PayQuoteRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	reservation, err := h.svc.Pay(c.Request().Context(), c.Param("quoteId"), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, reservation)
}

// --- Operator handlers ---

func (h *Handler) ListQuotesByStatus(c echo.Context) error {
	status := models.QuoteStatus(c.QueryParam("status"))
	if status == "" {
		status = models.StatusSubmitted
	}

	page, limit := utils.GetPageLimit(c)
	quotes, total, err := h.svc.ListQuotesByStatus(c.Request().Context(), status, page, limit)
	if err != nil {
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve quotes")
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"quotes": quotes, "total": total})
}

func (h *Handler) StartNegotiation(c echo.Context) error {
	quote, err := h.svc.StartNegotiation(c.Request().Context(), c.Param("quoteId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, quote)
}

func (h *Handler) RejectQuote(c echo.Context) error {
	var req models.RejectQuoteRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	quote, err := h.svc.RejectQuote(c.Request().Context(), c.Param("quoteId"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, quote)
}

func (h *Handler) AssignDriver(c echo.Context) error {
	var req models.AssignDriverRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}

	quote, err := h.svc.AssignDriver(c.Request().Context(), c.Param("quoteId"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, quote)
}
