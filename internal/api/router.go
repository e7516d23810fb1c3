package api

import (
	"net/http"

	"charter-booking/internal/api/middleware"
	"charter-booking/internal/modules/pricing"
	"charter-booking/internal/modules/quotes"
	"charter-booking/internal/modules/reservations"
	"charter-booking/internal/modules/trips"

	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all the API endpoints for the application.
func SetupRoutes(
	e *echo.Echo,
	jwtSecret string,
	quoteHandler *quotes.Handler,
	tripHandler *trips.Handler,
	reservationHandler *reservations.Handler,
	pricingHandler *pricing.Handler,
) {
	authMiddleware := middleware.JWTMAuth(jwtSecret)
	adminRequired := middleware.AdminRequired()

	// --- Public Routes ---
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to the Charter Booking Platform!"})
	})

	// --- Quote Routes (Customer) ---
	quoteGroup := e.Group("/quotes", authMiddleware)
	{
		quoteGroup.POST("", quoteHandler.CreateQuote)
		quoteGroup.GET("", quoteHandler.ListMyQuotes)
		quoteGroup.GET("/:quoteId", quoteHandler.GetQuoteDetails)
		quoteGroup.PUT("/:quoteId", quoteHandler.UpdateQuote)
		quoteGroup.POST("/:quoteId/submit", quoteHandler.SubmitQuote)
		quoteGroup.POST("/:quoteId/accept", quoteHandler.AcceptOffer)
		quoteGroup.POST("/:quoteId/pay", quoteHandler.Pay)
	}

	// --- Derived Trip State Routes ---
	tripGroup := e.Group("/trips", authMiddleware)
	{
		tripGroup.GET("/:quoteId/state", tripHandler.GetTripState)
		tripGroup.GET("/:quoteId/chat-eligibility", tripHandler.GetChatEligibility)
	}

	// --- Reservation Routes ---
	reservationGroup := e.Group("/reservations", authMiddleware)
	{
		reservationGroup.GET("", reservationHandler.ListMyReservations)
		reservationGroup.GET("/:reservationId", reservationHandler.GetReservationDetails)
	}

	// --- Admin / Operator Routes ---
	adminGroup := e.Group("/admin", authMiddleware, adminRequired)
	{
		// Quote management
		adminGroup.GET("/quotes", quoteHandler.ListQuotesByStatus)
		adminGroup.POST("/quotes/:quoteId/negotiate", quoteHandler.StartNegotiation)
		adminGroup.POST("/quotes/:quoteId/reject", quoteHandler.RejectQuote)
		adminGroup.POST("/quotes/:quoteId/assign-driver", quoteHandler.AssignDriver)

		// Pricing configuration
		adminGroup.GET("/pricing-config", pricingHandler.GetActiveConfig)
		adminGroup.GET("/pricing-config/versions", pricingHandler.ListConfigVersions)
		adminGroup.POST("/pricing-config", pricingHandler.CreateConfig)
	}
}
