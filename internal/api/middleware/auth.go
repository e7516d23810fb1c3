package middleware

import (
	"errors"
	"net/http"

	"charter-booking/internal/models"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTMAuth configures and returns Echo's JWT middleware.
func JWTMAuth(jwtSecretKey string) echo.MiddlewareFunc {
	config := echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(models.JwtCustomClaims)
		},
		SigningKey: []byte(jwtSecretKey),

		// Stash our custom claims into the context so handlers can read
		// them without re-parsing the token.
		SuccessHandler: func(c echo.Context) {
			userToken := c.Get("user").(*jwt.Token)
			claims := userToken.Claims.(*models.JwtCustomClaims)

			c.Set("userID", claims.UserID)
			c.Set("userEmail", claims.Email)
			c.Set("userRole", claims.Role)
		},

		ErrorHandler: func(c echo.Context, err error) error {
			c.Logger().Errorf("JWT Error: %v", err)

			if errors.Is(err, echojwt.ErrJWTMissing) {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Missing or malformed JWT"})
			}
			if errors.Is(err, jwt.ErrTokenMalformed) {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Token is malformed"})
			} else if errors.Is(err, jwt.ErrTokenExpired) {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Token has expired"})
			} else if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid token signature"})
			}

			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid or expired JWT"})
		},
	}
	return echojwt.WithConfig(config)
}

// AdminRequired restricts a route group to operator/admin tokens.
func AdminRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("userRole").(string)
			if role != "admin" {
				return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Admin privileges required"})
			}
			return next(c)
		}
	}
}
