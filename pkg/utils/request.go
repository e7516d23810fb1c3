package utils

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator wraps go-playground/validator for request structs.
type RequestValidator struct {
	validate *validator.Validate
}

// Validate checks the struct tags of a bound request body.
func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

var (
	validatorOnce     sync.Once
	validatorInstance *RequestValidator
)

// GetValidator returns the shared request validator.
func GetValidator() *RequestValidator {
	validatorOnce.Do(func() {
		validatorInstance = &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
	})
	return validatorInstance
}

// ExtractUserInfo pulls the authenticated user's ID and role out of the
// context, where the JWT middleware stashed them.
func ExtractUserInfo(c echo.Context) (userID, role string, err error) {
	userID, _ = c.Get("userID").(string)
	role, _ = c.Get("userRole").(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication context")
	}
	return userID, role, nil
}

// GetPageLimit reads pagination query params with defaults.
func GetPageLimit(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
