package middleware

import (
	"net/http"

	"jasahub/internal/domain/repository"

	"github.com/labstack/echo/v4"
)

// OperatorMiddleware gates the admin dispute surface to staff accounts.
type OperatorMiddleware struct {
	userRepo repository.UserRepository
}

func NewOperatorMiddleware(userRepo repository.UserRepository) *OperatorMiddleware {
	return &OperatorMiddleware{
		userRepo: userRepo,
	}
}

func (m *OperatorMiddleware) OperatorOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {

		uid, ok := c.Get("uid").(string)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
		}

		user, err := m.userRepo.GetByID(c.Request().Context(), uid)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify operator privileges")
		}

		if !user.IsOperator() {
			return echo.NewHTTPError(http.StatusForbidden, "Operator privileges required")
		}

		return next(c)
	}
}
