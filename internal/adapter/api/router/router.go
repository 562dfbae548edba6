package router

import (
	"jasahub/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, operatorMiddleware *middleware.OperatorMiddleware) {
	SetupDisputeRouter(e, authMiddleware)
	SetupAdminDisputeRouter(e, authMiddleware, operatorMiddleware)
	SetupHealthRouter(e)
}
