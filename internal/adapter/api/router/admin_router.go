package router

import (
	"jasahub/internal/adapter/api/handler"
	"jasahub/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupAdminDisputeRouter registers the operator surface. Every route
// requires authentication plus operator or admin role.
func SetupAdminDisputeRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, operatorMiddleware *middleware.OperatorMiddleware) {
	adminHandler := handler.GetAdminDisputeHandler()

	admin := e.Group("/v1/admin/disputes")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(operatorMiddleware.OperatorOnly)

	admin.GET("", adminHandler.ListDisputes)
	admin.GET("/stats", adminHandler.GetStats)
	admin.GET("/:id", adminHandler.GetDispute)
	admin.GET("/:id/logs", adminHandler.GetDisputeLogs)

	admin.POST("/:id/assign", adminHandler.AssignDispute)
	admin.POST("/:id/review", adminHandler.StartReview)
	admin.POST("/:id/resolve", adminHandler.ResolveDispute)
	admin.POST("/:id/escalate", adminHandler.EscalateDispute)
	admin.POST("/:id/close", adminHandler.CloseDispute)

	admin.POST("/:id/messages", adminHandler.PostMessage)

	// Staff management; the use case further restricts these to admins
	operatorHandler := handler.GetOperatorHandler()
	operators := e.Group("/v1/admin/operators")
	operators.Use(authMiddleware.Authenticate)
	operators.Use(operatorMiddleware.OperatorOnly)

	operators.POST("", operatorHandler.ProvisionOperator)
	operators.PUT("/:id/role", operatorHandler.UpdateOperatorRole)
}
