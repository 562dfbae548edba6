package router

import (
	"jasahub/internal/adapter/api/handler"
	"jasahub/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupDisputeRouter registers the party-facing dispute surface. Filing and
// messaging are rate limited; everything requires an authenticated caller.
func SetupDisputeRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	disputeHandler := handler.GetDisputeHandler()
	evidenceHandler := handler.GetEvidenceHandler()

	disputes := e.Group("/v1/disputes")
	disputes.Use(authMiddleware.Authenticate)

	disputes.POST("", disputeHandler.FileDispute, middleware.FileDisputeRateLimit())
	disputes.GET("", disputeHandler.ListMyDisputes)
	disputes.GET("/:id", disputeHandler.GetDispute)
	disputes.POST("/:id/messages", disputeHandler.PostMessage, middleware.MessageRateLimit())

	disputes.POST("/evidence", evidenceHandler.UploadEvidence)
}
