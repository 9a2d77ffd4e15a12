package routes

import (
	"github.com/assadsharif/chatkit-widget-implementation/internal/controllers"
	"github.com/gin-gonic/gin"
)

func RegisterRateLimitRoutes(router *gin.RouterGroup, rateLimitController *controllers.RateLimitController, mw Middleware, integrationTestMode bool) {
	// GET /ratelimit/status - Read-only counter diagnostics
	router.GET("/status", mw.RequireAuth, rateLimitController.Status)

	// POST /ratelimit/reset - Ops/test override; never routed in
	// production
	if integrationTestMode {
		router.POST("/reset", mw.RequireAuth, rateLimitController.Reset)
	}
}
