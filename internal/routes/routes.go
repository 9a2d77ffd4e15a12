package routes

import (
	"github.com/assadsharif/chatkit-widget-implementation/internal/controllers"
	"github.com/gin-gonic/gin"
)

// Controllers bundles everything SetupRoutes wires up.
type Controllers struct {
	Auth      *controllers.AuthController
	Chat      *controllers.ChatController
	User      *controllers.UserController
	Analytics *controllers.AnalyticsController
	RateLimit *controllers.RateLimitController
}

// Middleware bundles the cross-cutting handlers routes depend on.
type Middleware struct {
	RequireAuth       gin.HandlerFunc
	OptionalAuth      gin.HandlerFunc
	RateLimitDefault  gin.HandlerFunc
	RateLimitSave     gin.HandlerFunc
	RateLimitPersonal gin.HandlerFunc
}

// SetupRoutes registers all application routes.
func SetupRoutes(router *gin.Engine, ctrl Controllers, mw Middleware, integrationTestMode bool) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	authGroup := api.Group("/auth")
	RegisterAuthRoutes(authGroup, ctrl.Auth, mw)

	chatGroup := api.Group("/chat")
	RegisterChatRoutes(chatGroup, ctrl.Chat, mw)

	userGroup := api.Group("/user")
	RegisterUserRoutes(userGroup, ctrl.User, mw)

	analyticsGroup := api.Group("/analytics")
	RegisterAnalyticsRoutes(analyticsGroup, ctrl.Analytics, mw)

	rateLimitGroup := api.Group("/ratelimit")
	RegisterRateLimitRoutes(rateLimitGroup, ctrl.RateLimit, mw, integrationTestMode)
}
