package routes

import (
	"github.com/assadsharif/chatkit-widget-implementation/internal/controllers"
	"github.com/gin-gonic/gin"
)

func RegisterAnalyticsRoutes(router *gin.RouterGroup, analyticsController *controllers.AnalyticsController, mw Middleware) {
	// POST /analytics/event - Optional auth; invalid credentials degrade
	// to anonymous instead of failing the event
	router.POST("/event", mw.OptionalAuth, analyticsController.LogEvent)
}
