package routes

import (
	"github.com/assadsharif/chatkit-widget-implementation/internal/controllers"
	"github.com/gin-gonic/gin"
)

func RegisterUserRoutes(router *gin.RouterGroup, userController *controllers.UserController, mw Middleware) {
	// POST /user/personalize - Recommendations; quota-gated per session
	router.POST("/personalize", mw.RequireAuth, mw.RateLimitPersonal, userController.Personalize)
}
