package routes

import (
	"github.com/assadsharif/chatkit-widget-implementation/internal/controllers"
	"github.com/gin-gonic/gin"
)

func RegisterChatRoutes(router *gin.RouterGroup, chatController *controllers.ChatController, mw Middleware) {
	// POST /chat/save - Save a transcript; quota-gated per session
	router.POST("/save", mw.RequireAuth, mw.RateLimitSave, chatController.SaveChat)
}
