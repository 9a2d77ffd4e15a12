package controllers

import (
	"net/http"
	"time"

	"github.com/assadsharif/chatkit-widget-implementation/internal/logging"
	"github.com/assadsharif/chatkit-widget-implementation/internal/middleware"
	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"github.com/assadsharif/chatkit-widget-implementation/internal/services"
	"github.com/gin-gonic/gin"
)

type ChatController struct {
	chats     *services.ChatService
	analytics *services.AnalyticsService
	log       logging.Logger
}

func NewChatController(chats *services.ChatService, analytics *services.AnalyticsService, log logging.Logger) *ChatController {
	return &ChatController{chats: chats, analytics: analytics, log: log}
}

type SaveChatRequest struct {
	Messages []models.ChatMessage `json:"messages" binding:"required"`
	Title    *string              `json:"title,omitempty"`
}

// SaveChat - persist a chat transcript for the authenticated user
// POST /api/v1/chat/save
func (cc *ChatController) SaveChat(c *gin.Context) {
	var req SaveChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_REQUEST", "messages are required"))
		return
	}

	identity := middleware.GetIdentity(c)
	ctx := c.Request.Context()
	chat, err := cc.chats.SaveChat(ctx, identity.User.ID, req.Title, req.Messages)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("STORE_UNAVAILABLE", "Could not save chat"))
		return
	}

	if _, err := cc.analytics.LogEvent(ctx, "save_chat", &identity.User.ID, map[string]interface{}{
		"chat_id": chat.ID.String(),
	}); err != nil {
		cc.log.Warn(ctx, "analytics_event_failed", "event_type", "save_chat", "error", err.Error())
	}

	c.JSON(http.StatusOK, gin.H{
		"chat_id":  chat.ID.String(),
		"saved_at": chat.CreatedAt.Format(time.RFC3339),
	})
}
