package controllers

import (
	"net/http"

	"github.com/assadsharif/chatkit-widget-implementation/internal/logging"
	"github.com/assadsharif/chatkit-widget-implementation/internal/middleware"
	"github.com/assadsharif/chatkit-widget-implementation/internal/services"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	chats       *services.ChatService
	personalize *services.PersonalizeService
	analytics   *services.AnalyticsService
	log         logging.Logger
}

func NewUserController(
	chats *services.ChatService,
	personalize *services.PersonalizeService,
	analytics *services.AnalyticsService,
	log logging.Logger,
) *UserController {
	return &UserController{chats: chats, personalize: personalize, analytics: analytics, log: log}
}

type PersonalizeRequest struct {
	Preferences map[string]interface{} `json:"preferences,omitempty"`
}

// Personalize - generate content recommendations for the user
// POST /api/v1/user/personalize
func (uc *UserController) Personalize(c *gin.Context) {
	var req PersonalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_REQUEST", "Invalid request body"))
		return
	}

	identity := middleware.GetIdentity(c)
	ctx := c.Request.Context()

	history, err := uc.chats.HistoryForUser(ctx, identity.User.ID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("STORE_UNAVAILABLE", "Could not load chat history"))
		return
	}

	result := uc.personalize.GetRecommendations(ctx, identity.User, req.Preferences, history)

	if _, err := uc.analytics.LogEvent(ctx, "personalize", &identity.User.ID, nil); err != nil {
		uc.log.Warn(ctx, "analytics_event_failed", "event_type", "personalize", "error", err.Error())
	}

	c.JSON(http.StatusOK, result)
}
