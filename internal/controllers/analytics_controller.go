package controllers

import (
	"net/http"
	"time"

	"github.com/assadsharif/chatkit-widget-implementation/internal/middleware"
	"github.com/assadsharif/chatkit-widget-implementation/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AnalyticsController struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsController(analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

type AnalyticsEventRequest struct {
	EventType string                 `json:"event_type" binding:"required"`
	EventData map[string]interface{} `json:"event_data,omitempty"`
}

// LogEvent - record an analytics event, authenticated or anonymous
// POST /api/v1/analytics/event
func (ac *AnalyticsController) LogEvent(c *gin.Context) {
	var req AnalyticsEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_REQUEST", "event_type is required"))
		return
	}

	// OptionalAuth: anonymous requests simply carry no identity.
	var userID *uuid.UUID
	if identity := middleware.GetIdentity(c); identity != nil {
		userID = &identity.User.ID
	}

	event, err := ac.analytics.LogEvent(c.Request.Context(), req.EventType, userID, req.EventData)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("STORE_UNAVAILABLE", "Could not log event"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event_id":  event.ID.String(),
		"logged_at": event.CreatedAt.Format(time.RFC3339),
	})
}
