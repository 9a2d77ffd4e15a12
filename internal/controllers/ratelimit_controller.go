package controllers

import (
	"net/http"

	"github.com/assadsharif/chatkit-widget-implementation/internal/middleware"
	"github.com/assadsharif/chatkit-widget-implementation/internal/services"
	"github.com/gin-gonic/gin"
)

type RateLimitController struct {
	limiter *services.RateLimitService
}

func NewRateLimitController(limiter *services.RateLimitService) *RateLimitController {
	return &RateLimitController{limiter: limiter}
}

// Status - read-only rate limit diagnostics for the caller's session
// GET /api/v1/ratelimit/status
func (rc *RateLimitController) Status(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	status, err := rc.limiter.Status(c.Request.Context(), identity.Session.SessionToken)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("STORE_UNAVAILABLE", "Could not load rate limit status"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"rate_limits": status})
}

type RateLimitResetRequest struct {
	Action string `json:"action" binding:"required"`
}

// Reset - administrative counter reset, only routed in integration
// test mode
// POST /api/v1/ratelimit/reset
func (rc *RateLimitController) Reset(c *gin.Context) {
	var req RateLimitResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_REQUEST", "action is required"))
		return
	}

	identity := middleware.GetIdentity(c)
	if err := rc.limiter.Reset(c.Request.Context(), identity.Session.SessionToken, req.Action); err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("STORE_UNAVAILABLE", "Could not reset rate limit"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
