package middleware

import (
	"net/http"
	"strconv"

	"github.com/assadsharif/chatkit-widget-implementation/internal/services"
	"github.com/gin-gonic/gin"
)

// RateLimit gates the handler behind the fixed-window quota for the
// action. Must run after RequireAuth: the session token is the
// rate-limit key. Store errors fail closed.
func RateLimit(limiter *services.RateLimitService, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "UNAUTHORIZED", "message": "Authorization header required"},
			})
			return
		}

		allowed, retryAfter, err := limiter.Check(c.Request.Context(), identity.Session.SessionToken, action)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": gin.H{"code": "STORE_UNAVAILABLE", "message": "Could not check rate limit"},
			})
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":        "RATE_LIMITED",
					"message":     "Too many requests, slow down",
					"retry_after": retryAfter,
				},
			})
			return
		}

		c.Next()
	}
}
