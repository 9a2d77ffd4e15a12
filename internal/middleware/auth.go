package middleware

import (
	"errors"
	"net/http"

	"github.com/assadsharif/chatkit-widget-implementation/internal/logging"
	"github.com/assadsharif/chatkit-widget-implementation/internal/services"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// RequireAuth resolves the Bearer credential to an identity or rejects
// the request. Store failures fail closed as 503, never as anonymous.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authService.ValidateSession(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUnauthorized):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": gin.H{"code": "UNAUTHORIZED", "message": "Authorization header required"},
				})
			case errors.Is(err, services.ErrSessionExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": gin.H{"code": "SESSION_EXPIRED", "message": "Session has expired or is invalid"},
				})
			default:
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"error": gin.H{"code": "STORE_UNAVAILABLE", "message": "Could not validate session"},
				})
			}
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// OptionalAuth attaches an identity when a valid credential is present
// and otherwise lets the request through as anonymous. "No credential"
// and "bad credential" both degrade, but the distinction is preserved
// in the logs.
func OptionalAuth(authService *services.AuthService, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		identity, err := authService.ValidateSession(c.Request.Context(), header)
		if err != nil {
			log.Warn(c.Request.Context(), "optional_auth_degraded_to_anonymous", "reason", err.Error())
			c.Next()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// GetIdentity returns the identity set by RequireAuth/OptionalAuth, or
// nil for anonymous requests.
func GetIdentity(c *gin.Context) *services.Identity {
	if value, ok := c.Get(identityKey); ok {
		if identity, ok := value.(*services.Identity); ok {
			return identity
		}
	}
	return nil
}
