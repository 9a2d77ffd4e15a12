package routes

import (
	"github.com/assadsharif/chatkit-widget-implementation/internal/controllers"
	"github.com/gin-gonic/gin"
)

func RegisterAuthRoutes(router *gin.RouterGroup, authController *controllers.AuthController, mw Middleware) {
	// Public auth endpoints
	// POST /auth/signup - Start signup, send verification email
	router.POST("/signup", authController.Signup)

	// POST /auth/verify - Consume verification token, issue session
	router.POST("/verify", authController.Verify)

	// POST /auth/resend-verification - Reissue verification token
	router.POST("/resend-verification", authController.ResendVerification)

	// POST /auth/refresh-token - Mint successor session token.
	// The controller validates the bearer credential itself so it can
	// report UNAUTHORIZED vs SESSION_EXPIRED distinctly.
	router.POST("/refresh-token", authController.RefreshToken)

	// Protected auth endpoints (require a live session)
	protected := router.Group("")
	protected.Use(mw.RequireAuth)
	{
		// GET /auth/session-check - Validate session, touch activity
		protected.GET("/session-check", authController.SessionCheck)

		// GET /auth/verification-status - Email verification state
		protected.GET("/verification-status", authController.VerificationStatus)

		// POST /auth/migrate-session - Adopt anonymous chat history;
		// covered by the default quota
		protected.POST("/migrate-session", mw.RateLimitDefault, authController.MigrateSession)
	}
}
