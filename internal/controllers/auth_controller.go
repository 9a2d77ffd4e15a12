package controllers

import (
	"errors"
	"net/http"

	"github.com/assadsharif/chatkit-widget-implementation/internal/logging"
	"github.com/assadsharif/chatkit-widget-implementation/internal/middleware"
	"github.com/assadsharif/chatkit-widget-implementation/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthController exposes the signup/verify/session endpoints.
type AuthController struct {
	auth      *services.AuthService
	email     *services.EmailService
	chats     *services.ChatService
	analytics *services.AnalyticsService
	log       logging.Logger
}

func NewAuthController(
	auth *services.AuthService,
	email *services.EmailService,
	chats *services.ChatService,
	analytics *services.AnalyticsService,
	log logging.Logger,
) *AuthController {
	return &AuthController{auth: auth, email: email, chats: chats, analytics: analytics, log: log}
}

type SignupRequest struct {
	Email              string `json:"email"`
	ConsentDataStorage bool   `json:"consent_data_storage"`
	MigrateSession     *bool  `json:"migrate_session,omitempty"`
}

// Signup - user signup with email verification
// POST /api/v1/auth/signup
func (ac *AuthController) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_REQUEST", "Invalid request body"))
		return
	}
	if !isValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_EMAIL", "Please enter a valid email address"))
		return
	}
	if !req.ConsentDataStorage {
		c.JSON(http.StatusBadRequest, errorResponse("CONSENT_REQUIRED", "You must consent to data storage"))
		return
	}

	ctx := c.Request.Context()
	user, err := ac.auth.RegisterUser(ctx, req.Email)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("STORE_UNAVAILABLE", "Could not create account"))
		return
	}

	token, err := ac.auth.IssueVerificationToken(ctx, req.Email)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("STORE_UNAVAILABLE", "Could not issue verification token"))
		return
	}

	if err := ac.email.SendVerificationEmail(ctx, req.Email, token); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("EMAIL_FAILED", "Could not send verification email"))
		return
	}

	ac.logEvent(c, "signup", &user.ID, nil)
	c.JSON(http.StatusOK, gin.H{"status": "verification_sent"})
}

type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// Verify - consume a verification token and start a session
// POST /api/v1/auth/verify
func (ac *AuthController) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_REQUEST", "Token is required"))
		return
	}

	ctx := c.Request.Context()
	user, session, err := ac.auth.VerifyEmail(ctx, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenNotFound):
			c.JSON(http.StatusBadRequest, errorResponse("INVALID_TOKEN", "Invalid verification token"))
		case errors.Is(err, services.ErrTokenExpired):
			c.JSON(http.StatusBadRequest, errorResponse("TOKEN_EXPIRED", "Verification token has expired"))
		case errors.Is(err, services.ErrTokenAlreadyUsed):
			c.JSON(http.StatusBadRequest, errorResponse("TOKEN_USED", "Verification token has already been used"))
		default:
			c.JSON(http.StatusServiceUnavailable, errorResponse("STORE_UNAVAILABLE", "Could not verify email"))
		}
		return
	}

	ac.logEvent(c, "email_verified", &user.ID, nil)
	c.JSON(http.StatusOK, gin.H{
		"session_token": session.SessionToken,
		"user_profile":  profileOf(user),
	})
}

// SessionCheck - check session validity
// GET /api/v1/auth/session-check
func (ac *AuthController) SessionCheck(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  profileOf(identity.User),
	})
}

// VerificationStatus - check email verification status
// GET /api/v1/auth/verification-status
func (ac *AuthController) VerificationStatus(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	c.JSON(http.StatusOK, gin.H{"verified": identity.User.EmailVerified})
}

// RefreshToken - mint a successor session token
// POST /api/v1/auth/refresh-token
func (ac *AuthController) RefreshToken(c *gin.Context) {
	session, err := ac.auth.RefreshSession(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, errorResponse("UNAUTHORIZED", "Authorization header required"))
		case errors.Is(err, services.ErrSessionExpired):
			c.JSON(http.StatusUnauthorized, errorResponse("SESSION_EXPIRED", "Session has expired or is invalid"))
		default:
			c.JSON(http.StatusServiceUnavailable, errorResponse("STORE_UNAVAILABLE", "Could not refresh session"))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": session.SessionToken})
}

type ResendVerificationRequest struct {
	Email string `json:"email"`
}

// ResendVerification - issue and deliver a fresh verification token
// POST /api/v1/auth/resend-verification
func (ac *AuthController) ResendVerification(c *gin.Context) {
	var req ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_REQUEST", "Invalid request body"))
		return
	}
	if !isValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_EMAIL", "Please enter a valid email address"))
		return
	}

	ctx := c.Request.Context()
	token, err := ac.auth.IssueVerificationToken(ctx, req.Email)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("STORE_UNAVAILABLE", "Could not issue verification token"))
		return
	}
	if err := ac.email.SendVerificationEmail(ctx, req.Email, token); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("EMAIL_FAILED", "Could not send verification email"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "verification_sent"})
}

type MigrateSessionRequest struct {
	AnonID string `json:"anon_id" binding:"required"`
}

// MigrateSession - move anonymous chat history to the signed-in user
// POST /api/v1/auth/migrate-session
func (ac *AuthController) MigrateSession(c *gin.Context) {
	var req MigrateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_REQUEST", "anon_id is required"))
		return
	}

	identity := middleware.GetIdentity(c)
	ctx := c.Request.Context()
	migrated, err := ac.chats.MigrateAnonymousSession(ctx, identity.User.ID, req.AnonID)
	if err != nil {
		if errors.Is(err, services.ErrAnonymousSessionNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("SESSION_NOT_FOUND", "Anonymous session not found"))
			return
		}
		c.JSON(http.StatusServiceUnavailable, errorResponse("STORE_UNAVAILABLE", "Could not migrate session"))
		return
	}

	ac.logEvent(c, "anonymous_to_authenticated", &identity.User.ID, map[string]interface{}{
		"migrated_messages": migrated,
	})
	c.JSON(http.StatusOK, gin.H{"migrated_messages": migrated})
}

// Analytics failures never fail the user-facing request.
func (ac *AuthController) logEvent(c *gin.Context, eventType string, userID *uuid.UUID, data map[string]interface{}) {
	ctx := c.Request.Context()
	if _, err := ac.analytics.LogEvent(ctx, eventType, userID, data); err != nil {
		ac.log.Warn(ctx, "analytics_event_failed", "event_type", eventType, "error", err.Error())
	}
}
