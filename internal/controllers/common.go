package controllers

import (
	"regexp"

	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"github.com/gin-gonic/gin"
)

// errorResponse is the structured error body every endpoint returns:
// {"error": {"code": ..., "message": ...}}
func errorResponse(code, message string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": message}}
}

// UserProfile is the client-facing slice of a user row.
type UserProfile struct {
	Email string          `json:"email"`
	Tier  models.UserTier `json:"tier"`
}

func profileOf(user *models.User) UserProfile {
	return UserProfile{Email: user.Email, Tier: user.Tier}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
