package models

// This file provides a central import point for all models
// and helper functions shared across them

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// AllModels returns all model types for GORM operations
// Note: Migrations are handled by golang-migrate, not GORM AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&VerificationToken{},
		&SavedChat{},
		&AnonymousSession{},
		&RateLimit{},
		&AnalyticsEvent{},
	}
}

// GenerateSecureToken returns a URL-safe random token with n bytes of
// entropy. Session and verification tokens use n=32 (256 bits).
func GenerateSecureToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
