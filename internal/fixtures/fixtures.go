// Package fixtures seeds deterministic data for integration test mode.
// None of this runs in production.
package fixtures

import (
	"time"

	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"gorm.io/gorm"
)

// Deterministic test data (DO NOT USE IN PRODUCTION)
const (
	TestUserEmail         = "test@integration.local"
	TestSessionToken      = "integration-test-session-token-12345"
	TestVerificationToken = "integration-test-verification-token-67890"
)

// Setup seeds the test user, a live session and an unused verification
// token. Safe to run repeatedly: existing rows are refreshed, not
// duplicated.
func Setup(db *gorm.DB) error {
	user, err := seedUser(db)
	if err != nil {
		return err
	}
	if err := seedSession(db, user); err != nil {
		return err
	}
	return seedVerificationToken(db)
}

func seedUser(db *gorm.DB) (*models.User, error) {
	var user models.User
	err := db.First(&user, "email = ?", TestUserEmail).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user = models.User{
		Email:         TestUserEmail,
		EmailVerified: true,
		Tier:          models.TierLightweight,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func seedSession(db *gorm.DB, user *models.User) error {
	now := time.Now().UTC()
	expires := now.Add(24 * time.Hour)

	var session models.Session
	err := db.First(&session, "session_token = ?", TestSessionToken).Error
	if err == nil {
		return db.Model(&session).Updates(map[string]interface{}{
			"expires_at":    expires,
			"last_activity": now,
		}).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	session = models.Session{
		UserID:       user.ID,
		SessionToken: TestSessionToken,
		CreatedAt:    now,
		ExpiresAt:    &expires,
		LastActivity: now,
	}
	return db.Create(&session).Error
}

func seedVerificationToken(db *gorm.DB) error {
	now := time.Now().UTC()
	expires := now.Add(10 * time.Minute)

	var token models.VerificationToken
	err := db.First(&token, "token = ?", TestVerificationToken).Error
	if err == nil {
		return db.Model(&token).Updates(map[string]interface{}{
			"expires_at": expires,
			"used":       false,
		}).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	token = models.VerificationToken{
		Email:     TestUserEmail,
		Token:     TestVerificationToken,
		CreatedAt: now,
		ExpiresAt: expires,
		Used:      false,
	}
	return db.Create(&token).Error
}
