package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is an opaque bearer session. ExpiresAt is NULL when the session
// has no absolute expiry.
type Session struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	SessionToken string     `gorm:"type:varchar(64);uniqueIndex;not null"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now()"`
	ExpiresAt    *time.Time `gorm:"type:timestamptz;index"`
	LastActivity time.Time  `gorm:"type:timestamptz;not null;default:now()"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
