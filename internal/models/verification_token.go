package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationToken is a single-use email verification credential.
// Rows are never deleted on use; Used is flipped instead so consumption
// leaves an audit trail.
type VerificationToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"type:citext;not null;index"`
	Token     string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
	ExpiresAt time.Time `gorm:"type:timestamptz;not null"`
	Used      bool      `gorm:"not null;default:false"`
}

func (VerificationToken) TableName() string {
	return "verification_tokens"
}

func (t *VerificationToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
