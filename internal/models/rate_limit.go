package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RateLimit is a fixed-window counter for one (session token, action)
// pair. At most one row exists per pair; the unique index is what lets
// concurrent first requests race safely.
type RateLimit struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionToken string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_rate_limits_token_action"`
	Action       string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_rate_limits_token_action"`
	Count        int       `gorm:"not null;default:0"`
	WindowStart  time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

func (RateLimit) TableName() string {
	return "rate_limits"
}

func (r *RateLimit) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
