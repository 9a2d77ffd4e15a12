package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserTier string

const (
	TierLightweight UserTier = "lightweight"
	TierFull        UserTier = "full"
	TierPremium     UserTier = "premium"
)

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Email         string    `gorm:"type:citext;uniqueIndex;not null" json:"email"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	Tier          UserTier  `gorm:"type:varchar(16);not null;default:'lightweight'" json:"tier"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time `gorm:"type:timestamptz;not null;default:now()" json:"updated_at"`

	// Relationships
	Sessions   []Session        `gorm:"foreignKey:UserID" json:"-"`
	SavedChats []SavedChat      `gorm:"foreignKey:UserID" json:"-"`
	Events     []AnalyticsEvent `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
