package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SavedChat struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     *string        `gorm:"type:varchar(255)" json:"title"`
	Messages  datatypes.JSON `gorm:"type:jsonb;not null" json:"messages"`
	CreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now()" json:"created_at"`
}

func (SavedChat) TableName() string {
	return "saved_chats"
}

func (c *SavedChat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ChatMessage is the element shape stored in SavedChat.Messages and
// AnonymousSession.Messages.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
