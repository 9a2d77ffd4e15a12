package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnonymousSession holds pre-signup chat history keyed by a client-side
// anonymous ID, kept around until the visitor authenticates and migrates it.
type AnonymousSession struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	AnonID    string         `gorm:"type:varchar(64);uniqueIndex;not null"`
	Messages  datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now()"`
}

func (AnonymousSession) TableName() string {
	return "anonymous_sessions"
}

func (s *AnonymousSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
