package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalyticsEvent records a user interaction. UserID is NULL for
// anonymous events.
type AnalyticsEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	EventType string         `gorm:"type:varchar(64);not null;index" json:"event_type"`
	EventData datatypes.JSON `gorm:"type:jsonb" json:"event_data"`
	CreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now()" json:"created_at"`
}

func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}

func (e *AnalyticsEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
