package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/assadsharif/chatkit-widget-implementation/internal/logging"
	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"github.com/assadsharif/chatkit-widget-implementation/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserStats aggregates a user's analytics history.
type UserStats struct {
	TotalChats            int       `json:"total_chats"`
	TotalSaves            int       `json:"total_saves"`
	TotalPersonalizations int       `json:"total_personalizations"`
	SignupDate            time.Time `json:"signup_date"`
	LastActivity          time.Time `json:"last_activity"`
}

// AnalyticsService records interaction events. Events are best-effort
// from the caller's point of view but failures are still surfaced.
type AnalyticsService struct {
	events repositories.AnalyticsRepository
	users  repositories.UserRepository
	log    logging.Logger
}

func NewAnalyticsService(
	events repositories.AnalyticsRepository,
	users repositories.UserRepository,
	log logging.Logger,
) *AnalyticsService {
	return &AnalyticsService{events: events, users: users, log: log}
}

// LogEvent stores an event. userID is nil for anonymous events.
func (s *AnalyticsService) LogEvent(ctx context.Context, eventType string, userID *uuid.UUID, data map[string]interface{}) (*models.AnalyticsEvent, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode event data: %w", err)
	}

	event := &models.AnalyticsEvent{
		UserID:    userID,
		EventType: eventType,
		EventData: datatypes.JSON(payload),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "analytics_event_logged", "event_type", eventType, "anonymous", userID == nil)
	return event, nil
}

// GetUserStats aggregates event counts for the user behind the email.
// Returns nil when the user does not exist.
func (s *AnalyticsService) GetUserStats(ctx context.Context, email string) (*UserStats, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	events, err := s.events.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	stats := &UserStats{
		SignupDate:   user.CreatedAt,
		LastActivity: user.CreatedAt,
	}
	for _, e := range events {
		switch e.EventType {
		case "chat_message":
			stats.TotalChats++
		case "save_chat":
			stats.TotalSaves++
		case "personalize":
			stats.TotalPersonalizations++
		}
		if e.CreatedAt.After(stats.LastActivity) {
			stats.LastActivity = e.CreatedAt
		}
	}
	return stats, nil
}
