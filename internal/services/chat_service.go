package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/assadsharif/chatkit-widget-implementation/internal/logging"
	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"github.com/assadsharif/chatkit-widget-implementation/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrAnonymousSessionNotFound = errors.New("anonymous session not found")

// ChatService persists chat transcripts and migrates anonymous
// pre-signup history into a user's saved chats.
type ChatService struct {
	chats repositories.SavedChatRepository
	anon  repositories.AnonymousSessionRepository
	log   logging.Logger
}

func NewChatService(
	chats repositories.SavedChatRepository,
	anon repositories.AnonymousSessionRepository,
	log logging.Logger,
) *ChatService {
	return &ChatService{chats: chats, anon: anon, log: log}
}

func (s *ChatService) SaveChat(ctx context.Context, userID uuid.UUID, title *string, messages []models.ChatMessage) (*models.SavedChat, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("encode messages: %w", err)
	}

	now := time.Now().UTC()
	if title == nil || *title == "" {
		generated := "Chat " + now.Format("2006-01-02 15:04")
		title = &generated
	}

	chat := &models.SavedChat{
		UserID:    userID,
		Title:     title,
		Messages:  datatypes.JSON(payload),
		CreatedAt: now,
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "chat_saved", "user_id", userID, "chat_id", chat.ID, "messages", len(messages))
	return chat, nil
}

// HistoryForUser flattens all saved chats into one message list, used
// as personalization context.
func (s *ChatService) HistoryForUser(ctx context.Context, userID uuid.UUID) ([]models.ChatMessage, error) {
	chats, err := s.chats.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var history []models.ChatMessage
	for _, chat := range chats {
		var messages []models.ChatMessage
		if err := json.Unmarshal(chat.Messages, &messages); err != nil {
			// Skip a corrupt transcript rather than failing the request.
			s.log.Warn(ctx, "chat_messages_unreadable", "chat_id", chat.ID, "error", err.Error())
			continue
		}
		history = append(history, messages...)
	}
	return history, nil
}

// MigrateAnonymousSession turns an anonymous session's messages into a
// saved chat for the user and deletes the anonymous row. Returns the
// number of migrated messages.
func (s *ChatService) MigrateAnonymousSession(ctx context.Context, userID uuid.UUID, anonID string) (int, error) {
	anonSession, err := s.anon.GetByAnonID(ctx, anonID)
	if err != nil {
		return 0, err
	}
	if anonSession == nil {
		return 0, ErrAnonymousSessionNotFound
	}

	var messages []models.ChatMessage
	if err := json.Unmarshal(anonSession.Messages, &messages); err != nil {
		return 0, fmt.Errorf("decode anonymous messages: %w", err)
	}

	if len(messages) > 0 {
		title := "Migrated Chat (Anonymous Session)"
		chat := &models.SavedChat{
			UserID:    userID,
			Title:     &title,
			Messages:  anonSession.Messages,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.chats.Create(ctx, chat); err != nil {
			return 0, err
		}
	}

	if err := s.anon.Delete(ctx, anonSession.ID); err != nil {
		return 0, err
	}

	s.log.Info(ctx, "anonymous_session_migrated", "user_id", userID, "messages", len(messages))
	return len(messages), nil
}
