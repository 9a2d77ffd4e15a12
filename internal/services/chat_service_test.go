package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"github.com/assadsharif/chatkit-widget-implementation/internal/services"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func TestSaveChat_GeneratesTitleWhenMissing(t *testing.T) {
	var stored *models.SavedChat
	chats := &mockSavedChatRepo{
		createFunc: func(chat *models.SavedChat) error {
			chat.ID = uuid.New()
			stored = chat
			return nil
		},
	}
	svc := services.NewChatService(chats, &mockAnonRepo{}, discardLogger())

	messages := []models.ChatMessage{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi there"},
	}
	chat, err := svc.SaveChat(context.Background(), uuid.New(), nil, messages)
	if err != nil {
		t.Fatalf("SaveChat() error = %v", err)
	}
	if chat.Title == nil || !strings.HasPrefix(*chat.Title, "Chat ") {
		t.Errorf("generated title = %v, want Chat <timestamp>", chat.Title)
	}
	if stored == nil {
		t.Fatal("chat never stored")
	}
	if len(stored.Messages) == 0 {
		t.Error("messages not serialized onto the stored row")
	}
}

func TestSaveChat_KeepsProvidedTitle(t *testing.T) {
	chats := &mockSavedChatRepo{
		createFunc: func(chat *models.SavedChat) error { return nil },
	}
	svc := services.NewChatService(chats, &mockAnonRepo{}, discardLogger())

	title := "Robotics questions"
	chat, err := svc.SaveChat(context.Background(), uuid.New(), &title, nil)
	if err != nil {
		t.Fatalf("SaveChat() error = %v", err)
	}
	if chat.Title == nil || *chat.Title != title {
		t.Errorf("title = %v, want %q", chat.Title, title)
	}
}

func TestHistoryForUser_SkipsCorruptTranscripts(t *testing.T) {
	userID := uuid.New()
	chats := &mockSavedChatRepo{
		listByUserFunc: func(id uuid.UUID) ([]models.SavedChat, error) {
			return []models.SavedChat{
				{ID: uuid.New(), UserID: id, Messages: datatypes.JSON(`[{"role":"user","content":"about sensors"}]`)},
				{ID: uuid.New(), UserID: id, Messages: datatypes.JSON(`{{{not json`)},
				{ID: uuid.New(), UserID: id, Messages: datatypes.JSON(`[{"role":"assistant","content":"sensor fusion combines readings"}]`)},
			}, nil
		},
	}
	svc := services.NewChatService(chats, &mockAnonRepo{}, discardLogger())

	history, err := svc.HistoryForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("HistoryForUser() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2 (corrupt transcript skipped)", len(history))
	}
	if history[0].Content != "about sensors" {
		t.Errorf("first message = %q", history[0].Content)
	}
}

func TestMigrateAnonymousSession(t *testing.T) {
	userID := uuid.New()
	anonRowID := uuid.New()
	var createdChat *models.SavedChat
	var deletedID uuid.UUID

	chats := &mockSavedChatRepo{
		createFunc: func(chat *models.SavedChat) error {
			createdChat = chat
			return nil
		},
	}
	anon := &mockAnonRepo{
		getByAnonIDFunc: func(anonID string) (*models.AnonymousSession, error) {
			return &models.AnonymousSession{
				ID:       anonRowID,
				AnonID:   anonID,
				Messages: datatypes.JSON(`[{"role":"user","content":"q1"},{"role":"assistant","content":"a1"},{"role":"user","content":"q2"}]`),
			}, nil
		},
		deleteFunc: func(id uuid.UUID) error {
			deletedID = id
			return nil
		},
	}
	svc := services.NewChatService(chats, anon, discardLogger())

	migrated, err := svc.MigrateAnonymousSession(context.Background(), userID, "anon-abc")
	if err != nil {
		t.Fatalf("MigrateAnonymousSession() error = %v", err)
	}
	if migrated != 3 {
		t.Errorf("migrated = %d, want 3", migrated)
	}
	if createdChat == nil {
		t.Fatal("no saved chat created from the anonymous history")
	}
	if createdChat.UserID != userID {
		t.Error("migrated chat bound to wrong user")
	}
	if deletedID != anonRowID {
		t.Error("anonymous session row not deleted after migration")
	}
}

func TestMigrateAnonymousSession_EmptyHistorySkipsChat(t *testing.T) {
	anon := &mockAnonRepo{
		getByAnonIDFunc: func(anonID string) (*models.AnonymousSession, error) {
			return &models.AnonymousSession{ID: uuid.New(), AnonID: anonID, Messages: datatypes.JSON(`[]`)}, nil
		},
		deleteFunc: func(id uuid.UUID) error { return nil },
	}
	// createFunc left nil: creating a chat for zero messages fails the test
	svc := services.NewChatService(&mockSavedChatRepo{}, anon, discardLogger())

	migrated, err := svc.MigrateAnonymousSession(context.Background(), uuid.New(), "anon-empty")
	if err != nil {
		t.Fatalf("MigrateAnonymousSession() error = %v", err)
	}
	if migrated != 0 {
		t.Errorf("migrated = %d, want 0", migrated)
	}
}

func TestMigrateAnonymousSession_NotFound(t *testing.T) {
	anon := &mockAnonRepo{
		getByAnonIDFunc: func(anonID string) (*models.AnonymousSession, error) {
			return nil, nil
		},
	}
	svc := services.NewChatService(&mockSavedChatRepo{}, anon, discardLogger())

	_, err := svc.MigrateAnonymousSession(context.Background(), uuid.New(), "anon-missing")
	if !errors.Is(err, services.ErrAnonymousSessionNotFound) {
		t.Errorf("MigrateAnonymousSession() error = %v, want ErrAnonymousSessionNotFound", err)
	}
}
