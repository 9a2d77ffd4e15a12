package repositories

import (
	"context"

	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SavedChatRepository interface {
	Create(ctx context.Context, chat *models.SavedChat) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SavedChat, error)
}

type savedChatRepository struct {
	db *gorm.DB
}

func NewSavedChatRepository(db *gorm.DB) SavedChatRepository {
	return &savedChatRepository{db: db}
}

func (r *savedChatRepository) Create(ctx context.Context, chat *models.SavedChat) error {
	return r.db.WithContext(ctx).Create(chat).Error
}

func (r *savedChatRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SavedChat, error) {
	var chats []models.SavedChat
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}
