package repositories

import (
	"context"
	"errors"

	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnonymousSessionRepository interface {
	GetByAnonID(ctx context.Context, anonID string) (*models.AnonymousSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type anonymousSessionRepository struct {
	db *gorm.DB
}

func NewAnonymousSessionRepository(db *gorm.DB) AnonymousSessionRepository {
	return &anonymousSessionRepository{db: db}
}

func (r *anonymousSessionRepository) GetByAnonID(ctx context.Context, anonID string) (*models.AnonymousSession, error) {
	var session models.AnonymousSession
	if err := r.db.WithContext(ctx).First(&session, "anon_id = ?", anonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *anonymousSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.AnonymousSession{}, "id = ?", id).Error
}
