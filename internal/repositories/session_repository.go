package repositories

import (
	"context"
	"time"

	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	// GetActiveByToken resolves a token to a live session: one whose
	// absolute expiry is unset or still in the future.
	GetActiveByToken(ctx context.Context, token string, now time.Time) (*models.Session, error)
	TouchActivity(ctx context.Context, id uuid.UUID, now time.Time) error
	SetExpiry(ctx context.Context, id uuid.UUID, expiresAt time.Time) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetActiveByToken(ctx context.Context, token string, now time.Time) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Where("session_token = ? AND (expires_at IS NULL OR expires_at > ?)", token, now).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) TouchActivity(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).
		UpdateColumn("last_activity", now).Error
}

func (r *sessionRepository) SetExpiry(ctx context.Context, id uuid.UUID, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).
		Update("expires_at", expiresAt).Error
}
