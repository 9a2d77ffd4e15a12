package repositories

import (
	"context"

	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnalyticsRepository interface {
	Create(ctx context.Context, event *models.AnalyticsEvent) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.AnalyticsEvent, error)
	// DeleteAll clears the table; only used when integration test mode
	// resets state at startup.
	DeleteAll(ctx context.Context) error
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Create(ctx context.Context, event *models.AnalyticsEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *analyticsRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.AnalyticsEvent, error) {
	var events []models.AnalyticsEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *analyticsRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.AnalyticsEvent{}).Error
}
