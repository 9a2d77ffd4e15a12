package repositories

import (
	"context"

	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"github.com/google/uuid"
)

type UserRepository interface {
	// GetByID and GetByEmail return (nil, nil) when no user exists.
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}
