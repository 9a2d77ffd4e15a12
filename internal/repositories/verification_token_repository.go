package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTokenNotFound    = errors.New("verification token not found")
	ErrTokenExpired     = errors.New("verification token expired")
	ErrTokenAlreadyUsed = errors.New("verification token already used")
)

type VerificationTokenRepository interface {
	Create(ctx context.Context, token *models.VerificationToken) error
	// Consume atomically checks and marks the token used. Exactly one
	// concurrent caller can succeed for a given token; the row is kept
	// (used=true) rather than deleted.
	Consume(ctx context.Context, token string, now time.Time) (*models.VerificationToken, error)
}

type verificationTokenRepository struct {
	db *gorm.DB
}

func NewVerificationTokenRepository(db *gorm.DB) VerificationTokenRepository {
	return &verificationTokenRepository{db: db}
}

func (r *verificationTokenRepository) Create(ctx context.Context, token *models.VerificationToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *verificationTokenRepository) Consume(ctx context.Context, token string, now time.Time) (*models.VerificationToken, error) {
	var vt models.VerificationToken
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock serializes concurrent consumers of the same token.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&vt, "token = ?", token).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotFound
			}
			return err
		}
		if vt.Used {
			return ErrTokenAlreadyUsed
		}
		if now.After(vt.ExpiresAt) {
			return ErrTokenExpired
		}
		if err := tx.Model(&models.VerificationToken{}).
			Where("id = ?", vt.ID).
			Update("used", true).Error; err != nil {
			return err
		}
		vt.Used = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &vt, nil
}
