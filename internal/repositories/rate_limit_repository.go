package repositories

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateLimitDecision is the outcome of one atomic counter take.
type RateLimitDecision struct {
	Allowed     bool
	RetryAfter  int
	Count       int
	WindowStart time.Time
}

type RateLimitRepository interface {
	// Take runs the fixed-window algorithm as a single atomic
	// read-modify-write on the (sessionToken, action) row: create the
	// counter on first request, reset it lazily when the window has
	// elapsed, increment while under the limit, otherwise reject with a
	// retry hint.
	Take(ctx context.Context, sessionToken, action string, limit int, window time.Duration, now time.Time) (*RateLimitDecision, error)
	// Reset unconditionally deletes the counter row. Test/ops override,
	// not part of the request-serving path.
	Reset(ctx context.Context, sessionToken, action string) error
	// ListByToken returns all counters for an identity without mutating
	// them.
	ListByToken(ctx context.Context, sessionToken string) ([]models.RateLimit, error)
}

type rateLimitRepository struct {
	db *gorm.DB
}

func NewRateLimitRepository(db *gorm.DB) RateLimitRepository {
	return &rateLimitRepository{db: db}
}

func (r *rateLimitRepository) Take(ctx context.Context, sessionToken, action string, limit int, window time.Duration, now time.Time) (*RateLimitDecision, error) {
	decision, err := r.take(ctx, sessionToken, action, limit, window, now)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Two first requests raced on the unique index and ours lost the
		// insert; the row exists now, so the locked path applies.
		decision, err = r.take(ctx, sessionToken, action, limit, window, now)
	}
	return decision, err
}

func (r *rateLimitRepository) take(ctx context.Context, sessionToken, action string, limit int, window time.Duration, now time.Time) (*RateLimitDecision, error) {
	var decision RateLimitDecision
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rl models.RateLimit
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_token = ? AND action = ?", sessionToken, action).
			First(&rl).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			// First request for this pair always passes.
			rl = models.RateLimit{
				SessionToken: sessionToken,
				Action:       action,
				Count:        1,
				WindowStart:  now,
			}
			if err := tx.Create(&rl).Error; err != nil {
				return err
			}
			decision = RateLimitDecision{Allowed: true, Count: 1, WindowStart: now}
			return nil
		}
		if err != nil {
			return err
		}

		if now.Sub(rl.WindowStart) > window {
			// Window elapsed: lazy reset, no background sweep.
			if err := tx.Model(&models.RateLimit{}).Where("id = ?", rl.ID).
				Updates(map[string]interface{}{"count": 1, "window_start": now}).Error; err != nil {
				return err
			}
			decision = RateLimitDecision{Allowed: true, Count: 1, WindowStart: now}
			return nil
		}

		if rl.Count >= limit {
			remaining := rl.WindowStart.Add(window).Sub(now)
			retryAfter := int(math.Ceil(remaining.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			decision = RateLimitDecision{
				Allowed:     false,
				RetryAfter:  retryAfter,
				Count:       rl.Count,
				WindowStart: rl.WindowStart,
			}
			return nil
		}

		if err := tx.Model(&models.RateLimit{}).Where("id = ?", rl.ID).
			UpdateColumn("count", gorm.Expr("count + 1")).Error; err != nil {
			return err
		}
		decision = RateLimitDecision{Allowed: true, Count: rl.Count + 1, WindowStart: rl.WindowStart}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &decision, nil
}

func (r *rateLimitRepository) Reset(ctx context.Context, sessionToken, action string) error {
	return r.db.WithContext(ctx).
		Where("session_token = ? AND action = ?", sessionToken, action).
		Delete(&models.RateLimit{}).Error
}

func (r *rateLimitRepository) ListByToken(ctx context.Context, sessionToken string) ([]models.RateLimit, error) {
	var limits []models.RateLimit
	err := r.db.WithContext(ctx).
		Where("session_token = ?", sessionToken).
		Find(&limits).Error
	if err != nil {
		return nil, err
	}
	return limits, nil
}
